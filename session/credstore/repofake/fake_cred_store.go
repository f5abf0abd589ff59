package credstorefake

import (
	"sync"

	"github.com/smartsales/salesctl/session/credstore"
)

var _ credstore.Store = (*FakeCredStore)(nil)

// FakeCredStore is an in-memory credential store for tests. Optional error
// fields force failures on the corresponding operation.
type FakeCredStore struct {
	lock sync.RWMutex
	pair credstore.Pair

	SaveCalls  int
	ClearCalls int

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewFakeCredStore() *FakeCredStore {
	return &FakeCredStore{}
}

func (cs *FakeCredStore) Load() (credstore.Pair, error) {
	cs.lock.RLock()
	defer cs.lock.RUnlock()
	if cs.LoadErr != nil {
		return credstore.Pair{}, cs.LoadErr
	}
	return cs.pair, nil
}

func (cs *FakeCredStore) Save(pair credstore.Pair) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()
	cs.SaveCalls++
	if cs.SaveErr != nil {
		return cs.SaveErr
	}
	cs.pair = pair
	return nil
}

func (cs *FakeCredStore) SetAccess(access string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()
	if cs.SaveErr != nil {
		return cs.SaveErr
	}
	cs.pair.Access = access
	return nil
}

func (cs *FakeCredStore) Clear() error {
	cs.lock.Lock()
	defer cs.lock.Unlock()
	cs.ClearCalls++
	if cs.ClearErr != nil {
		return cs.ClearErr
	}
	cs.pair = credstore.Pair{}
	return nil
}

package credstore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	apperrors "github.com/smartsales/salesctl/internal/errors"
)

const (
	saltLength = 16

	// scrypt parameters (N, r, p)
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// envelope is the on-disk format of an encrypted credential pair.
type envelope struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// EncryptedStore persists the credential pair encrypted at rest with
// ChaCha20-Poly1305, keyed from a passphrase via scrypt.
type EncryptedStore struct {
	path       string
	passphrase []byte
	mu         sync.Mutex
}

var _ Store = (*EncryptedStore)(nil)

// NewEncryptedStore creates an encrypted file-backed credential store.
func NewEncryptedStore(path, passphrase string) (*EncryptedStore, error) {
	if path == "" {
		return nil, errors.New("[NewEncryptedStore] path is required")
	}
	if passphrase == "" {
		return nil, errors.New("[NewEncryptedStore] passphrase is required")
	}
	return &EncryptedStore{path: path, passphrase: []byte(passphrase)}, nil
}

func (es *EncryptedStore) Load() (Pair, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.load()
}

func (es *EncryptedStore) Save(pair Pair) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.save(pair)
}

func (es *EncryptedStore) SetAccess(access string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	pair, err := es.load()
	if err != nil {
		return err
	}
	pair.Access = access
	return es.save(pair)
}

func (es *EncryptedStore) Clear() error {
	es.mu.Lock()
	defer es.mu.Unlock()

	if err := os.Remove(es.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[EncryptedStore.Clear] remove")
	}
	return nil
}

func (es *EncryptedStore) load() (Pair, error) {
	data, err := os.ReadFile(es.path)
	if os.IsNotExist(err) {
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, errors.Wrap(err, "[EncryptedStore.Load] read")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Pair{}, errors.Wrap(apperrors.ErrCredentialsCorrupt, err.Error())
	}

	aead, err := es.cipher(env.Salt)
	if err != nil {
		return Pair{}, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return Pair{}, errors.Wrap(apperrors.ErrCredentialsCorrupt, "decryption failed")
	}

	var pair Pair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return Pair{}, errors.Wrap(apperrors.ErrCredentialsCorrupt, err.Error())
	}
	return pair, nil
}

func (es *EncryptedStore) save(pair Pair) error {
	plaintext, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] marshal")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] rand salt")
	}
	aead, err := es.cipher(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] rand nonce")
	}

	env := envelope{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] marshal envelope")
	}

	if err := os.MkdirAll(filepath.Dir(es.path), 0o700); err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] mkdir")
	}
	if err := os.WriteFile(es.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[EncryptedStore.Save] write")
	}
	return nil
}

func (es *EncryptedStore) cipher(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(es.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "[EncryptedStore] derive key")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "[EncryptedStore] cipher")
	}
	return aead, nil
}

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/smartsales/salesctl/internal/errors"
	"github.com/smartsales/salesctl/session/credstore"
)

// Store owns the authentication state machine and the persisted credential
// pair. All session mutations go through its operations; the request gateway
// and feature clients only read from it or delegate to it.
type Store struct {
	baseURL string
	creds   credstore.Store
	client  *http.Client
	log     zerolog.Logger
	nowTime func() time.Time

	mu       sync.RWMutex
	status   Status
	user     *User
	loading  bool
	authTime time.Time

	// Concurrent refresh triggers collapse onto a single in-flight
	// exchange; every waiter observes its outcome.
	refreshGroup singleflight.Group
}

// Option modifies a Store instance.
type Option func(*Store)

// WithHTTPClient sets the HTTP client used for auth endpoint exchanges.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New initializes a session store against baseURL, persisting credentials
// through creds.
func New(baseURL string, creds credstore.Store, options ...Option) (*Store, error) {
	if baseURL == "" {
		return nil, errors.New("[session.New] baseURL is required")
	}
	if creds == nil {
		return nil, errors.New("[session.New] credential store is required")
	}

	store := &Store{
		baseURL: baseURL,
		creds:   creds,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
		nowTime: time.Now,
		status:  StatusAnonymous,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Bootstrap validates previously stored credentials with a single profile
// fetch. Any failure clears the stored pair and leaves the session
// anonymous; an invalid stored credential is not an error to the caller.
// Loading reports true for exactly the duration of this call.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	pair, err := s.creds.Load()
	if err != nil {
		return errors.Wrap(err, "[Store.Bootstrap] credstore.Load")
	}
	if pair.Access == "" {
		return nil
	}

	s.setStatus(StatusAuthenticating)
	user, err := s.fetchProfile(ctx, pair.Access)
	if err != nil {
		s.log.Debug().Err(err).Msg("stored credentials rejected, clearing")
		if clearErr := s.creds.Clear(); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear stored credentials")
		}
		s.setSession(nil, StatusAnonymous)
		return nil
	}

	s.setSession(user, StatusAuthenticated)
	s.log.Debug().Str("username", user.Username).Msg("session restored")
	return nil
}

// Login performs exactly one credential exchange. On success the credential
// pair and user are updated together; on failure the session is unchanged
// and the backend's message is returned as an *AuthError.
func (s *Store) Login(ctx context.Context, username, password string) (*User, error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := s.exchange(ctx, http.MethodPost, RouteLogin, body, "")
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Login] exchange")
	}
	return s.establish(resp)
}

// Register creates a new account. Same contract as Login.
func (s *Store) Register(ctx context.Context, params RegisterParams) (*User, error) {
	resp, err := s.exchange(ctx, http.MethodPost, RouteRegister, params, "")
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Register] exchange")
	}
	return s.establish(resp)
}

// Refresh exchanges the refresh credential for a new access credential.
// Concurrent callers share a single in-flight exchange. A failed refresh is
// fatal: the session transitions to logged out and the stored pair is
// cleared.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *Store) refresh(ctx context.Context) error {
	pair, err := s.creds.Load()
	if err != nil {
		return errors.Wrap(err, "[Store.Refresh] credstore.Load")
	}
	if pair.Refresh == "" {
		s.forceLogout()
		return apperrors.ErrNotAuthenticated
	}

	s.setStatus(StatusRefreshing)
	resp, err := s.exchange(ctx, http.MethodPost, RouteRefresh, map[string]string{"refresh": pair.Refresh}, "")
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh exchange failed, forcing logout")
		s.forceLogout()
		return errors.Wrap(apperrors.ErrSessionExpired, err.Error())
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(resp, &out); err != nil || out.Access == "" {
		s.forceLogout()
		return errors.Wrap(apperrors.ErrSessionExpired, "refresh response missing access credential")
	}

	if err := s.creds.SetAccess(out.Access); err != nil {
		// A refresh whose result cannot be persisted is still a failed
		// refresh: the session must not stay in Refreshing.
		s.log.Warn().Err(err).Msg("failed to persist refreshed credential, forcing logout")
		s.forceLogout()
		return errors.Wrap(err, "[Store.Refresh] credstore.SetAccess")
	}
	s.markAuthenticated()
	s.log.Debug().Msg("access credential refreshed")
	return nil
}

// Logout notifies the backend on a best-effort basis and then clears local
// state unconditionally. It never fails: local correctness does not depend
// on backend reachability.
func (s *Store) Logout(ctx context.Context) {
	pair, err := s.creds.Load()
	if err == nil && pair.Refresh != "" {
		body := map[string]string{"refresh_token": pair.Refresh}
		if _, err := s.exchange(ctx, http.MethodPost, RouteLogout, body, pair.Access); err != nil {
			s.log.Debug().Err(err).Msg("logout notification failed")
		}
	}
	s.forceLogout()
}

// SetUser replaces the stored user profile. Used after a profile update;
// the status is unchanged.
func (s *Store) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// User returns the current user, or nil when no session is established.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Status returns the current session state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsAuthenticated reports whether a session is established. A session mid
// refresh still counts.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusAuthenticated || s.status == StatusRefreshing
}

// LastAuthenticated reports when the session last obtained a fresh access
// credential (login, register, bootstrap restore, or refresh). Zero when no
// session is established.
func (s *Store) LastAuthenticated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authTime
}

// Loading reports whether the initial bootstrap check is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// AccessToken returns the current access credential, or an empty string when
// none is stored.
func (s *Store) AccessToken() string {
	pair, err := s.creds.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load stored credentials")
		return ""
	}
	return pair.Access
}

// establish applies a successful login or register response: credential pair
// and user are persisted together.
func (s *Store) establish(resp []byte) (*User, error) {
	var out struct {
		User   *User `json:"user"`
		Tokens struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, errors.Wrap(err, "[Store.establish] decode response")
	}
	if out.User == nil || out.Tokens.Access == "" || out.Tokens.Refresh == "" {
		return nil, errors.New("[Store.establish] incomplete auth response")
	}

	if err := s.creds.Save(credstore.Pair{Access: out.Tokens.Access, Refresh: out.Tokens.Refresh}); err != nil {
		return nil, errors.Wrap(err, "[Store.establish] credstore.Save")
	}
	s.setSession(out.User, StatusAuthenticated)
	s.log.Debug().Str("username", out.User.Username).Msg("session established")
	return out.User, nil
}

func (s *Store) forceLogout() {
	if err := s.creds.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear stored credentials")
	}
	s.setSession(nil, StatusLoggedOut)
}

func (s *Store) setSession(user *User, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.status = status
	if user != nil {
		s.authTime = s.nowTime()
	} else {
		s.authTime = time.Time{}
	}
}

func (s *Store) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// markAuthenticated records the transition back to Authenticated together
// with the time the fresh access credential was obtained.
func (s *Store) markAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusAuthenticated
	s.authTime = s.nowTime()
}

// fetchProfile performs a direct, bearer-authenticated profile fetch. It
// deliberately bypasses the gateway: bootstrap must not trigger a refresh.
func (s *Store) fetchProfile(ctx context.Context, access string) (*User, error) {
	resp, err := s.exchange(ctx, http.MethodGet, RouteProfile, nil, access)
	if err != nil {
		return nil, err
	}
	var out struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, errors.Wrap(err, "[Store.fetchProfile] decode response")
	}
	if out.User == nil {
		return nil, errors.New("[Store.fetchProfile] response missing user")
	}
	return out.User, nil
}

// exchange performs one request against an auth endpoint. Responses with an
// error status are returned as *AuthError carrying the backend's message.
func (s *Store) exchange(ctx context.Context, method, path string, body interface{}, bearer string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}
	return data, nil
}

func errorMessage(body []byte, status int) string {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Error != "" {
		return out.Error
	}
	return http.StatusText(status)
}

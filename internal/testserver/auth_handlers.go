package testserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		errorJSON(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[body.Username]
	if !ok || acct.Password != body.Password {
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.issueTokens(w, http.StatusOK, "Login successful", acct)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := decode(r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		errorJSON(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[body.Username]; exists {
		errorJSON(w, http.StatusBadRequest, "Username already exists")
		return
	}
	acct := &account{
		User: userDoc{
			ID:        s.id(),
			Username:  body.Username,
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
		},
		Password: body.Password,
	}
	s.accounts[body.Username] = acct
	s.issueTokens(w, http.StatusCreated, "User registered successfully", acct)
}

// issueTokens writes the login/register response shape. Caller holds s.mu.
func (s *Server) issueTokens(w http.ResponseWriter, status int, message string, acct *account) {
	access, err := s.mintAccess(acct.User.Username)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	refresh := uuid.New().String()
	s.refresh[refresh] = acct.User.Username

	writeJSON(w, status, map[string]interface{}{
		"message": message,
		"user":    acct.User,
		"tokens": map[string]string{
			"access":  access,
			"refresh": refresh,
		},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := decode(r, &body); err != nil || body.Refresh == "" {
		errorJSON(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	if s.refreshDelay > 0 {
		time.Sleep(s.refreshDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.refresh[body.Refresh]
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	access, err := s.mintAccess(username)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	s.countRefresh()
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &body); err != nil || body.RefreshToken == "" {
		errorJSON(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refresh, body.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[r.Header.Get("X-Username")]
	if !ok {
		errorJSON(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": acct.User})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if err := decode(r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[r.Header.Get("X-Username")]
	if !ok {
		errorJSON(w, http.StatusNotFound, "user not found")
		return
	}
	if body.FirstName != "" {
		acct.User.FirstName = body.FirstName
	}
	if body.LastName != "" {
		acct.User.LastName = body.LastName
	}
	if body.Email != "" {
		acct.User.Email = body.Email
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": acct.User})
}

// Package session keeps the authenticated user's identity between runs.
// The token and user snapshot live in the settings collection; restoring a
// session checks the token's expiry claim without contacting the server.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/repositories/settings"
)

const (
	tokenKey = "session_token"
	userKey  = "session_user"
)

type Session struct {
	store settings.Repository

	// now is a test seam for expiry checks.
	now func() time.Time
}

func New(store settings.Repository) *Session {
	return &Session{store: store, now: time.Now}
}

// Save persists a successful login.
func (s *Session) Save(ctx context.Context, login *models.LoginResult) error {
	user, err := json.Marshal(models.User{ID: login.UserID, Name: login.Name})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, tokenKey, []byte(login.Token)); err != nil {
		return err
	}
	return s.store.Set(ctx, userKey, user)
}

// Restore returns the saved user and token, or nil when no usable session
// exists. A token past its expiry claim counts as no session; tokens
// without an expiry claim are kept.
func (s *Session) Restore(ctx context.Context) (*models.User, string, error) {
	raw, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		return nil, "", err
	}
	if raw == nil {
		return nil, "", nil
	}
	token := string(raw)

	if s.expired(token) {
		if err := s.Clear(ctx); err != nil {
			return nil, "", err
		}
		return nil, "", nil
	}

	rawUser, err := s.store.Get(ctx, userKey)
	if err != nil {
		return nil, "", err
	}
	var user models.User
	if rawUser != nil {
		if err := json.Unmarshal(rawUser, &user); err != nil {
			return nil, "", fmt.Errorf("failed to decode stored user: %w", err)
		}
	}
	return &user, token, nil
}

// expired inspects the token's exp claim locally. The signature is the
// server's to verify; here the claim only decides whether presenting the
// token is worth a round trip.
func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

// Clear removes the saved session.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, tokenKey); err != nil {
		return err
	}
	return s.store.Delete(ctx, userKey)
}

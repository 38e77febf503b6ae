package services

import (
	"context"

	"github.com/kopislukatan/storyapp/internal/models"
	"github.com/kopislukatan/storyapp/internal/session"
)

// AuthRemote is the subset of the API client the auth service uses.
type AuthRemote interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	SetToken(token string)
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error

	// Restore rehydrates a saved session into the API client. It returns
	// nil when no usable session exists.
	Restore(ctx context.Context) (*models.User, error)
}

type authService struct {
	remote  AuthRemote
	session *session.Session
}

func NewAuthService(remote AuthRemote, sess *session.Session) AuthService {
	return &authService{remote: remote, session: sess}
}

func (s *authService) Register(ctx context.Context, name, email, password string) error {
	return s.remote.Register(ctx, name, email, password)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	result, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.session.Save(ctx, result); err != nil {
		return nil, err
	}
	s.remote.SetToken(result.Token)
	return &models.User{ID: result.UserID, Name: result.Name}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.remote.SetToken("")
	return nil
}

func (s *authService) Restore(ctx context.Context) (*models.User, error) {
	user, token, err := s.session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	s.remote.SetToken(token)
	return user, nil
}

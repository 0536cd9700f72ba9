package users

import (
	"context"
	"fmt"

	"songlist/internal/store"
)

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(identity string) (string, error)
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	store  store.UserStore
	tokens TokenIssuer
}

// New wires a Service backed by the provided store and token issuer.
func New(st store.UserStore, tokens TokenIssuer) Service {
	return &service{store: st, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	identity, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}
	return token, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/session"
)

// ErrGoogleRejected is returned when the remote API accepts the Google ID
// token but issues no session token.
var ErrGoogleRejected = errors.New("google sign-in rejected")

// Google sign-in notices.
const (
	MsgGoogleSuccess = "Successfully Logged In!"
	MsgGoogleFailed  = "Google sign-in failed!"
)

// SignInWithGoogle completes the provider callback: it exchanges code for an
// ID token, trades that for an API token and stores it.
func (s *AuthService) SignInWithGoogle(ctx context.Context, store session.TokenStore, code string) error {
	idToken, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return err
	}

	resp, err := s.api.GoogleAuth(ctx, idToken)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return ErrGoogleRejected
	}

	if err := store.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	return nil
}

// GoogleNotice returns the notice for the outcome of SignInWithGoogle.
func GoogleNotice(err error) model.Notice {
	if err != nil {
		return model.Notice{Kind: model.NoticeError, Message: MsgGoogleFailed}
	}
	return model.Notice{Kind: model.NoticeSuccess, Message: MsgGoogleSuccess}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/session"
)

// ErrSubmitInFlight is returned when a form is submitted while its previous
// submission is still waiting for the remote API.
var ErrSubmitInFlight = errors.New("submission already in flight")

// Outcome is the result of the last submission of a form.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeInvalid
	OutcomeSuccess
	OutcomeFailure
	OutcomeError
)

type formMessages struct {
	success string
	failure string
	failed  string
}

var (
	loginMessages = formMessages{
		success: "Successfully Logged In!",
		failure: "Invalid Credentials!",
		failed:  "An error occurred!",
	}
	registerMessages = formMessages{
		success: "Successfully Registered!",
		failure: "Registration Failed!",
		failed:  "An error occurred during registration.",
	}
)

// formState is the state machine shared by both forms:
// idle -> submitting -> (success | failure | error) -> idle, and
// independently passwordHidden <-> passwordVisible.
type formState struct {
	mu              sync.Mutex
	loading         bool
	passwordVisible bool
	errors          model.FieldErrors
	notice          *model.Notice
	outcome         Outcome
	redirect        string
}

// Loading reports whether a submission is waiting for the remote API.
func (f *formState) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// PasswordVisible reports whether the password renders in plain text.
func (f *formState) PasswordVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwordVisible
}

// SetPasswordVisible restores the visibility carried by the rendered page.
func (f *formState) SetPasswordVisible(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordVisible = visible
}

// TogglePasswordVisibility flips between obscured and plain rendering. It
// neither validates nor touches any value.
func (f *formState) TogglePasswordVisibility() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordVisible = !f.passwordVisible
}

// Errors returns the field errors of the last submission.
func (f *formState) Errors() model.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors
}

// Notice returns the notification raised by the last submission, if any.
func (f *formState) Notice() *model.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Outcome reports how the last submission ended.
func (f *formState) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Redirect returns the navigation target after a successful submission.
func (f *formState) Redirect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}

type remoteCall func(ctx context.Context) (model.AuthResponse, error)

// prepare validates the current values under the form lock and returns the
// remote call to make when they are valid.
type prepare func() (model.FieldErrors, remoteCall)

func (f *formState) submit(ctx context.Context, store session.TokenStore, target string, msgs formMessages, op string, prep prepare, onReject func()) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.notice = nil
	f.redirect = ""
	f.outcome = OutcomeNone

	errs, call := prep()
	f.errors = errs
	if !errs.Empty() {
		f.outcome = OutcomeInvalid
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.mu.Unlock()

	resp, err := call(ctx)
	if err == nil && resp.Token != "" {
		err = store.Set(ctx, resp.Token)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	switch {
	case err != nil:
		slog.Error(op+" failed", "error", err)
		f.outcome = OutcomeError
		f.notice = &model.Notice{Kind: model.NoticeError, Message: msgs.failed}
	case resp.Token == "":
		f.outcome = OutcomeFailure
		f.notice = &model.Notice{Kind: model.NoticeError, Message: msgs.failure}
		if onReject != nil {
			onReject()
		}
	default:
		f.outcome = OutcomeSuccess
		f.notice = &model.Notice{Kind: model.NoticeSuccess, Message: msgs.success}
		f.redirect = target
	}
	return nil
}

// LoginForm is the email and password sign-in form.
type LoginForm struct {
	formState
	svc    *AuthService
	values model.LoginCredentials
}

// NewLoginForm creates a LoginForm holding the submitted values.
func (s *AuthService) NewLoginForm(values model.LoginCredentials) *LoginForm {
	return &LoginForm{svc: s, values: values}
}

// Values returns the current field values.
func (f *LoginForm) Values() model.LoginCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Submit validates the values and, when valid, signs in through the remote
// API. Submissions sharing a nonce share one remote call. A rejected login
// clears the password and keeps the email.
func (f *LoginForm) Submit(ctx context.Context, store session.TokenStore, nonce string) error {
	return f.submit(ctx, store, f.svc.chatsURL, loginMessages, "login",
		func() (model.FieldErrors, remoteCall) {
			creds := f.values
			return ValidateLogin(creds), func(ctx context.Context) (model.AuthResponse, error) {
				return f.svc.once(ctx, nonceKey("login", nonce), func(ctx context.Context) (model.AuthResponse, error) {
					return f.svc.api.Login(ctx, creds)
				})
			}
		},
		func() { f.values.Password = "" },
	)
}

// RegisterForm is the account creation form.
type RegisterForm struct {
	formState
	svc    *AuthService
	values model.RegisterCredentials
}

// NewRegisterForm creates a RegisterForm holding the submitted values.
func (s *AuthService) NewRegisterForm(values model.RegisterCredentials) *RegisterForm {
	return &RegisterForm{svc: s, values: values}
}

// Values returns the current field values.
func (f *RegisterForm) Values() model.RegisterCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Submit validates the values and, when valid, registers through the remote
// API. A rejected registration keeps every field.
func (f *RegisterForm) Submit(ctx context.Context, store session.TokenStore, nonce string) error {
	return f.submit(ctx, store, f.svc.chatsURL, registerMessages, "register",
		func() (model.FieldErrors, remoteCall) {
			creds := f.values
			return ValidateRegister(creds), func(ctx context.Context) (model.AuthResponse, error) {
				return f.svc.once(ctx, nonceKey("register", nonce), func(ctx context.Context) (model.AuthResponse, error) {
					return f.svc.api.Register(ctx, creds)
				})
			}
		},
		nil,
	)
}

func nonceKey(op, nonce string) string {
	if nonce == "" {
		return ""
	}
	return op + ":" + nonce
}

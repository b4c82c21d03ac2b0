package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/chatly/chatweb/internal/crypto"
	"github.com/chatly/chatweb/internal/flash"
	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/service"
	"github.com/chatly/chatweb/internal/session"
	"github.com/chatly/chatweb/internal/view"
)

// AuthHandler serves the login and registration forms.
type AuthHandler struct {
	service  *service.AuthService
	sessions *session.Manager
	notices  *flash.Notices
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, sessions *session.Manager, notices *flash.Notices) *AuthHandler {
	return &AuthHandler{service: svc, sessions: sessions, notices: notices}
}

// HandleLoginPage handles GET /login requests.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.mount(w, r) {
		return
	}
	notice := readNotice(h.notices, w, r)
	render(w, r, http.StatusOK, view.LoginPage(h.loginData(model.LoginCredentials{}, nil, false), notice))
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	form := h.service.NewLoginForm(model.LoginCredentials{
		Email:    r.PostFormValue(model.FieldEmail),
		Password: r.PostFormValue(model.FieldPassword),
	})
	form.SetPasswordVisible(passwordVisible(r))

	store := h.sessions.ForRequest(w, r)
	if err := form.Submit(r.Context(), store, r.PostFormValue(view.FieldNonce)); err != nil {
		h.submitFailed(w, err)
		return
	}

	if form.Outcome() == service.OutcomeSuccess {
		h.succeed(w, r, form.Notice(), form.Redirect())
		return
	}

	data := h.loginData(form.Values(), form.Errors(), form.PasswordVisible())
	h.respond(w, r, statusFor(form.Outcome()), form.Notice(), view.LoginForm(data), view.LoginPage(data, form.Notice()))
}

// HandleLoginPasswordVisibility handles POST /login/password-visibility
// requests. It re-renders the form with the password shown or hidden.
func (h *AuthHandler) HandleLoginPasswordVisibility(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	form := h.service.NewLoginForm(model.LoginCredentials{
		Email:    r.PostFormValue(model.FieldEmail),
		Password: r.PostFormValue(model.FieldPassword),
	})
	form.SetPasswordVisible(passwordVisible(r))
	form.TogglePasswordVisibility()

	data := h.loginData(form.Values(), nil, form.PasswordVisible())
	data.Nonce = r.PostFormValue(view.FieldNonce)
	if isHTMX(r) {
		render(w, r, http.StatusOK, view.LoginForm(data))
		return
	}
	render(w, r, http.StatusOK, view.LoginPage(data, nil))
}

// HandleRegisterPage handles GET /register requests.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.mount(w, r) {
		return
	}
	notice := readNotice(h.notices, w, r)
	render(w, r, http.StatusOK, view.RegisterPage(h.registerData(model.RegisterCredentials{}, nil, false), notice))
}

// HandleRegister handles POST /register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	form := h.service.NewRegisterForm(registerValues(r))
	form.SetPasswordVisible(passwordVisible(r))

	store := h.sessions.ForRequest(w, r)
	if err := form.Submit(r.Context(), store, r.PostFormValue(view.FieldNonce)); err != nil {
		h.submitFailed(w, err)
		return
	}

	if form.Outcome() == service.OutcomeSuccess {
		h.succeed(w, r, form.Notice(), form.Redirect())
		return
	}

	data := h.registerData(form.Values(), form.Errors(), form.PasswordVisible())
	h.respond(w, r, statusFor(form.Outcome()), form.Notice(), view.RegisterForm(data), view.RegisterPage(data, form.Notice()))
}

// HandleRegisterPasswordVisibility handles POST /register/password-visibility
// requests.
func (h *AuthHandler) HandleRegisterPasswordVisibility(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	form := h.service.NewRegisterForm(registerValues(r))
	form.SetPasswordVisible(passwordVisible(r))
	form.TogglePasswordVisibility()

	data := h.registerData(form.Values(), nil, form.PasswordVisible())
	data.Nonce = r.PostFormValue(view.FieldNonce)
	if isHTMX(r) {
		render(w, r, http.StatusOK, view.RegisterForm(data))
		return
	}
	render(w, r, http.StatusOK, view.RegisterPage(data, nil))
}

// HandleLogout handles POST /logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), h.sessions.ForRequest(w, r)); err != nil {
		slog.Error("logout failed", "error", err)
	}
	h.notices.Write(w, model.Notice{Kind: model.NoticeInfo, Message: "You have been logged out."})
	redirect(w, r, "/login")
}

// mount runs the page mount effect and reports whether the request was
// answered with a redirect to the chats area.
func (h *AuthHandler) mount(w http.ResponseWriter, r *http.Request) bool {
	res := h.service.Mount(r.Context(), h.sessions.ForRequest(w, r))
	switch res.Status {
	case service.MountAuthenticated:
		redirect(w, r, h.service.ChatsURL())
		return true
	case service.MountError:
		slog.Warn("session check failed", "error", res.Err)
	}
	return false
}

func (h *AuthHandler) succeed(w http.ResponseWriter, r *http.Request, notice *model.Notice, target string) {
	if notice != nil {
		h.notices.Write(w, *notice)
	}
	redirect(w, r, target)
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, notice *model.Notice, fragment, page templ.Component) {
	if isHTMX(r) {
		render(w, r, status, view.WithToast(fragment, notice))
		return
	}
	render(w, r, status, page)
}

// submitFailed answers a submission that produced no outcome. Each request
// owns a fresh form, so duplicate posts share the remote call instead of
// being turned away.
func (h *AuthHandler) submitFailed(w http.ResponseWriter, err error) {
	slog.Error("form submission failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *AuthHandler) loginData(values model.LoginCredentials, errs model.FieldErrors, visible bool) view.LoginData {
	return view.LoginData{
		Values:          values,
		Errors:          errs,
		PasswordVisible: visible,
		Nonce:           newNonce(),
		GoogleEnabled:   h.service.Identity().Enabled(),
	}
}

func (h *AuthHandler) registerData(values model.RegisterCredentials, errs model.FieldErrors, visible bool) view.RegisterData {
	return view.RegisterData{
		Values:          values,
		Errors:          errs,
		PasswordVisible: visible,
		Nonce:           newNonce(),
		GoogleEnabled:   h.service.Identity().Enabled(),
	}
}

func registerValues(r *http.Request) model.RegisterCredentials {
	return model.RegisterCredentials{
		FirstName: r.PostFormValue(model.FieldFirstName),
		LastName:  r.PostFormValue(model.FieldLastName),
		Email:     r.PostFormValue(model.FieldEmail),
		Password:  r.PostFormValue(model.FieldPassword),
	}
}

func passwordVisible(r *http.Request) bool {
	return r.PostFormValue(view.FieldPasswordVisible) == "true"
}

// statusFor maps a non-successful outcome to its response status.
func statusFor(o service.Outcome) int {
	switch o {
	case service.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case service.OutcomeFailure:
		return http.StatusUnauthorized
	case service.OutcomeError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// newNonce returns a fresh form nonce, or "" when none could be generated.
// A form without a nonce still submits; its duplicates are just not collapsed.
func newNonce() string {
	nonce, err := crypto.NewNonce()
	if err != nil {
		slog.Warn("failed to generate form nonce", "error", err)
		return ""
	}
	return nonce
}

func readNotice(notices *flash.Notices, w http.ResponseWriter, r *http.Request) *model.Notice {
	notice, ok := notices.ReadAndClear(w, r)
	if !ok {
		return nil
	}
	return &notice
}

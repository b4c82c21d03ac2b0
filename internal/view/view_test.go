package view

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/chatly/chatweb/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return buf.String()
}

func TestLoginPageRendersFormAndToast(t *testing.T) {
	html := render(t, LoginPage(LoginData{
		Values: model.LoginCredentials{Email: "a@b.com"},
		Errors: model.FieldErrors{model.FieldPassword: "Password is required"},
		Nonce:  "n-1",
	}, &model.Notice{Kind: model.NoticeError, Message: "Invalid Credentials!"}))

	for _, want := range []string{
		"<!doctype html>",
		"<title>Login | Chatly</title>",
		`hx-post="/login"`,
		`hx-disabled-elt="find button.primary"`,
		`name="nonce" value="n-1"`,
		`name="email" placeholder="Email" value="a@b.com"`,
		`type="password" name="password"`,
		"Password is required",
		`class="toast" data-kind="error"`,
		"Invalid Credentials!",
		`href="/register"`,
		iconPasswordHidden,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("login page missing %q", want)
		}
	}
	if strings.Contains(html, "Sign in with Google") {
		t.Error("google link rendered while disabled")
	}
}

func TestLoginFormPasswordVisible(t *testing.T) {
	html := render(t, LoginForm(LoginData{
		Values:          model.LoginCredentials{Password: "secret"},
		PasswordVisible: true,
		GoogleEnabled:   true,
	}))

	for _, want := range []string{
		`type="text" name="password" placeholder="Password" value="secret"`,
		`name="password_visible" value="true"`,
		iconPasswordVisible,
		`hx-post="/login/password-visibility"`,
		"Sign in with Google",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("login form missing %q", want)
		}
	}
	if strings.Contains(html, "<html") {
		t.Error("fragment must not render the document")
	}
}

func TestFormsDisableOnlyTheSubmitButton(t *testing.T) {
	forms := map[string]templ.Component{
		"login":    LoginForm(LoginData{}),
		"register": RegisterForm(RegisterData{}),
	}
	for name, c := range forms {
		html := render(t, c)

		if !strings.Contains(html, `hx-disabled-elt="find button.primary"`) {
			t.Errorf("%s: missing disabled-element selector", name)
		}
		if n := strings.Count(html, `class="primary"`); n != 1 {
			t.Errorf("%s: %d elements match button.primary, want 1", name, n)
		}
		// The first submit button is the form's default, so Enter submits
		// the credentials.
		i := strings.Index(html, `<button type="submit"`)
		if i < 0 || !strings.HasPrefix(html[i:], `<button type="submit" class="primary">`) {
			t.Errorf("%s: default button is not the primary submit button", name)
		}
		if !strings.Contains(html, `<button type="button" class="toggle"`) {
			t.Errorf("%s: password toggle must not submit the form", name)
		}
		if strings.Contains(html, "formaction") {
			t.Errorf("%s: password toggle must not override the form action", name)
		}
	}
}

func TestRegisterFormEscapesValues(t *testing.T) {
	html := render(t, RegisterForm(RegisterData{
		Values: model.RegisterCredentials{FirstName: `<script>alert("x")</script>`},
		Errors: model.FieldErrors{model.FieldLastName: "Last Name is required"},
	}))

	if strings.Contains(html, "<script>alert") {
		t.Error("first name rendered unescaped")
	}
	for _, want := range []string{`hx-post="/register"`, "Last Name is required", `href="/login"`} {
		if !strings.Contains(html, want) {
			t.Errorf("register form missing %q", want)
		}
	}
}

func TestWithToastIsOutOfBand(t *testing.T) {
	html := render(t, WithToast(LoginForm(LoginData{}), &model.Notice{Kind: model.NoticeSuccess, Message: "ok"}))

	if !strings.Contains(html, `id="toast" aria-live="polite" hx-swap-oob="true"`) {
		t.Errorf("missing out-of-band toast: %s", html)
	}
}

func TestChatsPageGreetsUser(t *testing.T) {
	html := render(t, ChatsPage(&model.User{FirstName: "Ada", LastName: "Lovelace"}, nil))

	if !strings.Contains(html, "Welcome, Ada Lovelace!") {
		t.Errorf("missing greeting: %s", html)
	}
	if !strings.Contains(html, `action="/logout"`) {
		t.Error("missing logout form")
	}
}

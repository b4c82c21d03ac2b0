// Package view holds the templ components of the web front end.
package view

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import "github.com/chatly/chatweb/internal/model"

// htmxConfig lets HTMX swap the re-rendered form on validation (422),
// rejection (401) and upstream (502) responses.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"401|422|502","swap":true,"error":false},{"code":"[45]..","swap":false,"error":true}]}`

// Password toggle icons: laughing while obscured, expressionless while plain.
const (
	iconPasswordHidden  = "😆"
	iconPasswordVisible = "😑"
)

// Form field names that are not credentials.
const (
	FieldNonce           = "nonce"
	FieldPasswordVisible = "password_visible"
)

// LoginData is everything the login form renders.
type LoginData struct {
	Values          model.LoginCredentials
	Errors          model.FieldErrors
	PasswordVisible bool
	Nonce           string
	GoogleEnabled   bool
}

// RegisterData is everything the registration form renders.
type RegisterData struct {
	Values          model.RegisterCredentials
	Errors          model.FieldErrors
	PasswordVisible bool
	Nonce           string
	GoogleEnabled   bool
}

func passwordType(visible bool) string {
	if visible {
		return "text"
	}
	return "password"
}

func passwordIcon(visible bool) string {
	if visible {
		return iconPasswordVisible
	}
	return iconPasswordHidden
}

func passwordToggleLabel(visible bool) string {
	if visible {
		return "Hide password"
	}
	return "Show password"
}

func displayName(user *model.User) string {
	if user == nil {
		return ""
	}
	return user.DisplayName()
}

package model

// User is the account the remote auth API reports for a valid session.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// DisplayName returns the user's full name, falling back to the email address.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// LoginCredentials represents the login form submission.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials represents the registration form submission.
type RegisterCredentials struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// GoogleAuthRequest forwards a Google ID token to the remote auth API.
type GoogleAuthRequest struct {
	TokenID string `json:"tokenId"`
}

// AuthResponse is returned by the login, register and Google operations.
// An empty Token means the remote API rejected the credentials.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
}

// ValidSessionResponse is returned by the session check. A nil User means
// the token does not identify a logged-in user.
type ValidSessionResponse struct {
	User *User `json:"user,omitempty"`
}

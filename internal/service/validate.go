package service

import (
	"regexp"
	"unicode/utf8"

	"github.com/chatly/chatweb/internal/model"
)

// MinPasswordLength is the shortest password either form accepts.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)

// Validation messages shown inline next to the failing field.
const (
	MsgFirstNameRequired = "First Name is required"
	MsgLastNameRequired  = "Last Name is required"
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Invalid email format"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordTooShort  = "Password must be at least 6 characters long"
)

// ValidateLogin checks every login field independently.
func ValidateLogin(creds model.LoginCredentials) model.FieldErrors {
	errs := model.FieldErrors{}
	validateEmail(errs, creds.Email)
	validatePassword(errs, creds.Password)
	return errs
}

// ValidateRegister checks every registration field independently.
func ValidateRegister(creds model.RegisterCredentials) model.FieldErrors {
	errs := model.FieldErrors{}
	if creds.FirstName == "" {
		errs.Add(model.FieldFirstName, MsgFirstNameRequired)
	}
	if creds.LastName == "" {
		errs.Add(model.FieldLastName, MsgLastNameRequired)
	}
	validateEmail(errs, creds.Email)
	validatePassword(errs, creds.Password)
	return errs
}

func validateEmail(errs model.FieldErrors, email string) {
	switch {
	case email == "":
		errs.Add(model.FieldEmail, MsgEmailRequired)
	case !emailPattern.MatchString(email):
		errs.Add(model.FieldEmail, MsgEmailInvalid)
	}
}

func validatePassword(errs model.FieldErrors, password string) {
	switch {
	case password == "":
		errs.Add(model.FieldPassword, MsgPasswordRequired)
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs.Add(model.FieldPassword, MsgPasswordTooShort)
	}
}

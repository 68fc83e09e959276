// Package validate holds the form checks run before any store or auth call.
// Messages are shown to the user verbatim.
package validate

import (
	"regexp"
	"strings"
)

const (
	MinPasswordLen = 6

	DefaultDateLabel = "Today"
	DefaultTimeLabel = "09:00"
)

const (
	MsgFillAllFields     = "Please fill in all fields."
	MsgInvalidEmail      = "Please enter a valid email address."
	MsgInvalidLoginEmail = "Please enter a valid email."
	MsgPasswordTooShort  = "Password must be at least 6 characters."
	MsgPasswordMismatch  = "Passwords do not match."
	MsgTitleRequired     = "Please enter a title."
)

var loginEmailRe = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// Error is a user-facing validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func fail(field, msg string) *Error { return &Error{Field: field, Message: msg} }

// Credentials are trimmed signup/login inputs. Email is lower-cased.
type Credentials struct {
	Email    string
	Password string
}

// Signup checks the signup form in order: empty fields, email shape,
// password length, confirmation match.
func Signup(email, password, confirm string) (Credentials, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	confirm = strings.TrimSpace(confirm)

	if email == "" || password == "" || confirm == "" {
		return Credentials{}, fail("", MsgFillAllFields)
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return Credentials{}, fail("email", MsgInvalidEmail)
	}
	if len(password) < MinPasswordLen {
		return Credentials{}, fail("password", MsgPasswordTooShort)
	}
	if password != confirm {
		return Credentials{}, fail("confirm_password", MsgPasswordMismatch)
	}
	return Credentials{Email: strings.ToLower(email), Password: password}, nil
}

// Login checks email shape and password length.
func Login(email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if !loginEmailRe.MatchString(email) {
		return Credentials{}, fail("email", MsgInvalidLoginEmail)
	}
	if len(password) < MinPasswordLen {
		return Credentials{}, fail("password", MsgPasswordTooShort)
	}
	return Credentials{Email: strings.ToLower(email), Password: password}, nil
}

// ReminderForm is the add/edit reminder form.
type ReminderForm struct {
	Title     string
	DateLabel string
	TimeLabel string
	Notes     string
	Pinned    bool
	Done      bool
}

// Reminder rejects a blank title and fills blank labels with defaults.
func Reminder(f ReminderForm) (ReminderForm, error) {
	if strings.TrimSpace(f.Title) == "" {
		return ReminderForm{}, fail("title", MsgTitleRequired)
	}
	if strings.TrimSpace(f.DateLabel) == "" {
		f.DateLabel = DefaultDateLabel
	}
	if strings.TrimSpace(f.TimeLabel) == "" {
		f.TimeLabel = DefaultTimeLabel
	}
	return f, nil
}

package dto

import "time"

// SignupRequest is the JSON body for POST /auth/signup.
type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse is returned after signup/login. Token is the session id for
// clients that send it as a Bearer header instead of the cookie.
type SessionResponse struct {
	OK    bool         `json:"ok"`
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SessionStatusResponse reports whether the caller is already signed in.
type SessionStatusResponse struct {
	SignedIn bool          `json:"signed_in"`
	User     *UserResponse `json:"user,omitempty"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	MemberSince time.Time `json:"member_since"`
}

package model

import "net/mail"

// User is the persisted account record. HashedPassword never contains a raw
// password and the record is never serialized outward as-is.
type User struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
}

// View returns the externally visible shape of the user, password excluded.
func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// UserView is the response shape for a registered user.
type UserView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Validate checks the registration constraints: username of at least three
// characters, a well-formed email address, non-empty names and password.
func (r *RegisterRequest) Validate() error {
	if len(r.Username) < 3 {
		return DomainError{Message: "username must be at least 3 characters"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return DomainError{Message: "email address is not valid"}
	}
	if r.FirstName == "" || r.LastName == "" {
		return DomainError{Message: "first_name and last_name are required"}
	}
	if r.Password == "" {
		return DomainError{Message: "password is required"}
	}
	return nil
}

// LoginRequest represents the request body for password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the login response carrying a freshly minted bearer token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

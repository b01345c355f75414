package model

// LoginRequest represents login parameters. Password length is enforced at
// signup only, not here.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents tenant registration parameters
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Company   string `json:"company"`
}

// SessionResponse is returned by login and signup
type SessionResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

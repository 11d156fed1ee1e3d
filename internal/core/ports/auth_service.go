package ports

import "context"

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token    string
	UserName string
	UserID   int64
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (int64, error)
	Login(ctx context.Context, name, email, password string) (*LoginResult, error)
}

// TokenIssuer produces the credential returned on login.
type TokenIssuer interface {
	Issue(userID int64, name string) (string, error)
}

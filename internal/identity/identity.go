package identity

import "context"

// User is the provider-side account record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider is the admin contract of the external identity provider. The
// application authenticates users against the provider's tokens but decides
// authorization from the local profile table; role and active flags written
// here are a mirror for the provider's own session introspection.
type Provider interface {
	CreateUser(ctx context.Context, email, password, fullName, role string) (*User, error)
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error
	ResetPassword(ctx context.Context, userID, newPassword string) error
}

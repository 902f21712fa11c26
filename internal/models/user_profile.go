package models

// Role is the application role carried by a user profile. The local profile
// row is the source of truth for authorization; the identity provider's
// metadata is only a mirror.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAgent      Role = "AGENT"
	RoleAmbassador Role = "AMBASSADOR"
)

// Valid reports whether r is a member of the role enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleAmbassador:
		return true
	}
	return false
}

// UserProfile is the application identity, one-to-one with an
// identity-provider user.
type UserProfile struct {
	Base
	UserID   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"user_id"`
	FullName string `gorm:"type:varchar(255);not null" json:"full_name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'AGENT'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

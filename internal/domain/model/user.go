package model

// Role is an authority granted to an authenticated subject.
type Role string

const (
	RoleUser       Role = "USER"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// UserProfile is the user-service view of an order owner, resolved over a
// synchronous cross-service call.
type UserProfile struct {
	ID      int64
	Name    string
	Surname string
	Email   string
}

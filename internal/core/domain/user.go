package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account that can authenticate against the API.
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// ValidRole reports whether role is one of the supported roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

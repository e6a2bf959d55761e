package domain

// User roles. There is no role table; the set is fixed.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether r is an assignable role name.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

package account

import "github.com/huyhung/ecom-api/internal/user"

// Authorize reports whether a principal with the given role may access a
// route declaring the required roles. A route with no declared roles is open
// to any authenticated principal.
func Authorize(principal user.Role, required []user.Role) bool {
	if len(required) == 0 {
		return true
	}

	for _, role := range required {
		if principal == role {
			return true
		}
	}

	return false
}

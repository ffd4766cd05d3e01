package auth

// RoleAllowed is the capability predicate behind every admin-gated
// operation: it reports whether role is one of the allowed set.
func RoleAllowed(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

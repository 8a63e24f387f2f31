// Package service composes the repositories into the authentication and
// session-lifecycle flows: credential verification with lockout, token
// issuance and revocation, activity tracking with its reconciliation
// sweep, and the advisory concurrency gate.
package service

// User types recognized by the permission resolver.  The type comes from
// the credential record and is flattened into the token's authority list
// at login time, so downstream checks never need the credential store.
const (
	TypeAdmin    = "ADMIN"
	TypeOperator = "OPERATOR"
	TypeCustomer = "CUSTOMER"
)

// authoritiesByType maps a user type to its authority list.  Unknown
// types resolve to the customer set rather than an empty list: a token
// with no authorities at all would be indistinguishable from a parsing
// bug downstream.
var authoritiesByType = map[string][]string{
	TypeAdmin:    {"session:read", "session:write", "session:force-logout", "profile:read", "profile:write"},
	TypeOperator: {"session:read", "session:force-logout", "profile:read"},
	TypeCustomer: {"profile:read", "profile:write"},
}

// ResolveAuthorities returns the flattened authority list for a user
// type. The returned slice is a copy; callers may append freely.
func ResolveAuthorities(userType string) []string {
	src, ok := authoritiesByType[userType]
	if !ok {
		src = authoritiesByType[TypeCustomer]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

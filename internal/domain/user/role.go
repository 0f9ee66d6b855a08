package user

import "strings"

// ApproverRoles are the roles allowed to see and decide on everyone's records.
var ApproverRoles = []string{string(RoleAdmin), string(RoleManager)}

var knownRoles = map[string]Role{
	string(RoleAdmin):    RoleAdmin,
	string(RoleManager):  RoleManager,
	string(RoleEmployee): RoleEmployee,
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	r, ok := knownRoles[strings.ToUpper(strings.TrimSpace(s))]
	return r, ok
}

// HasRole reports whether at least one of requiredRoles appears in userRoles.
// Comparison is case-insensitive; empty inputs yield false.
func HasRole(userRoles, requiredRoles []string) bool {
	if len(userRoles) == 0 || len(requiredRoles) == 0 {
		return false
	}

	held := make(map[string]struct{}, len(userRoles))
	for _, r := range userRoles {
		held[strings.ToUpper(strings.TrimSpace(r))] = struct{}{}
	}

	for _, r := range requiredRoles {
		if _, ok := held[strings.ToUpper(strings.TrimSpace(r))]; ok {
			return true
		}
	}
	return false
}

// IsPrivileged is HasRole against ApproverRoles.
func IsPrivileged(roles []string) bool {
	return HasRole(roles, ApproverRoles)
}

// NormalizeRoles upper-cases and de-duplicates stored roles, preserving order.
// Blank entries are dropped and an empty result becomes {EMPLOYEE}.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		normalized = append(normalized, r)
	}

	if len(normalized) == 0 {
		return []string{string(RoleEmployee)}
	}
	return normalized
}

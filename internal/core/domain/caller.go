package domain

// Caller is the identity derived from a verified token.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanAccess applies the record access rule: admins reach every record,
// everybody else only records they own. Unowned records are admin-only.
func (c Caller) CanAccess(ownerID string) bool {
	if c.IsAdmin() {
		return true
	}
	return ownerID != "" && ownerID == c.UserID
}

// Scope returns the owner filter a list query must use for this caller.
// Admins get the requested filter (empty means all owners); other callers
// are always pinned to their own id.
func (c Caller) Scope(requestedOwnerID string) string {
	if c.IsAdmin() {
		return requestedOwnerID
	}
	return c.UserID
}

package access

// Caller is the identity performing an operation, resolved once per request.
// The zero Caller is unauthenticated and is denied every check.
type Caller struct {
	UserID  uint64
	IsAdmin bool
}

// Anonymous returns the unauthenticated caller.
func Anonymous() Caller {
	return Caller{}
}

// Authenticated reports whether the caller has a resolvable identity.
func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

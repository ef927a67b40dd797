package model

// Identity is the authenticated caller, as asserted by the upstream auth
// gateway. The service treats the user id as opaque.
type Identity struct {
	UserID string
	Admin  bool
}

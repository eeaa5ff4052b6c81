package identity

import "os/user"

// SetLookupUser replaces the OS account lookup for the duration of a test.
func SetLookupUser(fn func() (*user.User, error)) (restore func()) {
	prev := lookupUser
	lookupUser = fn
	return func() { lookupUser = prev }
}

// Package identity resolves the calling user's identity, used both in the
// status line and as the tag argument of the setup command.
package identity

import (
	"errors"
	"os"
	"os/user"
	"strings"
)

// ErrUnresolved is returned when no identity source yields a name.
var ErrUnresolved = errors.New("identity could not be resolved")

// lookupUser is swapped in tests.
var lookupUser = user.Current

// Resolve returns the caller's identity.
// Priority: explicit override > OS account name > $USER > $LOGNAME.
func Resolve(override string) (string, error) {
	if s := strings.TrimSpace(override); s != "" {
		return s, nil
	}
	if u, err := lookupUser(); err == nil && u.Username != "" {
		return u.Username, nil
	}
	for _, key := range []string{"USER", "LOGNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, nil
		}
	}
	return "", ErrUnresolved
}

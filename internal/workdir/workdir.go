// Package workdir runs work inside another directory and always returns
// to the starting directory afterwards.
package workdir

import (
	"errors"
	"fmt"
	"os"
)

// ErrChdir wraps failures to enter the target directory.
var ErrChdir = errors.New("cannot change directory")

// Within changes into dir, calls fn with the directory it started from and
// restores that directory before returning, whether fn succeeds, fails or
// panics. If entering dir fails and keepGoing is true, fn still runs from
// the original directory and the chdir error is joined with fn's result.
func Within(dir string, keepGoing bool, fn func(origin string) error) (err error) {
	origin, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("workdir.Within: %w", err)
	}

	var enterErr error
	if cdErr := os.Chdir(dir); cdErr != nil {
		enterErr = fmt.Errorf("workdir.Within: %w: %w", ErrChdir, cdErr)
		if !keepGoing {
			return enterErr
		}
	}

	defer func() {
		if cdErr := os.Chdir(origin); cdErr != nil {
			err = errors.Join(err, fmt.Errorf("workdir.Within: restore %s: %w", origin, cdErr))
		}
	}()

	return errors.Join(enterErr, fn(origin))
}

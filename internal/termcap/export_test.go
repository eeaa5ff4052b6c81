package termcap

// SetIsTerminal replaces terminal detection for the duration of a test.
func SetIsTerminal(v bool) (restore func()) {
	prev := isTerminal
	isTerminal = func() bool { return v }
	return func() { isTerminal = prev }
}

// SetTTY replaces the controlling-terminal path and the isatty check.
func SetTTY(path string, fn func(fd int) bool) (restore func()) {
	prevPath, prevFn := ttyPath, isatty
	ttyPath, isatty = path, fn
	return func() { ttyPath, isatty = prevPath, prevFn }
}

// Package shell renders session results as statements for the calling
// shell to evaluate. A child process cannot change its parent's
// environment, so the wrapper functions from HookSnippet eval this output
// (bash/zsh/sh) or pipe it to source (fish).
package shell

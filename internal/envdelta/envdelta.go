// Package envdelta computes the environment change made by the setup
// command and the record needed to undo it.
package envdelta

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Op is the kind of change applied to one variable.
type Op string

const (
	OpSet   Op = "set"
	OpUnset Op = "unset"
)

// Change is one variable mutation. Value is empty for OpUnset.
type Change struct {
	Name  string `json:"name" yaml:"name"`
	Op    Op     `json:"op" yaml:"op"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// ignored holds variables the shell maintains by itself.
var ignored = map[string]bool{
	"PWD":    true,
	"OLDPWD": true,
	"SHLVL":  true,
	"_":      true,
	"PS1":    true,
	"PROMPT": true,
}

// Parse decodes a NUL separated KEY=VALUE dump. Entries without '=' or with
// an invalid name are skipped.
func Parse(dump []byte) map[string]string {
	vars := make(map[string]string)
	for _, entry := range bytes.Split(dump, []byte{0}) {
		k, v, ok := strings.Cut(string(entry), "=")
		if !ok || !ValidName(k) {
			continue
		}
		vars[k] = v
	}
	return vars
}

// ValidName reports whether name is a portable shell variable name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Diff returns the changes turning before into after, sorted by name.
func Diff(before, after map[string]string) []Change {
	var changes []Change
	for k, v := range after {
		if ignored[k] {
			continue
		}
		if old, ok := before[k]; !ok || old != v {
			changes = append(changes, Change{Name: k, Op: OpSet, Value: v})
		}
	}
	for k := range before {
		if ignored[k] {
			continue
		}
		if _, ok := after[k]; !ok {
			changes = append(changes, Change{Name: k, Op: OpUnset})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}

// Undo returns the changes that restore the variables touched by changes to
// their values in before.
func Undo(changes []Change, before map[string]string) []Change {
	undo := make([]Change, 0, len(changes))
	for _, c := range changes {
		if old, ok := before[c.Name]; ok {
			undo = append(undo, Change{Name: c.Name, Op: OpSet, Value: old})
		} else {
			undo = append(undo, Change{Name: c.Name, Op: OpUnset})
		}
	}
	return undo
}

// Encode packs changes into a single shell-safe token.
func Encode(changes []Change) (string, error) {
	data, err := json.Marshal(changes)
	if err != nil {
		return "", fmt.Errorf("envdelta.Encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. An empty token decodes to no changes.
func Decode(token string) ([]Change, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("envdelta.Decode: %w", err)
	}
	var changes []Change
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("envdelta.Decode: %w", err)
	}
	for _, c := range changes {
		if !ValidName(c.Name) {
			return nil, fmt.Errorf("envdelta.Decode: invalid variable name %q", c.Name)
		}
	}
	return changes, nil
}

// Merge combines the undo record of an earlier activation with a new one.
// Entries of prior win, so undoing the result returns to the state before
// the first activation.
func Merge(prior, next []Change) []Change {
	seen := make(map[string]bool, len(prior))
	out := make([]Change, 0, len(prior)+len(next))
	for _, c := range prior {
		seen[c.Name] = true
		out = append(out, c)
	}
	for _, c := range next {
		if !seen[c.Name] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

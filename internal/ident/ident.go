// ABOUTME: Identifier generation for messages and conversations
// ABOUTME: UUIDv4 by default; Func lets tests inject deterministic stubs

package ident

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces opaque identifiers that are unique for the process lifetime.
type Generator interface {
	New() string
}

// UUID generates random (v4) UUID strings.
type UUID struct{}

// New returns a fresh UUID string.
func (UUID) New() string {
	return uuid.New().String()
}

// Func adapts a plain function to the Generator interface.
type Func func() string

// New calls f.
func (f Func) New() string {
	return f()
}

// Default is the generator used when none is configured.
var Default Generator = UUID{}

// Sequence returns a generator yielding prefix-1, prefix-2, ... for tests and fixtures.
func Sequence(prefix string) Func {
	var n int
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

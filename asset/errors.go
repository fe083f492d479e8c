// Package asset loads model files asynchronously and hands them to a
// Decoder on the caller's thread.
package asset

import (
	"errors"
	"fmt"
)

// Kind classifies asset failures.
type Kind uint8

const (
	KindFetch       Kind = iota // file or URL could not be read
	KindUnsupported             // bytes are not a model format we decode
	KindNoMesh                  // model decoded but holds nothing drawable
)

var kindNames = [...]string{"fetch", "unsupported", "no mesh"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrFetch       = errors.New("asset: fetch failed")
	ErrUnsupported = errors.New("asset: unsupported format")
	ErrNoMesh      = errors.New("asset: no mesh found")
)

// Error is a failed load attempt. It is fatal to that attempt only.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("asset %s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("asset %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Kind == KindFetch
	case ErrUnsupported:
		return e.Kind == KindUnsupported
	case ErrNoMesh:
		return e.Kind == KindNoMesh
	}
	return false
}

func newError(kind Kind, src string, err error) *Error {
	return &Error{Kind: kind, Source: src, Err: err}
}

// NoMesh builds the error a Decoder returns for a model without geometry.
func NoMesh(src string) error {
	return newError(KindNoMesh, src, nil)
}

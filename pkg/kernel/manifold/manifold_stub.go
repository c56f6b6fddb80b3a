//go:build !manifold

// Package manifold provides a CGo-based marker kernel binding to the
// Manifold library. When the "manifold" build tag is not set, this stub
// package is compiled instead, returning ErrUnavailable from New().
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"github.com/chazu/welltube/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New reports that Manifold is not compiled in.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}

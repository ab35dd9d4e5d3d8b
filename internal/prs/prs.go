// Package prs implements the PRS LZ compression codec used throughout the
// asset pipeline: a headerless bitstream with literal, short-copy and
// long-copy opcodes driven by an 8-bit flag reservoir, terminated by a
// long-copy end-of-stream marker. Reader and Writer stream, so neither
// side needs to know the other's total length up front.
package prs

import (
	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/registry"
)

// Errors surfaced by Decompress / the streaming Reader.
var (
	ErrTruncated      = errors.New("prs: truncated stream")
	ErrInvalidBackref = errors.New("prs: back-reference before start of output")
)

const (
	windowSize   = 0x2000 // 8192 bytes
	minShortCopy = 2
	maxShortCopy = 5
	minLongCopy  = 2
)

func init() {
	// PRS carries no magic number; identification leans entirely on the
	// .prs extension.
	registry.Register(registry.Handler{
		Name:      "prs",
		Extension: ".prs",
		CanRead:   true,
		CanWrite:  true,
	})
}

// Package config implements CBOR-encoded named presets: reusable
// bundles of archive.Settings and texture.Settings that a caller (the
// demo CLI, or any other tool built on this module) loads instead of
// re-specifying every format option on each invocation.
package config

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/archive"
	"github.com/relickit/relic/internal/texture"
)

// Preset bundles named, reusable archive and/or texture settings.
// Either field may be the zero value if this preset only configures one
// of the two format families.
type Preset struct {
	Name    string           `cbor:"0,keyasint"`
	Comment string           `cbor:"1,keyasint"`
	Archive archive.Settings `cbor:"2,keyasint"`
	Texture texture.Settings `cbor:"3,keyasint"`
}

var ErrPresetNotFound = errors.New("config: no preset with that name")

// Load decodes a CBOR-encoded list of presets from r.
func Load(r io.Reader) ([]Preset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "config: reading preset file")
	}
	var presets []Preset
	if err := cbor.Unmarshal(data, &presets); err != nil {
		return nil, errors.Wrap(err, "config: decoding presets")
	}
	return presets, nil
}

// Save encodes presets as CBOR to w.
func Save(w io.Writer, presets []Preset) error {
	data, err := cbor.Marshal(presets)
	if err != nil {
		return errors.Wrap(err, "config: encoding presets")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "config: writing preset file")
}

// Find returns the named preset, or ErrPresetNotFound.
func Find(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, ErrPresetNotFound
}

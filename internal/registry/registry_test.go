package registry_test

import (
	"bytes"
	"testing"

	"github.com/relickit/relic/internal/registry"
)

func resetTable(t *testing.T, handlers ...registry.Handler) {
	t.Helper()
	// There is no exported reset; tests register distinct fictitious
	// names per test to avoid cross-test interference with the
	// real compile-time table built up by package init funcs.
	for _, h := range handlers {
		registry.Register(h)
	}
}

func TestIdentifyBySignature(t *testing.T) {
	resetTable(t, registry.Handler{
		Name:      "test-sig-a",
		Extension: ".tsa",
		CanRead:   true,
		Signature: func(h []byte) bool { return bytes.HasPrefix(h, []byte("SIGA")) },
		Specificity: 10,
	})

	r := bytes.NewReader([]byte("SIGA0000000000000000000000000000"))
	got, err := registry.Identify(r, "whatever.tsa")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "test-sig-a" {
		t.Errorf("got %q, want test-sig-a", got.Name)
	}
}

func TestIdentifyRestoresCursor(t *testing.T) {
	resetTable(t, registry.Handler{
		Name:      "test-sig-b",
		Extension: ".tsb",
		Signature: func(h []byte) bool { return bytes.HasPrefix(h, []byte("SIGB")) },
	})

	data := []byte("skipSIGB0000000000000000000000000000tail-data")
	r := bytes.NewReader(data)
	// Advance the cursor first to make sure Identify's seek-and-restore
	// is relative, not absolute-zero.
	r.Seek(4, 0)
	if _, err := registry.Identify(r, "x.tsb"); err != nil {
		t.Fatal(err)
	}
	rest := make([]byte, len(data))
	n, _ := r.Read(rest)
	if !bytes.Equal(rest[:n], data[4:]) {
		t.Errorf("cursor was not restored: read %q", rest[:n])
	}
}

func TestIdentifyExtensionOnly(t *testing.T) {
	resetTable(t, registry.Handler{
		Name:      "test-ext-only",
		Extension: ".tox",
	})

	r := bytes.NewReader([]byte("anything at all, no magic required"))
	got, err := registry.Identify(r, "archive.TOX")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "test-ext-only" {
		t.Errorf("got %q, want test-ext-only", got.Name)
	}
}

func TestIdentifyNotFound(t *testing.T) {
	r := bytes.NewReader([]byte("nothing matches this"))
	_, err := registry.Identify(r, "mystery.zzz")
	if err != registry.ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGetByName(t *testing.T) {
	resetTable(t, registry.Handler{Name: "test-get-me", Extension: ".tgm"})

	h, err := registry.Get("test-get-me")
	if err != nil {
		t.Fatal(err)
	}
	if h.Extension != ".tgm" {
		t.Errorf("got extension %q", h.Extension)
	}

	if _, err := registry.Get("does-not-exist"); err == nil {
		t.Error("expected an error for an unknown handler name")
	}
}

func TestIdentifyAmbiguousSignature(t *testing.T) {
	resetTable(t,
		registry.Handler{
			Name:        "test-amb-1",
			Extension:   ".amb",
			Signature:   func(h []byte) bool { return bytes.HasPrefix(h, []byte("AMBX")) },
			Specificity: 5,
		},
		registry.Handler{
			Name:        "test-amb-2",
			Extension:   ".amb",
			Signature:   func(h []byte) bool { return bytes.HasPrefix(h, []byte("AMBX")) },
			Specificity: 5,
		},
	)

	r := bytes.NewReader([]byte("AMBX0000000000000000000000000000"))
	_, err := registry.Identify(r, "x.amb")
	if err != registry.ErrAmbiguous {
		t.Errorf("got %v, want ErrAmbiguous", err)
	}
}

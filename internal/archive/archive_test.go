package archive_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/relickit/relic/internal/archive"
)

// fakeRWS is a minimal in-memory ReadWriteSeeker.
type fakeRWS struct {
	data []byte
	pos  int64
}

func (f *fakeRWS) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *fakeRWS) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.pos:end], p)
	f.pos = end
	return len(p), nil
}

func (f *fakeRWS) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.data)) + offset
	}
	return f.pos, nil
}

// TestV1SingleEntrySize checks that a V1 archive with one 5-byte entry
// and block_size=2048 is exactly 4144 bytes.
func TestV1SingleEntrySize(t *testing.T) {
	rw := &fakeRWS{}
	settings := archive.Settings{BlockSize: 2048, Version: archive.V1, HasTimestamps: false}
	sources := []archive.SourceEntry{
		{Name: "hi.dat", Content: bytes.NewReader([]byte("hello")), Length: 5},
	}
	if err := archive.Write(rw, sources, settings, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(rw.data) != 4144 {
		t.Fatalf("archive length = %d, want 4144", len(rw.data))
	}

	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	r, err := archive.Open(rw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Version() != archive.V1 {
		t.Fatalf("Version() = %v, want V1", r.Version())
	}
	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(Entries()) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "hi.dat" || e.Offset != 2048 || e.Length != 5 {
		t.Fatalf("entry = %+v, want {hi.dat 2048 5 ...}", e)
	}

	content := make([]byte, e.Length)
	if _, err := io.ReadFull(r.Content(0), content); err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello" {
		t.Fatalf("content = %q, want %q", content, "hello")
	}
}

// TestV1V2SamePayload checks that V1 and V2 differ only in where the
// metadata offset/length pair live, not in entry content or ordering.
func TestV1V2SamePayload(t *testing.T) {
	sources := func() []archive.SourceEntry {
		return []archive.SourceEntry{
			{Name: "a.bin", Content: bytes.NewReader([]byte("AAAA")), Length: 4},
			{Name: "b.bin", Content: bytes.NewReader([]byte("BBBBBBBB")), Length: 8},
		}
	}

	for _, version := range []archive.Version{archive.V1, archive.V2} {
		rw := &fakeRWS{}
		settings := archive.Settings{BlockSize: 64, Version: version, HasTimestamps: false}
		if err := archive.Write(rw, sources(), settings, nil); err != nil {
			t.Fatalf("Write(%v): %v", version, err)
		}
		if _, err := rw.Seek(0, io.SeekStart); err != nil {
			t.Fatal(err)
		}
		r, err := archive.Open(rw)
		if err != nil {
			t.Fatalf("Open(%v): %v", version, err)
		}
		entries := r.Entries()
		if len(entries) != 2 {
			t.Fatalf("version %v: len(Entries()) = %d, want 2", version, len(entries))
		}
		if entries[0].Offset%64 != 0 || entries[1].Offset%64 != 0 {
			t.Fatalf("version %v: entry offsets not block-aligned: %+v", version, entries)
		}
		if entries[1].Offset != entries[0].Offset+64 {
			t.Fatalf("version %v: entries[1].Offset = %d, want %d", version, entries[1].Offset, entries[0].Offset+64)
		}

		for i, want := range []string{"AAAA", "BBBBBBBB"} {
			got := make([]byte, entries[i].Length)
			if _, err := io.ReadFull(r.Content(i), got); err != nil {
				t.Fatal(err)
			}
			if string(got) != want {
				t.Fatalf("version %v: entry %d content = %q, want %q", version, i, got, want)
			}
		}
	}
}

// TestTimestampsRoundTrip checks that a supplied mtime survives the
// footer round trip when HasTimestamps is set.
func TestTimestampsRoundTrip(t *testing.T) {
	rw := &fakeRWS{}
	mtime := time.Date(2024, time.March, 5, 12, 30, 45, 0, time.UTC)
	settings := archive.Settings{BlockSize: 32, Version: archive.V2, HasTimestamps: true}
	sources := []archive.SourceEntry{
		{Name: "t.dat", Content: bytes.NewReader([]byte("x")), Length: 1, ModTime: mtime, HasModTime: true},
	}
	if err := archive.Write(rw, sources, settings, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	r, err := archive.Open(rw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e := r.Entries()[0]
	if !e.HasModTime {
		t.Fatal("expected HasModTime true")
	}
	if !e.ModTime.Equal(mtime) {
		t.Fatalf("ModTime = %v, want %v", e.ModTime, mtime)
	}
}

// TestEntryWrittenDigest checks that the EntryWritten callback fires
// once per entry with a non-zero blake2b-256 digest.
func TestEntryWrittenDigest(t *testing.T) {
	rw := &fakeRWS{}
	settings := archive.Settings{BlockSize: 32, Version: archive.V1}
	sources := []archive.SourceEntry{
		{Name: "one.dat", Content: bytes.NewReader([]byte("content-one")), Length: 11},
		{Name: "two.dat", Content: bytes.NewReader([]byte("content-two")), Length: 11},
	}
	var calls []archive.Entry
	var digests [][32]byte
	err := archive.Write(rw, sources, settings, func(e archive.Entry, digest [32]byte) {
		calls = append(calls, e)
		digests = append(digests, digest)
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("EntryWritten fired %d times, want 2", len(calls))
	}
	if digests[0] == digests[1] {
		t.Fatal("expected different digests for different content")
	}
	var zero [32]byte
	if digests[0] == zero {
		t.Fatal("digest should not be all-zero")
	}
}

// TestCompressedEntryRoundTrip exercises the [ADDED] optional per-entry
// auxiliary compression extension.
func TestCompressedEntryRoundTrip(t *testing.T) {
	rw := &fakeRWS{}
	settings := archive.Settings{BlockSize: 64, Version: archive.V2, EntryCompression: archive.CompressionZstd}
	payload := bytes.Repeat([]byte("relic-archive-payload-"), 50)
	sources := []archive.SourceEntry{
		{Name: "big.bin", Content: bytes.NewReader(payload), Length: uint32(len(payload))},
	}
	if err := archive.Write(rw, sources, settings, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	r, err := archive.Open(rw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc, err := r.DecompressedContent(0, archive.CompressionZstd)
	if err != nil {
		t.Fatalf("DecompressedContent: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("decompressed content mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

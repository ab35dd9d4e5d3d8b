package prs

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()
	encoded := Compress(data)

	decoded, err := Decompress(encoded)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, data)
	}
	return encoded
}

func TestRoundTripEmpty(t *testing.T) {
	roundTrip(t, nil)
}

func TestRoundTripSingleByte(t *testing.T) {
	roundTrip(t, []byte{0x00})
}

func TestRoundTripRepeatingPattern(t *testing.T) {
	// "ABABAB": two literals, then a short-copy-eligible repeat.
	roundTrip(t, []byte("ABABAB"))
}

func TestRoundTripLongRun(t *testing.T) {
	data := bytes.Repeat([]byte{0x7F}, 5000)
	encoded := roundTrip(t, data)
	if len(encoded) >= len(data) {
		t.Errorf("expected compression on a long repeated run, got %d >= %d", len(encoded), len(data))
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 7, 64, 513, 4096, 9000} {
		data := make([]byte, n)
		rng.Read(data)
		roundTrip(t, data)
	}
}

// TestBoundedExpansion checks the worst-case literal-only expansion bound:
// |encode(x)| <= |x| + ceil(|x|/8) + 2.
func TestBoundedExpansion(t *testing.T) {
	data := make([]byte, 1000)
	rng := rand.New(rand.NewSource(2))
	for i := range data {
		data[i] = byte(rng.Intn(256))
		if i > 0 {
			// Decorrelate from the previous byte so LZ matches are rare,
			// approximating the literal-only worst case.
			data[i] ^= data[i-1]
		}
	}
	encoded := Compress(data)
	bound := len(data) + (len(data)+7)/8 + 2
	if len(encoded) > bound {
		t.Errorf("encoded length %d exceeds bound %d", len(encoded), bound)
	}
}

// TestDecodeHandConstructed exercises the decoder directly against a
// hand-built stream rather than through Compress, to check the decoder's
// reading of the grammar independent of any encoder convention.
func TestDecodeHandConstructed(t *testing.T) {
	// Control byte 0b11010000: two literal flags, then the long-copy EOS
	// introducer (0,1). Bits consumed MSB-first: 1,1,0,1; the remaining
	// four bits are left unused because decode halts at the EOS marker
	// before reading them.
	stream := []byte{
		0b11010000,
		'h', 'i', // the two literals
		0x00, 0x00, // W = 0 -> end of stream
	}
	got, err := Decompress(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestDecompressTruncated(t *testing.T) {
	// A literal flag with no following data byte.
	_, err := Decompress([]byte{0b10000000})
	if err == nil {
		t.Fatal("expected an error for a truncated stream")
	}
}

func TestDecompressInvalidBackref(t *testing.T) {
	// Short-copy introducer (0,0) referencing before the start of output.
	stream := []byte{
		0b00000000, // 0,0 -> short copy, then 2 length bits (0,0) -> length 2
		0xFF,       // offset byte: 0xFF | -0x100 = -1, but output is still empty
	}
	_, err := Decompress(stream)
	if err == nil {
		t.Fatal("expected an invalid back-reference error")
	}
}

func TestDecompressSize(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox")
	encoded := Compress(data)
	r := NewReader(bytes.NewReader(encoded))
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(data) {
		t.Errorf("got length %d, want %d", len(out), len(data))
	}
}

func TestWriterCloser(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	if _, err := w.Write([]byte("hello, hello, hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decompress(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello, hello, hello" {
		t.Errorf("got %q", decoded)
	}
}

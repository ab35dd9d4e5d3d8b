// Package registry identifies a container format from its byte signature
// and filename extension, and hands back the Handler that claims it.
// Handlers live in one package-level slice that the format packages fill
// through Register from their init funcs; the slice is not guarded
// against later Register calls.
package registry

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Handler describes a container format: enough to identify it from a
// stream and a filename, plus its read/write capability flags. It carries
// no open or create hooks; callers dispatch on Name to the concrete
// format package (texture, prs) themselves.
type Handler struct {
	Name      string
	Extension string // canonical extension, including the leading dot, lowercase
	CanRead   bool
	CanWrite  bool

	// Signature reports whether the first len(header) bytes (up to 32)
	// identify this format. A nil Signature means the format carries no
	// magic (e.g. PRS) and identification relies on Extension alone.
	Signature func(header []byte) bool

	// Specificity ranks how strict Signature is, used to break ties when
	// more than one handler's Signature matches the same bytes: the
	// handler with the higher Specificity wins. Handlers with a nil
	// Signature (extension-only) have Specificity 0.
	Specificity int
}

var ErrAmbiguous = errors.New("registry: signature is claimed by handlers of equal specificity")
var ErrNotFound = errors.New("registry: no handler matches")

// table is the set of known formats. Concrete format packages append to
// it from an init func in their own package, so this package never needs
// to import texture/prs and create a cycle. Only formats whose packages
// are linked into the binary are present.
var table []Handler

// Register appends h to the format table. The format packages call it
// from their init funcs; nothing stops a later call from adding more.
func Register(h Handler) {
	table = append(table, h)
}

const probeLen = 32

// Identify reads up to the first 32 bytes of r (restoring its position
// afterward if r is also an io.Seeker) and matches them, together with
// filename's extension, against the registered handlers.
//
// For formats with a signature, the magic must match. For signature-less
// formats (PRS), the extension alone decides. When more than one
// signature matches the same bytes, the most specific wins; a tie is
// ErrAmbiguous.
func Identify(r io.Reader, filename string) (*Handler, error) {
	header, err := peek(r, probeLen)
	if err != nil {
		return nil, errors.Wrap(err, "registry: identify")
	}
	ext := strings.ToLower(filepath.Ext(filename))

	var best *Handler
	for i := range table {
		h := &table[i]
		if h.Signature == nil {
			if h.Extension == ext {
				if best == nil || h.Specificity > best.Specificity {
					best = h
				} else if h.Specificity == best.Specificity && best != h {
					return nil, ErrAmbiguous
				}
			}
			continue
		}
		if !h.Signature(header) {
			continue
		}
		if best == nil {
			best = h
			continue
		}
		if h.Specificity > best.Specificity {
			best = h
		} else if h.Specificity == best.Specificity {
			return nil, ErrAmbiguous
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

// Get looks up a registered handler by its canonical Name.
func Get(name string) (*Handler, error) {
	for i := range table {
		if table[i].Name == name {
			return &table[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "handler %q", name)
}

// peek reads up to n bytes from r without consuming them when r also
// implements io.Seeker; otherwise the bytes read are lost to the caller,
// matching the "probing must not consume the stream" contract only for
// seekable sources (callers working from a non-seekable io.Reader are
// expected to pass a buffered/teed reader).
func peek(r io.Reader, n int) ([]byte, error) {
	type seeker interface {
		Seek(offset int64, whence int) (int64, error)
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buf = buf[:read]
	if s, ok := r.(seeker); ok {
		if _, serr := s.Seek(-int64(read), io.SeekCurrent); serr != nil {
			return nil, serr
		}
	}
	return buf, nil
}

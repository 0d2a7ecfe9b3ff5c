package wire

import (
	"github.com/rp66v1/dlis/internal/dlerrors"
)

// Cursor is a read-only, forward-only view over a byte slice. Every
// decoder in this package takes a *Cursor and advances it by however
// many bytes it consumed; nothing in this package retains the
// backing slice beyond the call.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for sequential decoding starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool { return c.pos >= len(c.data) }

// Peek returns the n bytes starting at the cursor without advancing it.
func (c *Cursor) Peek(n int) ([]byte, bool) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, false
	}
	return c.data[c.pos : c.pos+n], true
}

// Take consumes and returns the next n bytes.
func (c *Cursor) Take(n int) ([]byte, error) {
	b, ok := c.Peek(n)
	if !ok {
		return nil, dlerrors.New(dlerrors.KindTruncated, "cursor.take", "not enough bytes remaining")
	}
	c.pos += n
	return b, nil
}

// TakeByte consumes and returns a single byte.
func (c *Cursor) TakeByte() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

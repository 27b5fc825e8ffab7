package lex

import (
	"bufio"
	"io"
)

// Reader is the byte-stream contract the lexical analyzer drives, matching
// the four primitives spec.md §4.E specifies: read one byte at a time,
// remember where the most recent accepted prefix ended (set_tail), retrieve
// everything read since the last commit, and rewind to the tail to start the
// next lexeme. This mirrors the original Rust's Reader<u8> trait
// (original_source/src/lexical_analyzer.rs) exactly.
type Reader interface {
	// ReadNext returns the next unread byte and true, or false at end of
	// input.
	ReadNext() (b byte, ok bool)

	// SetTail marks the current read position as the end of the current
	// accepted prefix.
	SetTail()

	// Sequence returns the bytes read since the last RestartFromTail (or
	// since the reader was created, if RestartFromTail has never been
	// called), cut off at the tail if SetTail has been called since then.
	Sequence() []byte

	// RestartFromTail discards everything up to and including the tail,
	// rewinding any bytes read past the tail so the next lexeme's scan sees
	// them again.
	RestartFromTail()
}

// bufReader is the standard Reader implementation, built on a bufio.Reader
// so it works over any io.Reader, not just an in-memory buffer.
type bufReader struct {
	r *bufio.Reader

	// carry holds bytes read past the previous lexeme's tail that
	// RestartFromTail rewound; carryPos is how much of it ReadNext has
	// already replayed. ReadNext must drain carry before pulling any fresh
	// byte from r, or the rewound lookahead is silently dropped.
	carry    []byte
	carryPos int

	pending []byte // bytes read (replayed or fresh) since the last RestartFromTail
	tailLen int    // how many leading bytes of pending are committed
	atTail  bool   // whether SetTail has been called since the last commit
}

// NewReader wraps r for use by a LexicalAnalyzer.
func NewReader(r io.Reader) Reader {
	return &bufReader{r: bufio.NewReader(r)}
}

func (b *bufReader) ReadNext() (byte, bool) {
	var c byte
	if b.carryPos < len(b.carry) {
		c = b.carry[b.carryPos]
		b.carryPos++
	} else {
		var err error
		c, err = b.r.ReadByte()
		if err != nil {
			return 0, false
		}
	}
	b.pending = append(b.pending, c)
	return c, true
}

func (b *bufReader) SetTail() {
	b.tailLen = len(b.pending)
	b.atTail = true
}

func (b *bufReader) Sequence() []byte {
	if b.atTail {
		return b.pending[:b.tailLen]
	}
	return b.pending
}

func (b *bufReader) RestartFromTail() {
	// Per the resolved open question (spec.md §9, DESIGN.md): emit the
	// tailed lexeme, leave remaining bytes for the next call. Anything read
	// past the tail was only needed to confirm the DFA had no further
	// extension; it must still be seen by the next lexeme's scan, so it goes
	// into carry for ReadNext to replay before touching the underlying
	// reader again.
	if !b.atTail {
		// no accept was ever recorded; nothing to discard but the whole
		// buffer was consumed looking for one, so there's nothing left to
		// replay either.
		b.pending = nil
		b.carry = nil
		b.carryPos = 0
		return
	}
	rest := make([]byte, len(b.pending)-b.tailLen)
	copy(rest, b.pending[b.tailLen:])
	b.carry = rest
	b.carryPos = 0
	b.pending = nil
	b.tailLen = 0
	b.atTail = false
}

// NewBytesReader is a convenience wrapper for lexing an in-memory byte slice
// without going through an io.Reader.
func NewBytesReader(data []byte) Reader {
	return NewReader(newByteSliceReader(data))
}

type byteSliceReader struct {
	data []byte
	pos  int
}

func newByteSliceReader(data []byte) *byteSliceReader {
	return &byteSliceReader{data: data}
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

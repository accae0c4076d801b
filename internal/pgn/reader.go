package pgn

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/park285/rooky/internal/san"
)

// Reader pulls games one at a time out of a PGN byte stream.
// It is not safe for concurrent use.
type Reader struct {
	br      *bufio.Reader
	started bool
	games   int
	line    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024), line: 1}
}

// NewBytesReader reads games from an in-memory buffer.
func NewBytesReader(b []byte) *Reader { return NewReader(bytes.NewReader(b)) }

// Games returns how many games have been completed so far.
func (r *Reader) Games() int { return r.games }

// ReadGame drives v over the next game. The bool result is false once the
// input holds nothing but whitespace and comments.
func (r *Reader) ReadGame(v Visitor) ([]san.SanPlus, bool, error) {
	if !r.started {
		r.started = true
		if bom, err := r.br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
			_, _ = r.br.Discard(3)
		}
	}

	v.BeginGame()
	content := false
	movetext := false
	for {
		c, err := r.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, &InvalidPgnError{Err: err}
		}

		switch {
		case isSpace(c):
			r.next()
		case c == '%' || c == ';':
			if err := r.skipLine(); err != nil {
				return nil, false, err
			}
		case c == '{':
			if err := r.skipComment(); err != nil {
				return nil, false, err
			}
		case c == '[':
			if movetext {
				return r.finish(v)
			}
			key, value, err := r.readHeader()
			if err != nil {
				return nil, false, err
			}
			content = true
			v.Header(key, value)
		case c == '(':
			if err := r.skipVariation(); err != nil {
				return nil, false, err
			}
			content, movetext = true, true
		case c == ')':
			// stray closing paren, nothing to close
			r.next()
		case c == '$':
			r.next()
			r.readWhile(isDigit)
			content, movetext = true, true
		case c == '!' || c == '?':
			r.readWhile(func(b byte) bool { return b == '!' || b == '?' })
		default:
			tok, err := r.readToken()
			if err != nil {
				return nil, false, err
			}
			content, movetext = true, true
			if isResultToken(tok) {
				return r.finish(v)
			}
			mv, ok, err := r.movetextToken(tok)
			if err != nil {
				return nil, false, err
			}
			if ok {
				v.San(mv)
			}
		}
	}

	if !content {
		return nil, false, nil
	}
	return r.finish(v)
}

// ReadAll visits every remaining game, calling fn with each move list.
func (r *Reader) ReadAll(v Visitor, fn func(moves []san.SanPlus) error) error {
	for {
		moves, ok, err := r.ReadGame(v)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if fn != nil {
			if err := fn(moves); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) finish(v Visitor) ([]san.SanPlus, bool, error) {
	r.games++
	return v.EndGame(), true, nil
}

// movetextToken strips move numbers ("12.", "12...", "1.e4") and parses what is left.
func (r *Reader) movetextToken(tok []byte) (san.SanPlus, bool, error) {
	rest := tok
	if afterNum := bytes.TrimLeft(tok, "0123456789"); len(afterNum) == 0 || afterNum[0] == '.' {
		rest = bytes.TrimLeft(afterNum, ".")
	}
	if len(rest) == 0 {
		return san.SanPlus{}, false, nil
	}
	mv, err := san.Parse(string(rest))
	if err != nil {
		return san.SanPlus{}, false, &InvalidPgnError{Err: fmt.Errorf("line %d: %w", r.line, err)}
	}
	return mv, true, nil
}

func (r *Reader) readHeader() ([]byte, RawHeader, error) {
	start := r.line
	r.next() // [
	r.readWhile(isSpace)
	key := append([]byte(nil), r.readWhile(func(b byte) bool { return !isSpace(b) && b != '"' && b != ']' })...)
	r.readWhile(isSpace)

	c, err := r.peek()
	if err != nil {
		return nil, nil, r.unterminated("header", start, err)
	}
	if c != '"' {
		return nil, nil, invalid(fmt.Sprintf("line %d: header %q has no quoted value", start, key))
	}
	r.next()

	var value []byte
	for {
		b, err := r.next()
		if err != nil {
			return nil, nil, r.unterminated("header", start, err)
		}
		if b == '\\' {
			esc, err := r.next()
			if err != nil {
				return nil, nil, r.unterminated("header", start, err)
			}
			value = append(value, b, esc)
			continue
		}
		if b == '"' {
			break
		}
		if b == '\n' {
			return nil, nil, invalid(fmt.Sprintf("line %d: header value spans lines", start))
		}
		value = append(value, b)
	}

	r.readWhile(func(b byte) bool { return b == ' ' || b == '\t' })
	b, err := r.next()
	if err != nil {
		return nil, nil, r.unterminated("header", start, err)
	}
	if b != ']' {
		return nil, nil, invalid(fmt.Sprintf("line %d: expected ] after header %q", start, key))
	}
	return key, RawHeader(value), nil
}

func (r *Reader) skipComment() error {
	start := r.line
	r.next() // {
	for {
		b, err := r.next()
		if err != nil {
			return r.unterminated("comment", start, err)
		}
		if b == '}' {
			return nil
		}
	}
}

func (r *Reader) skipVariation() error {
	start := r.line
	r.next() // (
	depth := 1
	for depth > 0 {
		c, err := r.peek()
		if err != nil {
			return r.unterminated("variation", start, err)
		}
		switch c {
		case '(':
			depth++
			r.next()
		case ')':
			depth--
			r.next()
		case '{':
			if err := r.skipComment(); err != nil {
				return err
			}
		case ';':
			if err := r.skipLine(); err != nil {
				return err
			}
		default:
			r.next()
		}
	}
	return nil
}

func (r *Reader) skipLine() error {
	for {
		b, err := r.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &InvalidPgnError{Err: err}
		}
		if b == '\n' {
			return nil
		}
	}
}

func (r *Reader) readToken() ([]byte, error) {
	tok := r.readWhile(func(b byte) bool { return !isSpace(b) && !isDelimiter(b) })
	if len(tok) == 0 {
		b, _ := r.next()
		return nil, invalid(fmt.Sprintf("line %d: unexpected character %q", r.line, b))
	}
	return tok, nil
}

func (r *Reader) readWhile(keep func(byte) bool) []byte {
	var out []byte
	for {
		c, err := r.peek()
		if err != nil || !keep(c) {
			return out
		}
		r.next()
		out = append(out, c)
	}
}

func (r *Reader) peek() (byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) next() (byte, error) {
	b, err := r.br.ReadByte()
	if err == nil && b == '\n' {
		r.line++
	}
	return b, err
}

func (r *Reader) unterminated(what string, line int, err error) error {
	if errors.Is(err, io.EOF) {
		return invalid(fmt.Sprintf("line %d: unterminated %s", line, what))
	}
	return &InvalidPgnError{Err: err}
}

func isResultToken(tok []byte) bool {
	switch string(tok) {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDelimiter(b byte) bool {
	switch b {
	case '{', '}', '(', ')', '[', ']', ';', '$', '!', '?', '%':
		return true
	}
	return false
}

package san

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid san")

type Kind uint8

const (
	KindNormal Kind = iota
	KindCastleShort
	KindCastleLong
	KindNull
)

type Role byte

const (
	NoRole Role = 0
	Pawn   Role = 'P'
	Knight Role = 'N'
	Bishop Role = 'B'
	Rook   Role = 'R'
	Queen  Role = 'Q'
	King   Role = 'K'
)

type Suffix uint8

const (
	SuffixNone Suffix = iota
	SuffixCheck
	SuffixMate
)

func (s Suffix) String() string {
	switch s {
	case SuffixCheck:
		return "+"
	case SuffixMate:
		return "#"
	default:
		return ""
	}
}

// San is a move as written, before it is resolved against a position.
// File and Rank hold the optional disambiguation (0 when absent).
type San struct {
	Kind      Kind
	Role      Role
	File      byte
	Rank      byte
	Capture   bool
	ToFile    byte
	ToRank    byte
	Promotion Role
}

// SanPlus is a San with its check or mate marker. Two values compare equal
// with == exactly when they print the same.
type SanPlus struct {
	San    San
	Suffix Suffix
}

func (s San) String() string {
	switch s.Kind {
	case KindCastleShort:
		return "O-O"
	case KindCastleLong:
		return "O-O-O"
	case KindNull:
		return "--"
	}
	var b strings.Builder
	if s.Role != Pawn && s.Role != NoRole {
		b.WriteByte(byte(s.Role))
	}
	if s.File != 0 {
		b.WriteByte(s.File)
	}
	if s.Rank != 0 {
		b.WriteByte(s.Rank)
	}
	if s.Capture {
		b.WriteByte('x')
	}
	b.WriteByte(s.ToFile)
	b.WriteByte(s.ToRank)
	if s.Promotion != NoRole {
		b.WriteByte('=')
		b.WriteByte(byte(s.Promotion))
	}
	return b.String()
}

func (m SanPlus) String() string { return m.San.String() + m.Suffix.String() }

// Square returns the destination square ("e4"), empty for castling and null moves.
func (s San) Square() string {
	if s.Kind != KindNormal {
		return ""
	}
	return string([]byte{s.ToFile, s.ToRank})
}

// Parse reads a single SAN token such as "Nbxd7+", "e8=Q#", "O-O" or "--".
// Annotation glyphs (!, ?) must already be stripped.
func Parse(token string) (SanPlus, error) {
	s := strings.TrimSpace(token)
	var out SanPlus
	switch {
	case strings.HasSuffix(s, "#"):
		out.Suffix = SuffixMate
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "+"):
		out.Suffix = SuffixCheck
		s = s[:len(s)-1]
	}
	if s == "" {
		return SanPlus{}, fmt.Errorf("%w: %q", ErrInvalid, token)
	}

	switch s {
	case "O-O", "0-0":
		out.San = San{Kind: KindCastleShort}
		return out, nil
	case "O-O-O", "0-0-0":
		out.San = San{Kind: KindCastleLong}
		return out, nil
	case "--", "Z0":
		if out.Suffix != SuffixNone {
			return SanPlus{}, fmt.Errorf("%w: %q", ErrInvalid, token)
		}
		out.San = San{Kind: KindNull}
		return out, nil
	}

	mv, ok := parseNormal(s)
	if !ok {
		return SanPlus{}, fmt.Errorf("%w: %q", ErrInvalid, token)
	}
	out.San = mv
	return out, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(token string) SanPlus {
	m, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseList parses whitespace separated SAN tokens.
func ParseList(tokens string) ([]SanPlus, error) {
	fields := strings.Fields(tokens)
	out := make([]SanPlus, 0, len(fields))
	for _, f := range fields {
		m, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func parseNormal(s string) (San, bool) {
	mv := San{Kind: KindNormal, Role: Pawn}

	if n := len(s); n >= 2 && isPromotionRole(s[n-1]) {
		mv.Promotion = Role(s[n-1])
		s = s[:n-1]
		s = strings.TrimSuffix(s, "=")
	}
	if len(s) < 2 {
		return San{}, false
	}
	if isRole(s[0]) {
		mv.Role = Role(s[0])
		s = s[1:]
	}
	if len(s) < 2 {
		return San{}, false
	}
	to := s[len(s)-2:]
	if !isFile(to[0]) || !isRank(to[1]) {
		return San{}, false
	}
	mv.ToFile, mv.ToRank = to[0], to[1]
	s = s[:len(s)-2]

	if strings.HasSuffix(s, "x") || strings.HasSuffix(s, ":") {
		mv.Capture = true
		s = s[:len(s)-1]
	}
	switch len(s) {
	case 0:
	case 1:
		switch {
		case isFile(s[0]):
			mv.File = s[0]
		case isRank(s[0]):
			mv.Rank = s[0]
		default:
			return San{}, false
		}
	case 2:
		if !isFile(s[0]) || !isRank(s[1]) {
			return San{}, false
		}
		mv.File, mv.Rank = s[0], s[1]
	default:
		return San{}, false
	}

	if mv.Role == Pawn {
		if mv.Rank != 0 {
			return San{}, false
		}
		if mv.Capture && mv.File == 0 {
			return San{}, false
		}
		if mv.Promotion != NoRole && mv.ToRank != '8' && mv.ToRank != '1' {
			return San{}, false
		}
	} else if mv.Promotion != NoRole {
		return San{}, false
	}
	return mv, true
}

func isRole(c byte) bool {
	switch c {
	case 'N', 'B', 'R', 'Q', 'K':
		return true
	}
	return false
}

func isPromotionRole(c byte) bool {
	switch c {
	case 'N', 'B', 'R', 'Q':
		return true
	}
	return false
}

func isFile(c byte) bool { return c >= 'a' && c <= 'h' }
func isRank(c byte) bool { return c >= '1' && c <= '8' }

package pgn

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// HeaderKey names the tags a game record understands. Anything else is ignored.
type HeaderKey uint8

const (
	KeyUnknown HeaderKey = iota
	KeyEvent
	KeySite
	KeyDate
	KeyRound
	KeyWhite
	KeyBlack
	KeyResult
)

// SevenTagRoster is the serialization order of the known tags.
var SevenTagRoster = []HeaderKey{KeyEvent, KeySite, KeyRound, KeyDate, KeyWhite, KeyBlack, KeyResult}

var headerKeyNames = [...]string{
	KeyUnknown: "",
	KeyEvent:   "Event",
	KeySite:    "Site",
	KeyDate:    "Date",
	KeyRound:   "Round",
	KeyWhite:   "White",
	KeyBlack:   "Black",
	KeyResult:  "Result",
}

func ParseHeaderKey(key []byte) HeaderKey {
	for k, name := range headerKeyNames {
		if k != int(KeyUnknown) && string(key) == name {
			return HeaderKey(k)
		}
	}
	return KeyUnknown
}

func (k HeaderKey) String() string { return headerKeyNames[k] }

// Tag is a header outside the seven tag roster, kept as read.
type Tag struct {
	Key   string
	Value string
}

// RawHeader is a tag value exactly as it appeared between the quotes.
type RawHeader []byte

// Decode resolves \" and \\ escapes.
func (h RawHeader) Decode() []byte {
	if bytes.IndexByte(h, '\\') < 0 {
		return h
	}
	out := make([]byte, 0, len(h))
	for i := 0; i < len(h); i++ {
		if h[i] == '\\' && i+1 < len(h) && (h[i+1] == '"' || h[i+1] == '\\') {
			i++
		}
		out = append(out, h[i])
	}
	return out
}

// DecodeUTF8 returns the decoded value as a string, or false when it is not valid UTF-8.
func (h RawHeader) DecodeUTF8() (string, bool) {
	b := h.Decode()
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// EscapeValue prepares a string for use between tag quotes.
func EscapeValue(s string) string {
	if !strings.ContainsAny(s, "\"\\") {
		return s
	}
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// FormatHeader renders one tag pair line without the trailing newline.
func FormatHeader(key, value string) string {
	return "[" + key + " \"" + EscapeValue(value) + "\"]"
}

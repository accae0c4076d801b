package pgn

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/rooky/internal/san"
)

type recordingVisitor struct {
	begins  int
	headers map[string]string
	moves   []san.SanPlus
}

func (v *recordingVisitor) BeginGame() {
	v.begins++
	v.headers = map[string]string{}
	v.moves = nil
}

func (v *recordingVisitor) Header(key []byte, value RawHeader) {
	v.headers[string(key)] = string(value.Decode())
}

func (v *recordingVisitor) San(m san.SanPlus) { v.moves = append(v.moves, m) }

func (v *recordingVisitor) EndGame() []san.SanPlus { return v.moves }

func movesString(moves []san.SanPlus) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func TestReadGameHeadersAndMoves(t *testing.T) {
	src := "[Event \"Test \\\"Open\\\"\"]\n[Site \"?\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5 1-0\n"
	v := &recordingVisitor{}
	moves, ok, err := NewBytesReader([]byte(src)).ReadGame(v)
	if err != nil || !ok {
		t.Fatalf("ReadGame: ok=%v err=%v", ok, err)
	}
	if got := movesString(moves); got != "e4 e5 Nf3 Nc6 Bb5" {
		t.Fatalf("moves = %q", got)
	}
	if v.headers["Event"] != `Test "Open"` || v.headers["Site"] != "?" {
		t.Fatalf("headers = %v", v.headers)
	}
}

func TestReadGameSkipsAnnotations(t *testing.T) {
	src := `1. e4 {best by test} e5!? 2. Nf3 $1 (2. f4 exf4 (2... d5) 3. Nf3) Nc6 ; line comment
3... a6?! 4.Ba4 *`
	moves, ok, err := NewBytesReader([]byte(src)).ReadGame(&MoveCollector{})
	if err != nil || !ok {
		t.Fatalf("ReadGame: ok=%v err=%v", ok, err)
	}
	if got := movesString(moves); got != "e4 e5 Nf3 Nc6 a6 Ba4" {
		t.Fatalf("moves = %q", got)
	}
}

func TestReadGameMultipleGames(t *testing.T) {
	src := "[Event \"A\"]\n\n1. d4 d5 1/2-1/2\n\n[Event \"B\"]\n\n1. c4 0-1\n\n{trailing}\n"
	r := NewBytesReader([]byte(src))
	v := &recordingVisitor{}
	var events []string
	var counts []int
	err := r.ReadAll(v, func(moves []san.SanPlus) error {
		events = append(events, v.headers["Event"])
		counts = append(counts, len(moves))
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if strings.Join(events, ",") != "A,B" || counts[0] != 2 || counts[1] != 1 {
		t.Fatalf("events=%v counts=%v", events, counts)
	}
	if r.Games() != 2 {
		t.Fatalf("Games() = %d, want 2", r.Games())
	}
}

func TestReadGameHeaderStartsNextGame(t *testing.T) {
	src := "1. e4 e5\n[Event \"next\"]\n1. d4\n"
	r := NewBytesReader([]byte(src))
	first, ok, err := r.ReadGame(&MoveCollector{})
	if err != nil || !ok || len(first) != 2 {
		t.Fatalf("first game: moves=%v ok=%v err=%v", first, ok, err)
	}
	v := &recordingVisitor{}
	second, ok, err := r.ReadGame(v)
	if err != nil || !ok || len(second) != 1 || v.headers["Event"] != "next" {
		t.Fatalf("second game: moves=%v ok=%v err=%v headers=%v", second, ok, err, v.headers)
	}
	if _, ok, err := r.ReadGame(v); ok || err != nil {
		t.Fatalf("expected exhausted reader, ok=%v err=%v", ok, err)
	}
}

func TestReadGameEmptyInput(t *testing.T) {
	for _, src := range []string{"", "  \n\n", "\xEF\xBB\xBF\n", "% escaped line\n"} {
		_, ok, err := NewBytesReader([]byte(src)).ReadGame(&MoveCollector{})
		if ok || err != nil {
			t.Fatalf("input %q: ok=%v err=%v", src, ok, err)
		}
	}
}

func TestReadGameHeadersWithoutMoves(t *testing.T) {
	moves, ok, err := NewBytesReader([]byte("[Event \"x\"]\n")).ReadGame(&MoveCollector{})
	if err != nil || !ok || len(moves) != 0 {
		t.Fatalf("moves=%v ok=%v err=%v", moves, ok, err)
	}
}

func TestReadGameInvalid(t *testing.T) {
	cases := []string{
		"[Event \"open",
		"[Event open]",
		"1. e4 {never closed",
		"1. e4 (1. d4 d5",
		"1. e4 Xx9",
		"1. e4 }",
	}
	for _, src := range cases {
		_, _, err := NewBytesReader([]byte(src)).ReadGame(&MoveCollector{})
		if !errors.Is(err, ErrInvalidPgn) {
			t.Fatalf("input %q: err = %v, want ErrInvalidPgn", src, err)
		}
	}
}

func TestMoveCollectorDoesNotAliasGames(t *testing.T) {
	r := NewBytesReader([]byte("1. e4 e5 *\n1. d4 *\n"))
	c := &MoveCollector{}
	first, _, _ := r.ReadGame(c)
	_, _, _ = r.ReadGame(c)
	if movesString(first) != "e4 e5" {
		t.Fatalf("first game was overwritten: %q", movesString(first))
	}
}

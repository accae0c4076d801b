package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/park285/rooky/internal/openings"
	"github.com/park285/rooky/internal/pgn"
	"github.com/park285/rooky/internal/san"
)

const worldChampionship = `[Event "FIDE World Championship"]
[Site "New York, NY USA"]
[Round "5.2"]
[Date "2023.10.15"]
[White "Carlsen, Magnus"]
[Black "Nakamura, Hikaru"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 Nf6 4. O-O Be7 5. Re1 O-O 6. d3 b5 7. Bb3 d6 8. c3 Na5 9. Bc2 c5 10. Nbd2 Nc6 11. Nf1 Re8 12. Ng3 Bf8 13. h3 h6 14. d4 exd4 15. cxd4 cxd4 16. Nxd4 Nxd4 17. Qxd4 Be6 18. Bg5 Qb6 19. Qxb6 axb6 20. Bxf6 gxf6 21. Rad1 Bg7 22. Rxd6 Bxb2 23. Rd2 Bg7 24. Ne2 Be5 25. f4 Bc7 26. e5 fxe5 27. fxe5 Bxe5 28. Nf4 Bf6 29. Nd5 Bxd5 30. Rxd5 Re6 31. Rxb5 Rc8 32. Bb3 Rc1+ 33. Kh2 Rc2 34. Rxb6 Rxa2 35. Rb8+ Kh7 36. Bxf7 Ra1 37. Be8 Rg6 38. Bxg6+ fxg6 39. Rxg6 1-0
`

func movetext(src string) string {
	_, body, _ := strings.Cut(src, "\n\n")
	body = strings.TrimSuffix(strings.TrimSpace(body), "1-0")
	var out []string
	for _, f := range strings.Fields(body) {
		if strings.HasSuffix(f, ".") {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func TestParseWorldChampionshipGame(t *testing.T) {
	g, err := ParseString(worldChampionship)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Moves) != 77 || (len(g.Moves)+1)/2 != 39 {
		t.Fatalf("expected 77 plies in 39 move pairs, got %d", len(g.Moves))
	}
	if g.Outcome != pgn.WhiteWins {
		t.Fatalf("outcome = %v", g.Outcome)
	}
	if g.White != "Carlsen, Magnus" || g.Black != "Nakamura, Hikaru" {
		t.Fatalf("players = %q vs %q", g.White, g.Black)
	}
	if g.Event != pgn.NamedEvent("FIDE World Championship") || g.Site != pgn.NamedSite("New York, NY USA") || g.Round != pgn.NamedRound("5.2") {
		t.Fatalf("tags = %+v %+v %+v", g.Event, g.Site, g.Round)
	}
	if !g.Date.Equal(time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", g.Date)
	}
}

func TestBuiltGameMatchesParsed(t *testing.T) {
	built := New().
		AddEvent("FIDE World Championship").
		AddSite("New York, NY USA").
		AddRound("5.2").
		AddDate(time.Date(2023, 10, 15, 18, 30, 0, 0, time.UTC)).
		AddWhiteName("Carlsen, Magnus").
		AddBlackName("Nakamura, Hikaru").
		AddResult(pgn.WhiteWins)
	moves, err := san.ParseList(movetext(worldChampionship))
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	for _, m := range moves {
		built.NewMove(m)
	}

	parsed, err := ParseString(worldChampionship)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !built.Equal(parsed) {
		t.Fatalf("built game differs from parsed game")
	}
	if got := built.ToPGN(); got != worldChampionship {
		t.Fatalf("ToPGN mismatch:\n%s\nwant:\n%s", got, worldChampionship)
	}
	if parsed.String() != worldChampionship {
		t.Fatalf("String() should equal ToPGN()")
	}
}

func TestRoundTripLaw(t *testing.T) {
	g := New().AddEvent("?").AddSite("?").AddRound("-").AddResult(pgn.Ongoing).
		AddWhiteName(`Alice "The Rook"`).AddBlackName(`Bob \ Co`)
	g.NewMove(san.MustParse("e4")).NewMove(san.MustParse("e5")).NewMove(san.MustParse("Qh5"))

	text := g.ToPGN()
	for _, want := range []string{`[Event "?"]`, `[Site "?"]`, `[Round "-"]`, `[Result "*"]`, `[White "Alice \"The Rook\""]`} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %s in\n%s", want, text)
		}
	}
	back, err := ParseString(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !back.Equal(g) {
		t.Fatalf("round trip changed the game:\n%s\n%s", text, back.ToPGN())
	}
	if back.Event != pgn.UnknownEvent() || back.Site != pgn.UnknownSite() || back.Round != pgn.UnknownRound() || back.Outcome != pgn.Ongoing {
		t.Fatalf("sentinels not restored: %+v", back)
	}
}

func TestOddMoveCountSerialization(t *testing.T) {
	g := New().AddDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	g.NewMove(san.MustParse("e4")).NewMove(san.MustParse("e5")).NewMove(san.MustParse("Nf3"))
	_, body, _ := strings.Cut(g.ToPGN(), "\n\n")
	if body != "1. e4 e5 2. Nf3 1/2-1/2\n" {
		t.Fatalf("movetext = %q", body)
	}
}

func TestDefaultsAndUnknownHeaders(t *testing.T) {
	g, err := ParseString("[Annotator \"x\"]\n[Date \"2023.??.??\"]\n\n1. d4 *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Event != pgn.CasualEvent() || g.Site != pgn.UnknownSite() || g.Round != pgn.UnknownRound() {
		t.Fatalf("unknown header touched known fields: %+v", g)
	}
	if !g.Date.Equal(pgn.DefaultDate) {
		t.Fatalf("unparsable date should fall back, got %v", g.Date)
	}
	if v, ok := g.Tag("Annotator"); !ok || v != "x" {
		t.Fatalf("Annotator = %q, %v", v, ok)
	}
	if g.Outcome != pgn.Draw {
		t.Fatalf("missing Result tag keeps the default outcome, got %v", g.Outcome)
	}
}

func TestBadHeaderValuesFallBack(t *testing.T) {
	g, err := Parse([]byte("[White \"\xff\xfe\"]\n[Result \"2-0\"]\n\n1. e4"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.White != "" || g.Outcome != pgn.Draw {
		t.Fatalf("bad header values must be ignored: white=%q outcome=%v", g.White, g.Outcome)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "[Event \"only headers\"]\n\n*", "{just a comment}"} {
		if _, err := ParseString(src); !errors.Is(err, pgn.ErrNotFound) {
			t.Fatalf("input %q: err = %v, want ErrNotFound", src, err)
		}
	}
	if _, err := ParseString("1. e4 {open"); !errors.Is(err, pgn.ErrInvalidPgn) {
		t.Fatalf("want ErrInvalidPgn, got %v", err)
	}
	if g := ParseOr([]byte("junk {")); len(g.Moves) != 0 || g.Event != pgn.CasualEvent() {
		t.Fatalf("ParseOr should fall back to a new game")
	}
}

func TestPositions(t *testing.T) {
	g, err := ParseString(worldChampionship)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	positions := g.Positions()
	if len(positions) != 78 {
		t.Fatalf("expected 78 positions, got %d", len(positions))
	}
	if !strings.HasPrefix(positions[0].String(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("first position is not the start position: %s", positions[0])
	}
	if !g.Playable() {
		t.Fatalf("every move should be playable")
	}

	broken := New()
	broken.NewMove(san.MustParse("e4")).NewMove(san.MustParse("e4")).NewMove(san.MustParse("e5"))
	if n := len(broken.Positions()); n != 3 {
		t.Fatalf("unplayable move should be skipped, got %d positions", n)
	}
	if broken.Playable() {
		t.Fatalf("broken game reported playable")
	}
}

func TestPlayMove(t *testing.T) {
	g := New()
	if m, err := g.PlayMove("e2e4"); err != nil || m.String() != "e4" {
		t.Fatalf("PlayMove(e2e4) = %v, %v", m, err)
	}
	if m, err := g.PlayMove("e5"); err != nil || m.String() != "e5" {
		t.Fatalf("PlayMove(e5) = %v, %v", m, err)
	}
	if _, err := g.PlayMove("Qh5"); err != nil {
		t.Fatalf("PlayMove(Qh5): %v", err)
	}
	if _, err := g.PlayMove("Nc6"); err != nil {
		t.Fatalf("PlayMove(Nc6): %v", err)
	}
	if _, err := g.PlayMove("Bc4"); err != nil {
		t.Fatalf("PlayMove(Bc4): %v", err)
	}
	if _, err := g.PlayMove("Nf6"); err != nil {
		t.Fatalf("PlayMove(Nf6): %v", err)
	}
	m, err := g.PlayMove("h5f7")
	if err != nil || m.String() != "Qxf7#" {
		t.Fatalf("PlayMove(h5f7) = %v, %v", m, err)
	}
	if len(g.Moves) != 7 {
		t.Fatalf("expected 7 moves, got %d", len(g.Moves))
	}
	if _, err := g.PlayMove("e4"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("move after mate should fail, got %v", err)
	}
	if _, err := New().PlayMove(" "); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("blank input should fail, got %v", err)
	}
}

func TestLegalMovesAndFEN(t *testing.T) {
	g := New()
	if n := len(g.LegalMoves()); n != 20 {
		t.Fatalf("expected 20 legal moves at start, got %d", n)
	}
	g.NewMove(san.MustParse("e4"))
	if !strings.Contains(g.FEN(), " b ") {
		t.Fatalf("black should be to move: %s", g.FEN())
	}
}

func TestOpenings(t *testing.T) {
	g, err := ParseString(worldChampionship)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// table order decides, so the bare 1. e4 row comes first
	o, ok := g.Opening()
	if !ok || o.Code != "B00" || o.Title() != "King's Pawn" {
		t.Fatalf("Opening = %+v, %v", o, ok)
	}
	if longest, ok := openings.Classify(g.Moves); !ok || longest.Code != "C65" {
		t.Fatalf("Classify = %+v, %v", longest, ok)
	}
	r, ok := g.EngineOpening()
	if !ok || !strings.HasPrefix(r.Code, "C6") || r.Name != "Ruy Lopez" {
		t.Fatalf("EngineOpening = %+v, %v", r, ok)
	}
}

func TestTroonGambitOpening(t *testing.T) {
	g := New()
	for _, m := range []string{"e4", "g5", "d4", "h6", "h4", "g4"} {
		g.NewMove(san.MustParse(m))
	}
	exact, ok := openings.Lookup(g.Moves)
	if !ok || exact.Code != "B00" || exact.Title() != "Borg Defense: Troon Gambit" {
		t.Fatalf("Lookup = %+v, %v", exact, ok)
	}
	first, ok := g.Opening()
	if !ok || first.Title() != "Borg Defense" {
		t.Fatalf("Opening = %+v, %v", first, ok)
	}
	if _, ok := New().Opening(); ok {
		t.Fatalf("a game without moves has no opening")
	}
}

func TestExtraTags(t *testing.T) {
	src := "[Event \"Rated Blitz game\"]\n[Site \"Wijk aan Zee NLD\"]\n[TimeControl \"180+2\"]\n[Termination \"Time forfeit\"]\n[WhiteElo \"2100\"]\n\n1. e4 e5 0-1\n"
	g, err := ParseString(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Extra) != 3 || g.Extra[0].Key != "TimeControl" || g.Extra[2] != (pgn.Tag{Key: "WhiteElo", Value: "2100"}) {
		t.Fatalf("extra = %+v", g.Extra)
	}
	if term, ok := g.Termination(); !ok || term != pgn.TerminationTimeForfeit {
		t.Fatalf("Termination = %v, %v", term, ok)
	}
	if tc, ok := g.TimeControl(); !ok || tc.Kind != pgn.TimeControlIncremental || tc.Seconds != 180 || tc.Increment != 2 {
		t.Fatalf("TimeControl = %+v, %v", tc, ok)
	}
	if c, ok := g.Country(); !ok || c.String() != "NLD" {
		t.Fatalf("Country = %v, %v", c, ok)
	}
	if strings.Contains(g.ToPGN(), "WhiteElo") {
		t.Fatalf("extra tags must stay out of the serialized roster")
	}

	plain := New()
	if _, ok := plain.Termination(); ok {
		t.Fatalf("no Termination tag")
	}
	if _, ok := plain.TimeControl(); ok {
		t.Fatalf("no TimeControl tag")
	}
	plain.Extra = []pgn.Tag{{Key: "Termination", Value: "resigned"}, {Key: "TimeControl", Value: "fast"}}
	if _, ok := plain.Termination(); ok {
		t.Fatalf("unknown termination accepted")
	}
	if _, ok := plain.TimeControl(); ok {
		t.Fatalf("bad time control accepted")
	}
}

func TestEventNamesSurviveRoundTrip(t *testing.T) {
	g, err := ParseString("[Event \"Casual Chess Club Open\"]\n\n1. e4 *\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Event != pgn.NamedEvent("Casual Chess Club Open") {
		t.Fatalf("event = %+v", g.Event)
	}
	built := New().AddEvent("Casual Chess Club Open").NewMove(san.MustParse("e4"))
	if built.Event != g.Event {
		t.Fatalf("AddEvent = %+v", built.Event)
	}
	back, err := ParseString(built.ToPGN())
	if err != nil || !back.Equal(built) {
		t.Fatalf("round trip: %+v, %v", back, err)
	}
	if casual := New().AddEvent("Casual Game"); casual.Event != pgn.CasualEvent() {
		t.Fatalf("sentinel = %+v", casual.Event)
	}
}

func TestVisitorReuseAcrossGames(t *testing.T) {
	r := pgn.NewBytesReader([]byte("[White \"A\"]\n[ECO \"A00\"]\n\n1. e4 1-0\n\n[Black \"B\"]\n\n1. d4 0-1\n"))
	g := New()
	if _, ok, err := r.ReadGame(g); !ok || err != nil || g.White != "A" || len(g.Extra) != 1 {
		t.Fatalf("first game: %v %v %+v", ok, err, g)
	}
	if _, ok, err := r.ReadGame(g); !ok || err != nil || g.White != "" || g.Black != "B" || g.Outcome != pgn.BlackWins || g.Extra != nil {
		t.Fatalf("second game should start from defaults: %v %v %+v", ok, err, g)
	}
}

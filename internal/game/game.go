package game

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/obslog"
	"github.com/park285/rooky/internal/openings"
	"github.com/park285/rooky/internal/pgn"
	"github.com/park285/rooky/internal/san"
)

// Game is a single recorded game: the seven tag roster plus the mainline.
// A Game has one owner; it is not safe for concurrent mutation.
type Game struct {
	Event   pgn.Event
	Site    pgn.Site
	Round   pgn.Round
	Date    time.Time
	White   string
	Black   string
	Outcome pgn.Result
	Moves   []san.SanPlus

	// Extra holds the other headers in input order. It is informational:
	// Equal and ToPGN look at the roster only.
	Extra []pgn.Tag
}

// New returns a casual game dated today with no moves, scored as a draw.
func New() *Game {
	return &Game{
		Event:   pgn.CasualEvent(),
		Site:    pgn.UnknownSite(),
		Round:   pgn.UnknownRound(),
		Date:    today(),
		Outcome: pgn.Draw,
	}
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse reads the first game in data. A game without moves is ErrNotFound.
func Parse(data []byte) (*Game, error) {
	g := New()
	moves, ok, err := pgn.NewBytesReader(data).ReadGame(g)
	if err != nil {
		return nil, err
	}
	if !ok || len(moves) == 0 {
		return nil, &pgn.NotFoundError{Reason: "no moves found"}
	}
	return g, nil
}

func ParseString(s string) (*Game, error) { return Parse([]byte(s)) }

// ParseOr parses data and falls back to New when it holds no usable game.
func ParseOr(data []byte) *Game {
	g, err := Parse(data)
	if err != nil {
		return New()
	}
	return g
}

// Builders. Tag values go through the same parsers used for headers, so a
// built game and its parsed PGN compare equal.

func (g *Game) AddEvent(event string) *Game {
	g.Event = pgn.ParseEvent(event)
	return g
}

func (g *Game) AddSite(site string) *Game {
	g.Site = pgn.ParseSite(site)
	return g
}

func (g *Game) AddRound(round string) *Game {
	g.Round = pgn.ParseRound(round)
	return g
}

func (g *Game) AddDate(date time.Time) *Game {
	g.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return g
}

func (g *Game) AddWhiteName(name string) *Game {
	g.White = name
	return g
}

func (g *Game) AddBlackName(name string) *Game {
	g.Black = name
	return g
}

func (g *Game) AddResult(result pgn.Result) *Game {
	g.Outcome = result
	return g
}

func (g *Game) NewMove(m san.SanPlus) *Game {
	g.Moves = append(g.Moves, m)
	return g
}

// Equal compares the roster and the moves, with dates compared by calendar day.
func (g *Game) Equal(o *Game) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.Event != o.Event || g.Site != o.Site || g.Round != o.Round ||
		g.White != o.White || g.Black != o.Black || g.Outcome != o.Outcome ||
		!g.Date.Equal(o.Date) || len(g.Moves) != len(o.Moves) {
		return false
	}
	for i := range g.Moves {
		if g.Moves[i] != o.Moves[i] {
			return false
		}
	}
	return true
}

// Opening returns the first ECO table row, in table order, whose moves open the game.
func (g *Game) Opening() (openings.Opening, bool) { return openings.FirstMatch(g.Moves) }

// Tag returns the value of a header outside the roster.
func (g *Game) Tag(key string) (string, bool) {
	for _, t := range g.Extra {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

func (g *Game) Termination() (pgn.Termination, bool) {
	v, ok := g.Tag("Termination")
	if !ok {
		return pgn.TerminationNormal, false
	}
	t, err := pgn.ParseTermination(v)
	if err != nil {
		obslog.L().Debug("pgn_termination_invalid", zap.String("value", v), zap.Error(err))
		return pgn.TerminationNormal, false
	}
	return t, true
}

func (g *Game) TimeControl() (pgn.TimeControl, bool) {
	v, ok := g.Tag("TimeControl")
	if !ok {
		return pgn.TimeControl{}, false
	}
	tc, err := pgn.ParseTimeControl(v)
	if err != nil {
		obslog.L().Debug("pgn_time_control_invalid", zap.String("value", v), zap.Error(err))
		return pgn.TimeControl{}, false
	}
	return tc, true
}

// Country is the IOC code at the end of the Site tag.
func (g *Game) Country() (pgn.CountryCode, bool) { return g.Site.Country() }

// BeginGame resets the record to New's defaults so one Game can be reused
// across a multi-game stream.
func (g *Game) BeginGame() { *g = *New() }

func (g *Game) Header(key []byte, value pgn.RawHeader) {
	k := pgn.ParseHeaderKey(key)
	text, ok := value.DecodeUTF8()
	if !ok {
		obslog.L().Debug("pgn_header_invalid_utf8", zap.ByteString("key", key))
		return
	}
	switch k {
	case pgn.KeyUnknown:
		g.Extra = append(g.Extra, pgn.Tag{Key: string(key), Value: text})
	case pgn.KeyEvent:
		g.Event = pgn.ParseEvent(text)
	case pgn.KeySite:
		g.Site = pgn.ParseSite(text)
	case pgn.KeyRound:
		g.Round = pgn.ParseRound(text)
	case pgn.KeyDate:
		g.Date = pgn.ParseDateOr(text)
	case pgn.KeyWhite:
		g.White = text
	case pgn.KeyBlack:
		g.Black = text
	case pgn.KeyResult:
		g.Outcome = pgn.ParseResultOr(strings.TrimSpace(text), g.Outcome)
	}
}

func (g *Game) San(m san.SanPlus) { g.Moves = append(g.Moves, m) }

func (g *Game) EndGame() []san.SanPlus { return g.Moves }

package game

import (
	"strconv"
	"strings"

	"github.com/park285/rooky/internal/pgn"
)

// ToPGN renders the game as export text: the seven tags, a blank line and
// numbered movetext closed by the result token.
func (g *Game) ToPGN() string {
	var b strings.Builder
	for _, k := range pgn.SevenTagRoster {
		b.WriteString(pgn.FormatHeader(k.String(), g.tagValue(k)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for i := 0; i < len(g.Moves); i += 2 {
		b.WriteString(strconv.Itoa(i/2 + 1))
		b.WriteString(". ")
		b.WriteString(g.Moves[i].String())
		b.WriteByte(' ')
		if i+1 >= len(g.Moves) {
			break
		}
		b.WriteString(g.Moves[i+1].String())
		b.WriteByte(' ')
	}
	b.WriteString(g.Outcome.String())
	b.WriteByte('\n')
	return b.String()
}

func (g *Game) String() string { return g.ToPGN() }

func (g *Game) tagValue(k pgn.HeaderKey) string {
	switch k {
	case pgn.KeyEvent:
		return g.Event.String()
	case pgn.KeySite:
		return g.Site.String()
	case pgn.KeyRound:
		return g.Round.String()
	case pgn.KeyDate:
		return pgn.FormatDate(g.Date)
	case pgn.KeyWhite:
		return g.White
	case pgn.KeyBlack:
		return g.Black
	case pgn.KeyResult:
		return g.Outcome.String()
	}
	return ""
}

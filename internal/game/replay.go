package game

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"

	"github.com/park285/rooky/internal/openings"
	"github.com/park285/rooky/internal/san"
)

var ErrIllegalMove = errors.New("illegal move")

// replay plays the recorded moves through the rules engine from the
// standard start position. Moves the engine cannot resolve are skipped.
func (g *Game) replay() (*chesslib.Game, int) {
	cg := chesslib.NewGame()
	skipped := 0
	for _, m := range g.Moves {
		if m.San.Kind == san.KindNull {
			skipped++
			continue
		}
		if err := cg.PushNotationMove(m.String(), chesslib.AlgebraicNotation{}, nil); err != nil {
			skipped++
		}
	}
	return cg, skipped
}

// Positions returns the start position followed by the position after each
// move that could be played.
func (g *Game) Positions() []*chesslib.Position {
	cg, _ := g.replay()
	return cg.Positions()
}

// Playable reports whether every recorded move is legal in sequence.
func (g *Game) Playable() bool {
	_, skipped := g.replay()
	return skipped == 0
}

// FEN of the position after the last playable move.
func (g *Game) FEN() string {
	cg, _ := g.replay()
	return cg.FEN()
}

// LegalMoves lists the moves available in the current position in SAN.
func (g *Game) LegalMoves() []san.SanPlus {
	cg, _ := g.replay()
	pos := cg.Position()
	valid := pos.ValidMoves()
	out := make([]san.SanPlus, 0, len(valid))
	for i := range valid {
		m, err := san.Parse(chesslib.AlgebraicNotation{}.Encode(pos, &valid[i]))
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// PlayMove appends a move given in UCI ("e2e4") or SAN ("e4"). The stored
// move is the engine's canonical SAN, including any check marker.
func (g *Game) PlayMove(input string) (san.SanPlus, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return san.SanPlus{}, ErrIllegalMove
	}
	cg, _ := g.replay()
	pos := cg.Position()

	var (
		mv  *chesslib.Move
		err error
	)
	if isUCI(raw) {
		mv, err = chesslib.UCINotation{}.Decode(pos, raw)
	} else {
		mv, err = chesslib.AlgebraicNotation{}.Decode(pos, raw)
	}
	if err != nil {
		return san.SanPlus{}, fmt.Errorf("%w: %q", ErrIllegalMove, raw)
	}
	if err := cg.Move(mv, nil); err != nil {
		return san.SanPlus{}, fmt.Errorf("%w: %q", ErrIllegalMove, raw)
	}

	m, err := san.Parse(chesslib.AlgebraicNotation{}.Encode(pos, mv))
	if err != nil {
		return san.SanPlus{}, err
	}
	g.Moves = append(g.Moves, m)
	return m, nil
}

// isUCI matches coordinate moves such as e2e4 or e7e8q.
func isUCI(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	for i := 0; i < 4; i += 2 {
		if s[i] < 'a' || s[i] > 'h' || s[i+1] < '1' || s[i+1] > '8' {
			return false
		}
	}
	return len(s) == 4 || strings.IndexByte("qrbn", s[4]) >= 0
}

// EngineOpening classifies the replayed game with the rules engine's own
// ECO book, which is insensitive to SAN spelling.
func (g *Game) EngineOpening() (openings.Reached, bool) {
	cg, _ := g.replay()
	return openings.ByEngineMoves(cg.Moves())
}

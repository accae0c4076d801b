package external

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/game"
	"github.com/park285/rooky/internal/obslog"
	"github.com/park285/rooky/internal/pgn"
)

// gameSeparator separates games in lichess and chess.com exports.
var gameSeparator = []byte("\n\n\n")

// SplitGames cuts a multi-game export into games. Each chunk is read to its
// end, so CRLF exports and chunks holding several games lose nothing. A syntax
// error drops the rest of its chunk only; games without moves are skipped.
func SplitGames(body []byte) []*game.Game {
	var out []*game.Game
	for i, chunk := range bytes.Split(body, gameSeparator) {
		if len(bytes.TrimSpace(chunk)) == 0 {
			continue
		}
		r := pgn.NewBytesReader(chunk)
		for {
			g := game.New()
			moves, ok, err := r.ReadGame(g)
			if err != nil {
				obslog.L().Info("import_game_skipped", zap.Int("chunk", i), zap.Int("game", r.Games()), zap.Error(err))
				break
			}
			if !ok {
				break
			}
			if len(moves) == 0 {
				obslog.L().Debug("import_game_without_moves", zap.Int("chunk", i), zap.Int("game", r.Games()))
				continue
			}
			out = append(out, g)
		}
	}
	return out
}

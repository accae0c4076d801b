package external

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/game"
	"github.com/park285/rooky/internal/obslog"
)

const DefaultChessComURL = "https://api.chess.com/pub"

type ChessCom struct {
	c *Client
}

func NewChessCom(c *Client) *ChessCom { return &ChessCom{c: c} }

func monthlyPath(user string, year, month int) string {
	return fmt.Sprintf("player/%s/games/%04d/%02d/pgn", url.PathEscape(strings.TrimSpace(user)), year, month)
}

// MonthlyGames downloads one month of a player's archive as PGN.
func (cc *ChessCom) MonthlyGames(ctx context.Context, user string, year, month int) ([]*game.Game, error) {
	if strings.TrimSpace(user) == "" {
		return nil, fmt.Errorf("chess.com: username is required")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("chess.com: month %d out of range", month)
	}
	body, err := cc.c.getText(ctx, monthlyPath(user, year, month), nil)
	if err != nil {
		return nil, fmt.Errorf("chess.com %s %04d/%02d: %w", user, year, month, err)
	}
	games := SplitGames(body)
	obslog.L().Info("import_chesscom", zap.String("user", user), zap.Int("year", year), zap.Int("month", month), zap.Int("games", len(games)))
	return games, nil
}

package external

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/game"
	"github.com/park285/rooky/internal/obslog"
)

const DefaultLichessURL = "https://lichess.org/api"

type PerfType string

const (
	PerfUltraBullet    PerfType = "ultraBullet"
	PerfBullet         PerfType = "bullet"
	PerfBlitz          PerfType = "blitz"
	PerfRapid          PerfType = "rapid"
	PerfClassical      PerfType = "classical"
	PerfCorrespondence PerfType = "correspondence"
	PerfCrazyhouse     PerfType = "crazyhouse"
	PerfChess960       PerfType = "chess960"
	PerfKingOfTheHill  PerfType = "kingOfTheHill"
	PerfThreeCheck     PerfType = "threeCheck"
	PerfAntichess      PerfType = "antichess"
	PerfAtomic         PerfType = "atomic"
	PerfHorde          PerfType = "horde"
	PerfRacingKings    PerfType = "racingKings"
)

var perfTypes = []PerfType{
	PerfUltraBullet, PerfBullet, PerfBlitz, PerfRapid, PerfClassical, PerfCorrespondence, PerfCrazyhouse,
	PerfChess960, PerfKingOfTheHill, PerfThreeCheck, PerfAntichess, PerfAtomic, PerfHorde, PerfRacingKings,
}

// ParsePerfType matches lichess perf names case-insensitively.
func ParsePerfType(s string) (PerfType, error) {
	for _, p := range perfTypes {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown perf type %q", s)
}

type Sort string

const (
	SortAscending  Sort = "ascending"
	SortDescending Sort = "descending"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// LichessQuery selects games from a user's history. Zero fields are left out
// of the request, except Sort which defaults to descending.
type LichessQuery struct {
	Username string
	Max      int
	Rated    *bool
	PerfType PerfType
	Since    int64 // unix millis
	Until    int64 // unix millis
	Color    Color
	Vs       string
	Finished *bool
	Ongoing  *bool
	Sort     Sort
}

func (q LichessQuery) Path() string {
	return "games/user/" + url.PathEscape(strings.TrimSpace(q.Username))
}

func (q LichessQuery) Values() url.Values {
	v := url.Values{}
	if q.Max > 0 {
		v.Set("max", strconv.Itoa(q.Max))
	}
	if q.Rated != nil {
		v.Set("rated", strconv.FormatBool(*q.Rated))
	}
	if q.PerfType != "" {
		v.Set("perfType", string(q.PerfType))
	}
	if q.Since > 0 {
		v.Set("since", strconv.FormatInt(q.Since, 10))
	}
	if q.Until > 0 {
		v.Set("until", strconv.FormatInt(q.Until, 10))
	}
	if q.Color != "" {
		v.Set("color", string(q.Color))
	}
	if q.Vs != "" {
		v.Set("vs", q.Vs)
	}
	if q.Finished != nil {
		v.Set("finished", strconv.FormatBool(*q.Finished))
	}
	if q.Ongoing != nil {
		v.Set("ongoing", strconv.FormatBool(*q.Ongoing))
	}
	sort := q.Sort
	if sort == "" {
		sort = SortDescending
	}
	v.Set("sort", string(sort))
	return v
}

// String is the request path relative to the API root.
func (q LichessQuery) String() string { return q.Path() + "?" + q.Values().Encode() }

type Lichess struct {
	c *Client
}

func NewLichess(c *Client) *Lichess { return &Lichess{c: c} }

// GameHistory downloads the user's games as PGN and parses them.
func (l *Lichess) GameHistory(ctx context.Context, q LichessQuery) ([]*game.Game, error) {
	if strings.TrimSpace(q.Username) == "" {
		return nil, fmt.Errorf("lichess: username is required")
	}
	body, err := l.c.getText(ctx, q.Path(), q.Values())
	if err != nil {
		return nil, fmt.Errorf("lichess %s: %w", q.Username, err)
	}
	games := SplitGames(body)
	obslog.L().Info("import_lichess", zap.String("user", q.Username), zap.Int("games", len(games)), zap.Int("bytes", len(body)))
	return games, nil
}

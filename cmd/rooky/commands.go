package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/park285/rooky/internal/config"
	"github.com/park285/rooky/internal/external"
	"github.com/park285/rooky/internal/game"
	"github.com/park285/rooky/internal/note"
	"github.com/park285/rooky/internal/openings"
	"github.com/park285/rooky/internal/pgn"
	"github.com/park285/rooky/internal/pgnsource"
	"github.com/park285/rooky/internal/store"
)

type cmdEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (e *cmdEnv) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("rooky "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// eachGame reads games from the named files, or stdin when none (or "-") is given.
func (e *cmdEnv) eachGame(paths []string, fn func(*game.Game) error) (int, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	total := 0
	for _, p := range paths {
		var (
			n   int
			err error
		)
		if p == "-" {
			n, err = pgnsource.Each(e.stdin, fn)
		} else {
			n, err = pgnsource.EachInFile(p, fn)
		}
		total += n
		if err != nil {
			return total, fmt.Errorf("%s: %w", p, err)
		}
	}
	return total, nil
}

type command func(ctx context.Context, env *cmdEnv, args []string) error

var commands = map[string]command{
	"parse":     cmdParse,
	"positions": cmdPositions,
	"classify":  cmdClassify,
	"info":      cmdInfo,
	"play":      cmdPlay,
	"import":    cmdImport,
	"list":      cmdList,
	"show":      cmdShow,
	"delete":    cmdDelete,
}

func cmdParse(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("parse")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n, err := env.eachGame(fs.Args(), func(g *game.Game) error {
		_, err := fmt.Fprintln(env.stdout, g.ToPGN())
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return &pgn.NotFoundError{Reason: "no games with moves"}
	}
	return nil
}

func cmdPositions(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("positions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	first := true
	_, err := env.eachGame(fs.Args(), func(g *game.Game) error {
		if !first {
			fmt.Fprintln(env.stdout)
		}
		first = false
		for _, pos := range g.Positions() {
			if _, err := fmt.Fprintln(env.stdout, pos.String()); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func cmdClassify(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("classify")
	longest := fs.Bool("longest", false, "use the longest table row that prefixes the game")
	engine := fs.Bool("engine", false, "use the rules engine's opening book")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := env.eachGame(fs.Args(), func(g *game.Game) error {
		code, title, ok := "", "", false
		switch {
		case *engine:
			var r openings.Reached
			if r, ok = g.EngineOpening(); ok {
				code, title = r.Code, r.Title()
			}
		case *longest:
			var o openings.Opening
			if o, ok = openings.Classify(g.Moves); ok {
				code, title = o.Code, o.Title()
			}
		default:
			var o openings.Opening
			if o, ok = g.Opening(); ok {
				code, title = o.Code, o.Title()
			}
		}
		if !ok {
			code, title = "-", "unknown"
		}
		_, err := fmt.Fprintf(env.stdout, "%s\t%s\n", code, title)
		return err
	})
	return err
}

// cmdInfo prints one line per game with the tags outside the roster that
// have a known meaning.
func cmdInfo(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := env.eachGame(fs.Args(), func(g *game.Game) error {
		termination, timeControl, country := "-", "-", "-"
		if t, ok := g.Termination(); ok {
			termination = t.String()
		}
		if tc, ok := g.TimeControl(); ok {
			timeControl = tc.String()
		}
		if c, ok := g.Country(); ok {
			country = c.String()
		}
		_, err := fmt.Fprintf(env.stdout, "%s - %s\t%s\t%d\t%s\t%s\t%s\n",
			g.White, g.Black, g.Outcome, len(g.Moves), termination, timeControl, country)
		return err
	})
	return err
}

func cmdPlay(_ context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("play")
	from := fs.String("file", "", "start from the first game in this PGN file")
	legal := fs.Bool("legal", false, "print the legal moves afterwards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g := game.New()
	if *from != "" {
		found := false
		if _, err := pgnsource.EachInFile(*from, func(parsed *game.Game) error {
			if !found {
				g, found = parsed, true
			}
			return nil
		}); err != nil {
			return err
		}
		if !found {
			return &pgn.NotFoundError{Reason: "no moves found in " + *from}
		}
	}
	for _, mv := range fs.Args() {
		if _, err := g.PlayMove(mv); err != nil {
			return err
		}
	}
	if *legal {
		moves := g.LegalMoves()
		parts := make([]string, len(moves))
		for i, m := range moves {
			parts[i] = m.String()
		}
		_, err := fmt.Fprintln(env.stdout, strings.Join(parts, " "))
		return err
	}
	_, err := fmt.Fprintln(env.stdout, g.ToPGN())
	return err
}

func openStore(ctx context.Context) (*config.AppConfig, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func httpClient(cfg *config.AppConfig, baseURL string) *external.Client {
	return external.NewClient(baseURL,
		external.WithTimeout(time.Duration(cfg.HTTP.TimeoutSec)*time.Second),
		external.WithRetry(cfg.HTTP.Retry),
		external.WithUserAgent(cfg.HTTP.UserAgent),
	)
}

func cmdImport(ctx context.Context, env *cmdEnv, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(env.stderr, "usage: rooky import file|lichess|chesscom [flags]")
		return errUsage
	}
	source, args := args[0], args[1:]
	fs := env.flags("import " + source)
	originName := fs.String("origin", "", "origin recorded with each game (annotated, received, public)")

	var fetch func(ctx context.Context, cfg *config.AppConfig) ([]*game.Game, error)
	origin := note.OriginReceived
	switch source {
	case "file":
		origin = note.OriginAnnotated
		fetch = func(context.Context, *config.AppConfig) ([]*game.Game, error) {
			var games []*game.Game
			_, err := env.eachGame(fs.Args(), func(g *game.Game) error {
				games = append(games, g)
				return nil
			})
			return games, err
		}
	case "lichess":
		user := fs.String("user", "", "lichess username")
		maxGames := fs.Int("max", 0, "maximum number of games")
		perf := fs.String("perf", "", "perf type, e.g. blitz or rapid")
		color := fs.String("color", "", "only games played as white or black")
		vs := fs.String("vs", "", "only games against this opponent")
		asc := fs.Bool("asc", false, "oldest games first")
		fetch = func(ctx context.Context, cfg *config.AppConfig) ([]*game.Game, error) {
			q := external.LichessQuery{Username: *user, Max: *maxGames, Vs: *vs, Color: external.Color(strings.ToLower(*color))}
			if *perf != "" {
				p, err := external.ParsePerfType(*perf)
				if err != nil {
					return nil, err
				}
				q.PerfType = p
			}
			if *asc {
				q.Sort = external.SortAscending
			}
			return external.NewLichess(httpClient(cfg, cfg.LichessBaseURL)).GameHistory(ctx, q)
		}
	case "chesscom":
		now := time.Now().UTC()
		user := fs.String("user", "", "chess.com username")
		year := fs.Int("year", now.Year(), "archive year")
		month := fs.Int("month", int(now.Month()), "archive month")
		fetch = func(ctx context.Context, cfg *config.AppConfig) ([]*game.Game, error) {
			return external.NewChessCom(httpClient(cfg, cfg.ChessComBaseURL)).MonthlyGames(ctx, *user, *year, *month)
		}
	default:
		fmt.Fprintf(env.stderr, "rooky import: unknown source %q\n", source)
		return errUsage
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *originName != "" {
		o, err := note.ParseOrigin(*originName)
		if err != nil {
			return err
		}
		origin = o
	}

	cfg, s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	games, err := fetch(ctx, cfg)
	if err != nil {
		return err
	}
	for _, g := range games {
		if err := s.Put(ctx, note.NewEntryFromGame(g, origin)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(env.stdout, "imported %d games\n", len(games))
	return err
}

func cmdList(ctx context.Context, env *cmdEnv, args []string) error {
	fs := env.flags("list")
	origins := fs.String("origin", "", "comma separated origins to include")
	limit := fs.Int("limit", 0, "maximum number of games")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts := store.ListOptions{Limit: *limit}
	for _, name := range strings.Split(*origins, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		o, err := note.ParseOrigin(name)
		if err != nil {
			return err
		}
		opts.Origins = append(opts.Origins, o)
	}

	_, s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(ctx, opts)
	if err != nil {
		return err
	}
	for _, e := range entries {
		g := e.Game()
		opening := "-"
		if o, ok := g.Opening(); ok {
			opening = o.String()
		}
		if _, err := fmt.Fprintf(env.stdout, "%s\t%s\t%s\t%s - %s\t%s\t%s\n",
			e.ID, pgn.FormatDate(g.Date), strings.ToLower(e.Origin.String()), g.White, g.Black, g.Outcome, opening); err != nil {
			return err
		}
	}
	return nil
}

func entryID(env *cmdEnv, name string, args []string) (string, error) {
	fs := env.flags(name)
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(env.stderr, "usage: rooky %s <id>\n", name)
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func cmdShow(ctx context.Context, env *cmdEnv, args []string) error {
	id, err := entryID(env, "show", args)
	if err != nil {
		return err
	}
	_, s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return store.ErrNotFound
	}
	_, err = fmt.Fprint(env.stdout, e.Content)
	return err
}

func cmdDelete(ctx context.Context, env *cmdEnv, args []string) error {
	id, err := entryID(env, "delete", args)
	if err != nil {
		return err
	}
	_, s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Delete(ctx, id)
}

package external

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/rooky/internal/pgn"
)

const export = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abc"]
[Date "2024.03.01"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0


[Event "Rated Blitz game"]
[White "bob"]
[Black "alice"]
[Result "*"]

*


[Event "Rated Blitz game"]
[Date "2024.03.02"]
[White "bob"]
[Black "alice"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1
`

func serve(t *testing.T, h fasthttp.RequestHandler) Option {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return WithDial(func(string) (net.Conn, error) { return ln.Dial() })
}

func TestSplitGames(t *testing.T) {
	games := SplitGames([]byte(export))
	if len(games) != 2 {
		t.Fatalf("expected 2 games (empty one skipped), got %d", len(games))
	}
	if games[0].White != "alice" || games[0].Outcome != pgn.WhiteWins || len(games[0].Moves) != 7 {
		t.Fatalf("first game: %+v", games[0])
	}
	if games[1].Outcome != pgn.BlackWins || games[1].Moves[3].String() != "Qh4#" {
		t.Fatalf("trailing game without separator lost: %+v", games[1])
	}
	if len(SplitGames(nil)) != 0 {
		t.Fatalf("empty body should yield no games")
	}
}

func TestSplitGamesReadsWholeChunks(t *testing.T) {
	crlf := strings.ReplaceAll(export, "\n", "\r\n")
	if games := SplitGames([]byte(crlf)); len(games) != 2 || games[1].Moves[3].String() != "Qh4#" {
		t.Fatalf("CRLF export: got %d games", len(games))
	}
	tight := strings.ReplaceAll(export, "\n\n\n", "\n\n")
	games := SplitGames([]byte(tight))
	if len(games) != 2 || games[0].White != "alice" || games[1].White != "bob" {
		t.Fatalf("single blank line between games: got %d games", len(games))
	}
	broken := "[White \"a\"]\n\n1. e4 1-0\n\n[White \"b\"]\n\n1. d4 {open\n\n\n[White \"c\"]\n\n1. c4 0-1\n"
	games = SplitGames([]byte(broken))
	if len(games) != 2 || games[0].White != "a" || games[1].White != "c" {
		t.Fatalf("syntax error should only drop its own game: %d games", len(games))
	}
}

func TestLichessQuery(t *testing.T) {
	rated := true
	q := LichessQuery{Username: "alice", Max: 5, Rated: &rated, PerfType: PerfBlitz, Color: White}
	if q.Path() != "games/user/alice" {
		t.Fatalf("path = %q", q.Path())
	}
	v := q.Values()
	if v.Get("max") != "5" || v.Get("rated") != "true" || v.Get("perfType") != "blitz" || v.Get("color") != "white" {
		t.Fatalf("values = %v", v)
	}
	if v.Get("sort") != "descending" || v.Has("since") || v.Has("vs") {
		t.Fatalf("unset fields leaked or sort default missing: %v", v)
	}
	if got := (LichessQuery{Username: "bob", Sort: SortAscending}).String(); got != "games/user/bob?sort=ascending" {
		t.Fatalf("String = %q", got)
	}
	if p, err := ParsePerfType("KINGOFTHEHILL"); err != nil || p != PerfKingOfTheHill {
		t.Fatalf("ParsePerfType: %v %v", p, err)
	}
	if _, err := ParsePerfType("bughouse"); err == nil {
		t.Fatalf("unknown perf accepted")
	}
}

func TestLichessGameHistory(t *testing.T) {
	var gotPath, gotMax, gotAccept string
	dial := serve(t, func(ctx *fasthttp.RequestCtx) {
		gotPath = string(ctx.Path())
		gotMax = string(ctx.QueryArgs().Peek("max"))
		gotAccept = string(ctx.Request.Header.Peek("Accept"))
		ctx.SetContentType("application/x-chess-pgn")
		ctx.SetBodyString(export)
	})
	l := NewLichess(NewClient("http://lichess.test/api/", dial))
	games, err := l.GameHistory(context.Background(), LichessQuery{Username: "alice", Max: 3})
	if err != nil {
		t.Fatalf("GameHistory: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if gotPath != "/api/games/user/alice" || gotMax != "3" || gotAccept != "application/x-chess-pgn" {
		t.Fatalf("request path=%q max=%q accept=%q", gotPath, gotMax, gotAccept)
	}
	if _, err := l.GameHistory(context.Background(), LichessQuery{}); err == nil {
		t.Fatalf("missing username accepted")
	}
}

func TestChessComMonthlyGames(t *testing.T) {
	dial := serve(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/pub/player/hikaru/games/2025/02/pgn" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetBodyString(export)
	})
	cc := NewChessCom(NewClient("http://chess.test/pub", dial, WithRetry(1)))
	games, err := cc.MonthlyGames(context.Background(), "hikaru", 2025, 2)
	if err != nil || len(games) != 2 {
		t.Fatalf("MonthlyGames: %d games, %v", len(games), err)
	}

	_, err = cc.MonthlyGames(context.Background(), "hikaru", 2025, 3)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if _, err := cc.MonthlyGames(context.Background(), "hikaru", 2025, 13); err == nil {
		t.Fatalf("month 13 accepted")
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	dial := serve(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) == 1 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetBodyString("ok")
	})
	c := NewClient("http://flaky.test", dial, WithRetry(3), WithTimeout(2*time.Second))
	body, err := c.getText(context.Background(), "/x", nil)
	if err != nil || string(body) != "ok" || calls.Load() != 2 {
		t.Fatalf("retry: body=%q err=%v calls=%d", body, err, calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	dial := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(strings.Repeat("x", 1000))
	})
	c := NewClient("http://bad.test", dial, WithRetry(3))
	_, err := c.getText(context.Background(), "x", nil)
	var se *StatusError
	if !errors.As(err, &se) || len(se.Body) != 512 || calls.Load() != 1 {
		t.Fatalf("err=%v calls=%d", err, calls.Load())
	}
}

func TestClientHonoursCancelledContext(t *testing.T) {
	c := NewClient("http://never.test", WithDial(func(string) (net.Conn, error) {
		return nil, errors.New("dial refused")
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.getText(ctx, "x", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(1) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond {
		t.Fatalf("unexpected backoff")
	}
	if backoffDuration(10) != backoffDuration(6) {
		t.Fatalf("backoff should be capped")
	}
}

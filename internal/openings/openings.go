package openings

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/obslog"
	"github.com/park285/rooky/internal/pgn"
	"github.com/park285/rooky/internal/san"
)

//go:embed tables/*.tsv
var tableFS embed.FS

// Table files in classification order.
var tableFiles = []string{"tables/a.tsv", "tables/b.tsv", "tables/c.tsv", "tables/d.tsv", "tables/e.tsv"}

var (
	tableOnce sync.Once
	table     []Opening
)

// Opening is one named line of the ECO reference tables.
type Opening struct {
	Code      string
	Name      string
	Variation string
	Moves     []san.SanPlus
}

// Title is "Name: Variation", or just the name.
func (o Opening) Title() string {
	if o.Variation == "" {
		return o.Name
	}
	return o.Name + ": " + o.Variation
}

func (o Opening) String() string { return o.Code + " " + o.Title() }

// Opening doubles as the visitor that reads its own move fragment.
func (o *Opening) BeginGame()                   { o.Moves = nil }
func (o *Opening) Header([]byte, pgn.RawHeader) {}
func (o *Opening) San(m san.SanPlus)            { o.Moves = append(o.Moves, m) }
func (o *Opening) EndGame() []san.SanPlus       { return o.Moves }

// All returns the reference table, loading it on first use. Callers must not modify it.
func All() []Opening {
	tableOnce.Do(func() {
		for _, name := range tableFiles {
			data, err := tableFS.ReadFile(name)
			if err != nil {
				obslog.L().Error("opening_table_read_error", zap.String("file", name), zap.Error(err))
				continue
			}
			rows, skipped := parseTable(data)
			table = append(table, rows...)
			if skipped > 0 {
				obslog.L().Warn("opening_table_rows_skipped", zap.String("file", name), zap.Int("skipped", skipped))
			}
		}
		obslog.L().Debug("opening_table_load", zap.Int("openings", len(table)))
	})
	return table
}

// parseTable reads code<TAB>name<TAB>movetext rows after a header line.
func parseTable(data []byte) ([]Opening, int) {
	var (
		out     []Opening
		skipped int
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		o, err := parseRow(line)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, o)
	}
	return out, skipped
}

func parseRow(line string) (Opening, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return Opening{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	o := Opening{Code: strings.TrimSpace(fields[0])}
	name, variation, _ := strings.Cut(fields[1], ":")
	o.Name = strings.TrimSpace(name)
	o.Variation = strings.TrimSpace(variation)

	if _, ok, err := pgn.NewBytesReader([]byte(fields[2])).ReadGame(&o); err != nil {
		return Opening{}, err
	} else if !ok || len(o.Moves) == 0 {
		return Opening{}, fmt.Errorf("opening %s has no moves", o.Code)
	}
	return o, nil
}

// Classify returns the most specific opening whose moves are a prefix of
// moves. Among equally long matches the earlier table row wins.
func Classify(moves []san.SanPlus) (Opening, bool) {
	best := -1
	for i := range All() {
		cand := &table[i]
		if !hasPrefix(moves, cand.Moves) {
			continue
		}
		if best < 0 || len(cand.Moves) > len(table[best].Moves) {
			best = i
		}
	}
	if best < 0 {
		return Opening{}, false
	}
	return table[best], true
}

// FirstMatch returns the first opening in table order whose moves are a prefix of moves.
func FirstMatch(moves []san.SanPlus) (Opening, bool) {
	for _, o := range All() {
		if hasPrefix(moves, o.Moves) {
			return o, true
		}
	}
	return Opening{}, false
}

// Lookup returns the opening whose move list equals moves exactly.
func Lookup(moves []san.SanPlus) (Opening, bool) {
	for _, o := range All() {
		if len(o.Moves) == len(moves) && hasPrefix(moves, o.Moves) {
			return o, true
		}
	}
	return Opening{}, false
}

// ByCode lists every table row with the given ECO code.
func ByCode(code string) []Opening {
	code = strings.ToUpper(strings.TrimSpace(code))
	var out []Opening
	for _, o := range All() {
		if o.Code == code {
			out = append(out, o)
		}
	}
	return out
}

func hasPrefix(moves, prefix []san.SanPlus) bool {
	if len(prefix) == 0 || len(prefix) > len(moves) {
		return false
	}
	for i := range prefix {
		if moves[i] != prefix[i] {
			return false
		}
	}
	return true
}

package pgn

import "github.com/park285/rooky/internal/san"

// Visitor receives the events of one game in document order:
// BeginGame, then Header for every tag pair, then San for every mainline
// move, then EndGame, whose return value is handed back by Reader.ReadGame.
type Visitor interface {
	BeginGame()
	Header(key []byte, value RawHeader)
	San(m san.SanPlus)
	EndGame() []san.SanPlus
}

// MoveCollector is a Visitor that keeps the moves and drops every header.
type MoveCollector struct {
	Moves []san.SanPlus
}

func (c *MoveCollector) BeginGame()               { c.Moves = nil }
func (c *MoveCollector) Header([]byte, RawHeader) {}
func (c *MoveCollector) San(m san.SanPlus)        { c.Moves = append(c.Moves, m) }
func (c *MoveCollector) EndGame() []san.SanPlus   { return c.Moves }

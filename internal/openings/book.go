package openings

import (
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	bookOnce sync.Once
	book     *opening.BookECO
)

// Reached is an opening found through the rules engine's own ECO book. The
// book walks coordinate moves, so SAN spelling differences such as a missing
// check marker or redundant disambiguation do not affect the match.
type Reached struct {
	Code      string
	Name      string
	Variation string
}

func (r Reached) Title() string {
	if r.Variation == "" {
		return r.Name
	}
	return r.Name + ": " + r.Variation
}

func loadBook() *opening.BookECO {
	bookOnce.Do(func() {
		book = opening.NewBookECO()
	})
	return book
}

// ByEngineMoves looks up the deepest catalogued opening along an engine move
// sequence.
func ByEngineMoves(moves []*chesslib.Move) (Reached, bool) {
	if len(moves) == 0 {
		return Reached{}, false
	}
	o := loadBook().Find(moves)
	if o == nil {
		return Reached{}, false
	}
	name, variation, _ := strings.Cut(o.Title(), ":")
	return Reached{
		Code:      o.Code(),
		Name:      strings.TrimSpace(name),
		Variation: strings.TrimSpace(variation),
	}, true
}

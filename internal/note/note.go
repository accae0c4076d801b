package note

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/park285/rooky/internal/game"
)

const (
	// KindTextNote is the note kind games are published under.
	KindTextNote = 1

	// StoreName and SchemaVersion identify the local game library.
	StoreName     = "rooky_games"
	SchemaVersion = 2
)

// gameNamespace scopes deterministic note ids.
var gameNamespace = uuid.MustParse("5b0f7c52-63f4-4c8e-9d1c-2a8e4b1f6e07")

// Note is the unsigned event envelope a game travels in.
type Note struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey,omitempty"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
}

// FromGame wraps a game. created_at is the game date at midnight UTC and the
// id is derived from the payload, so the same game always yields the same id.
func FromGame(g *game.Game) Note {
	n := Note{
		CreatedAt: time.Date(g.Date.Year(), g.Date.Month(), g.Date.Day(), 0, 0, 0, 0, time.UTC).Unix(),
		Kind:      KindTextNote,
		Tags:      [][]string{},
		Content:   g.ToPGN(),
	}
	n.ID = n.computeID()
	return n
}

func (n Note) computeID() string {
	var b strings.Builder
	b.WriteString(n.PubKey)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(n.CreatedAt, 10))
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(n.Kind))
	b.WriteByte('\n')
	b.WriteString(n.Content)
	return uuid.NewSHA1(gameNamespace, []byte(b.String())).String()
}

// Game parses the note content.
func (n Note) Game() (*game.Game, error) {
	return game.ParseString(n.Content)
}

type Origin uint8

const (
	OriginAnnotated Origin = iota
	OriginReceived
	OriginPublic
	OriginUnknown
)

var originNames = [...]string{
	OriginAnnotated: "Annotated",
	OriginReceived:  "Received",
	OriginPublic:    "Public",
	OriginUnknown:   "Unknown",
}

func (o Origin) String() string {
	if int(o) < len(originNames) {
		return originNames[o]
	}
	return originNames[OriginUnknown]
}

func ParseOrigin(s string) (Origin, error) {
	for i, name := range originNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Origin(i), nil
		}
	}
	return OriginUnknown, fmt.Errorf("unknown origin %q", s)
}

func (o Origin) MarshalJSON() ([]byte, error) { return json.Marshal(o.String()) }

func (o *Origin) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseOrigin(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Entry is a note kept in the local game library, tagged with how it got there.
type Entry struct {
	Note
	Origin Origin `json:"origin"`
}

// NewEntry accepts a note from elsewhere only if its content is a game.
func NewEntry(n Note) (Entry, error) {
	if _, err := n.Game(); err != nil {
		return Entry{}, fmt.Errorf("note %s: %w", n.ID, err)
	}
	return Entry{Note: n, Origin: OriginPublic}, nil
}

// NewEntryFromGame wraps a game with the given origin.
func NewEntryFromGame(g *game.Game, origin Origin) Entry {
	return Entry{Note: FromGame(g), Origin: origin}
}

// Key is the library key of the entry.
func (e Entry) Key() string { return e.ID }

// Game parses the entry content, falling back to an empty game.
func (e Entry) Game() *game.Game { return game.ParseOr([]byte(e.Content)) }

package pgn

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the PGN Date tag layout (YYYY.MM.DD).
const DateLayout = "2006.01.02"

// DefaultDate is used when a Date tag is missing or unreadable.
var DefaultDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

type EventKind uint8

const (
	EventCasual EventKind = iota
	EventUnknown
	EventNamed
)

// Event is the Event tag. The zero value is a casual game.
type Event struct {
	Kind EventKind
	Name string
}

func CasualEvent() Event           { return Event{Kind: EventCasual} }
func UnknownEvent() Event          { return Event{Kind: EventUnknown} }
func NamedEvent(name string) Event { return Event{Kind: EventNamed, Name: name} }

const casualEventName = "Casual Game"

// ParseEvent keeps every name verbatim except the "?" and "Casual Game" sentinels.
func ParseEvent(s string) Event {
	switch s {
	case "", "?":
		return UnknownEvent()
	case casualEventName:
		return CasualEvent()
	default:
		return NamedEvent(s)
	}
}

func (e Event) String() string {
	switch e.Kind {
	case EventCasual:
		return casualEventName
	case EventUnknown:
		return "?"
	default:
		return e.Name
	}
}

type SiteKind uint8

const (
	SiteUnknown SiteKind = iota
	SiteNamed
)

// Site is the Site tag. The zero value is unknown.
type Site struct {
	Kind SiteKind
	Name string
}

func UnknownSite() Site          { return Site{} }
func NamedSite(name string) Site { return Site{Kind: SiteNamed, Name: name} }

func ParseSite(s string) Site {
	if s == "" || s == "?" {
		return UnknownSite()
	}
	return NamedSite(s)
}

func (s Site) String() string {
	if s.Kind == SiteUnknown {
		return "?"
	}
	return s.Name
}

// Country returns the trailing IOC code of a "City, Region COUNTRY" site, if any.
func (s Site) Country() (CountryCode, bool) {
	if s.Kind != SiteNamed {
		return "", false
	}
	fields := strings.Fields(s.Name)
	if len(fields) == 0 {
		return "", false
	}
	c, err := ParseCountryCode(fields[len(fields)-1])
	if err != nil {
		return "", false
	}
	return c, true
}

type RoundKind uint8

const (
	RoundUnknown RoundKind = iota
	RoundNamed
)

// Round is the Round tag. The zero value is unknown.
type Round struct {
	Kind RoundKind
	Name string
}

func UnknownRound() Round          { return Round{} }
func NamedRound(name string) Round { return Round{Kind: RoundNamed, Name: name} }

func ParseRound(s string) Round {
	if s == "" || s == "-" {
		return UnknownRound()
	}
	return NamedRound(s)
}

func (r Round) String() string {
	if r.Kind == RoundUnknown {
		return "-"
	}
	return r.Name
}

// Result is the game outcome as written in the Result tag and after the movetext.
type Result uint8

const (
	Draw Result = iota
	WhiteWins
	BlackWins
	Ongoing
)

func ParseResult(s string) (Result, error) {
	switch s {
	case "1-0":
		return WhiteWins, nil
	case "0-1":
		return BlackWins, nil
	case "1/2-1/2":
		return Draw, nil
	case "*":
		return Ongoing, nil
	default:
		return Draw, &InvalidPgnError{Err: fmt.Errorf("invalid result %q", s)}
	}
}

// ParseResultOr returns def when s is not a result token.
func ParseResultOr(s string, def Result) Result {
	r, err := ParseResult(s)
	if err != nil {
		return def
	}
	return r
}

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Ongoing:
		return "*"
	default:
		return "1/2-1/2"
	}
}

// Decisive reports whether one side won.
func (r Result) Decisive() bool { return r == WhiteWins || r == BlackWins }

// ParseDate reads a YYYY.MM.DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, &InvalidPgnError{Err: fmt.Errorf("invalid date %q", s)}
	}
	return d, nil
}

// ParseDateOr falls back to DefaultDate for partial dates like "2023.??.??".
func ParseDateOr(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		return DefaultDate
	}
	return d
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

type Termination uint8

const (
	TerminationNormal Termination = iota
	TerminationAbandoned
	TerminationAdjudication
	TerminationDeath
	TerminationEmergency
	TerminationRulesInfraction
	TerminationTimeForfeit
	TerminationUnterminated
)

var terminationNames = map[Termination]string{
	TerminationNormal:          "normal",
	TerminationAbandoned:       "abandoned",
	TerminationAdjudication:    "adjudication",
	TerminationDeath:           "death",
	TerminationEmergency:       "emergency",
	TerminationRulesInfraction: "rules infraction",
	TerminationTimeForfeit:     "time forfeit",
	TerminationUnterminated:    "unterminated",
}

// ParseTermination is case-insensitive.
func ParseTermination(s string) (Termination, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for t, name := range terminationNames {
		if name == want {
			return t, nil
		}
	}
	return TerminationNormal, &InvalidPgnError{Err: fmt.Errorf("invalid termination %q", s)}
}

func (t Termination) String() string { return terminationNames[t] }

package pgn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrTimeControlEmpty  = errors.New("empty time control")
	ErrTimeControlFormat = errors.New("invalid time control format")
	ErrTimeControlNumber = errors.New("invalid time control number")
)

type TimeControlKind uint8

const (
	TimeControlUnknown TimeControlKind = iota
	TimeControlNone
	TimeControlMovesInTime
	TimeControlSuddenDeath
	TimeControlIncremental
	TimeControlSandclock
	TimeControlMultiple
)

// TimeControl is the TimeControl tag. Seconds is the period length for
// MovesInTime, SuddenDeath and Sandclock and the base time for Incremental.
type TimeControl struct {
	Kind      TimeControlKind
	Moves     int
	Seconds   int
	Increment int
	Periods   []TimeControl
}

func ParseTimeControl(s string) (TimeControl, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeControl{}, ErrTimeControlEmpty
	}
	switch s {
	case "?":
		return TimeControl{Kind: TimeControlUnknown}, nil
	case "-":
		return TimeControl{Kind: TimeControlNone}, nil
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		periods := make([]TimeControl, 0, len(parts))
		for _, p := range parts {
			tc, err := parsePeriod(p)
			if err != nil {
				return TimeControl{}, err
			}
			periods = append(periods, tc)
		}
		return TimeControl{Kind: TimeControlMultiple, Periods: periods}, nil
	}
	return parsePeriod(s)
}

func parsePeriod(s string) (TimeControl, error) {
	switch {
	case s == "":
		return TimeControl{}, ErrTimeControlEmpty
	case strings.Contains(s, "/"):
		moves, secs, err := splitNumbers(s, "/")
		if err != nil {
			return TimeControl{}, err
		}
		return TimeControl{Kind: TimeControlMovesInTime, Moves: moves, Seconds: secs}, nil
	case strings.Contains(s, "+"):
		base, inc, err := splitNumbers(s, "+")
		if err != nil {
			return TimeControl{}, err
		}
		return TimeControl{Kind: TimeControlIncremental, Seconds: base, Increment: inc}, nil
	case strings.HasPrefix(s, "*"):
		secs, err := parseNumber(s[1:])
		if err != nil {
			return TimeControl{}, err
		}
		return TimeControl{Kind: TimeControlSandclock, Seconds: secs}, nil
	default:
		secs, err := parseNumber(s)
		if err != nil {
			return TimeControl{}, fmt.Errorf("%w: %q", ErrTimeControlFormat, s)
		}
		return TimeControl{Kind: TimeControlSuddenDeath, Seconds: secs}, nil
	}
}

func splitNumbers(s, sep string) (int, int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrTimeControlFormat, s)
	}
	a, err := parseNumber(parts[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseNumber(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parseNumber(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrTimeControlNumber, s)
	}
	return int(n), nil
}

func (tc TimeControl) String() string {
	switch tc.Kind {
	case TimeControlUnknown:
		return "?"
	case TimeControlNone:
		return "-"
	case TimeControlMovesInTime:
		return fmt.Sprintf("%d/%d", tc.Moves, tc.Seconds)
	case TimeControlSuddenDeath:
		return strconv.Itoa(tc.Seconds)
	case TimeControlIncremental:
		return fmt.Sprintf("%d+%d", tc.Seconds, tc.Increment)
	case TimeControlSandclock:
		return "*" + strconv.Itoa(tc.Seconds)
	case TimeControlMultiple:
		parts := make([]string, len(tc.Periods))
		for i, p := range tc.Periods {
			parts[i] = p.String()
		}
		return strings.Join(parts, ":")
	}
	return "?"
}

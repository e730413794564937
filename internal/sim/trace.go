package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Trace record kinds
const (
	KindConn     = "CONN"
	KindCreate   = "C"
	KindStart    = "S"
	KindDone     = "D"
	KindAbort    = "A"
	KindDrop     = "DR"
	KindDelete   = "DE"
	linkUpWord   = "up"
	linkDownWord = "down"
)

var (
	// ErrMalformedTrace is returned for lines that do not parse.
	ErrMalformedTrace = errors.New("malformed trace line")
	// ErrTimeWentBackwards is returned when a record is older than its predecessor.
	ErrTimeWentBackwards = errors.New("trace time went backwards")
)

// TraceEvent is one parsed trace record. Fields not used by Kind are empty.
type TraceEvent struct {
	Time    float64
	Kind    string
	From    string
	To      string
	Message string
	Size    int64
	Up      bool
}

// Nodes returns the node identifiers the event refers to.
func (e TraceEvent) Nodes() []string {
	if e.To == "" {
		return []string{e.From}
	}
	return []string{e.From, e.To}
}

// ParseTrace reads a line-oriented trace:
//
//	<t> CONN <a> <b> up|down
//	<t> C <node> <msgid> <size>
//	<t> S|D|A <from> <to> <msgid>
//	<t> DR|DE <node> <msgid>
//
// Blank lines and lines starting with # are skipped. Times must not decrease.
func ParseTrace(r io.Reader) ([]TraceEvent, error) {
	var (
		events  []TraceEvent
		last    float64
		lineNum int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		event, err := parseLine(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(events) > 0 && event.Time < last {
			return nil, fmt.Errorf("line %d: %w (%v < %v)", lineNum, ErrTimeWentBackwards, event.Time, last)
		}

		last = event.Time
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return events, nil
}

func parseLine(fields []string) (TraceEvent, error) {
	if len(fields) < 2 {
		return TraceEvent{}, ErrMalformedTrace
	}

	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || t < 0 {
		return TraceEvent{}, fmt.Errorf("%w: bad time %q", ErrMalformedTrace, fields[0])
	}

	event := TraceEvent{Time: t, Kind: fields[1]}
	args := fields[2:]

	switch event.Kind {
	case KindConn:
		if len(args) != 3 {
			return TraceEvent{}, fmt.Errorf("%w: CONN needs 3 arguments", ErrMalformedTrace)
		}
		switch args[2] {
		case linkUpWord:
			event.Up = true
		case linkDownWord:
		default:
			return TraceEvent{}, fmt.Errorf("%w: link state %q", ErrMalformedTrace, args[2])
		}
		event.From, event.To = args[0], args[1]
	case KindCreate:
		if len(args) != 3 {
			return TraceEvent{}, fmt.Errorf("%w: C needs 3 arguments", ErrMalformedTrace)
		}
		size, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || size < 0 {
			return TraceEvent{}, fmt.Errorf("%w: bad size %q", ErrMalformedTrace, args[2])
		}
		event.From, event.Message, event.Size = args[0], args[1], size
	case KindStart, KindDone, KindAbort:
		if len(args) != 3 {
			return TraceEvent{}, fmt.Errorf("%w: %s needs 3 arguments", ErrMalformedTrace, event.Kind)
		}
		event.From, event.To, event.Message = args[0], args[1], args[2]
	case KindDrop, KindDelete:
		if len(args) != 2 {
			return TraceEvent{}, fmt.Errorf("%w: %s needs 2 arguments", ErrMalformedTrace, event.Kind)
		}
		event.From, event.Message = args[0], args[1]
	default:
		return TraceEvent{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedTrace, event.Kind)
	}

	return event, nil
}

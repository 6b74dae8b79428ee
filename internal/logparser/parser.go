package logparser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/trace"
)

// maxLineSize bounds a single log line. Initial-node lines of large graphs
// easily exceed bufio's 64KiB default.
const maxLineSize = 16 * 1024 * 1024

// Markers are the literal tokens that classify a log line.
type Markers struct {
	InitialNodes  string
	MessagePassed string
}

// DefaultMarkers returns the tokens written by the traced framework.
func DefaultMarkers() Markers {
	return Markers{
		InitialNodes:  "Initial nodes",
		MessagePassed: "Message Passed",
	}
}

// Result is the structured content of a log.
type Result struct {
	// InitiallyActive holds distinct node IDs in first-seen order.
	InitiallyActive []int
	// Messages are in log order; Message.Index is the position in this slice.
	Messages []trace.Message
	// Warnings lists every skipped record or field.
	Warnings []*ParseError
	// Lines is the number of lines read.
	Lines int
}

// ParseString is a convenience wrapper around Parse.
func ParseString(ctx context.Context, text string, markers Markers) (*Result, error) {
	return Parse(ctx, strings.NewReader(text), markers)
}

// Parse reads the whole log from r.
func Parse(ctx context.Context, r io.Reader, markers Markers) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if markers.InitialNodes == "" || markers.MessagePassed == "" {
		return nil, fmt.Errorf("logparser: both markers must be non-empty")
	}

	res := &Result{}
	seenInitial := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		res.Lines++
		if res.Lines%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := sc.Text()

		// Message lines vastly outnumber the single initial-nodes line.
		if payload, ok := cutMarker(line, markers.MessagePassed); ok {
			res.parseMessage(res.Lines, line, payload)
			continue
		}
		if payload, ok := cutMarker(line, markers.InitialNodes); ok {
			if seenInitial {
				res.warn(res.Lines, -1, line, "duplicate initial nodes record, replacing earlier one")
			}
			seenInitial = true
			res.parseInitial(res.Lines, line, payload)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	logger.Debug("Log parsed.",
		"lines", res.Lines,
		"initial_nodes", len(res.InitiallyActive),
		"messages", len(res.Messages),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// cutMarker returns the payload following marker, without its leading
// separator.
func cutMarker(line, marker string) (string, bool) {
	i := strings.Index(line, marker)
	if i < 0 {
		return "", false
	}
	payload := line[i+len(marker):]
	payload = strings.TrimPrefix(strings.TrimLeft(payload, " \t"), ",")
	return payload, true
}

func (r *Result) parseInitial(lineNo int, line, payload string) {
	r.InitiallyActive = r.InitiallyActive[:0]
	if strings.TrimSpace(payload) == "" {
		r.warn(lineNo, -1, line, "missing marker payload")
		return
	}

	seen := make(map[int]struct{})
	for i, field := range strings.Split(payload, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			r.warn(lineNo, i, field, "node id is not an integer")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.InitiallyActive = append(r.InitiallyActive, id)
	}
}

func (r *Result) parseMessage(lineNo int, line, payload string) {
	if strings.TrimSpace(payload) == "" {
		r.warn(lineNo, -1, line, "missing marker payload")
		return
	}

	fields := strings.Split(payload, ",")
	if len(fields) != 3 {
		r.warn(lineNo, -1, line, fmt.Sprintf("expected 3 fields (src,dst,superstep), got %d", len(fields)))
		return
	}

	var vals [3]int
	for i, field := range fields {
		field = strings.TrimSpace(field)
		v, err := strconv.Atoi(field)
		if err != nil {
			r.warn(lineNo, i, field, "not an integer")
			return
		}
		vals[i] = v
	}
	if vals[2] < 0 {
		r.warn(lineNo, 2, strings.TrimSpace(fields[2]), "superstep must not be negative")
		return
	}

	r.Messages = append(r.Messages, trace.Message{
		Index:     len(r.Messages),
		Src:       vals[0],
		Dst:       vals[1],
		Superstep: vals[2],
	})
}

func (r *Result) warn(lineNo, field int, text, reason string) {
	r.Warnings = append(r.Warnings, &ParseError{
		Line:   lineNo,
		Field:  field,
		Text:   strings.TrimSpace(text),
		Reason: reason,
	})
}

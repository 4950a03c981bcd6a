package engine

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

// Marker is the line the engine prints right before its JSON payload.
const Marker = "--- JSON Output ---"

const excerptLimit = 200

// OutputFormatError means the engine ran fine but its stdout no longer
// matches the expected shape.
type OutputFormatError struct {
	Reason  string
	Excerpt string
	Err     error
}

func (e *OutputFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine output format: %s: %v", e.Reason, e.Err)
	}
	return "engine output format: " + e.Reason
}

func (e *OutputFormatError) Unwrap() error { return e.Err }

func IsOutputFormatError(err error) bool {
	var target *OutputFormatError
	return errors.As(err, &target)
}

// Extract finds Marker in stdout and decodes the rest of the text as a JSON
// array of recommendations, keeping the engine's order.
func Extract(stdout string) ([]domain.RawRecommendation, error) {
	idx := strings.Index(stdout, Marker)
	if idx < 0 {
		return nil, &OutputFormatError{Reason: "marker not found", Excerpt: excerpt(stdout)}
	}

	payload := strings.TrimSpace(stdout[idx+len(Marker):])
	if !strings.HasPrefix(payload, "[") {
		return nil, &OutputFormatError{Reason: "payload is not a JSON array", Excerpt: excerpt(payload)}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		return nil, &OutputFormatError{Reason: "invalid JSON payload", Excerpt: excerpt(payload), Err: err}
	}

	recs := make([]domain.RawRecommendation, len(elems))
	for i, raw := range elems {
		recs[i] = decodeEntry(raw)
	}
	return recs, nil
}

type entryFields struct {
	ArtistID any `json:"artistID"`
	Score    any `json:"score"`
}

// decodeEntry reads one array element leniently. Numbers may arrive as
// floats or quoted strings; anything unusable decodes to zero, which no
// catalogue row matches.
func decodeEntry(raw json.RawMessage) domain.RawRecommendation {
	var f entryFields
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return domain.RawRecommendation{}
	}
	return domain.RawRecommendation{ArtistID: artistID(f.ArtistID), Score: score(f.Score)}
}

func numberText(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		return x.String(), true
	case string:
		return strings.TrimSpace(x), true
	default:
		return "", false
	}
}

func artistID(v any) int64 {
	s, ok := numberText(v)
	if !ok {
		return 0
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0
	}
	return int64(f)
}

func score(v any) float64 {
	s, ok := numberText(v)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// excerpt keeps the tail of s, starting on a rune boundary.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= excerptLimit {
		return s
	}
	cut := len(s) - excerptLimit
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

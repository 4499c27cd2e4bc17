package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/timezone"
)

// markerPattern matches <!--booking {...}--> with an optional colon after
// the keyword.
var markerPattern = regexp.MustCompile(`(?s)<!--\s*booking:?\s*(\{.*?\})\s*-->`)

type payload struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Resource string `json:"resource,omitempty"`
}

// Extractor reads booking proposals embedded in reply text.
type Extractor struct {
	normalizer *timezone.Normalizer
	strict     bool
}

type ExtractorOption func(*Extractor)

// WithStrictSinglePayload makes replies carrying more than one marker yield
// no suggestion. By default the first marker wins.
func WithStrictSinglePayload() ExtractorOption {
	return func(e *Extractor) {
		e.strict = true
	}
}

func NewExtractor(normalizer *timezone.Normalizer, opts ...ExtractorOption) *Extractor {
	e := &Extractor{normalizer: normalizer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the suggestion embedded in reply, or nil when there is
// none or it does not have the expected shape.
func (e *Extractor) Extract(reply string) *domain.Suggestion {
	matches := markerPattern.FindAllStringSubmatch(reply, -1)
	if len(matches) == 0 {
		return nil
	}
	if e.strict && len(matches) > 1 {
		return nil
	}

	var p payload
	if err := json.Unmarshal([]byte(matches[0][1]), &p); err != nil {
		return nil
	}
	return e.fromPayload(p)
}

// FromArgs builds a suggestion from structured function-call arguments.
func (e *Extractor) FromArgs(args map[string]any) *domain.Suggestion {
	str := func(key string) string {
		v, _ := args[key].(string)
		return v
	}
	return e.fromPayload(payload{
		Title:    str("title"),
		Start:    str("start"),
		End:      str("end"),
		Resource: str("resource"),
	})
}

func (e *Extractor) fromPayload(p payload) *domain.Suggestion {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil
	}
	start, err := e.normalizer.ParseInstant(p.Start, "")
	if err != nil {
		return nil
	}
	end, err := e.normalizer.ParseInstant(p.End, "")
	if err != nil {
		return nil
	}
	return &domain.Suggestion{
		Title:    title,
		Start:    start,
		End:      end,
		Resource: strings.TrimSpace(p.Resource),
	}
}

// Embed appends the marker for s to text.
func Embed(text string, s domain.Suggestion) string {
	data, err := json.Marshal(payload{
		Title:    s.Title,
		Start:    s.Start.UTC().Format(time.RFC3339Nano),
		End:      s.End.UTC().Format(time.RFC3339Nano),
		Resource: s.Resource,
	})
	if err != nil {
		return text
	}
	return fmt.Sprintf("%s\n<!--booking %s-->", strings.TrimRight(text, "\n"), data)
}

// Strip removes every marker, leaving the display text.
func Strip(reply string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(reply, ""))
}

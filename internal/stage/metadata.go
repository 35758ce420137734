package stage

import (
	"encoding/json"
	"maps"
	"math"
	"time"
)

// Metadata bag keys.
const (
	KeyStage          = "job_stage"
	KeyHistory        = "job_stage_history"
	KeyInjectedAt     = "injected_at"
	KeyExtractedAt    = "extracted_at"
	KeyContentLength  = "content_length"
	KeyVisionSummary  = "vision_summary"
	KeyVisionProvider = "vision_provider"
	KeyVisionMetadata = "vision_metadata"
	KeySchema         = "stage_schema"
)

// SchemaVersion is written by Apply. Readers ignore it: every field is
// decoded on its own whatever the bag carries under KeySchema.
const SchemaVersion = 1

type HistoryEntry struct {
	Stage Stage  `json:"stage"`
	At    string `json:"at"`
}

// Snapshot is the validated view of the stage fields. A nil field means
// "not recorded"; History is nil rather than empty when no valid entry exists.
type Snapshot struct {
	Stage         *Stage         `json:"stage,omitempty"`
	History       []HistoryEntry `json:"stage_history,omitempty"`
	InjectedAt    *string        `json:"injected_at,omitempty"`
	ExtractedAt   *string        `json:"extracted_at,omitempty"`
	ContentLength *int64         `json:"content_length,omitempty"`
}

type VisionAnalysis struct {
	Summary  *string        `json:"vision_summary,omitempty"`
	Provider *string        `json:"vision_provider,omitempty"`
	Metadata map[string]any `json:"vision_metadata,omitempty"`
}

// Derive decodes the stage fields of meta. It never mutates meta.
func Derive(meta map[string]any) Snapshot {
	var snap Snapshot
	if st, ok := decodeStage(meta[KeyStage]); ok {
		snap.Stage = &st
	}
	snap.History = decodeHistory(meta[KeyHistory])
	snap.InjectedAt = decodeString(meta[KeyInjectedAt])
	snap.ExtractedAt = decodeString(meta[KeyExtractedAt])
	snap.ContentLength = decodeLength(meta[KeyContentLength])
	return snap
}

// Vision decodes the optional vision-analysis byproducts of meta.
func Vision(meta map[string]any) VisionAnalysis {
	var v VisionAnalysis
	v.Summary = decodeString(meta[KeyVisionSummary])
	v.Provider = decodeString(meta[KeyVisionProvider])
	if m, ok := meta[KeyVisionMetadata].(map[string]any); ok {
		v.Metadata = maps.Clone(m)
	}
	return v
}

// Apply returns a copy of meta with s recorded as the current stage and
// appended to the history. Extracted and injected also stamp their
// dedicated timestamps. Transition order is not checked: the producer owns it.
func Apply(meta map[string]any, s Stage, at time.Time) (map[string]any, error) {
	if !s.Valid() {
		return nil, ErrUnknownStage
	}

	out := maps.Clone(meta)
	if out == nil {
		out = make(map[string]any)
	}

	stamp := at.UTC().Format(time.RFC3339Nano)
	history := Derive(meta).History
	entries := make([]any, 0, len(history)+1)
	for _, h := range history {
		entries = append(entries, map[string]any{"stage": string(h.Stage), "at": h.At})
	}
	entries = append(entries, map[string]any{"stage": string(s), "at": stamp})

	out[KeySchema] = SchemaVersion
	out[KeyStage] = string(s)
	out[KeyHistory] = entries

	switch s {
	case Extracted:
		out[KeyExtractedAt] = stamp
	case Injected:
		out[KeyInjectedAt] = stamp
	}
	return out, nil
}

// Annotate returns a copy of meta carrying the content length and any vision
// fields that are set.
func Annotate(meta map[string]any, contentLength *int64, vision VisionAnalysis) map[string]any {
	out := maps.Clone(meta)
	if out == nil {
		out = make(map[string]any)
	}
	if contentLength != nil {
		out[KeyContentLength] = *contentLength
	}
	if vision.Summary != nil {
		out[KeyVisionSummary] = *vision.Summary
	}
	if vision.Provider != nil {
		out[KeyVisionProvider] = *vision.Provider
	}
	if vision.Metadata != nil {
		out[KeyVisionMetadata] = maps.Clone(vision.Metadata)
	}
	return out
}

// decodeLength accepts whole numbers in [0, MaxInt64). Fractions and
// out-of-range values are dropped rather than rounded or wrapped.
func decodeLength(v any) *int64 {
	n, ok := decodeNumber(v)
	if !ok || n < 0 || n != math.Trunc(n) || n >= math.MaxInt64 {
		return nil
	}
	length := int64(n)
	return &length
}

func decodeStage(v any) (Stage, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	st := Stage(s)
	return st, st.Valid()
}

func decodeString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func decodeNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func decodeHistory(v any) []HistoryEntry {
	var raw []any
	switch x := v.(type) {
	case []any:
		raw = x
	case []map[string]any:
		for _, m := range x {
			raw = append(raw, m)
		}
	case []HistoryEntry:
		for _, e := range x {
			raw = append(raw, e)
		}
	default:
		return nil
	}

	var out []HistoryEntry
	for _, item := range raw {
		if e, ok := decodeEntry(item); ok {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func decodeEntry(v any) (HistoryEntry, bool) {
	switch x := v.(type) {
	case map[string]any:
		st, ok := decodeStage(x["stage"])
		if !ok {
			return HistoryEntry{}, false
		}
		at, ok := x["at"].(string)
		if !ok {
			return HistoryEntry{}, false
		}
		return HistoryEntry{Stage: st, At: at}, true
	case HistoryEntry:
		return x, x.Stage.Valid()
	default:
		return HistoryEntry{}, false
	}
}

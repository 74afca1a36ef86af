package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decode builds a Request from the loosely typed shape the extension sends.
// It never fails: fields of the wrong type are treated as absent, and a
// rating that is not numeric becomes 0. Both "sourceUrl" and the older
// "pageUrl" key are accepted.
func Decode(raw map[string]any) Request {
	common := Common{
		SelectedText: stringField(raw, "selectedText"),
		SourceURL:    stringField(raw, "sourceUrl"),
		Timestamp:    stringField(raw, "timestamp"),
	}
	if common.SourceURL == "" {
		common.SourceURL = stringField(raw, "pageUrl")
	}

	kind := stringField(raw, "type")
	if kind == "" {
		kind = stringField(raw, "kind")
	}

	var details Details
	switch Kind(kind) {
	case KindRelative:
		details = Relative{
			ExpectedOutput: stringField(raw, "expectedOutput"),
			Comment:        stringField(raw, "comment"),
		}
	case KindAbsolute:
		details = Absolute{
			Rating:  ratingField(raw["rating"]),
			Comment: stringField(raw, "comment"),
		}
	default:
		details = Unknown{Name: kind}
	}

	return Request{Common: common, Details: details}
}

// DecodeJSON parses body as a JSON object and decodes it with Decode.
func DecodeJSON(body []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Request{}, fmt.Errorf("failed to parse feedback request: %w", err)
	}
	if raw == nil {
		return Request{}, fmt.Errorf("failed to parse feedback request: body is not a JSON object")
	}
	return Decode(raw), nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// ratingField reads a rating from any numeric shape. Fractional ratings are
// truncated toward zero, so 4.7 becomes 4. Values outside the int32 range are
// treated as non-numeric.
func ratingField(v any) int {
	switch r := v.(type) {
	case int:
		return boundRating(int64(r))
	case int64:
		return boundRating(r)
	case float64:
		return truncRating(r)
	case json.Number:
		if i, err := r.Int64(); err == nil {
			return boundRating(i)
		}
		if f, err := r.Float64(); err == nil {
			return truncRating(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64); err == nil {
			return boundRating(i)
		}
	}
	return 0
}

func truncRating(f float64) int {
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func boundRating(i int64) int {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0
	}
	return int(i)
}

// ABOUTME: Response extraction from heterogeneous agent results
// ABOUTME: Normalises nested text, JSON-in-text and structured payloads into display text

package agent

import (
	"encoding/json"
	"strconv"
)

const (
	// DefaultReply is used when a successful result carries no usable text.
	DefaultReply = "Sorry, I could not generate a response."
	// ExtractionFailedReply is used when extraction itself faults.
	ExtractionFailedReply = "An error occurred while processing the response."
	// DefaultFailure is used when a failed result carries no detail.
	DefaultFailure = "Failed to get a response. Please try again."
)

// Extract returns the display text of a successful result. It never panics
// and always returns a non-empty string.
func Extract(res *Result) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ExtractionFailedReply
		}
	}()

	if res == nil {
		return DefaultReply
	}

	if res.Response != nil {
		text = payloadText(res.Response.Result)
		if text == "" {
			text = res.Response.Message
		}
	}
	if text == "" {
		text = res.Message
	}
	if text == "" {
		text = DefaultReply
	}
	return text
}

// FailureDetail returns the text shown for a result with success=false.
func FailureDetail(res *Result) string {
	if res == nil {
		return DefaultFailure
	}
	if res.Error != "" {
		return res.Error
	}
	if res.Response != nil && res.Response.Message != "" {
		return res.Response.Message
	}
	return DefaultFailure
}

func payloadText(p Payload) string {
	switch p.Kind {
	case PayloadText:
		if p.Text == "" {
			return ""
		}
		var parsed any
		if err := json.Unmarshal([]byte(p.Text), &parsed); err != nil {
			return p.Text
		}
		if s := fieldText(parsed, "text"); s != "" {
			return s
		}
		if s := fieldText(parsed, "message"); s != "" {
			return s
		}
		return p.Text

	case PayloadStructured:
		if !truthy(p.Structured) {
			return ""
		}
		if s := fieldText(p.Structured, "text"); s != "" {
			return s
		}
		if s := fieldText(p.Structured, "message"); s != "" {
			return s
		}
		data, err := json.Marshal(p.Structured)
		if err != nil {
			return ExtractionFailedReply
		}
		return string(data)
	}
	return ""
}

// fieldText reads key from a decoded JSON object. Strings are returned as-is;
// other truthy values are returned in their JSON form.
func fieldText(v any, key string) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	field, ok := obj[key]
	if !ok || !truthy(field) {
		return ""
	}
	switch f := field.(type) {
	case string:
		return f
	case float64:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		data, err := json.Marshal(f)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}

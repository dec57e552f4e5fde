// ABOUTME: Wire model for results returned by the chat agent endpoint
// ABOUTME: Decodes loosely typed JSON into explicit optional fields and a tagged payload

package agent

import (
	"bytes"
	"encoding/json"
)

// PayloadKind tags the shape of a nested result payload.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadText
	PayloadStructured
)

// Payload is the nested `response.result` value. Agents send either a string
// (which may itself contain JSON) or an arbitrary JSON value.
type Payload struct {
	Kind       PayloadKind
	Text       string
	Structured any
}

// TextPayload returns a textual payload.
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// StructuredPayload returns a structured payload. A nil value is PayloadNone.
func StructuredPayload(v any) Payload {
	if v == nil {
		return Payload{}
	}
	return Payload{Kind: PayloadStructured, Structured: v}
}

// UnmarshalJSON decodes strings as text and any other non-null value as
// structured data.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = Payload{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = TextPayload(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = StructuredPayload(v)
	return nil
}

// MarshalJSON encodes the payload back to its wire form.
func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadText:
		return json.Marshal(p.Text)
	case PayloadStructured:
		return json.Marshal(p.Structured)
	default:
		return []byte("null"), nil
	}
}

// Response is the nested response object of a Result.
type Response struct {
	Result  Payload `json:"result"`
	Message string  `json:"message,omitempty"`
}

// UnmarshalJSON tolerates non-string messages and malformed payloads by
// leaving the affected fields empty.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		Result  json.RawMessage `json:"result"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response{Message: looseString(raw.Message)}
	if len(raw.Result) > 0 {
		_ = r.Result.UnmarshalJSON(raw.Result)
	}
	return nil
}

// Result is what one agent call returns.
type Result struct {
	Success  bool      `json:"success"`
	Response *Response `json:"response,omitempty"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// UnmarshalJSON requires a JSON object but degrades every field that has an
// unexpected type to its zero value.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success  json.RawMessage `json:"success"`
		Response json.RawMessage `json:"response"`
		Message  json.RawMessage `json:"message"`
		Error    json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Result{
		Message: looseString(raw.Message),
		Error:   looseString(raw.Error),
	}
	_ = json.Unmarshal(raw.Success, &r.Success)

	if trimmed := bytes.TrimSpace(raw.Response); len(trimmed) > 0 && trimmed[0] == '{' {
		var resp Response
		if err := json.Unmarshal(trimmed, &resp); err == nil {
			r.Response = &resp
		}
	}
	return nil
}

// looseString returns data as a string when it is a JSON string, else "".
func looseString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

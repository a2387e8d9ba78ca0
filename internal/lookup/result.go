package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status tags the variant held by a Result
type Status int

const (
	StatusSuccess Status = iota
	StatusNotFound
	StatusRateLimited
	StatusTransientError
	StatusFatalError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusRateLimited:
		return "rate_limited"
	case StatusTransientError:
		return "transient_error"
	case StatusFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Status codes and messages of the on-disk error records
const (
	CodeParseError = -2
	CodeExhausted  = -1

	MsgNotFound            = "Not Found"
	MsgNotFoundSuggestions = "Not Found (suggestions available)"
	MsgRateLimited         = "Rate limit exceeded"
	MsgJSONParse           = "JSON parse error"
	MsgMaxRetries          = "Max retries exceeded"
)

// Result is the outcome of one lookup. Exactly one variant is active,
// selected by Status:
//
//	StatusSuccess         Payload holds the raw API response
//	StatusNotFound        Suggestions holds "did you mean" words, possibly empty
//	StatusRateLimited     no data
//	StatusTransientError  Message and StatusCode
//	StatusFatalError      Message
type Result struct {
	Status      Status
	Payload     json.RawMessage
	Suggestions []string
	Message     string
	StatusCode  int
}

// Success wraps a parsed API response
func Success(payload json.RawMessage) Result {
	return Result{Status: StatusSuccess, Payload: payload, StatusCode: 200}
}

// NotFound reports a word missing from the reference, with optional suggestions
func NotFound(suggestions []string) Result {
	msg := MsgNotFound
	if len(suggestions) > 0 {
		msg = MsgNotFoundSuggestions
	} else {
		suggestions = []string{}
	}
	return Result{Status: StatusNotFound, Suggestions: suggestions, Message: msg, StatusCode: 404}
}

// RateLimited reports an HTTP 429 from the API
func RateLimited() Result {
	return Result{Status: StatusRateLimited, Message: MsgRateLimited, StatusCode: 429}
}

// TransientError reports a failure that may succeed on a later run
func TransientError(message string, statusCode int) Result {
	return Result{Status: StatusTransientError, Message: message, StatusCode: statusCode}
}

// FatalError reports retries exhausted by network failures
func FatalError(message string) Result {
	return Result{Status: StatusFatalError, Message: message, StatusCode: CodeExhausted}
}

// IsError reports whether the result is an error record rather than
// an answer from the reference (success or not found).
func (r Result) IsError() bool {
	return r.Status != StatusSuccess && r.Status != StatusNotFound
}

// errorRecord is the JSON shape of every non-success result
type errorRecord struct {
	Error       *string  `json:"error"`
	StatusCode  *int     `json:"status_code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// MarshalJSON writes a success payload verbatim and every other variant
// as {"error": ..., "status_code": ..., "suggestions": [...]}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusSuccess {
		if len(r.Payload) == 0 {
			return []byte("null"), nil
		}
		return r.Payload, nil
	}

	msg, code := r.Message, r.StatusCode
	return json.Marshal(errorRecord{
		Error:       &msg,
		StatusCode:  &code,
		Suggestions: r.Suggestions,
	})
}

// UnmarshalJSON restores a Result written by MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return fmt.Errorf("lookup: invalid result JSON")
	}

	if len(data) > 0 && data[0] == '{' {
		var rec errorRecord
		if err := json.Unmarshal(data, &rec); err == nil && rec.Error != nil && rec.StatusCode != nil {
			*r = fromRecord(*rec.Error, *rec.StatusCode, rec.Suggestions)
			return nil
		}
	}

	*r = Success(append(json.RawMessage(nil), data...))
	return nil
}

func fromRecord(msg string, code int, suggestions []string) Result {
	switch {
	case code == 404:
		return NotFound(suggestions)
	case code == 429:
		return RateLimited()
	case code == CodeExhausted && msg != MsgMaxRetries:
		return FatalError(msg)
	default:
		return TransientError(msg, code)
	}
}

// stringList returns the elements of payload when it is a JSON array
// made only of strings.
func stringList(payload []byte) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

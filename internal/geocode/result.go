package geocode

import "encoding/json"

// APIError is a failure represented as data rather than a Go error, so HTTP
// failures, transport failures, and empty results all render the same way
// downstream. StatusCode is zero for transport failures; ResponseText holds
// at most 500 characters of the raw response body.
type APIError struct {
	Message      string `json:"error"`
	StatusCode   int    `json:"status_code,omitempty"`
	ResponseText string `json:"response_text,omitempty"`
}

// Result is one normalized geocoding outcome: either the raw JSON of a
// matched item (or a passthrough response body when the upstream shape is
// unrecognized), or an error value. Exactly one of the two fields is set.
type Result struct {
	Raw json.RawMessage
	Err *APIError
}

func itemResult(raw json.RawMessage) Result {
	return Result{Raw: raw}
}

func errorResult(err *APIError) Result {
	return Result{Err: err}
}

// MarshalJSON serializes the item JSON as-is, or the error value as an
// object with an "error" key.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

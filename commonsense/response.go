package commonsense

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

// RequestInfo records the request a result was produced for. It belongs to
// the call that returned it.
type RequestInfo struct {
	ID      string
	URL     string
	Query   Query
	Headers http.Header
}

// Result is a successful API response.
type Result struct {
	StatusCode int
	// Payload is the decoded response envelope.
	Payload map[string]any
	// Raw is the JSON encoding of Payload.
	Raw     []byte
	Request RequestInfo
}

// debugPayload is the fixed answer of a client in debug mode.
var debugPayload = []byte(`{"success":1}`)

// Interpret classifies a completed exchange. A 200 body must be a JSON object;
// any other status becomes an *APIError. When treeFields is non-empty the named
// fields of the response member are assembled into term trees.
func Interpret(statusCode int, body []byte, treeFields []string) (*Result, error) {
	if statusCode != http.StatusOK {
		return nil, statusError(statusCode)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		if gjson.ValidBytes(body) {
			return nil, &APIError{Kind: KindParse, StatusCode: statusCode, Message: "response body is not a JSON object", Err: err}
		}
		return nil, &APIError{Kind: KindParse, StatusCode: statusCode, Message: "failed to decode response", Err: err}
	}
	if payload == nil {
		return nil, &APIError{Kind: KindParse, StatusCode: statusCode, Message: "response body is not a JSON object"}
	}
	if dec.More() {
		return nil, &APIError{Kind: KindParse, StatusCode: statusCode, Message: "trailing data after JSON object"}
	}

	raw := body
	if len(treeFields) > 0 {
		assembleTrees(payload, treeFields)
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &APIError{Kind: KindParse, StatusCode: statusCode, Message: "failed to encode term trees", Err: err}
		}
		raw = encoded
	}

	return &Result{
		StatusCode: statusCode,
		Payload:    payload,
		Raw:        raw,
	}, nil
}

// Response returns the envelope's response member.
func (r *Result) Response() any {
	return r.Payload["response"]
}

// Items returns the response member as a list of objects. A single object
// response yields a one element list.
func (r *Result) Items() []map[string]any {
	switch resp := r.Response().(type) {
	case []any:
		items := make([]map[string]any, 0, len(resp))
		for _, e := range resp {
			if obj, ok := e.(map[string]any); ok {
				items = append(items, obj)
			}
		}
		return items
	case map[string]any:
		return []map[string]any{resp}
	default:
		return nil
	}
}

// Item returns the response member when it is a single object.
func (r *Result) Item() map[string]any {
	obj, _ := r.Response().(map[string]any)
	return obj
}

// Count returns the envelope's count, falling back to the number of items.
func (r *Result) Count() int {
	if c := r.Get("count"); c.Exists() {
		return int(c.Int())
	}
	return len(r.Items())
}

// Get looks up a gjson path in the payload, e.g. "response.0.title".
func (r *Result) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

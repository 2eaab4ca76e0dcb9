package httpclient

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrNoData is returned by Result.Decode when the response carried no parseable body.
var ErrNoData = errors.New("result has no data")

// Result is the uniform outcome of every request.
type Result struct {
	OK     bool `json:"ok"`
	Status int  `json:"status"`
	Data   any  `json:"data"`

	raw json.RawMessage
}

// Decode unmarshals the response body into v.
func (r Result) Decode(v any) error {
	if len(r.raw) > 0 {
		return json.Unmarshal(r.raw, v)
	}
	if r.Data == nil {
		return ErrNoData
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// failedResult is returned whenever no response was obtained.
func failedResult() Result { return Result{OK: false} }

// normalizeBody turns a status code and raw body into a Result.
// The second return value reports whether the body parsed as JSON.
func normalizeBody(status int, body []byte) (Result, bool) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		if status == http.StatusNoContent {
			return Result{OK: true, Status: status, Data: map[string]any{}}, false
		}
		return Result{OK: false, Status: status}, false
	}
	return Result{
		OK:     status >= 200 && status < 300,
		Status: status,
		Data:   data,
		raw:    json.RawMessage(body),
	}, true
}

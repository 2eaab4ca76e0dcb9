package httpclient

import "net/http"

// StatusClass is the outcome of the status inspection stage.
type StatusClass int

const (
	StatusOther StatusClass = iota
	StatusSuccess
	StatusRedirect
	StatusValidation
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusClientError
	StatusServerError
)

// ClassifyStatus maps an HTTP status code to its class.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return StatusSuccess
	case code >= 300 && code < 400:
		return StatusRedirect
	case code == http.StatusBadRequest:
		return StatusValidation
	case code == http.StatusUnauthorized:
		return StatusUnauthorized
	case code == http.StatusForbidden:
		return StatusForbidden
	case code == http.StatusNotFound:
		return StatusNotFound
	case code >= 400 && code < 500:
		return StatusClientError
	case code >= 500:
		return StatusServerError
	default:
		return StatusOther
	}
}

// EvictsToken reports whether a response of this class invalidates the stored token.
func (c StatusClass) EvictsToken() bool {
	return c == StatusUnauthorized || c == StatusForbidden
}

func (c StatusClass) String() string {
	switch c {
	case StatusSuccess:
		return "success"
	case StatusRedirect:
		return "redirect"
	case StatusValidation:
		return "validation_error"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusForbidden:
		return "forbidden"
	case StatusNotFound:
		return "not_found"
	case StatusClientError:
		return "client_error"
	case StatusServerError:
		return "server_error"
	default:
		return "other"
	}
}

package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	jsonContentType = "application/json; charset=UTF-8"
	authScheme      = "JWT "
)

var absoluteURLPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// Descriptor is the fully decorated request handed to the transport.
type Descriptor struct {
	Method   string
	URL      string
	External bool
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Form     *Form
}

// RequestOption adjusts the descriptor after the client decorated it.
type RequestOption func(*Descriptor)

// WithHeader sets a single header, overriding any decoration.
func WithHeader(key, value string) RequestOption {
	return func(d *Descriptor) {
		if d.Headers == nil {
			d.Headers = make(map[string]string)
		}
		d.Headers[key] = value
	}
}

// WithHeaders replaces the whole header map, dropping auth and content-type
// decoration unless the caller repeats them.
func WithHeaders(headers map[string]string) RequestOption {
	return func(d *Descriptor) {
		out := make(map[string]string, len(headers))
		for k, v := range headers {
			out[k] = v
		}
		d.Headers = out
	}
}

// WithQueryParam appends a query parameter to the resolved URL.
func WithQueryParam(key, value string) RequestOption {
	return func(d *Descriptor) {
		if d.Query == nil {
			d.Query = make(map[string]string)
		}
		d.Query[key] = value
	}
}

// ResolveURL returns the final request URL and whether it points at an external resource.
func ResolveURL(baseURL, rawURL string) (string, bool) {
	if absoluteURLPattern.MatchString(rawURL) {
		return rawURL, true
	}
	return baseURL + rawURL, false
}

var supportedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Build decorates a request without sending it.
func (c *Client) Build(method, rawURL string, payload Payload, opts ...RequestOption) (Descriptor, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := supportedMethods[method]; !ok {
		return Descriptor{}, fmt.Errorf("unsupported method %q", method)
	}

	resolved, external := ResolveURL(c.baseURL, rawURL)
	d := Descriptor{
		Method:   method,
		URL:      resolved,
		External: external,
		Headers:  make(map[string]string),
	}

	if !external {
		c.decorateAuth(&d)
	}

	if err := decoratePayload(&d, payload); err != nil {
		return Descriptor{}, err
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	return d, nil
}

func (c *Client) decorateAuth(d *Descriptor) {
	token, err := c.tokens.Get()
	if err != nil {
		c.log.WarnObj("token store read failed; sending anonymously", "token_error", map[string]any{
			"url":   d.URL,
			"error": err.Error(),
		})
		return
	}
	if token = strings.TrimSpace(token); token != "" {
		d.Headers[HeaderAuthorization] = authScheme + token
	}
}

func decoratePayload(d *Descriptor, payload Payload) error {
	switch payload.kind {
	case PayloadBinaryForm:
		if err := payload.form.validate(); err != nil {
			return err
		}
		d.Form = payload.form
	case PayloadJSON:
		body, err := json.Marshal(payload.value)
		if err != nil {
			return fmt.Errorf("marshal json payload: %w", err)
		}
		d.Body = body
		d.Headers[HeaderContentType] = jsonContentType
	}
	return nil
}

// Redacted returns a copy safe to print, with the credential masked.
func (d Descriptor) Redacted() Descriptor {
	out := d
	out.Headers = make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		if strings.EqualFold(k, HeaderAuthorization) && v != "" {
			v = authScheme + "<redacted>"
		}
		out.Headers[k] = v
	}
	return out
}

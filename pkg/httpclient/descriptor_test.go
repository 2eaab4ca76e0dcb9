package httpclient

import (
	"bytes"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
)

func TestResolveURL(t *testing.T) {
	const base = "https://api.samvad.test/v1"
	cases := []struct {
		in       string
		want     string
		external bool
	}{
		{in: "/users/1", want: base + "/users/1"},
		{in: "users", want: base + "users"},
		{in: "", want: base},
		{in: "https://external.example/data", want: "https://external.example/data", external: true},
		{in: "http://localhost:9000/x", want: "http://localhost:9000/x", external: true},
		{in: "ftp://files.example/a.txt", want: "ftp://files.example/a.txt", external: true},
		{in: "HTTPS://UPPER.example", want: "HTTPS://UPPER.example", external: true},
		{in: "//cdn.example/lib.js", want: base + "//cdn.example/lib.js"},
		{in: "/redirect?to=https://evil.example", want: base + "/redirect?to=https://evil.example"},
	}
	for _, tc := range cases {
		got, external := ResolveURL(base, tc.in)
		if got != tc.want || external != tc.external {
			t.Fatalf("ResolveURL(%q) = %q,%v want %q,%v", tc.in, got, external, tc.want, tc.external)
		}
	}
}

func TestBuildDecoratesInternalRequest(t *testing.T) {
	client := New("http://api.local", &fakeTokens{token: "abc"})

	d, err := client.Build("post", "/login", JSON(map[string]string{"u": "x"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Method != http.MethodPost || d.URL != "http://api.local/login" || d.External {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	if d.Headers[HeaderAuthorization] != "JWT abc" {
		t.Fatalf("Authorization = %q", d.Headers[HeaderAuthorization])
	}
	if d.Headers[HeaderContentType] != "application/json; charset=UTF-8" {
		t.Fatalf("Content-Type = %q", d.Headers[HeaderContentType])
	}
	if string(d.Body) != `{"u":"x"}` {
		t.Fatalf("body = %s", d.Body)
	}
}

func TestBuildExternalSkipsAuth(t *testing.T) {
	client := New("http://api.local", &fakeTokens{token: "abc"})

	d, err := client.Build(http.MethodGet, "https://external.example/data", NoPayload())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !d.External {
		t.Fatalf("expected external descriptor")
	}
	if _, ok := d.Headers[HeaderAuthorization]; ok {
		t.Fatalf("external descriptor must not carry Authorization")
	}
}

func TestBuildBinaryFormHasNoContentType(t *testing.T) {
	client := New("http://api.local", nil)

	d, err := client.Build(http.MethodPost, "/upload", BinaryForm(Form{Fields: map[string]string{"a": "b"}}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := d.Headers[HeaderContentType]; ok {
		t.Fatalf("binary form must not set Content-Type")
	}
	if d.Form == nil || d.Form.Fields["a"] != "b" || d.Body != nil {
		t.Fatalf("unexpected payload decoration %+v", d)
	}
}

func TestBuildRejectsIncompleteFormFiles(t *testing.T) {
	client := New("http://api.local", nil)

	cases := map[string]FormFile{
		"nil reader":    {Field: "avatar", FileName: "a.png"},
		"missing field": {FileName: "a.png", Reader: strings.NewReader("x")},
	}
	for name, file := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := client.Build(http.MethodPost, "/upload", BinaryForm(Form{Files: []FormFile{file}})); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestEncodeFormCarriesBoundary(t *testing.T) {
	body, contentType, err := encodeForm(&Form{
		Fields: map[string]string{"b": "2", "a": "1"},
		Files:  []FormFile{{Field: "doc", FileName: "d.txt", Reader: strings.NewReader("DOC")}},
	})
	if err != nil {
		t.Fatalf("encodeForm: %v", err)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		t.Fatalf("Content-Type = %q (%v)", contentType, err)
	}
	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	if form.Value["a"][0] != "1" || form.Value["b"][0] != "2" || len(form.File["doc"]) != 1 {
		t.Fatalf("unexpected form %+v", form)
	}
}

func TestBuildJSONNilIsNoPayload(t *testing.T) {
	client := New("http://api.local", nil)

	d, err := client.Build(http.MethodPut, "/x", JSON(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Body != nil || len(d.Headers) != 0 {
		t.Fatalf("expected undecorated descriptor, got %+v", d)
	}
}

func TestWithHeadersReplacesDecoration(t *testing.T) {
	client := New("http://api.local", &fakeTokens{token: "abc"})

	d, err := client.Build(http.MethodPost, "/x", JSON(1), WithHeaders(map[string]string{"X-Trace": "1"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Headers) != 1 || d.Headers["X-Trace"] != "1" {
		t.Fatalf("headers = %#v", d.Headers)
	}
}

func TestBuildRejectsUnsupportedMethod(t *testing.T) {
	client := New("http://api.local", nil)
	if _, err := client.Build("TRACE", "/x", NoPayload()); err == nil {
		t.Fatalf("expected error for TRACE")
	}
}

func TestRedactedMasksToken(t *testing.T) {
	client := New("http://api.local", &fakeTokens{token: "abc"})
	d, err := client.Build(http.MethodGet, "/x", NoPayload())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := d.Redacted()
	if r.Headers[HeaderAuthorization] != "JWT <redacted>" {
		t.Fatalf("redacted header = %q", r.Headers[HeaderAuthorization])
	}
	if d.Headers[HeaderAuthorization] != "JWT abc" {
		t.Fatalf("Redacted must not mutate the original")
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]StatusClass{
		200: StatusSuccess,
		204: StatusSuccess,
		299: StatusSuccess,
		302: StatusRedirect,
		400: StatusValidation,
		401: StatusUnauthorized,
		403: StatusForbidden,
		404: StatusNotFound,
		409: StatusClientError,
		429: StatusClientError,
		500: StatusServerError,
		504: StatusServerError,
		101: StatusOther,
	}
	for code, want := range cases {
		got := ClassifyStatus(code)
		if got != want {
			t.Fatalf("ClassifyStatus(%d) = %s want %s", code, got, want)
		}
		if got.EvictsToken() != (code == 401 || code == 403) {
			t.Fatalf("EvictsToken mismatch for %d", code)
		}
	}
}

func TestRequestErrorIs(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	send := &RequestError{Stage: StageSend, Method: "GET", URL: "u", Err: cause}
	if !errors.Is(send, ErrTransport) || !errors.Is(send, cause) {
		t.Fatalf("send error should match ErrTransport and cause")
	}
	build := &RequestError{Stage: StageBuild, Err: cause}
	if errors.Is(build, ErrTransport) {
		t.Fatalf("build error should not match ErrTransport")
	}
}

func TestHTMLTitle(t *testing.T) {
	body := []byte("<html><head><title> Gateway Timeout </title></head><body></body></html>")
	if got := htmlTitle("text/html; charset=utf-8", body); got != "Gateway Timeout" {
		t.Fatalf("htmlTitle = %q", got)
	}
	if got := htmlTitle("text/plain", body); got != "" {
		t.Fatalf("non-html content should not be parsed, got %q", got)
	}
}

package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// PayloadKind tags the request payload so the content-type decision is a
// function of the tag alone.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadJSON
	PayloadBinaryForm
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadJSON:
		return "json"
	case PayloadBinaryForm:
		return "binary-form"
	default:
		return "none"
	}
}

// FormFile is a single file part of a multipart form.
type FormFile struct {
	Field    string
	FileName string
	Reader   io.Reader
}

// Form is a multipart payload. The transport writes the boundary header.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// Payload is the optional request body. The zero value carries no payload.
type Payload struct {
	kind  PayloadKind
	value any
	form  *Form
}

// NoPayload returns an empty payload.
func NoPayload() Payload { return Payload{} }

// JSON wraps a value to be JSON-serialized into the request body.
// A nil value yields no payload.
func JSON(v any) Payload {
	if v == nil {
		return Payload{}
	}
	return Payload{kind: PayloadJSON, value: v}
}

// BinaryForm wraps a multipart form payload.
func BinaryForm(f Form) Payload {
	return Payload{kind: PayloadBinaryForm, form: &f}
}

// Kind reports which variant the payload holds.
func (p Payload) Kind() PayloadKind { return p.kind }

// validate rejects parts the multipart writer cannot encode.
func (f *Form) validate() error {
	for i, file := range f.Files {
		if file.Field == "" {
			return fmt.Errorf("form file %d has no field name", i)
		}
		if file.Reader == nil {
			return fmt.Errorf("form file %q has no reader", file.Field)
		}
	}
	return nil
}

// encodeForm writes the form as multipart/form-data and returns the body with
// its boundary-bearing content type.
func encodeForm(f *Form) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("read form file %q: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

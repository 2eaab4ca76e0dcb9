package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-request-client/internal/app"
	"github.com/samvad-hq/samvad-request-client/pkg/httpclient"
	"github.com/spf13/cobra"
)

type requestFlags struct {
	data     string
	dataFile string
	fields   []string
	files    []string
	headers  []string
	query    []string
	dryRun   bool
}

func newRequestCmd(method string) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
				return runRequest(ctx, rt.Client(), cmd.OutOrStdout(), method, args[0], flags)
			})
		},
	}
	cmd.Flags().StringVarP(&flags.data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&flags.dataFile, "data-file", "", "Read the JSON request body from a file")
	cmd.Flags().StringArrayVarP(&flags.fields, "field", "F", nil, "Multipart form field key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.files, "file", nil, "Multipart file part field=path (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, "Extra header key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.query, "query", "q", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the decorated request without sending it")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	return cmd
}

func runRequest(ctx context.Context, client *httpclient.Client, out io.Writer, method, url string, flags requestFlags) error {
	payload, closeFiles, err := buildPayload(flags)
	if err != nil {
		return err
	}
	defer closeFiles()

	opts, err := requestOptions(flags)
	if err != nil {
		return err
	}

	if flags.dryRun {
		d, err := client.Build(method, url, payload, opts...)
		if err != nil {
			return err
		}
		return writeJSON(out, describe(d.Redacted()))
	}

	res, err := client.Do(ctx, method, url, payload, opts...)
	if werr := writeJSON(out, res); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if !res.OK {
		return errNotOK
	}
	return nil
}

// buildPayload turns the body flags into a payload. The returned func closes opened files.
func buildPayload(flags requestFlags) (httpclient.Payload, func(), error) {
	noop := func() {}
	hasJSON := flags.data != "" || flags.dataFile != ""
	hasForm := len(flags.fields) > 0 || len(flags.files) > 0
	if hasJSON && hasForm {
		return httpclient.Payload{}, noop, fmt.Errorf("json body and form fields cannot be combined")
	}

	if hasJSON {
		raw := []byte(flags.data)
		if flags.dataFile != "" {
			b, err := os.ReadFile(flags.dataFile)
			if err != nil {
				return httpclient.Payload{}, noop, fmt.Errorf("read data file: %w", err)
			}
			raw = b
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return httpclient.Payload{}, noop, fmt.Errorf("request body is not valid json: %w", err)
		}
		return httpclient.JSON(v), noop, nil
	}

	if !hasForm {
		return httpclient.NoPayload(), noop, nil
	}

	fields, err := parsePairs(flags.fields)
	if err != nil {
		return httpclient.Payload{}, noop, err
	}
	form := httpclient.Form{Fields: fields}

	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, spec := range flags.files {
		field, path, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(field) == "" || path == "" {
			closeAll()
			return httpclient.Payload{}, noop, fmt.Errorf("invalid file %q (expected field=path)", spec)
		}
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return httpclient.Payload{}, noop, fmt.Errorf("open form file: %w", err)
		}
		opened = append(opened, f)
		form.Files = append(form.Files, httpclient.FormFile{
			Field:    strings.TrimSpace(field),
			FileName: filepath.Base(path),
			Reader:   f,
		})
	}
	return httpclient.BinaryForm(form), closeAll, nil
}

func requestOptions(flags requestFlags) ([]httpclient.RequestOption, error) {
	headers, err := parsePairs(flags.headers)
	if err != nil {
		return nil, err
	}
	query, err := parsePairs(flags.query)
	if err != nil {
		return nil, err
	}

	opts := make([]httpclient.RequestOption, 0, len(headers)+len(query))
	for k, v := range headers {
		opts = append(opts, httpclient.WithHeader(k, v))
	}
	for k, v := range query {
		opts = append(opts, httpclient.WithQueryParam(k, v))
	}
	return opts, nil
}

// parsePairs splits key=value arguments. Later keys win.
func parsePairs(items []string) (map[string]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q (expected key=value)", item)
		}
		out[k] = v
	}
	return out, nil
}

type descriptorView struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	External bool              `json:"external"`
	Headers  map[string]string `json:"headers,omitempty"`
	Query    map[string]string `json:"query,omitempty"`
	Body     json.RawMessage   `json:"body,omitempty"`
	Fields   map[string]string `json:"form_fields,omitempty"`
	Files    []string          `json:"form_files,omitempty"`
}

func describe(d httpclient.Descriptor) descriptorView {
	view := descriptorView{
		Method:   d.Method,
		URL:      d.URL,
		External: d.External,
		Headers:  d.Headers,
		Query:    d.Query,
		Body:     json.RawMessage(d.Body),
	}
	if d.Form != nil {
		view.Fields = d.Form.Fields
		for _, f := range d.Form.Files {
			view.Files = append(view.Files, f.Field+"="+f.FileName)
		}
	}
	return view
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

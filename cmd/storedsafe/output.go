package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/storedsafe"
)

// writeResponse prints the response body in the requested format. Bodies that
// are not JSON are written unchanged. A status of 400 or more is reported as
// an error after the body is printed.
func writeResponse(w io.Writer, resp *storedsafe.Response, format string) error {
	var doc any
	if err := resp.Decode(&doc); err != nil {
		if _, werr := w.Write(resp.Body); werr != nil {
			return werr
		}
		return statusError(resp)
	}

	if err := writeValue(w, doc, format); err != nil {
		return err
	}
	return statusError(resp)
}

// writeValue prints v as indented JSON or YAML.
func writeValue(w io.Writer, v any, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case OutputYAML:
		out, err = yaml.Marshal(v)
	default:
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func statusError(resp *storedsafe.Response) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// paramsFlag collects repeated -param key=value flags.
type paramsFlag struct {
	params *storedsafe.Params
}

func newParamsFlag() *paramsFlag {
	return &paramsFlag{params: storedsafe.NewParams()}
}

func (p *paramsFlag) String() string {
	if p == nil || p.params == nil {
		return ""
	}
	pairs := make([]string, 0, p.params.Len())
	for _, k := range p.params.Keys() {
		v, _ := p.params.Get(k)
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (p *paramsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	p.params.Set(key, val)
	return nil
}

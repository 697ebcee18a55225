package storedsafe

// This file provides test utilities for code built on top of the client.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// RecordedCall is one call captured by RecordingTransport.
type RecordedCall struct {
	Method  string
	URL     string
	Query   url.Values
	Header  http.Header
	Options Options

	// Body is the JSON body of POST and PUT calls, as handed to the transport.
	Body any

	// File and Form are set for multipart calls. File.Content is replaced by
	// a reader over FileContent.
	File        *FilePart
	FileContent []byte
	Form        url.Values
}

// JSONBody marshals Body and decodes it into a generic object.
func (c RecordedCall) JSONBody() (map[string]any, error) {
	if c.Body == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(c.Body)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Responder produces the reply of a RecordingTransport.
type Responder func(call RecordedCall) (*Response, error)

// RecordingTransport is an in-memory Transport that records every call and
// replies through a Responder. The default responder answers 200 with "{}".
//
// Example usage:
//
//	rt := storedsafe.NewRecordingTransport(nil)
//	client, _ := storedsafe.New("safe.example.com",
//	    storedsafe.WithToken("token"),
//	    storedsafe.WithTransport(rt),
//	)
//	client.ListVaults(ctx)
//	call, _ := rt.LastCall()
type RecordingTransport struct {
	mu        sync.Mutex
	calls     []RecordedCall
	responder Responder
}

var _ Transport = (*RecordingTransport)(nil)

// NewRecordingTransport returns a RecordingTransport. A nil responder
// answers every call with 200 and an empty JSON object.
func NewRecordingTransport(responder Responder) *RecordingTransport {
	if responder == nil {
		responder = func(RecordedCall) (*Response, error) {
			return NewJSONResponse(http.StatusOK, map[string]any{})
		}
	}
	return &RecordingTransport{responder: responder}
}

// NewJSONResponse builds a Response with a JSON encoded body.
func NewJSONResponse(status int, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response body: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return &Response{StatusCode: status, Header: header, Body: data}, nil
}

// Calls returns a copy of the recorded calls.
func (t *RecordingTransport) Calls() []RecordedCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]RecordedCall(nil), t.calls...)
}

// LastCall returns the most recent call.
func (t *RecordingTransport) LastCall() (RecordedCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return RecordedCall{}, false
	}
	return t.calls[len(t.calls)-1], true
}

// Reset drops the recorded calls.
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}

func (t *RecordingTransport) Get(ctx context.Context, rawURL string, query url.Values, header http.Header, opts Options) (*Response, error) {
	return t.record(ctx, RecordedCall{Method: http.MethodGet, URL: rawURL, Query: query, Header: header, Options: opts})
}

func (t *RecordingTransport) Post(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error) {
	return t.record(ctx, RecordedCall{Method: http.MethodPost, URL: rawURL, Body: body, Header: header, Options: opts})
}

func (t *RecordingTransport) Put(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error) {
	return t.record(ctx, RecordedCall{Method: http.MethodPut, URL: rawURL, Body: body, Header: header, Options: opts})
}

func (t *RecordingTransport) Delete(ctx context.Context, rawURL string, header http.Header, opts Options) (*Response, error) {
	return t.record(ctx, RecordedCall{Method: http.MethodDelete, URL: rawURL, Header: header, Options: opts})
}

func (t *RecordingTransport) PostMultipart(ctx context.Context, rawURL string, file FilePart, form url.Values, header http.Header, opts Options) (*Response, error) {
	var content []byte
	if file.Content != nil {
		data, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, fmt.Errorf("copy file content: %w", err)
		}
		content = data
	}
	file.Content = bytes.NewReader(content)
	return t.record(ctx, RecordedCall{
		Method:      http.MethodPost,
		URL:         rawURL,
		Header:      header,
		Options:     opts,
		File:        &file,
		FileContent: content,
		Form:        form,
	})
}

func (t *RecordingTransport) record(ctx context.Context, call RecordedCall) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.calls = append(t.calls, call)
	t.mu.Unlock()
	return t.responder(call)
}

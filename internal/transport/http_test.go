package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(server *httptest.Server) *HTTP {
	return NewHTTP(WithHTTPClient(server.Client()), WithUserAgent("storedsafe-test"))
}

func TestHTTP_GetEncodesQueryAndHeaders(t *testing.T) {
	var gotQuery url.Values
	var gotHeader http.Header
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/1.0/object/93", r.URL.Path)
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ERRORS":["denied"]}`))
	}))
	defer server.Close()

	tr := newTestTransport(server)
	header := http.Header{}
	header.Set("X-Http-Token", "tok")

	resp, err := tr.Get(context.Background(), server.URL+"/api/1.0/object/93",
		url.Values{"decrypt": {"true"}}, header, Options{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"ERRORS":["denied"]}`, string(resp.Body))
	assert.Equal(t, "true", gotQuery.Get("decrypt"))
	assert.Equal(t, "tok", gotHeader.Get("X-Http-Token"))
	assert.Equal(t, "storedsafe-test", gotHeader.Get("User-Agent"))
}

func TestHTTP_PostSendsJSON(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status":2}`, string(body))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	resp, err := newTestTransport(server).Post(context.Background(), server.URL,
		map[string]any{"status": 2}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_NilBodyIsEmptyObject(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{}`, string(body))
	}))
	defer server.Close()

	_, err := newTestTransport(server).Put(context.Background(), server.URL, nil, nil, Options{})
	require.NoError(t, err)
}

func TestHTTP_Delete(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := newTestTransport(server).Delete(context.Background(), server.URL, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestHTTP_PostMultipart(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "3", r.FormValue("templateid"))
		assert.Equal(t, "42", r.FormValue("groupid"))

		f, fh, err := r.FormFile("upload")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.txt", fh.Filename)
		assert.Equal(t, "file content", string(data))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	file := FilePart{FieldName: "upload", FileName: "notes.txt", Content: strings.NewReader("file content")}
	form := url.Values{"templateid": {"3"}, "groupid": {"42"}}

	resp, err := newTestTransport(server).PostMultipart(context.Background(), server.URL, file, form, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_PostMultipartStreams(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(-1), r.ContentLength)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		f, _, err := r.FormFile("upload")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Len(t, data, 256<<10)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	content := strings.NewReader(strings.Repeat("x", 256<<10))
	file := FilePart{FieldName: "upload", FileName: "big.bin", Content: content}

	resp, err := newTestTransport(server).PostMultipart(context.Background(), server.URL, file, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, content.Len())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestHTTP_PostMultipartReadError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	defer server.Close()

	file := FilePart{FieldName: "upload", FileName: "bad.bin", Content: failingReader{}}
	_, err := newTestTransport(server).PostMultipart(context.Background(), server.URL, file, nil, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestHTTP_TimeoutOption(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := newTestTransport(server).Get(context.Background(), server.URL, nil, nil,
		Options{Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTP_ClientCertificate(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSignedPair(t, dir)

	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil || !assert.Len(t, r.TLS.PeerCertificates, 1) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"cn": r.TLS.PeerCertificates[0].Subject.CommonName})
	}))
	server.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	server.StartTLS()
	defer server.Close()

	tr := newTestTransport(server)
	resp, err := tr.Post(context.Background(), server.URL, map[string]string{}, nil, Options{
		ClientCert: &ClientCertificate{CertFile: certFile, KeyFile: keyFile},
	})
	require.NoError(t, err)

	out, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, "smartcard-user", out["cn"])
}

func TestHTTP_ClientCertificateMissingFiles(t *testing.T) {
	tr := NewHTTP()
	_, err := tr.Post(context.Background(), "https://example.invalid", nil, nil, Options{
		ClientCert: &ClientCertificate{CertFile: "/does/not/exist.pem", KeyFile: "/does/not/exist.key"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load client certificate")
}

func TestHTTP_VerifyOption(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(caFile, pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: server.Certificate().Raw,
	}), 0o600))

	tr := NewHTTP()
	_, err := tr.Get(context.Background(), server.URL, nil, nil, Options{})
	require.Error(t, err, "default client must not trust the test certificate")

	tests := []struct {
		name   string
		verify any
	}{
		{"skip verification", false},
		{"CA bundle", caFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tr.Get(context.Background(), server.URL, nil, nil, Options{
				Values: map[string]any{ValueVerify: tt.verify},
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}

	_, err = tr.Get(context.Background(), server.URL, nil, nil, Options{
		Values: map[string]any{ValueVerify: true},
	})
	assert.Error(t, err)
}

func TestHTTP_VerifyOptionInvalid(t *testing.T) {
	tr := NewHTTP()
	tests := []struct {
		name   string
		verify any
		errMsg string
	}{
		{"wrong type", 1, "expected bool or CA bundle path"},
		{"missing bundle", "/does/not/exist.pem", "read CA bundle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Get(context.Background(), "https://example.invalid", nil, nil, Options{
				Values: map[string]any{ValueVerify: tt.verify},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestHTTP_ProxiesOption(t *testing.T) {
	var proxied string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.String()
		_, _ = w.Write([]byte(`{"via":"proxy"}`))
	}))
	defer proxy.Close()

	tests := []struct {
		name    string
		proxies any
	}{
		{"single url", proxy.URL},
		{"per scheme", map[string]string{"http": proxy.URL}},
		{"per scheme any", map[string]any{"http": proxy.URL}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxied = ""
			resp, err := NewHTTP().Get(context.Background(), "http://safe.example.invalid/api/1.0/utils/version", nil, nil, Options{
				Values: map[string]any{ValueProxies: tt.proxies},
			})
			require.NoError(t, err)
			assert.JSONEq(t, `{"via":"proxy"}`, string(resp.Body))
			assert.Equal(t, "http://safe.example.invalid/api/1.0/utils/version", proxied)
		})
	}

	_, err := NewHTTP().Get(context.Background(), "http://safe.example.invalid", nil, nil, Options{
		Values: map[string]any{ValueProxies: 42},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string or map")
}

func TestResponse_Decode(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte(`{"CALLINFO":{"token":"abc"}}`)}

	var payload struct {
		CallInfo struct {
			Token string `json:"token"`
		} `json:"CALLINFO"`
	}
	require.NoError(t, resp.Decode(&payload))
	assert.Equal(t, "abc", payload.CallInfo.Token)

	empty := &Response{StatusCode: 204}
	_, err := empty.JSON()
	assert.Error(t, err)
}

func writeSelfSignedPair(t *testing.T, dir string) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "smartcard-user"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "cert.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

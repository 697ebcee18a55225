package storedsafe

import (
	"context"
	"fmt"
	"net/http"
)

const (
	loginTypeTOTP      = "totp"
	loginTypeSmartcard = "smartcard"
)

// LoginTOTP authenticates with a passphrase and a time based one-time password.
func (c *Client) LoginTOTP(ctx context.Context, username, passphrase, otp string, opts ...Options) (*Response, error) {
	body := NewParams().
		Set("username", username).
		Set("passphrase", passphrase).
		Set("otp", otp).
		Set("apikey", c.apiKey).
		Set("logintype", loginTypeTOTP)
	return c.authenticate(ctx, body, false, opts)
}

// LoginYubikey authenticates with a YubiKey one-time password. The server
// expects passphrase, API key and OTP concatenated in the keys field.
func (c *Client) LoginYubikey(ctx context.Context, username, passphrase, otp string, opts ...Options) (*Response, error) {
	body := NewParams().
		Set("username", username).
		Set("keys", passphrase+c.apiKey+otp).
		Set("apikey", c.apiKey)
	return c.authenticate(ctx, body, false, opts)
}

// LoginSmartcard authenticates over mutual TLS on the smartcard port,
// presenting the certificate and key at certPath and keyPath. They take
// precedence over any ClientCert in opts.
func (c *Client) LoginSmartcard(ctx context.Context, username, passphrase, certPath, keyPath string, opts ...Options) (*Response, error) {
	body := NewParams().
		Set("username", username).
		Set("passphrase", passphrase).
		Set("apikey", c.apiKey).
		Set("logintype", loginTypeSmartcard)
	opts = append(append([]Options(nil), opts...), Options{ClientCert: &ClientCertificate{CertFile: certPath, KeyFile: keyPath}})
	return c.authenticate(ctx, body, true, opts)
}

func (c *Client) authenticate(ctx context.Context, body *Params, mtls bool, opts []Options) (*Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("login: %w", ErrAPIKeyMissing)
	}

	resp, err := c.send(ctx, request{method: http.MethodPost, path: "/auth", body: body, mtls: mtls}, opts)
	if err != nil {
		return nil, err
	}

	outcome := "rejected"
	if resp.StatusCode == http.StatusOK {
		token, err := loginToken(resp)
		if err != nil {
			c.metrics.IncrementCounter(MetricLogins, map[string]string{"outcome": "malformed"})
			return resp, err
		}
		c.setToken(token)
		outcome = "success"
	}
	c.metrics.IncrementCounter(MetricLogins, map[string]string{"outcome": outcome})
	return resp, nil
}

// loginToken extracts CALLINFO.token from a successful login response.
func loginToken(resp *Response) (string, error) {
	var payload struct {
		CallInfo struct {
			Token string `json:"token"`
		} `json:"CALLINFO"`
	}
	if err := resp.Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedLoginResponse, err)
	}
	if payload.CallInfo.Token == "" {
		return "", fmt.Errorf("%w: CALLINFO.token is missing", ErrMalformedLoginResponse)
	}
	return payload.CallInfo.Token, nil
}

// Logout invalidates the session on the server. The local token is kept;
// the server rejects it afterwards.
func (c *Client) Logout(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/auth/logout", nil, opts)
}

// Check verifies that the session token is still valid and refreshes its timeout.
func (c *Client) Check(ctx context.Context, opts ...Options) (*Response, error) {
	return c.post(ctx, "/auth/check", NewParams(), opts)
}

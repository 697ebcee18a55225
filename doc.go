// Package storedsafe is a client for the StoredSafe password vault REST API.
//
// A Client holds a session against one server: its host, the API version,
// the API key that enables login and the session token that authorizes every
// other call. Each operation maps to exactly one HTTP call and returns the
// server response unmodified. Non-2xx statuses are not errors; only missing
// credentials, local file access and transport failures are.
//
// # Quick Start
//
//	client, err := storedsafe.New("safe.example.com",
//	    storedsafe.WithAPIKey(apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.LoginTOTP(ctx, "alice", passphrase, otp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if resp.StatusCode != http.StatusOK {
//	    log.Fatalf("login rejected: %s", resp.Body)
//	}
//
//	vaults, err := client.ListVaults(ctx)
//
// # Configuration
//
// A client can also be built from an rc file, the format shared with the
// other StoredSafe tools:
//
//	mysite:safe.example.com
//	apikey:abcd1234
//	token:
//
//	client, err := storedsafe.NewFromRC("", storedsafe.Options{})
//
// or from STOREDSAFE_HOST, STOREDSAFE_APIKEY, STOREDSAFE_TOKEN and
// STOREDSAFE_API_VERSION with LoadConfigFromEnvironment.
//
// # Authentication
//
// LoginTOTP, LoginYubikey and LoginSmartcard post to /auth. Smartcard login
// goes to port 8443 and presents a client certificate over mutual TLS. On a
// 200 response the token found at CALLINFO.token becomes the session token.
// Calls other than login fail with ErrTokenMissing without touching the
// network while no token is held.
//
// # Options
//
// Every operation accepts Options (headers, timeout, client certificate and
// an open Values bag passed to the transport). They are merged on top of the
// client defaults; the call site wins key by key:
//
//	resp, err := client.GetObject(ctx, "42", true, storedsafe.Options{
//	    Timeout: 5 * time.Second,
//	    Headers: map[string]string{"Accept-Language": "sv"},
//	})
//
// # Files
//
// GetMimeType, FileCollect, UploadFile and SetUserCertificate read files
// through a FileSystem. OSFileSystem reads local disk; the providers/s3
// package reads objects from Amazon S3.
//
// # Testing
//
// RecordingTransport records every call and replies from a Responder, so code
// using the client can be tested without a server:
//
//	rt := storedsafe.NewRecordingTransport(nil)
//	client, _ := storedsafe.New("safe.example.com",
//	    storedsafe.WithToken("token"),
//	    storedsafe.WithTransport(rt),
//	)
package storedsafe

package storedsafe

// Wire constants
const (
	// DefaultAPIVersion is the API version used in the /api/{version} prefix
	// when none is configured.
	DefaultAPIVersion = "1.0"

	// MTLSPort is the port serving mutual TLS (smartcard) authentication.
	MTLSPort = "8443"

	// TokenHeader carries the session token on every authenticated call.
	TokenHeader = "X-Http-Token"

	// FilePrefixSize is the number of leading bytes sent when the server only
	// needs to sniff a file (mime type detection, template proposal).
	FilePrefixSize = 64

	// DefaultFileTemplateID is the generic file template used by UploadFile
	// when the caller does not pick one.
	DefaultFileTemplateID = 3

	// UploadField is the multipart field carrying file content.
	UploadField = "upload"

	// UserCertField is the multipart field carrying a user certificate.
	UserCertField = "user_cert"
)

// Environment variable names
const (
	// EnvHost is the StoredSafe host name, e.g. "safe.example.com".
	EnvHost = "STOREDSAFE_HOST"

	// EnvAPIKey is the API key identifying the client application.
	EnvAPIKey = "STOREDSAFE_APIKEY"

	// EnvToken is a previously obtained session token.
	EnvToken = "STOREDSAFE_TOKEN"

	// EnvAPIVersion overrides the API version.
	// Default: 1.0
	EnvAPIVersion = "STOREDSAFE_API_VERSION"
)

// rc file keys
const (
	rcKeyHost   = "mysite"
	rcKeyAPIKey = "apikey"
	rcKeyToken  = "token"

	// DefaultRCFilename is the rc file looked up in the user's home directory.
	DefaultRCFilename = ".storedsafe-client.rc"
)

// Metric names reported to the MetricsCollector.
const (
	MetricRequests        = "storedsafe.requests"
	MetricRequestErrors   = "storedsafe.request_errors"
	MetricRequestDuration = "storedsafe.request_duration"
	MetricLogins          = "storedsafe.logins"
)

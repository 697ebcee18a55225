package storedsafe

import (
	"context"
	"io"

	"github.com/hengadev/storedsafe/internal/transport"
)

// Transport performs the HTTP calls issued by a Client.
//
// One method exists per verb. Implementations return the response for every
// status code and only report network, TLS or encoding failures as errors.
// The Options argument is the merged option bag of the call and must be
// honored for Timeout and ClientCert; Values is passed through untouched.
//
// Implementations:
//   - Default: net/http with pooled connections (used when WithTransport is not given)
//   - Tests: RecordingTransport (records every call, replies from a responder)
type Transport = transport.Transport

// FileInfo describes a file about to be sent to StoredSafe.
type FileInfo struct {
	// Name is the base name sent as the multipart filename.
	Name string

	// Extension includes the leading dot (".txt"), or is empty.
	Extension string

	// Size is the full size of the file in bytes.
	Size int64
}

// FileSystem abstracts where uploaded files are read from.
//
// The file operations of a Client (GetMimeType, FileCollect, UploadFile,
// SetUserCertificate) only go through this interface, so a file can live on
// local disk or in object storage.
//
// Implementations:
//   - Local disk: OSFileSystem (default)
//   - Amazon S3: github.com/hengadev/storedsafe/providers/s3.FileSystem
type FileSystem interface {
	// Stat returns the name, extension and size of the file at path.
	Stat(ctx context.Context, path string) (FileInfo, error)

	// ReadPrefix returns at most the first n bytes of the file. Files shorter
	// than n bytes are returned whole without error.
	ReadPrefix(ctx context.Context, path string, n int) ([]byte, error)

	// Open returns the whole content of the file. Callers close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

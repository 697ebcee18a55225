package storedsafe

import "github.com/hengadev/storedsafe/internal/transport"

// Re-export the wire types so callers only import "storedsafe".

// Options is the per-call (or per-client default) bag of transport overrides.
type Options = transport.Options

// ClientCertificate is a PEM certificate/key pair presented over mutual TLS.
type ClientCertificate = transport.ClientCertificate

// Keys of Options.Values honored by the default transport. OptionVerify is
// false to skip server certificate verification or the path of a PEM CA
// bundle. OptionProxies is a proxy URL or a map from scheme to proxy URL.
const (
	OptionVerify  = transport.ValueVerify
	OptionProxies = transport.ValueProxies
)

// Response is the server response, relayed unmodified.
type Response = transport.Response

// FilePart is the file field of a multipart request.
type FilePart = transport.FilePart

// MergeOptions composes option bags with call-site precedence: later bags win
// per key, and Headers are merged header by header. The inputs are never
// modified or shared with the result.
func MergeOptions(base Options, overrides ...Options) Options {
	return transport.Merge(base, overrides...)
}

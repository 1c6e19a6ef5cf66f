// Package imports resolves the `core.Import` nodes left unevaluated by the
// normalizer and type checker: it walks a Term, fetches each import's
// bytes through an injected capability, decodes/typechecks/normalizes the
// result, checks any declared integrity hash, and replaces the Import node
// with the resolved Term. The Resolver itself does no network or
// filesystem access: every imported byte comes through FetchCapabilities,
// so it is testable without I/O. DefaultFetcher and DiskLRUCache, also in
// this package, are the real-world implementations that do the I/O.
package imports

import (
	"time"

	"github.com/dhall-run/dhall-go/core"
)

// Outcome is one entry of a batched fetch result, aligned by index with the
// slice of sources passed to the capability that produced it.
type Outcome struct {
	Data []byte
	Err  error
}

// HTTPSource is one request in a batched read_http/read_https call: the
// full URL plus any headers the import declared.
type HTTPSource struct {
	URL          string
	Headers      map[string]string
	ParentOrigin string
}

// FetchCapabilities is the resolver's only connection to the outside
// world. Each method is batch-oriented: the resolver deduplicates sibling
// imports sharing a protocol and asks for all of them in one call, so a
// real implementation can fetch them concurrently. The returned slice must
// have exactly len(sources) entries, aligned by index.
type FetchCapabilities interface {
	ReadPath(paths []string) []Outcome
	ReadEnv(names []string) []Outcome
	ReadHTTP(sources []HTTPSource) []Outcome
	ReadHTTPS(sources []HTTPSource) []Outcome
}

// Parser turns fetched UTF-8 Dhall source into a Term. The concrete
// grammar is an external collaborator (spec.md §1); a Resolver is
// configured with whichever Parser its caller has available, typically
// `parser.Parse` from this module's own narrow implementation.
type Parser func(filename string, src []byte) (core.Term, error)

// Cache is the resolver's content-addressed store for hash-addressed
// imports. Config.Cache may be nil, in which case those results are not
// cached; results of imports without a hash are kept in the Resolver's own
// session cache for the Resolver's lifetime either way.
type Cache interface {
	Get(key string) (core.Term, bool)
	Put(key string, expr core.Term)
}

// Config carries everything a Resolver needs that isn't part of the AST
// being walked: the deadline, depth limit, fetch capabilities, decoder and
// cache. It is a plain value, never global state (SPEC_FULL §2).
type Config struct {
	Deadline   time.Time
	DepthLimit int
	Fetch      FetchCapabilities
	Parse      Parser
	Cache      Cache
	// Gateways is the ordered list of IPFS gateway base URLs tried after
	// the local filesystem fails, for an absolute path rooted at "ipfs" or
	// "ipns"; DefaultGateways starts with the localhost gateway.
	Gateways []string
	Logger   Logger
}

// Logger is the narrow slice of github.com/hashicorp/go-hclog.Logger the
// resolver needs; satisfied directly by hclog.Logger so callers can pass
// one in without this package importing hclog's full surface in its API.
type Logger interface {
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

const defaultDepthLimit = 50

// DefaultGateways are the two gateways named in the external IPFS fallback
// rule: a local IPFS HTTP gateway, then a public one over HTTPS.
var DefaultGateways = []string{
	"http://localhost:8000",
	"https://cloudflare-ipfs.com/ipfs",
}

package imports

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
)

// DefaultFetcher is the real-world FetchCapabilities: local files through
// os.ReadFile, environment variables through os.LookupEnv, and HTTP(S)
// through a retrying client built on cleanhttp's pooled transport, the
// same pairing the rest of the pack (hashicorp/nomad) uses for its own
// outbound fetches.
type DefaultFetcher struct {
	client *retryablehttp.Client
}

// NewDefaultFetcher builds a fetcher whose HTTP client logs retries
// through logger. logger is used only when it also has go-retryablehttp's
// leveled Error and Info methods, as hclog.Logger does; a nil or narrower
// logger disables client-side logging.
func NewDefaultFetcher(logger Logger) *DefaultFetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 3
	client.Logger = nil
	if l, ok := logger.(retryablehttp.LeveledLogger); ok {
		client.Logger = l
	}
	return &DefaultFetcher{client: client}
}

func (f *DefaultFetcher) ReadPath(paths []string) []Outcome {
	out := make([]Outcome, len(paths))
	for i, p := range paths {
		resolved := p
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				resolved = filepath.Join(home, p[2:])
			}
		}
		data, err := os.ReadFile(resolved)
		out[i] = Outcome{Data: data, Err: err}
	}
	return out
}

func (f *DefaultFetcher) ReadEnv(names []string) []Outcome {
	out := make([]Outcome, len(names))
	for i, name := range names {
		v, ok := os.LookupEnv(name)
		if !ok {
			out[i] = Outcome{Err: fmt.Errorf("environment variable %s is not set", name)}
			continue
		}
		out[i] = Outcome{Data: []byte(v)}
	}
	return out
}

func (f *DefaultFetcher) ReadHTTP(sources []HTTPSource) []Outcome {
	return f.readHTTPBatch(sources)
}

func (f *DefaultFetcher) ReadHTTPS(sources []HTTPSource) []Outcome {
	return f.readHTTPBatch(sources)
}

// readHTTPBatch fetches every source concurrently (spec.md §4.4's batching
// requirement: one call per protocol covers every sibling import at a
// resolution step) and performs the CORS preflight spec.md §4.4 step 6
// describes whenever the request crosses an origin that isn't localhost.
func (f *DefaultFetcher) readHTTPBatch(sources []HTTPSource) []Outcome {
	out := make([]Outcome, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out[i] = f.fetchOne(src)
			return nil
		})
	}
	g.Wait()
	return out
}

func (f *DefaultFetcher) fetchOne(src HTTPSource) Outcome {
	if err := f.corsPreflight(src); err != nil {
		return Outcome{Err: err}
	}
	req, err := retryablehttp.NewRequest(http.MethodGet, src.URL, nil)
	if err != nil {
		return Outcome{Err: err}
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Outcome{Err: fmt.Errorf("%s: unexpected status %s", src.URL, resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	return Outcome{Data: data, Err: err}
}

// corsPreflight implements the referential-transparency CORS rule: a
// remote import may only read from an origin other than its parent's when
// the parent's origin is localhost, or when the import's origin explicitly
// allows the parent via Access-Control-Allow-Origin (the parent or "*").
func (f *DefaultFetcher) corsPreflight(src HTTPSource) error {
	importOrigin := requestOrigin(src.URL)
	if src.ParentOrigin == "" || src.ParentOrigin == importOrigin {
		return nil
	}
	if isLocalhostOrigin(src.ParentOrigin) {
		return nil
	}
	req, err := http.NewRequest(http.MethodOptions, src.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Origin", src.ParentOrigin)
	resp, err := f.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: CORS preflight failed: %w", src.URL, err)
	}
	defer resp.Body.Close()
	allow := resp.Header.Get("Access-Control-Allow-Origin")
	if allow == "*" || allow == src.ParentOrigin {
		return nil
	}
	return fmt.Errorf("%s: CORS preflight denied for origin %s", src.URL, src.ParentOrigin)
}

func requestOrigin(rawURL string) string {
	i := strings.Index(rawURL, "://")
	if i < 0 {
		return rawURL
	}
	rest := rawURL[i+3:]
	end := strings.IndexAny(rest, "/?")
	if end < 0 {
		end = len(rest)
	}
	return rawURL[:i+3] + rest[:end]
}

func isLocalhostOrigin(origin string) bool {
	o := requestOrigin(origin)
	return strings.Contains(o, "localhost") || strings.Contains(o, "127.0.0.1")
}

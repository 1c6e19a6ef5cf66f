package imports

import (
	"fmt"
	"strings"

	"github.com/dhall-run/dhall-go/core"
)

// prefetchDirect collects the import-shaped leaves reachable from t
// without descending into another Import's own (not yet fetched) body,
// canonicalizes each against parents' current tail, groups them by
// protocol, and issues one batched fetch call per protocol so independent
// sibling imports of the same document are fetched together (spec.md
// §4.4's batching requirement) instead of one at a time as resolveTerm's
// recursive walk later reaches each of them individually.
type pendingFetch struct {
	key string
	imp core.Import
}

func (r *Resolver) prefetchDirect(parents []core.Import, t core.Term) {
	var direct []core.Import
	collectDirectImports(t, &direct)
	if len(direct) == 0 {
		return
	}
	parent := parents[len(parents)-1]

	var paths, envs, https, httpsS []pendingFetch
	seen := map[string]bool{}

	for _, imp := range direct {
		canon, err := canonicalize(imp, parent)
		if err != nil || len(canon.Hash) > 0 {
			// A banned combination surfaces its real error when
			// resolveImport reaches it individually; a hash-addressed
			// import is looked up in the persistent cache there too, not
			// worth prefetching speculatively here.
			continue
		}
		key := cacheKey(canon)
		if seen[key] {
			continue
		}
		seen[key] = true
		switch canon.PathKind {
		case core.LocalPath:
			if !isIPFSPath(canon) {
				paths = append(paths, pendingFetch{key, canon})
			}
		case core.EnvPath:
			envs = append(envs, pendingFetch{key, canon})
		case core.RemotePath:
			if canon.Scheme == core.HTTPS {
				httpsS = append(httpsS, pendingFetch{key, canon})
			} else {
				https = append(https, pendingFetch{key, canon})
			}
		}
	}

	r.batchMu.Lock()
	defer r.batchMu.Unlock()

	if len(paths) > 0 {
		ps := make([]string, len(paths))
		for i, p := range paths {
			ps[i] = localPathString(p.imp)
		}
		outcomes := r.cfg.Fetch.ReadPath(ps)
		for i, p := range paths {
			if i < len(outcomes) {
				r.batch[p.key] = outcomes[i]
			}
		}
	}
	if len(envs) > 0 {
		names := make([]string, len(envs))
		for i, p := range envs {
			names[i] = envComponentName(p.imp)
		}
		outcomes := r.cfg.Fetch.ReadEnv(names)
		for i, p := range envs {
			if i < len(outcomes) {
				r.batch[p.key] = outcomes[i]
			}
		}
	}
	if len(https) > 0 {
		r.dispatchHTTPBatch(https, parent, false)
	}
	if len(httpsS) > 0 {
		r.dispatchHTTPBatch(httpsS, parent, true)
	}
}

func (r *Resolver) dispatchHTTPBatch(items []pendingFetch, parent core.Import, secure bool) {
	sources := make([]HTTPSource, len(items))
	for i, p := range items {
		sources[i] = HTTPSource{URL: remoteURL(p.imp), ParentOrigin: origin(parent)}
	}
	var outcomes []Outcome
	if secure {
		outcomes = r.cfg.Fetch.ReadHTTPS(sources)
	} else {
		outcomes = r.cfg.Fetch.ReadHTTP(sources)
	}
	for i, p := range items {
		if i < len(outcomes) {
			r.batch[p.key] = outcomes[i]
		}
	}
}

// fetch returns imp's bytes, consulting the prefetch batch first and
// falling back to a single-item call to the matching capability,
// including the IPFS local→localhost-gateway→public-gateway fallback
// chain for a local path rooted at "ipfs"/"ipns".
func (r *Resolver) fetch(parent, imp core.Import) ([]byte, error) {
	key := cacheKey(imp)
	r.batchMu.Lock()
	if o, ok := r.batch[key]; ok {
		delete(r.batch, key)
		r.batchMu.Unlock()
		if o.Err != nil {
			return nil, &core.ImportError{Kind: core.FetchFailed, Source: renderImport(imp), Cause: o.Err}
		}
		return o.Data, nil
	}
	r.batchMu.Unlock()

	switch imp.PathKind {
	case core.LocalPath:
		if isIPFSPath(imp) {
			return r.fetchIPFS(parent, imp)
		}
		outcomes := r.cfg.Fetch.ReadPath([]string{localPathString(imp)})
		return singleOutcome(imp, outcomes)
	case core.EnvPath:
		outcomes := r.cfg.Fetch.ReadEnv([]string{envComponentName(imp)})
		return singleOutcome(imp, outcomes)
	case core.RemotePath:
		src := HTTPSource{URL: remoteURL(imp), ParentOrigin: origin(parent)}
		if imp.Headers != nil {
			typed, err := core.TypeOf(core.EmptyContext(), imp.Headers)
			if err == nil {
				_ = typed
				src.Headers = headersFromTerm(core.Quote(core.Eval(imp.Headers)))
			}
		}
		var outcomes []Outcome
		if imp.Scheme == core.HTTPS {
			outcomes = r.cfg.Fetch.ReadHTTPS([]HTTPSource{src})
		} else {
			outcomes = r.cfg.Fetch.ReadHTTP([]HTTPSource{src})
		}
		return singleOutcome(imp, outcomes)
	default:
		return nil, fmt.Errorf("import %s: unsupported path kind", renderImport(imp))
	}
}

// fetchIPFS implements spec.md §4.4's special case: the local filesystem
// first, then each of r.cfg.Gateways in order (by default the localhost
// gateway, then a public one).
func (r *Resolver) fetchIPFS(parent, imp core.Import) ([]byte, error) {
	if outcomes := r.cfg.Fetch.ReadPath([]string{localPathString(imp)}); len(outcomes) == 1 && outcomes[0].Err == nil {
		return outcomes[0].Data, nil
	}
	path := strings.Join(imp.Components, "/")
	var lastErr error
	for _, gateway := range r.cfg.Gateways {
		url := strings.TrimRight(gateway, "/") + "/" + path
		src := HTTPSource{URL: url, ParentOrigin: origin(parent)}
		var outcomes []Outcome
		if strings.HasPrefix(gateway, "https://") {
			outcomes = r.cfg.Fetch.ReadHTTPS([]HTTPSource{src})
		} else {
			outcomes = r.cfg.Fetch.ReadHTTP([]HTTPSource{src})
		}
		if len(outcomes) == 1 && outcomes[0].Err == nil {
			return outcomes[0].Data, nil
		}
		if len(outcomes) == 1 {
			lastErr = outcomes[0].Err
		}
	}
	return nil, &core.ImportError{Kind: core.FetchFailed, Source: renderImport(imp), Cause: lastErr}
}

func singleOutcome(imp core.Import, outcomes []Outcome) ([]byte, error) {
	if len(outcomes) != 1 {
		return nil, fmt.Errorf("import %s: fetch capability returned %d results for 1 request", renderImport(imp), len(outcomes))
	}
	if outcomes[0].Err != nil {
		return nil, &core.ImportError{Kind: core.FetchFailed, Source: renderImport(imp), Cause: outcomes[0].Err}
	}
	return outcomes[0].Data, nil
}

func remoteURL(imp core.Import) string {
	scheme := "http"
	if imp.Scheme == core.HTTPS {
		scheme = "https"
	}
	url := scheme + "://" + imp.Authority + "/" + strings.Join(imp.Components, "/")
	if imp.Query != "" {
		url += "?" + imp.Query
	}
	return url
}

func envComponentName(imp core.Import) string {
	if len(imp.Components) == 0 {
		return ""
	}
	return imp.Components[0]
}

// collectDirectImports walks t structurally the same way resolveTerm
// does, but only to find Import leaves; it never evaluates or fetches
// anything, so it is safe to run speculatively before the real resolve
// pass.
func collectDirectImports(t core.Term, out *[]core.Import) {
	switch t := t.(type) {
	case core.Import:
		*out = append(*out, t)
	case core.LambdaTerm:
		collectDirectImports(t.Type, out)
		collectDirectImports(t.Body, out)
	case core.PiTerm:
		collectDirectImports(t.Type, out)
		collectDirectImports(t.Body, out)
	case core.AppTerm:
		collectDirectImports(t.Fn, out)
		collectDirectImports(t.Arg, out)
	case core.Let:
		for _, b := range t.Bindings {
			if b.Type != nil {
				collectDirectImports(b.Type, out)
			}
			collectDirectImports(b.Value, out)
		}
		collectDirectImports(t.Body, out)
	case core.Annot:
		collectDirectImports(t.Expr, out)
		collectDirectImports(t.Annotation, out)
	case core.TextLitTerm:
		for _, c := range t.Chunks {
			collectDirectImports(c.Expr, out)
		}
	case core.IfTerm:
		collectDirectImports(t.Cond, out)
		collectDirectImports(t.T, out)
		collectDirectImports(t.F, out)
	case core.OpTerm:
		collectDirectImports(t.L, out)
		collectDirectImports(t.R, out)
	case core.EmptyList:
		collectDirectImports(t.Type, out)
	case core.NonEmptyList:
		for _, e := range t {
			collectDirectImports(e, out)
		}
	case core.Some:
		collectDirectImports(t.Val, out)
	case core.RecordType:
		for _, v := range t {
			collectDirectImports(v, out)
		}
	case core.RecordLit:
		for _, v := range t {
			collectDirectImports(v, out)
		}
	case core.ToMap:
		collectDirectImports(t.Record, out)
		if t.Type != nil {
			collectDirectImports(t.Type, out)
		}
	case core.Field:
		collectDirectImports(t.Record, out)
	case core.Project:
		collectDirectImports(t.Record, out)
	case core.ProjectType:
		collectDirectImports(t.Record, out)
		collectDirectImports(t.Selector, out)
	case core.UnionType:
		for _, v := range t {
			if v != nil {
				collectDirectImports(v, out)
			}
		}
	case core.Merge:
		collectDirectImports(t.Handler, out)
		collectDirectImports(t.Union, out)
		if t.Annotation != nil {
			collectDirectImports(t.Annotation, out)
		}
	case core.Assert:
		collectDirectImports(t.Annotation, out)
	}
}

package imports

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dhall-run/dhall-go/core"
)

// Resolver walks a Term, replacing every core.Import with its resolved
// expression. It carries no global state: every call threads its own
// Config explicitly (SPEC_FULL §2), matching the teacher's preference for
// plain value structs over package-level singletons.
type Resolver struct {
	cfg Config

	// sessionCache holds canonical-path-keyed (non-hash) results for the
	// lifetime of one Resolver: spec.md §4.4 calls this the "process-scoped
	// RAM cache", as opposed to the persistent, hash-keyed Config.Cache.
	sessionCache sync.Map

	// batch holds results prefetched for an in-flight document's direct
	// imports, keyed by cacheKey; consumed and cleared by resolveImport as
	// each import in the batch is actually resolved.
	batch   map[string]Outcome
	batchMu sync.Mutex
}

// NewResolver builds a Resolver from cfg, filling in the documented
// defaults (depth limit 50, the two spec-named IPFS gateways, a fresh
// fetcher) for any zero field; Parse is left as given and may be nil.
func NewResolver(cfg Config) *Resolver {
	if cfg.DepthLimit == 0 {
		cfg.DepthLimit = defaultDepthLimit
	}
	if cfg.Gateways == nil {
		cfg.Gateways = DefaultGateways
	}
	if cfg.Fetch == nil {
		cfg.Fetch = NewDefaultFetcher(cfg.Logger)
	}
	return &Resolver{cfg: cfg, batch: map[string]Outcome{}}
}

// Load resolves expr's imports, rooted at a single ancestor (typically
// core.Local(path)) using a default, real-world Config: a disk-backed
// cache and the real fetcher. parse decodes a fetched Code-mode document's
// UTF-8 source into a Term (normally parser.Parse); this package cannot
// import `parser` itself without an import cycle, since parser produces
// core.Term values and has no reason to depend on imports, so the caller
// (cmd/dhall) wires the two together.
func Load(parse Parser, expr core.Term, root core.Import) (core.Term, error) {
	cache, err := NewDiskLRUCache(256, nil)
	if err != nil {
		return nil, err
	}
	r := NewResolver(Config{
		Deadline:   time.Now().Add(10 * time.Minute),
		DepthLimit: defaultDepthLimit,
		Parse:      parse,
		Cache:      cache,
	})
	return r.Resolve(expr, root)
}

// Resolve is the entry point for an already-constructed Resolver: expr is
// the already-parsed root document, root seeds the parent chain (its own
// Mode/Hash are irrelevant; only its path identifies where expr came
// from).
func (r *Resolver) Resolve(expr core.Term, root core.Import) (core.Term, error) {
	r.prefetchDirect([]core.Import{root}, expr)
	return r.resolveTerm([]core.Import{root}, 0, expr)
}

// resolveTerm mirrors Shift/Substitute's exhaustive structural recursion:
// every Term variant is rebuilt with its children resolved, and an Import
// leaf is replaced by resolveImport's result.
func (r *Resolver) resolveTerm(parents []core.Import, depth int, t core.Term) (core.Term, error) {
	switch t := t.(type) {
	case core.Import:
		return r.resolveImport(parents, depth, t)
	case core.Var, core.LocalVar, core.Universe, core.Builtin,
		core.BoolLit, core.NaturalLit, core.IntegerLit, core.DoubleLit:
		return t, nil
	case core.LambdaTerm:
		typ, err := r.resolveTerm(parents, depth, t.Type)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveTerm(parents, depth, t.Body)
		if err != nil {
			return nil, err
		}
		return core.LambdaTerm{Label: t.Label, Type: typ, Body: body}, nil
	case core.PiTerm:
		typ, err := r.resolveTerm(parents, depth, t.Type)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveTerm(parents, depth, t.Body)
		if err != nil {
			return nil, err
		}
		return core.PiTerm{Label: t.Label, Type: typ, Body: body}, nil
	case core.AppTerm:
		fn, err := r.resolveTerm(parents, depth, t.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := r.resolveTerm(parents, depth, t.Arg)
		if err != nil {
			return nil, err
		}
		return core.AppTerm{Fn: fn, Arg: arg}, nil
	case core.Let:
		newBindings := make([]core.Binding, len(t.Bindings))
		for i, b := range t.Bindings {
			newB := core.Binding{Variable: b.Variable}
			if b.Type != nil {
				typ, err := r.resolveTerm(parents, depth, b.Type)
				if err != nil {
					return nil, err
				}
				newB.Type = typ
			}
			value, err := r.resolveTerm(parents, depth, b.Value)
			if err != nil {
				return nil, err
			}
			newB.Value = value
			newBindings[i] = newB
		}
		body, err := r.resolveTerm(parents, depth, t.Body)
		if err != nil {
			return nil, err
		}
		return core.Let{Bindings: newBindings, Body: body}, nil
	case core.Annot:
		expr, err := r.resolveTerm(parents, depth, t.Expr)
		if err != nil {
			return nil, err
		}
		annot, err := r.resolveTerm(parents, depth, t.Annotation)
		if err != nil {
			return nil, err
		}
		return core.Annot{Expr: expr, Annotation: annot}, nil
	case core.TextLitTerm:
		newChunks := make(core.Chunks, len(t.Chunks))
		for i, c := range t.Chunks {
			expr, err := r.resolveTerm(parents, depth, c.Expr)
			if err != nil {
				return nil, err
			}
			newChunks[i] = core.Chunk{Prefix: c.Prefix, Expr: expr}
		}
		return core.TextLitTerm{Chunks: newChunks, Suffix: t.Suffix}, nil
	case core.IfTerm:
		cond, err := r.resolveTerm(parents, depth, t.Cond)
		if err != nil {
			return nil, err
		}
		tb, err := r.resolveTerm(parents, depth, t.T)
		if err != nil {
			return nil, err
		}
		fb, err := r.resolveTerm(parents, depth, t.F)
		if err != nil {
			return nil, err
		}
		return core.IfTerm{Cond: cond, T: tb, F: fb}, nil
	case core.OpTerm:
		if t.OpCode == core.ImportAltOp {
			if l, err := r.resolveTerm(parents, depth, t.L); err == nil {
				return l, nil
			}
			return r.resolveTerm(parents, depth, t.R)
		}
		l, err := r.resolveTerm(parents, depth, t.L)
		if err != nil {
			return nil, err
		}
		rr, err := r.resolveTerm(parents, depth, t.R)
		if err != nil {
			return nil, err
		}
		return core.OpTerm{OpCode: t.OpCode, L: l, R: rr}, nil
	case core.EmptyList:
		typ, err := r.resolveTerm(parents, depth, t.Type)
		if err != nil {
			return nil, err
		}
		return core.EmptyList{Type: typ}, nil
	case core.NonEmptyList:
		newList := make(core.NonEmptyList, len(t))
		for i, e := range t {
			v, err := r.resolveTerm(parents, depth, e)
			if err != nil {
				return nil, err
			}
			newList[i] = v
		}
		return newList, nil
	case core.Some:
		v, err := r.resolveTerm(parents, depth, t.Val)
		if err != nil {
			return nil, err
		}
		return core.Some{Val: v}, nil
	case core.RecordType:
		newRT := make(core.RecordType, len(t))
		for k, v := range t {
			rv, err := r.resolveTerm(parents, depth, v)
			if err != nil {
				return nil, err
			}
			newRT[k] = rv
		}
		return newRT, nil
	case core.RecordLit:
		newRT := make(core.RecordLit, len(t))
		for k, v := range t {
			rv, err := r.resolveTerm(parents, depth, v)
			if err != nil {
				return nil, err
			}
			newRT[k] = rv
		}
		return newRT, nil
	case core.ToMap:
		record, err := r.resolveTerm(parents, depth, t.Record)
		if err != nil {
			return nil, err
		}
		newT := core.ToMap{Record: record}
		if t.Type != nil {
			typ, err := r.resolveTerm(parents, depth, t.Type)
			if err != nil {
				return nil, err
			}
			newT.Type = typ
		}
		return newT, nil
	case core.Field:
		record, err := r.resolveTerm(parents, depth, t.Record)
		if err != nil {
			return nil, err
		}
		return core.Field{Record: record, FieldName: t.FieldName}, nil
	case core.Project:
		record, err := r.resolveTerm(parents, depth, t.Record)
		if err != nil {
			return nil, err
		}
		return core.Project{Record: record, FieldNames: t.FieldNames}, nil
	case core.ProjectType:
		record, err := r.resolveTerm(parents, depth, t.Record)
		if err != nil {
			return nil, err
		}
		sel, err := r.resolveTerm(parents, depth, t.Selector)
		if err != nil {
			return nil, err
		}
		return core.ProjectType{Record: record, Selector: sel}, nil
	case core.UnionType:
		newUT := make(core.UnionType, len(t))
		for k, v := range t {
			if v == nil {
				newUT[k] = nil
				continue
			}
			rv, err := r.resolveTerm(parents, depth, v)
			if err != nil {
				return nil, err
			}
			newUT[k] = rv
		}
		return newUT, nil
	case core.Merge:
		handler, err := r.resolveTerm(parents, depth, t.Handler)
		if err != nil {
			return nil, err
		}
		union, err := r.resolveTerm(parents, depth, t.Union)
		if err != nil {
			return nil, err
		}
		newM := core.Merge{Handler: handler, Union: union}
		if t.Annotation != nil {
			annot, err := r.resolveTerm(parents, depth, t.Annotation)
			if err != nil {
				return nil, err
			}
			newM.Annotation = annot
		}
		return newM, nil
	case core.Assert:
		annot, err := r.resolveTerm(parents, depth, t.Annotation)
		if err != nil {
			return nil, err
		}
		return core.Assert{Annotation: annot}, nil
	}
	panic("resolveTerm: unknown term type")
}

// resolveImport is the ten-step algorithm of spec.md §4.4.
func (r *Resolver) resolveImport(parents []core.Import, depth int, imp core.Import) (core.Term, error) {
	if imp.PathKind == core.MissingPath {
		return nil, &core.ImportError{Kind: core.ImportMissing, Source: "missing"}
	}
	parent := parents[len(parents)-1]

	// Step 1: canonicalize.
	canon, err := canonicalize(imp, parent)
	if err != nil {
		return nil, err
	}

	hashBased := len(canon.Hash) > 0
	var key string
	if hashBased {
		key = "sha256:" + hex.EncodeToString(canon.Hash)
	} else {
		key = cacheKey(canon)
	}

	// Step 2-3: cache lookup.
	if hashBased {
		if r.cfg.Cache != nil {
			if cached, ok := r.cfg.Cache.Get(key); ok {
				return cached, nil
			}
		}
	} else if cached, ok := r.sessionCache.Load(key); ok {
		return cached.(core.Term), nil
	}

	// Step 4: parent-chain loop detection.
	for _, p := range parents {
		if samePath(p, canon) {
			return nil, &core.ImportError{Kind: core.ImportLoop, Source: renderImport(canon)}
		}
	}

	// Step 5: depth limit.
	limit := r.cfg.DepthLimit
	if limit > 0 && len(parents)+1 > limit {
		return nil, &core.ImportError{Kind: core.ImportDepthExceeded, Source: renderImport(canon)}
	}

	if canon.Mode == core.Location {
		return locationValue(canon), nil
	}

	// Step 6: fetch.
	data, err := r.fetch(parent, canon)
	if err != nil {
		return nil, err
	}

	var resolved core.Term
	if canon.Mode == core.RawText {
		resolved = core.TextLitTerm{Suffix: string(data)}
	} else {
		// Step 7: decode.
		raw, err := r.decode(canon, data)
		if err != nil {
			return nil, err
		}
		newParents := append(append([]core.Import{}, parents...), canon)
		r.prefetchDirect(newParents, raw)
		resolvedRaw, err := r.resolveTerm(newParents, depth+1, raw)
		if err != nil {
			return nil, err
		}

		// Step 8: typecheck, normalize, alpha-normalize.
		if _, err := core.TypeOf(core.EmptyContext(), resolvedRaw); err != nil {
			return nil, errors.Wrapf(err, "import %s", renderImport(canon))
		}
		resolved = core.AlphaNormalize(core.Quote(core.Eval(resolvedRaw)))
	}

	// Step 9: integrity.
	if hashBased {
		if err := core.CheckIntegrity(renderImport(canon), key, resolved); err != nil {
			return nil, err
		}
	}

	// Step 10: cache and return.
	if hashBased {
		if r.cfg.Cache != nil {
			r.cfg.Cache.Put(key, resolved)
		}
	} else {
		r.sessionCache.Store(key, resolved)
	}
	return resolved, nil
}

func samePath(a, b core.Import) bool {
	if a.PathKind != b.PathKind {
		return false
	}
	return cacheKey(a) == cacheKey(b)
}

// decode dispatches on whether data looks like a CBOR-encoded AST or raw
// UTF-8 Dhall source (spec.md §4.4 step 7). The self-describe tag 55799
// (bytes 0xd9 0xd9 0xf7) is the unambiguous signal; short of that, trying
// the CBOR decode first and falling back to the parser on failure is a
// closer approximation of "recognizable major types" than a byte-level
// sniff, since a handful of CBOR major-type lead bytes overlap with valid
// UTF-8 continuation bytes.
func (r *Resolver) decode(canon core.Import, data []byte) (core.Term, error) {
	if len(data) >= 3 && data[0] == 0xd9 && data[1] == 0xd9 && data[2] == 0xf7 {
		return core.DecodeCbor(data)
	}
	if term, err := core.DecodeCbor(data); err == nil {
		return term, nil
	}
	if r.cfg.Parse == nil {
		return nil, fmt.Errorf("import %s: no parser configured for Dhall source", renderImport(canon))
	}
	return r.cfg.Parse(renderImport(canon), data)
}

// locationValue builds the `< Local : Text | Remote : Text | Environment :
// Text | Missing : Text >` value spec.md §4.4 describes for Mode ==
// Location.
func locationValue(canon core.Import) core.Term {
	ut := core.UnionType{
		"Local":       core.TextType,
		"Remote":      core.TextType,
		"Environment": core.TextType,
		"Missing":     core.TextType,
	}
	tag := map[core.ImportPathKind]string{
		core.LocalPath:   "Local",
		core.RemotePath:  "Remote",
		core.EnvPath:     "Environment",
		core.MissingPath: "Missing",
	}[canon.PathKind]
	return core.AppTerm{
		Fn:  core.Field{Record: ut, FieldName: tag},
		Arg: core.TextLitTerm{Suffix: renderImport(canon)},
	}
}

// headersFromTerm extracts a string/string header map from a fully
// resolved and normalized `List { mapKey : Text, mapValue : Text }` term,
// the shape an import's optional `using headers` expression must have.
func headersFromTerm(t core.Term) map[string]string {
	list, ok := t.(core.NonEmptyList)
	if !ok {
		return nil
	}
	out := map[string]string{}
	for _, e := range list {
		rec, ok := e.(core.RecordLit)
		if !ok {
			continue
		}
		key, kok := rec["mapKey"].(core.TextLitTerm)
		value, vok := rec["mapValue"].(core.TextLitTerm)
		if kok && vok && len(key.Chunks) == 0 && len(value.Chunks) == 0 {
			out[key.Suffix] = value.Suffix
		}
	}
	return out
}

func localPathString(imp core.Import) string {
	return "/" + strings.Join(imp.Components, "/")
}

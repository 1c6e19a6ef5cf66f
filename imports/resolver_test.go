package imports_test

import (
	"strings"
	"testing"

	"github.com/dhall-run/dhall-go/core"
	"github.com/dhall-run/dhall-go/imports"
	"github.com/dhall-run/dhall-go/parser"
)

// fakeFetch serves fixed content for exact path/name/URL matches and
// fails everything else, so tests never touch the real filesystem or
// network.
type fakeFetch struct {
	paths map[string]string
	envs  map[string]string
	http  map[string]string
}

func (f *fakeFetch) ReadPath(paths []string) []imports.Outcome {
	out := make([]imports.Outcome, len(paths))
	for i, p := range paths {
		if v, ok := f.paths[p]; ok {
			out[i] = imports.Outcome{Data: []byte(v)}
		} else {
			out[i] = imports.Outcome{Err: notFound(p)}
		}
	}
	return out
}

func (f *fakeFetch) ReadEnv(names []string) []imports.Outcome {
	out := make([]imports.Outcome, len(names))
	for i, n := range names {
		if v, ok := f.envs[n]; ok {
			out[i] = imports.Outcome{Data: []byte(v)}
		} else {
			out[i] = imports.Outcome{Err: notFound(n)}
		}
	}
	return out
}

func (f *fakeFetch) ReadHTTP(sources []imports.HTTPSource) []imports.Outcome {
	return f.readHTTP(sources)
}
func (f *fakeFetch) ReadHTTPS(sources []imports.HTTPSource) []imports.Outcome {
	return f.readHTTP(sources)
}
func (f *fakeFetch) readHTTP(sources []imports.HTTPSource) []imports.Outcome {
	out := make([]imports.Outcome, len(sources))
	for i, s := range sources {
		if v, ok := f.http[s.URL]; ok {
			out[i] = imports.Outcome{Data: []byte(v)}
		} else {
			out[i] = imports.Outcome{Err: notFound(s.URL)}
		}
	}
	return out
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) + ": not found" }

func notFound(name string) error { return notFoundError(name) }

func newResolver(f *fakeFetch) *imports.Resolver {
	return imports.NewResolver(imports.Config{
		Fetch: f,
		Parse: parser.Parse,
	})
}

func TestResolveLocalImport(t *testing.T) {
	f := &fakeFetch{paths: map[string]string{"/a/b.dhall": "True"}}
	r := newResolver(f)
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.LocalPath, LocalKind: core.Absolute, Components: []string{"a", "b.dhall"},
	}}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != core.Term(core.BoolLit(true)) {
		t.Errorf("got %#v, want True", got)
	}
}

func TestResolveRelativeChaining(t *testing.T) {
	f := &fakeFetch{paths: map[string]string{"/a/b.dhall": "1"}}
	r := newResolver(f)
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.LocalPath, LocalKind: core.RelativeToParent, Components: []string{"b.dhall"},
	}}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	n, ok := got.(core.NaturalLit)
	if !ok || n.BigInt().Int64() != 1 {
		t.Errorf("got %#v, want Natural 1", got)
	}
}

func TestResolveLoopDetected(t *testing.T) {
	f := &fakeFetch{paths: map[string]string{"/a/b.dhall": "./a.dhall", "/a/a.dhall": "./b.dhall"}}
	r := newResolver(f)
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.LocalPath, LocalKind: core.RelativeToParent, Components: []string{"b.dhall"},
	}}
	root := core.Local("/a/a.dhall")
	_, err := r.Resolve(expr, root)
	if err == nil {
		t.Fatal("expected a loop error")
	}
	ie, ok := err.(*core.ImportError)
	if !ok || ie.Kind != core.ImportLoop {
		t.Errorf("got %v, want ImportLoop", err)
	}
}

func TestResolveMissingAlternative(t *testing.T) {
	f := &fakeFetch{paths: map[string]string{}}
	r := newResolver(f)
	expr := core.OpTerm{
		OpCode: core.ImportAltOp,
		L:      core.Import{ImportHashed: core.ImportHashed{PathKind: core.MissingPath}},
		R:      core.NewNaturalLit(42),
	}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	n, ok := got.(core.NaturalLit)
	if !ok || n.BigInt().Int64() != 42 {
		t.Fatalf("got %#v, want Natural 42", got)
	}
}

func TestResolveEnvImport(t *testing.T) {
	f := &fakeFetch{envs: map[string]string{"FOO": "True"}}
	r := newResolver(f)
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.EnvPath, Components: []string{"FOO"},
	}}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != core.Term(core.BoolLit(true)) {
		t.Errorf("got %#v, want True", got)
	}
}

func TestResolveLocationMode(t *testing.T) {
	r := newResolver(&fakeFetch{})
	expr := core.Import{Mode: core.Location, ImportHashed: core.ImportHashed{
		PathKind: core.LocalPath, LocalKind: core.Absolute, Components: []string{"a", "b.dhall"},
	}}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	app, ok := got.(core.AppTerm)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	field, ok := app.Fn.(core.Field)
	if !ok || field.FieldName != "Local" {
		t.Fatalf("got %#v", app.Fn)
	}
}

func TestBannedLocalUnderRemoteParent(t *testing.T) {
	r := newResolver(&fakeFetch{})
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.LocalPath, LocalKind: core.RelativeToParent, Components: []string{"b.dhall"},
	}}
	root := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.RemotePath, Authority: "example.com", Components: []string{"a.dhall"},
	}}
	_, err := r.Resolve(expr, root)
	if err == nil {
		t.Fatal("expected ImportBanned")
	}
	ie, ok := err.(*core.ImportError)
	if !ok || ie.Kind != core.ImportBanned {
		t.Errorf("got %v, want ImportBanned", err)
	}
}

func TestResolveRemoteImport(t *testing.T) {
	f := &fakeFetch{http: map[string]string{"http://example.com/pkg.dhall": "True"}}
	r := newResolver(f)
	expr := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.RemotePath, Authority: "example.com", Components: []string{"pkg.dhall"},
	}}
	root := core.Local("/a/root.dhall")
	got, err := r.Resolve(expr, root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != core.Term(core.BoolLit(true)) {
		t.Errorf("got %#v, want True", got)
	}
	if !strings.Contains("http://example.com/pkg.dhall", "example.com") {
		t.Fatal("sanity")
	}
}

package parser_test

import (
	"math/big"
	"testing"

	"github.com/dhall-run/dhall-go/core"
	"github.com/dhall-run/dhall-go/parser"
)

func parse(t *testing.T, src string) core.Term {
	t.Helper()
	term, err := parser.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return term
}

func TestLiterals(t *testing.T) {
	if got := parse(t, "Type"); got != core.Term(core.Type) {
		t.Errorf("Type: got %#v", got)
	}
	if got := parse(t, "True"); got != core.Term(core.BoolLit(true)) {
		t.Errorf("True: got %#v", got)
	}
	if got := parse(t, "Natural"); got != core.Term(core.NaturalType) {
		t.Errorf("Natural: got %#v", got)
	}
	n := parse(t, "3").(core.NaturalLit)
	if n.BigInt().Cmp(big.NewInt(3)) != 0 {
		t.Errorf("3: got %v", n)
	}
	i := parse(t, "-3").(core.IntegerLit)
	if i.BigInt().Cmp(big.NewInt(-3)) != 0 {
		t.Errorf("-3: got %v", i)
	}
}

func TestIdentifiers(t *testing.T) {
	got := parse(t, "x").(core.Var)
	if got.Name != "x" || got.Index != 0 {
		t.Errorf("x: got %#v", got)
	}
	got = parse(t, "x@1").(core.Var)
	if got.Name != "x" || got.Index != 1 {
		t.Errorf("x@1: got %#v", got)
	}
}

func TestLambdaAndPi(t *testing.T) {
	got := parse(t, `λ(foo : Natural) → foo`)
	lam, ok := got.(core.LambdaTerm)
	if !ok || lam.Label != "foo" || lam.Type != core.Term(core.NaturalType) {
		t.Errorf("lambda: got %#v", got)
	}
	got = parse(t, `forall(x : Type) -> x`)
	if _, ok := got.(core.PiTerm); !ok {
		t.Errorf("forall: got %#v", got)
	}
}

func TestApplicationAndOperators(t *testing.T) {
	got := parse(t, "List Natural")
	app, ok := got.(core.AppTerm)
	if !ok || app.Fn != core.Term(core.ListType) || app.Arg != core.Term(core.NaturalType) {
		t.Errorf("application: got %#v", got)
	}
	got = parse(t, "3 + 5")
	op, ok := got.(core.OpTerm)
	if !ok || op.OpCode != core.PlusOp {
		t.Errorf("plus: got %#v", got)
	}
}

func TestLetAndAnnot(t *testing.T) {
	got := parse(t, "let x = 1 in x")
	let, ok := got.(core.Let)
	if !ok || len(let.Bindings) != 1 || let.Bindings[0].Variable != "x" {
		t.Errorf("let: got %#v", got)
	}
	got = parse(t, "1 : Natural")
	annot, ok := got.(core.Annot)
	if !ok || annot.Annotation != core.Term(core.NaturalType) {
		t.Errorf("annot: got %#v", got)
	}
}

func TestEmptyListAnnotation(t *testing.T) {
	got := parse(t, "[] : List Natural")
	el, ok := got.(core.EmptyList)
	if !ok {
		t.Fatalf("empty list: got %#v", got)
	}
	app, ok := el.Type.(core.AppTerm)
	if !ok || app.Fn != core.Term(core.ListType) {
		t.Errorf("empty list type: got %#v", el.Type)
	}
}

func TestRecordAndUnion(t *testing.T) {
	got := parse(t, `{ a = 1, b = True }`)
	rec, ok := got.(core.RecordLit)
	if !ok || len(rec) != 2 {
		t.Errorf("record literal: got %#v", got)
	}
	got = parse(t, `{ a : Natural, b : Bool }`)
	rt, ok := got.(core.RecordType)
	if !ok || len(rt) != 2 {
		t.Errorf("record type: got %#v", got)
	}
	got = parse(t, `< Foo : Natural | Bar >`)
	ut, ok := got.(core.UnionType)
	if !ok || len(ut) != 2 {
		t.Errorf("union type: got %#v", got)
	}
}

func TestTextInterpolation(t *testing.T) {
	got := parse(t, `"hello ${x} world"`)
	lit, ok := got.(core.TextLitTerm)
	if !ok || len(lit.Chunks) != 1 || lit.Chunks[0].Prefix != "hello " || lit.Suffix != " world" {
		t.Errorf("text literal: got %#v", got)
	}
}

func TestImportLiterals(t *testing.T) {
	got := parse(t, "./foo/bar.dhall")
	imp, ok := got.(core.Import)
	if !ok || imp.PathKind != core.LocalPath || imp.LocalKind != core.RelativeToCwd {
		t.Fatalf("relative import: got %#v", got)
	}
	if len(imp.Components) != 2 || imp.Components[0] != "foo" || imp.Components[1] != "bar.dhall" {
		t.Errorf("relative import components: got %#v", imp.Components)
	}

	got = parse(t, "../up.dhall")
	imp, ok = got.(core.Import)
	if !ok || imp.LocalKind != core.RelativeToParent || len(imp.Components) != 2 || imp.Components[0] != ".." {
		t.Errorf("parent-relative import: got %#v", got)
	}

	got = parse(t, "/abs/path.dhall")
	imp, ok = got.(core.Import)
	if !ok || imp.LocalKind != core.Absolute || len(imp.Components) != 2 {
		t.Errorf("absolute import: got %#v", got)
	}

	got = parse(t, "env:FOO")
	imp, ok = got.(core.Import)
	if !ok || imp.PathKind != core.EnvPath || imp.Components[0] != "FOO" {
		t.Errorf("env import: got %#v", got)
	}

	got = parse(t, "missing")
	imp, ok = got.(core.Import)
	if !ok || imp.PathKind != core.MissingPath {
		t.Errorf("missing import: got %#v", got)
	}

	got = parse(t, "https://example.com/pkg.dhall")
	imp, ok = got.(core.Import)
	if !ok || imp.PathKind != core.RemotePath || imp.Scheme != core.HTTPS || imp.Authority != "example.com" {
		t.Errorf("remote import: got %#v", got)
	}

	got = parse(t, "./secret.dhall as Text")
	imp, ok = got.(core.Import)
	if !ok || imp.Mode != core.RawText {
		t.Errorf("as Text import: got %#v", got)
	}
}

func TestRejectsGarbage(t *testing.T) {
	if _, err := parser.Parse("test", []byte("let x =")); err == nil {
		t.Error("expected parse error for truncated let")
	}
}

package host_test

import (
	"math/big"
	"testing"

	"github.com/dhall-run/dhall-go/core"
	"github.com/dhall-run/dhall-go/host"
)

func TestAsDhallPrimitives(t *testing.T) {
	if got, err := host.AsDhall(true); err != nil || got != core.Term(core.BoolLit(true)) {
		t.Errorf("bool: got %#v, %v", got, err)
	}
	if got, err := host.AsDhall("hi"); err != nil {
		t.Errorf("string: %v", err)
	} else if lit, ok := got.(core.TextLitTerm); !ok || lit.Suffix != "hi" {
		t.Errorf("string: got %#v", got)
	}
	if got, err := host.AsDhall(uint(3)); err != nil {
		t.Errorf("uint: %v", err)
	} else if n, ok := got.(core.NaturalLit); !ok || n.BigInt().Cmp(big.NewInt(3)) != 0 {
		t.Errorf("uint: got %#v", got)
	}
}

func TestAsDhallStructRoundTrip(t *testing.T) {
	type point struct {
		X uint
		Y uint
	}
	term, err := host.AsDhall(point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("AsDhall: %v", err)
	}
	rec, ok := term.(core.RecordLit)
	if !ok || len(rec) != 2 {
		t.Fatalf("got %#v", term)
	}

	back, err := host.FromDhall(term)
	if err != nil {
		t.Fatalf("FromDhall: %v", err)
	}
	m, ok := back.(map[string]interface{})
	if !ok {
		t.Fatalf("got %#v", back)
	}
	x, ok := m["X"].(*big.Int)
	if !ok || x.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("X: got %#v", m["X"])
	}
}

func TestAsDhallOptional(t *testing.T) {
	var p *uint
	term, err := host.AsDhall(p)
	if err != nil {
		t.Fatalf("AsDhall nil: %v", err)
	}
	app, ok := term.(core.AppTerm)
	if !ok || app.Fn != core.Term(core.NoneType) {
		t.Errorf("nil pointer: got %#v", term)
	}

	n := uint(5)
	term, err = host.AsDhall(&n)
	if err != nil {
		t.Fatalf("AsDhall some: %v", err)
	}
	if _, ok := term.(core.Some); !ok {
		t.Errorf("non-nil pointer: got %#v", term)
	}
}

func TestAsDhallHeterogeneousList(t *testing.T) {
	list := []interface{}{uint(1), "two"}
	term, err := host.AsDhall(list)
	if err != nil {
		t.Fatalf("AsDhall: %v", err)
	}
	lit, ok := term.(core.NonEmptyList)
	if !ok || len(lit) != 2 {
		t.Fatalf("got %#v", term)
	}
	for _, e := range lit {
		if _, ok := e.(core.AppTerm); !ok {
			t.Errorf("expected a tagged union element, got %#v", e)
		}
	}
}

func TestFromDhallList(t *testing.T) {
	expr := core.NonEmptyList{core.NewNaturalLit(1), core.NewNaturalLit(2)}
	got, err := host.FromDhall(expr)
	if err != nil {
		t.Fatalf("FromDhall: %v", err)
	}
	xs, ok := got.([]interface{})
	if !ok || len(xs) != 2 {
		t.Fatalf("got %#v", got)
	}
}

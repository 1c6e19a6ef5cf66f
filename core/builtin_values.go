package core

import "math/big"

// This file implements the δ-rules of the built-in functions as Call
// methods on the builtin singleton values declared in value.go, and on
// small curried intermediate value types that capture one argument at a
// time. Each Call either returns the next stage (capturing its argument)
// or, at the final stage, the reduced result — or nil when the builtin
// isn't ready to reduce yet, in which case applyVal wraps the application
// in a plain AppValue and the builtin stays stuck (e.g. `List/length n`
// where n is a free variable).
//
// Fusion laws ("Natural/build ∘ Natural/fold = id" and the List/Optional
// analogues) need no special-casing: build applies its argument to the
// real Natural/List/Optional constructors, so folding an already-built
// value is just ordinary function application and reduces on its own.

// ---- Natural/build ----

func (naturalBuildVal0) Call(g Value) Value {
	return applyVal(g, NaturalType, natSuccVal{}, NewNaturalLit(0))
}

type natSuccVal struct{}

func (natSuccVal) valueNode() {}
func (natSuccVal) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		var r big.Int
		r.Add(n.BigInt(), big.NewInt(1))
		return NaturalLit(r)
	}
	return nil
}

// ---- Natural/fold ----

type naturalFoldVal1 struct{ n Value }
type naturalFoldVal2 struct {
	n Value
	a Value
}
type naturalFoldVal3 struct {
	n, a, succ Value
}

func (naturalFoldVal0) Call(n Value) Value        { return naturalFoldVal1{n} }
func (v naturalFoldVal1) valueNode()              {}
func (v naturalFoldVal1) Call(a Value) Value      { return naturalFoldVal2{v.n, a} }
func (v naturalFoldVal2) valueNode()              {}
func (v naturalFoldVal2) Call(succ Value) Value   { return naturalFoldVal3{v.n, v.a, succ} }
func (v naturalFoldVal3) valueNode()              {}
func (v naturalFoldVal3) Call(zero Value) Value {
	n, ok := v.n.(NaturalLit)
	if !ok {
		return nil
	}
	result := zero
	one := big.NewInt(1)
	i := new(big.Int)
	for i.Cmp(n.BigInt()) < 0 {
		result = applyVal(v.succ, result)
		i.Add(i, one)
	}
	return result
}

// ---- Natural/isZero, even, odd, show, toInteger, subtract ----

func (naturalIsZeroVal0) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		return BoolLit(isZero(n))
	}
	return nil
}

func (naturalEvenVal0) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		var m big.Int
		m.Mod(n.BigInt(), big.NewInt(2))
		return BoolLit(m.Sign() == 0)
	}
	return nil
}

func (naturalOddVal0) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		var m big.Int
		m.Mod(n.BigInt(), big.NewInt(2))
		return BoolLit(m.Sign() != 0)
	}
	return nil
}

func (naturalShowVal0) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		return TextLitVal{Suffix: n.String()}
	}
	return nil
}

func (naturalToIntegerVal0) Call(x Value) Value {
	if n, ok := x.(NaturalLit); ok {
		return IntegerLit(*n.BigInt())
	}
	return nil
}

type naturalSubtractVal1 struct{ a Value }

func (naturalSubtractVal0) Call(a Value) Value { return naturalSubtractVal1{a} }
func (v naturalSubtractVal1) valueNode()       {}
func (v naturalSubtractVal1) Call(b Value) Value {
	an, aok := v.a.(NaturalLit)
	if aok && isZero(an) {
		return b
	}
	bn, bok := b.(NaturalLit)
	if aok && bok {
		var r big.Int
		r.Sub(bn.BigInt(), an.BigInt())
		if r.Sign() < 0 {
			return NewNaturalLit(0)
		}
		return NaturalLit(r)
	}
	if judgmentallyEqualVals(v.a, b) {
		return NewNaturalLit(0)
	}
	return nil
}

// ---- Integer/show, Integer/toDouble ----

func (integerShowVal0) Call(x Value) Value {
	if n, ok := x.(IntegerLit); ok {
		return TextLitVal{Suffix: n.String()}
	}
	return nil
}

func (integerToDoubleVal0) Call(x Value) Value {
	if n, ok := x.(IntegerLit); ok {
		f := new(big.Float).SetInt(n.BigInt())
		r, _ := f.Float64()
		return DoubleLit(r)
	}
	return nil
}

// ---- Double/show ----

func (doubleShowVal0) Call(x Value) Value {
	if d, ok := x.(DoubleLit); ok {
		return TextLitVal{Suffix: formatDouble(float64(d))}
	}
	return nil
}

// ---- Text/show ----

func (textShowVal0) Call(x Value) Value {
	t, ok := x.(TextLitVal)
	if !ok || len(t.Chunks) != 0 {
		return nil
	}
	return TextLitVal{Suffix: quoteDhallText(t.Suffix)}
}

// ---- List/build ----

type listBuildVal1 struct{ typ Value }

func (listBuildVal0) Call(a Value) Value { return listBuildVal1{a} }
func (v listBuildVal1) valueNode()       {}
func (v listBuildVal1) Call(g Value) Value {
	return applyVal(g, AppValue{Fn: ListType, Arg: v.typ}, listConsVal1{v.typ}, EmptyListVal{Type: AppValue{Fn: ListType, Arg: v.typ}})
}

type listConsVal1 struct{ typ Value }
type listConsVal2 struct {
	typ Value
	x   Value
}

func (v listConsVal1) valueNode()       {}
func (v listConsVal1) Call(x Value) Value { return listConsVal2{v.typ, x} }
func (v listConsVal2) valueNode()         {}
func (v listConsVal2) Call(xs Value) Value {
	if _, ok := xs.(EmptyListVal); ok {
		return NonEmptyListVal{v.x}
	}
	if rest, ok := xs.(NonEmptyListVal); ok {
		out := make(NonEmptyListVal, 0, len(rest)+1)
		out = append(out, v.x)
		out = append(out, rest...)
		return out
	}
	return nil
}

// ---- List/fold ----

type listFoldVal1 struct{ typ Value }
type listFoldVal2 struct {
	typ  Value
	list Value
}
type listFoldVal3 struct {
	typ, list, outType Value
}
type listFoldVal4 struct {
	typ, list, outType, cons Value
}

func (listFoldVal0) Call(a Value) Value           { return listFoldVal1{a} }
func (v listFoldVal1) valueNode()                 {}
func (v listFoldVal1) Call(list Value) Value      { return listFoldVal2{v.typ, list} }
func (v listFoldVal2) valueNode()                 {}
func (v listFoldVal2) Call(outType Value) Value   { return listFoldVal3{v.typ, v.list, outType} }
func (v listFoldVal3) valueNode()                 {}
func (v listFoldVal3) Call(cons Value) Value      { return listFoldVal4{v.typ, v.list, v.outType, cons} }
func (v listFoldVal4) valueNode()                 {}
func (v listFoldVal4) Call(empty Value) Value {
	switch list := v.list.(type) {
	case EmptyListVal:
		return empty
	case NonEmptyListVal:
		result := empty
		for i := len(list) - 1; i >= 0; i-- {
			result = applyVal(v.cons, list[i], result)
		}
		return result
	}
	return nil
}

// ---- List/length, head, last, indexed, reverse ----

type listLengthVal1 struct{ typ Value }

func (listLengthVal0) Call(a Value) Value { return listLengthVal1{a} }
func (v listLengthVal1) valueNode()       {}
func (v listLengthVal1) Call(list Value) Value {
	switch l := list.(type) {
	case EmptyListVal:
		return NewNaturalLit(0)
	case NonEmptyListVal:
		return NewNaturalLit(int64(len(l)))
	}
	return nil
}

type listHeadVal1 struct{ typ Value }

func (listHeadVal0) Call(a Value) Value { return listHeadVal1{a} }
func (v listHeadVal1) valueNode()       {}
func (v listHeadVal1) Call(list Value) Value {
	switch l := list.(type) {
	case EmptyListVal:
		return AppValue{Fn: NoneType, Arg: v.typ}
	case NonEmptyListVal:
		return SomeVal{l[0]}
	}
	return nil
}

type listLastVal1 struct{ typ Value }

func (listLastVal0) Call(a Value) Value { return listLastVal1{a} }
func (v listLastVal1) valueNode()       {}
func (v listLastVal1) Call(list Value) Value {
	switch l := list.(type) {
	case EmptyListVal:
		return AppValue{Fn: NoneType, Arg: v.typ}
	case NonEmptyListVal:
		return SomeVal{l[len(l)-1]}
	}
	return nil
}

type listIndexedVal1 struct{ typ Value }

func (listIndexedVal0) Call(a Value) Value { return listIndexedVal1{a} }
func (v listIndexedVal1) valueNode()       {}
func (v listIndexedVal1) Call(list Value) Value {
	switch l := list.(type) {
	case EmptyListVal:
		return EmptyListVal{Type: AppValue{Fn: ListType, Arg: RecordTypeVal{"index": NaturalType, "value": v.typ}}}
	case NonEmptyListVal:
		out := make(NonEmptyListVal, len(l))
		for i, el := range l {
			out[i] = RecordLitVal{"index": NewNaturalLit(int64(i)), "value": el}
		}
		return out
	}
	return nil
}

type listReverseVal1 struct{ typ Value }

func (listReverseVal0) Call(a Value) Value { return listReverseVal1{a} }
func (v listReverseVal1) valueNode()       {}
func (v listReverseVal1) Call(list Value) Value {
	switch l := list.(type) {
	case EmptyListVal:
		return l
	case NonEmptyListVal:
		out := make(NonEmptyListVal, len(l))
		for i, el := range l {
			out[len(l)-1-i] = el
		}
		return out
	}
	return nil
}

// ---- Optional/build, Optional/fold ----

type optionalBuildVal1 struct{ typ Value }

func (optionalBuildVal0) Call(a Value) Value { return optionalBuildVal1{a} }
func (v optionalBuildVal1) valueNode()       {}
func (v optionalBuildVal1) Call(g Value) Value {
	return applyVal(g, AppValue{Fn: OptionalType, Arg: v.typ}, optionalSomeVal1{}, AppValue{Fn: NoneType, Arg: v.typ})
}

type optionalSomeVal1 struct{}

func (optionalSomeVal1) valueNode()          {}
func (optionalSomeVal1) Call(x Value) Value { return SomeVal{x} }

type optionalFoldVal1 struct{ typ Value }
type optionalFoldVal2 struct{ typ, opt Value }
type optionalFoldVal3 struct{ typ, opt, outType Value }
type optionalFoldVal4 struct{ typ, opt, outType, some Value }

func (optionalFoldVal0) Call(a Value) Value         { return optionalFoldVal1{a} }
func (v optionalFoldVal1) valueNode()               {}
func (v optionalFoldVal1) Call(opt Value) Value     { return optionalFoldVal2{v.typ, opt} }
func (v optionalFoldVal2) valueNode()               {}
func (v optionalFoldVal2) Call(outType Value) Value { return optionalFoldVal3{v.typ, v.opt, outType} }
func (v optionalFoldVal3) valueNode()               {}
func (v optionalFoldVal3) Call(some Value) Value    { return optionalFoldVal4{v.typ, v.opt, v.outType, some} }
func (v optionalFoldVal4) valueNode()               {}
func (v optionalFoldVal4) Call(none Value) Value {
	if some, ok := v.opt.(SomeVal); ok {
		return applyVal(v.some, some.Val)
	}
	if app, ok := v.opt.(AppValue); ok {
		if _, ok := app.Fn.(Builtin); ok {
			return none
		}
	}
	return nil
}

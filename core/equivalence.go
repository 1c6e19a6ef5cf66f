package core

import "math"

// judgmentallyEqual decides β-equivalence of two terms by evaluating both
// and comparing the resulting values up to α-equivalence.
func judgmentallyEqual(t1, t2 Term) bool {
	return judgmentallyEqualVals(Eval(t1), Eval(t2))
}

func judgmentallyEqualVals(v1, v2 Value) bool {
	return judgmentallyEqualValsWith(0, v1, v2)
}

// judgmentallyEqualValsWith compares two values for α-equivalence. level
// counts how many binders have been crossed so far; it is used to generate
// fresh QuoteVars that can't collide with any variable already bound,
// bodies without ever naming their argument, using de Bruijn levels rather
// than literal renaming.
func judgmentallyEqualValsWith(level int, v1, v2 Value) bool {
	switch v1 := v1.(type) {
	case Universe:
		v2, ok := v2.(Universe)
		return ok && v1 == v2
	case Builtin:
		v2, ok := v2.(Builtin)
		return ok && v1 == v2
	case naturalBuildVal0, naturalEvenVal0, naturalFoldVal0, naturalIsZeroVal0,
		naturalOddVal0, naturalShowVal0, naturalSubtractVal0, naturalToIntegerVal0,
		integerShowVal0, integerToDoubleVal0, doubleShowVal0, optionalBuildVal0,
		optionalFoldVal0, textShowVal0, listBuildVal0, listFoldVal0, listHeadVal0,
		listIndexedVal0, listLengthVal0, listLastVal0, listReverseVal0:
		return v1 == v2
	case Var:
		v2, ok := v2.(Var)
		return ok && v1 == v2
	case LocalVar:
		v2, ok := v2.(LocalVar)
		return ok && v1 == v2
	case QuoteVar:
		v2, ok := v2.(QuoteVar)
		return ok && v1 == v2
	case BoolLit:
		v2, ok := v2.(BoolLit)
		return ok && v1 == v2
	case NaturalLit:
		v2, ok := v2.(NaturalLit)
		return ok && v1.BigInt().Cmp(v2.BigInt()) == 0
	case IntegerLit:
		v2, ok := v2.(IntegerLit)
		return ok && v1.BigInt().Cmp(v2.BigInt()) == 0
	case DoubleLit:
		v2, ok := v2.(DoubleLit)
		return ok && v1 == v2 && math.Signbit(float64(v1)) == math.Signbit(float64(v2))
	case LambdaValue:
		v2, ok := v2.(LambdaValue)
		if !ok {
			return false
		}
		// Labels are deliberately ignored here, for alpha equivalence.
		return judgmentallyEqualValsWith(level, v1.Domain, v2.Domain) &&
			judgmentallyEqualValsWith(level+1,
				v1.Call(QuoteVar{Name: "_", Index: level}),
				v2.Call(QuoteVar{Name: "_", Index: level}))
	case PiValue:
		v2, ok := v2.(PiValue)
		if !ok {
			return false
		}
		return judgmentallyEqualValsWith(level, v1.Domain, v2.Domain) &&
			judgmentallyEqualValsWith(level+1,
				v1.Range(QuoteVar{Name: "_", Index: level}),
				v2.Range(QuoteVar{Name: "_", Index: level}))
	case AppValue:
		v2, ok := v2.(AppValue)
		return ok && judgmentallyEqualValsWith(level, v1.Fn, v2.Fn) &&
			judgmentallyEqualValsWith(level, v1.Arg, v2.Arg)
	case OpValue:
		v2, ok := v2.(OpValue)
		return ok && v1.OpCode == v2.OpCode &&
			judgmentallyEqualValsWith(level, v1.L, v2.L) &&
			judgmentallyEqualValsWith(level, v1.R, v2.R)
	case EmptyListVal:
		v2, ok := v2.(EmptyListVal)
		return ok && judgmentallyEqualValsWith(level, v1.Type, v2.Type)
	case NonEmptyListVal:
		v2, ok := v2.(NonEmptyListVal)
		if !ok || len(v1) != len(v2) {
			return false
		}
		for i := range v1 {
			if !judgmentallyEqualValsWith(level, v1[i], v2[i]) {
				return false
			}
		}
		return true
	case TextLitVal:
		v2, ok := v2.(TextLitVal)
		if !ok || v1.Suffix != v2.Suffix || len(v1.Chunks) != len(v2.Chunks) {
			return false
		}
		for i, c1 := range v1.Chunks {
			c2 := v2.Chunks[i]
			if c1.Prefix != c2.Prefix || !judgmentallyEqualValsWith(level, c1.Expr, c2.Expr) {
				return false
			}
		}
		return true
	case IfVal:
		v2, ok := v2.(IfVal)
		return ok && judgmentallyEqualValsWith(level, v1.Cond, v2.Cond) &&
			judgmentallyEqualValsWith(level, v1.T, v2.T) &&
			judgmentallyEqualValsWith(level, v1.F, v2.F)
	case SomeVal:
		v2, ok := v2.(SomeVal)
		return ok && judgmentallyEqualValsWith(level, v1.Val, v2.Val)
	case RecordTypeVal:
		v2, ok := v2.(RecordTypeVal)
		if !ok || len(v1) != len(v2) {
			return false
		}
		for k := range v1 {
			if v2[k] == nil || !judgmentallyEqualValsWith(level, v1[k], v2[k]) {
				return false
			}
		}
		return true
	case RecordLitVal:
		v2, ok := v2.(RecordLitVal)
		if !ok || len(v1) != len(v2) {
			return false
		}
		for k := range v1 {
			if v2[k] == nil || !judgmentallyEqualValsWith(level, v1[k], v2[k]) {
				return false
			}
		}
		return true
	case ToMapVal:
		v2, ok := v2.(ToMapVal)
		return ok && judgmentallyEqualValsWith(level, v1.Record, v2.Record) &&
			judgmentallyEqualValsWith(level, v1.Type, v2.Type)
	case FieldVal:
		v2, ok := v2.(FieldVal)
		return ok && v1.FieldName == v2.FieldName && judgmentallyEqualValsWith(level, v1.Record, v2.Record)
	case ProjectVal:
		v2, ok := v2.(ProjectVal)
		if !ok || len(v1.FieldNames) != len(v2.FieldNames) {
			return false
		}
		for i := range v1.FieldNames {
			if v1.FieldNames[i] != v2.FieldNames[i] {
				return false
			}
		}
		return judgmentallyEqualValsWith(level, v1.Record, v2.Record)
	case UnionTypeVal:
		v2, ok := v2.(UnionTypeVal)
		if !ok || len(v1) != len(v2) {
			return false
		}
		for k := range v1 {
			if v1[k] == nil {
				if v2[k] != nil {
					return false
				}
				continue
			}
			if !judgmentallyEqualValsWith(level, v1[k], v2[k]) {
				return false
			}
		}
		return true
	case MergeVal:
		v2, ok := v2.(MergeVal)
		if !ok {
			return false
		}
		if (v1.Annotation == nil) != (v2.Annotation == nil) {
			return false
		}
		if v1.Annotation != nil && !judgmentallyEqualValsWith(level, v1.Annotation, v2.Annotation) {
			return false
		}
		return judgmentallyEqualValsWith(level, v1.Handler, v2.Handler) &&
			judgmentallyEqualValsWith(level, v1.Union, v2.Union)
	case AssertVal:
		v2, ok := v2.(AssertVal)
		return ok && judgmentallyEqualValsWith(level, v1.Annotation, v2.Annotation)
	}
	panic("judgmentallyEqualValsWith: unknown Value type")
}

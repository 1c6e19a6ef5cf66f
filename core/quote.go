package core

import "sort"

// Quote converts a normal-form Value back into a Term, the inverse of Eval
// restricted to values that came from evaluating a well-typed term. level
// counts how many binders have been crossed; a LambdaValue/PiValue's body
// is probed with a QuoteVar at the current level and the result re-quoted
// one level deeper, the same trick judgmentallyEqualValsWith uses to walk
// under a closure without ever materializing a fresh name.
func Quote(v Value) Term {
	return quoteWith(0, v)
}

func quoteWith(level int, v Value) Term {
	switch v := v.(type) {
	case Universe:
		return v
	case Builtin:
		return v
	case naturalBuildVal0, naturalEvenVal0, naturalFoldVal0, naturalIsZeroVal0,
		naturalOddVal0, naturalShowVal0, naturalSubtractVal0, naturalToIntegerVal0,
		integerShowVal0, integerToDoubleVal0, doubleShowVal0, optionalBuildVal0,
		optionalFoldVal0, textShowVal0, listBuildVal0, listFoldVal0, listHeadVal0,
		listIndexedVal0, listLengthVal0, listLastVal0, listReverseVal0:
		return builtinForStage(v)
	case Var:
		return v
	case LocalVar:
		return v
	case QuoteVar:
		// QuoteVar only ever appears as the probe argument fed into a
		// closure during comparison or quoting; here it means the binder
		// that introduced it is `level - v.Index - 1` steps up, so its
		// de Bruijn index from the current position is that distance.
		return Var{Name: v.Name, Index: level - v.Index - 1}
	case BoolLit:
		return v
	case NaturalLit:
		return v
	case IntegerLit:
		return v
	case DoubleLit:
		return v
	case LambdaValue:
		body := v.Call(QuoteVar{Name: v.Label, Index: level})
		return LambdaTerm{Label: v.Label, Type: quoteWith(level, v.Domain), Body: quoteWith(level+1, body)}
	case PiValue:
		body := v.Range(QuoteVar{Name: v.Label, Index: level})
		return PiTerm{Label: v.Label, Type: quoteWith(level, v.Domain), Body: quoteWith(level+1, body)}
	case AppValue:
		return AppTerm{Fn: quoteWith(level, v.Fn), Arg: quoteWith(level, v.Arg)}
	case OpValue:
		return OpTerm{OpCode: v.OpCode, L: quoteWith(level, v.L), R: quoteWith(level, v.R)}
	case TextLitVal:
		chunks := make(Chunks, len(v.Chunks))
		for i, c := range v.Chunks {
			chunks[i] = Chunk{Prefix: c.Prefix, Expr: quoteWith(level, c.Expr)}
		}
		return TextLitTerm{Chunks: chunks, Suffix: v.Suffix}
	case IfVal:
		return IfTerm{Cond: quoteWith(level, v.Cond), T: quoteWith(level, v.T), F: quoteWith(level, v.F)}
	case EmptyListVal:
		return EmptyList{Type: quoteWith(level, v.Type)}
	case NonEmptyListVal:
		out := make(NonEmptyList, len(v))
		for i, el := range v {
			out[i] = quoteWith(level, el)
		}
		return out
	case SomeVal:
		return Some{Val: quoteWith(level, v.Val)}
	case RecordTypeVal:
		out := make(RecordType, len(v))
		for k, f := range v {
			out[k] = quoteWith(level, f)
		}
		return out
	case RecordLitVal:
		out := make(RecordLit, len(v))
		for k, f := range v {
			out[k] = quoteWith(level, f)
		}
		return out
	case ToMapVal:
		out := ToMap{Record: quoteWith(level, v.Record)}
		if v.Type != nil {
			out.Type = quoteWith(level, v.Type)
		}
		return out
	case FieldVal:
		return Field{Record: quoteWith(level, v.Record), FieldName: v.FieldName}
	case ProjectVal:
		names := append([]string(nil), v.FieldNames...)
		sort.Strings(names)
		return Project{Record: quoteWith(level, v.Record), FieldNames: names}
	case UnionTypeVal:
		out := make(UnionType, len(v))
		for k, f := range v {
			if f == nil {
				out[k] = nil
				continue
			}
			out[k] = quoteWith(level, f)
		}
		return out
	case MergeVal:
		out := Merge{Handler: quoteWith(level, v.Handler), Union: quoteWith(level, v.Union)}
		if v.Annotation != nil {
			out.Annotation = quoteWith(level, v.Annotation)
		}
		return out
	case AssertVal:
		return Assert{Annotation: quoteWith(level, v.Annotation)}
	}
	panic("Quote: unknown value type")
}

// builtinForStage recovers the Builtin identifier for a builtin's zero-arg
// stage value, the inverse of the table in evalWith's Builtin case.
func builtinForStage(v Value) Builtin {
	switch v.(type) {
	case naturalBuildVal0:
		return NaturalBuild
	case naturalEvenVal0:
		return NaturalEven
	case naturalFoldVal0:
		return NaturalFold
	case naturalIsZeroVal0:
		return NaturalIsZero
	case naturalOddVal0:
		return NaturalOdd
	case naturalShowVal0:
		return NaturalShow
	case naturalSubtractVal0:
		return NaturalSubtract
	case naturalToIntegerVal0:
		return NaturalToInteger
	case integerShowVal0:
		return IntegerShow
	case integerToDoubleVal0:
		return IntegerToDouble
	case doubleShowVal0:
		return DoubleShow
	case optionalBuildVal0:
		return OptionalBuild
	case optionalFoldVal0:
		return OptionalFold
	case textShowVal0:
		return TextShow
	case listBuildVal0:
		return ListBuild
	case listFoldVal0:
		return ListFold
	case listHeadVal0:
		return ListHead
	case listIndexedVal0:
		return ListIndexed
	case listLengthVal0:
		return ListLength
	case listLastVal0:
		return ListLast
	case listReverseVal0:
		return ListReverse
	}
	panic("builtinForStage: not a zero-arg builtin stage")
}

// AlphaNormalize renders t into the canonical alpha-normal form used for
// semantic hashing: every bound variable's label is replaced by "_",
// independent of what the source actually wrote.
func AlphaNormalize(t Term) Term {
	return Quote(AlphaBetaEval(t))
}

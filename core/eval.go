package core

import (
	"math/big"
	"sort"
	"strings"
)

// Env maps a source-level variable name to the stack of values currently
// bound to it, innermost first — the runtime counterpart of Context.
type Env map[string][]Value

// Eval normalizes Term to a Value (β-normal form).
func Eval(t Term) Value {
	return evalWith(t, Env{}, false)
}

// AlphaBetaEval alpha-beta-normalizes Term to a Value, renaming every bound
// variable to "_" as it goes. This is what feeds the semantic hash.
func AlphaBetaEval(t Term) Value {
	return evalWith(t, Env{}, true)
}

func envWith(e Env, label string, v Value) Env {
	newEnv := make(Env, len(e)+1)
	for k, vs := range e {
		newEnv[k] = vs
	}
	newEnv[label] = append([]Value{v}, newEnv[label]...)
	return newEnv
}

func evalWith(t Term, e Env, alpha bool) Value {
	switch t := t.(type) {
	case Universe:
		return t
	case Builtin:
		switch t {
		case NaturalBuild:
			return NaturalBuildVal
		case NaturalEven:
			return NaturalEvenVal
		case NaturalFold:
			return NaturalFoldVal
		case NaturalIsZero:
			return NaturalIsZeroVal
		case NaturalOdd:
			return NaturalOddVal
		case NaturalShow:
			return NaturalShowVal
		case NaturalSubtract:
			return NaturalSubtractVal
		case NaturalToInteger:
			return NaturalToIntegerVal
		case IntegerShow:
			return IntegerShowVal
		case IntegerToDouble:
			return IntegerToDoubleVal
		case DoubleShow:
			return DoubleShowVal
		case OptionalBuild:
			return OptionalBuildVal
		case OptionalFold:
			return OptionalFoldVal
		case TextShow:
			return TextShowVal
		case ListBuild:
			return ListBuildVal
		case ListFold:
			return ListFoldVal
		case ListLength:
			return ListLengthVal
		case ListHead:
			return ListHeadVal
		case ListLast:
			return ListLastVal
		case ListIndexed:
			return ListIndexedVal
		case ListReverse:
			return ListReverseVal
		default:
			return t
		}
	case Var:
		if t.Index >= len(e[t.Name]) {
			return t
		}
		return e[t.Name][t.Index]
	case LocalVar:
		return t
	case LambdaTerm:
		v := LambdaValue{
			Label:  t.Label,
			Domain: evalWith(t.Type, e, alpha),
			Fn: func(x Value) Value {
				return evalWith(t.Body, envWith(e, t.Label, x), alpha)
			},
		}
		if alpha {
			v.Label = "_"
		}
		return v
	case PiTerm:
		v := PiValue{
			Label:  t.Label,
			Domain: evalWith(t.Type, e, alpha),
			Range: func(x Value) Value {
				return evalWith(t.Body, envWith(e, t.Label, x), alpha)
			},
		}
		if alpha {
			v.Label = "_"
		}
		return v
	case AppTerm:
		fn := evalWith(t.Fn, e, alpha)
		arg := evalWith(t.Arg, e, alpha)
		return applyVal(fn, arg)
	case Let:
		newEnv := e
		for _, b := range t.Bindings {
			val := evalWith(b.Value, newEnv, alpha)
			newEnv = envWith(newEnv, b.Variable, val)
		}
		return evalWith(t.Body, newEnv, alpha)
	case Annot:
		return evalWith(t.Expr, e, alpha)
	case DoubleLit:
		return t
	case TextLitTerm:
		var str strings.Builder
		var newChunks ChunkVals
		for _, chunk := range t.Chunks {
			str.WriteString(chunk.Prefix)
			normExpr := evalWith(chunk.Expr, e, alpha)
			if text, ok := normExpr.(TextLitVal); ok {
				if len(text.Chunks) != 0 {
					str.WriteString(text.Chunks[0].Prefix)
					newChunks = append(newChunks, ChunkVal{Prefix: str.String(), Expr: text.Chunks[0].Expr})
					newChunks = append(newChunks, text.Chunks[1:]...)
					str.Reset()
				}
				str.WriteString(text.Suffix)
			} else {
				newChunks = append(newChunks, ChunkVal{Prefix: str.String(), Expr: normExpr})
				str.Reset()
			}
		}
		str.WriteString(t.Suffix)
		newSuffix := str.String()

		// "${<expr>}" with nothing else collapses straight to <expr>.
		if len(newChunks) == 1 && newChunks[0].Prefix == "" && newSuffix == "" {
			return newChunks[0].Expr
		}
		return TextLitVal{Chunks: newChunks, Suffix: newSuffix}
	case BoolLit:
		return t
	case IfTerm:
		condVal := evalWith(t.Cond, e, alpha)
		if condVal == Value(BoolLit(true)) {
			return evalWith(t.T, e, alpha)
		}
		if condVal == Value(BoolLit(false)) {
			return evalWith(t.F, e, alpha)
		}
		tVal := evalWith(t.T, e, alpha)
		fVal := evalWith(t.F, e, alpha)
		if tVal == Value(BoolLit(true)) && fVal == Value(BoolLit(false)) {
			return condVal
		}
		if judgmentallyEqualVals(tVal, fVal) {
			return tVal
		}
		return IfVal{Cond: condVal, T: tVal, F: fVal}
	case NaturalLit:
		return t
	case IntegerLit:
		return t
	case OpTerm:
		return evalOp(t, e, alpha)
	case EmptyList:
		return EmptyListVal{Type: evalWith(t.Type, e, alpha)}
	case NonEmptyList:
		result := make(NonEmptyListVal, len(t))
		for i, el := range t {
			result[i] = evalWith(el, e, alpha)
		}
		return result
	case Some:
		return SomeVal{evalWith(t.Val, e, alpha)}
	case RecordType:
		newRT := make(RecordTypeVal, len(t))
		for k, v := range t {
			newRT[k] = evalWith(v, e, alpha)
		}
		return newRT
	case RecordLit:
		newRL := make(RecordLitVal, len(t))
		for k, v := range t {
			newRL[k] = evalWith(v, e, alpha)
		}
		return newRL
	case ToMap:
		recordVal := evalWith(t.Record, e, alpha)
		if record, ok := recordVal.(RecordLitVal); ok {
			if len(record) == 0 {
				return EmptyListVal{Type: evalWith(t.Type, e, alpha)}
			}
			fieldnames := make([]string, 0, len(record))
			for k := range record {
				fieldnames = append(fieldnames, k)
			}
			sort.Strings(fieldnames)
			result := make(NonEmptyListVal, len(fieldnames))
			for i, k := range fieldnames {
				result[i] = RecordLitVal{"mapKey": TextLitVal{Suffix: k}, "mapValue": record[k]}
			}
			return result
		}
		out := ToMapVal{Record: recordVal}
		if t.Type != nil {
			out.Type = evalWith(t.Type, e, alpha)
		}
		return out
	case Field:
		return evalField(t, e, alpha)
	case Project:
		return evalProject(t, e, alpha)
	case ProjectType:
		s := evalWith(t.Selector, e, alpha).(RecordTypeVal)
		fieldNames := make([]string, 0, len(s))
		for fieldName := range s {
			fieldNames = append(fieldNames, fieldName)
		}
		return evalWith(Project{Record: t.Record, FieldNames: fieldNames}, e, alpha)
	case UnionType:
		result := make(UnionTypeVal, len(t))
		for k, v := range t {
			if v == nil {
				result[k] = nil
				continue
			}
			result[k] = evalWith(v, e, alpha)
		}
		return result
	case Merge:
		return evalMerge(t, e, alpha)
	case Assert:
		return AssertVal{Annotation: evalWith(t.Annotation, e, alpha)}
	case Import:
		// Imports must be eliminated by imports.Load before Eval runs; an
		// Import reaching here means a caller skipped resolution.
		panic("core.Eval: unresolved Import reached the normalizer")
	}
	panic("evalWith: unknown term type")
}

func evalField(t Field, e Env, alpha bool) Value {
	record := evalWith(t.Record, e, alpha)
	for {
		if proj, ok := record.(ProjectVal); ok {
			record = proj.Record
			continue
		}
		op, ok := record.(OpValue)
		if ok && op.OpCode == RecordMergeOp {
			if l, ok := op.L.(RecordLitVal); ok {
				if lField, ok := l[t.FieldName]; ok {
					return FieldVal{
						Record:    OpValue{L: RecordLitVal{t.FieldName: lField}, R: op.R, OpCode: RecordMergeOp},
						FieldName: t.FieldName,
					}
				}
				record = op.R
				continue
			}
			if r, ok := op.R.(RecordLitVal); ok {
				if rField, ok := r[t.FieldName]; ok {
					return FieldVal{
						Record:    OpValue{L: op.L, R: RecordLitVal{t.FieldName: rField}, OpCode: RecordMergeOp},
						FieldName: t.FieldName,
					}
				}
				record = op.L
				continue
			}
		}
		if ok && op.OpCode == RightBiasedRecordMergeOp {
			if l, ok := op.L.(RecordLitVal); ok {
				if lField, ok := l[t.FieldName]; ok {
					return FieldVal{
						Record:    OpValue{L: RecordLitVal{t.FieldName: lField}, R: op.R, OpCode: RightBiasedRecordMergeOp},
						FieldName: t.FieldName,
					}
				}
				record = op.R
				continue
			}
			if r, ok := op.R.(RecordLitVal); ok {
				if rField, ok := r[t.FieldName]; ok {
					return rField
				}
				record = op.L
				continue
			}
		}
		break
	}
	if lit, ok := record.(RecordLitVal); ok {
		return lit[t.FieldName]
	}
	return FieldVal{Record: record, FieldName: t.FieldName}
}

func evalProject(t Project, e Env, alpha bool) Value {
	record := evalWith(t.Record, e, alpha)
	fieldNames := append([]string(nil), t.FieldNames...)
	sort.Strings(fieldNames)
	for {
		if proj, ok := record.(ProjectVal); ok {
			record = proj.Record
			continue
		}
		op, ok := record.(OpValue)
		if ok && op.OpCode == RightBiasedRecordMergeOp {
			if r, ok := op.R.(RecordLitVal); ok {
				var notOverridden []string
				overrides := RecordLitVal{}
				for _, fieldName := range fieldNames {
					if override, ok := r[fieldName]; ok {
						overrides[fieldName] = override
					} else {
						notOverridden = append(notOverridden, fieldName)
					}
				}
				if len(notOverridden) == 0 {
					return overrides
				}
				return OpValue{
					OpCode: RightBiasedRecordMergeOp,
					L:      ProjectVal{Record: op.L, FieldNames: notOverridden},
					R:      overrides,
				}
			}
		}
		break
	}
	if lit, ok := record.(RecordLitVal); ok {
		result := make(RecordLitVal, len(fieldNames))
		for _, k := range fieldNames {
			result[k] = lit[k]
		}
		return result
	}
	if len(fieldNames) == 0 {
		return RecordLitVal{}
	}
	return ProjectVal{Record: record, FieldNames: fieldNames}
}

func evalMerge(t Merge, e Env, alpha bool) Value {
	handlerVal := evalWith(t.Handler, e, alpha)
	unionVal := evalWith(t.Union, e, alpha)
	if handlers, ok := handlerVal.(RecordLitVal); ok {
		if union, ok := unionVal.(AppValue); ok {
			if field, ok := union.Fn.(FieldVal); ok {
				return applyVal(handlers[field.FieldName], union.Arg)
			}
		}
		if union, ok := unionVal.(FieldVal); ok {
			return handlers[union.FieldName]
		}
	}
	output := MergeVal{Handler: handlerVal, Union: unionVal}
	if t.Annotation != nil {
		output.Annotation = evalWith(t.Annotation, e, alpha)
	}
	return output
}

func evalOp(t OpTerm, e Env, alpha bool) Value {
	if t.OpCode == CompleteOp {
		return evalWith(
			Annot{
				Expr:       OpTerm{OpCode: RightBiasedRecordMergeOp, L: Field{t.L, "default"}, R: t.R},
				Annotation: Field{t.L, "Type"},
			}, e, alpha)
	}
	l := evalWith(t.L, e, alpha)
	r := evalWith(t.R, e, alpha)
	switch t.OpCode {
	case OrOp, AndOp, EqOp, NeOp:
		lb, lok := l.(BoolLit)
		rb, rok := r.(BoolLit)
		switch t.OpCode {
		case OrOp:
			if lok {
				if lb {
					return BoolLit(true)
				}
				return r
			}
			if rok {
				if rb {
					return BoolLit(true)
				}
				return l
			}
			if judgmentallyEqualVals(l, r) {
				return l
			}
		case AndOp:
			if lok {
				if lb {
					return r
				}
				return BoolLit(false)
			}
			if rok {
				if rb {
					return l
				}
				return BoolLit(false)
			}
			if judgmentallyEqualVals(l, r) {
				return l
			}
		case EqOp:
			if lok && bool(lb) {
				return r
			}
			if rok && bool(rb) {
				return l
			}
			if judgmentallyEqualVals(l, r) {
				return BoolLit(true)
			}
		case NeOp:
			if lok && !bool(lb) {
				return r
			}
			if rok && !bool(rb) {
				return l
			}
			if judgmentallyEqualVals(l, r) {
				return BoolLit(false)
			}
		}
	case TextAppendOp:
		return evalWith(TextLitTerm{Chunks: Chunks{{Expr: t.L}, {Expr: t.R}}}, e, alpha)
	case ListAppendOp:
		if _, ok := l.(EmptyListVal); ok {
			return r
		}
		if _, ok := r.(EmptyListVal); ok {
			return l
		}
		ll, lok := l.(NonEmptyListVal)
		rl, rok := r.(NonEmptyListVal)
		if lok && rok {
			out := make(NonEmptyListVal, 0, len(ll)+len(rl))
			out = append(out, ll...)
			out = append(out, rl...)
			return out
		}
	case PlusOp:
		ln, lok := l.(NaturalLit)
		rn, rok := r.(NaturalLit)
		if lok && rok {
			var sum big.Int
			sum.Add(ln.BigInt(), rn.BigInt())
			return NaturalLit(sum)
		}
		if lok && isZero(ln) {
			return r
		}
		if rok && isZero(rn) {
			return l
		}
	case TimesOp:
		ln, lok := l.(NaturalLit)
		rn, rok := r.(NaturalLit)
		if lok && rok {
			var prod big.Int
			prod.Mul(ln.BigInt(), rn.BigInt())
			return NaturalLit(prod)
		}
		if lok && isZero(ln) {
			return NewNaturalLit(0)
		}
		if rok && isZero(rn) {
			return NewNaturalLit(0)
		}
		if lok && isOne(ln) {
			return r
		}
		if rok && isOne(rn) {
			return l
		}
	case RecordMergeOp:
		lR, lOk := l.(RecordLitVal)
		rR, rOk := r.(RecordLitVal)
		if lOk && len(lR) == 0 {
			return r
		}
		if rOk && len(rR) == 0 {
			return l
		}
		if lOk && rOk {
			return mustMergeRecordLitVals(lR, rR)
		}
	case RecordTypeMergeOp:
		lRT, lOk := l.(RecordTypeVal)
		rRT, rOk := r.(RecordTypeVal)
		if lOk && len(lRT) == 0 {
			return r
		}
		if rOk && len(rRT) == 0 {
			return l
		}
		if lOk && rOk {
			result, err := mergeRecordTypes(lRT, rRT)
			if err != nil {
				panic(err) // shouldn't happen for well-typed terms
			}
			return result
		}
	case RightBiasedRecordMergeOp:
		lLit, lOk := l.(RecordLitVal)
		rLit, rOk := r.(RecordLitVal)
		if lOk && len(lLit) == 0 {
			return r
		}
		if rOk && len(rLit) == 0 {
			return l
		}
		if lOk && rOk {
			result := make(RecordLitVal, len(lLit)+len(rLit))
			for k, v := range lLit {
				result[k] = v
			}
			for k, v := range rLit {
				result[k] = v
			}
			return result
		}
		if judgmentallyEqualVals(l, r) {
			return l
		}
	case ImportAltOp:
		// Resolved away during import loading; by the time Eval sees an
		// OpTerm the LHS always succeeded, so this just keeps l.
		return l
	case EquivOp:
		// no runtime reduction beyond normalizing both operands
	}
	return OpValue{OpCode: t.OpCode, L: l, R: r}
}

func isZero(n NaturalLit) bool { return n.BigInt().Sign() == 0 }
func isOne(n NaturalLit) bool  { return n.BigInt().Cmp(big.NewInt(1)) == 0 }

func applyVal(fn Value, args ...Value) Value {
	out := fn
	for _, arg := range args {
		if f, ok := out.(Callable); ok {
			if result := f.Call(arg); result != nil {
				out = result
				continue
			}
		}
		out = AppValue{Fn: out, Arg: arg}
	}
	return out
}

func mergeRecordTypes(l, r RecordTypeVal) (RecordTypeVal, error) {
	result := make(RecordTypeVal, len(l)+len(r))
	for k, v := range l {
		result[k] = v
	}
	for k, v := range r {
		if lField, ok := result[k]; ok {
			lSub, lok := lField.(RecordTypeVal)
			rSub, rok := v.(RecordTypeVal)
			if !(lok && rok) {
				return nil, mkTypeError(RecordFieldKindMismatch, nil, "field %s present in both operands of ⩓ but not both records", k)
			}
			merged, err := mergeRecordTypes(lSub, rSub)
			if err != nil {
				return nil, err
			}
			result[k] = merged
		} else {
			result[k] = v
		}
	}
	return result, nil
}

func mustMergeRecordLitVals(l, r RecordLitVal) RecordLitVal {
	output := make(RecordLitVal, len(l)+len(r))
	for k, v := range l {
		output[k] = v
	}
	for k, v := range r {
		if lField, ok := output[k]; ok {
			lSub, lok := lField.(RecordLitVal)
			rSub, rok := v.(RecordLitVal)
			if !(lok && rok) {
				panic("Record mismatch") // typecheck ought to have caught this
			}
			output[k] = mustMergeRecordLitVals(lSub, rSub)
		} else {
			output[k] = v
		}
	}
	return output
}

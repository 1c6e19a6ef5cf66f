package core

import (
	"github.com/pkg/errors"
)

// TypeOf infers the type of a closed, well-scoped term under ctx, or
// returns a *TypeError. Free variables inside annotations and return types
// are left as bare Var values by Eval's lookup-miss fallback, so the
// checker never needs a parallel value environment: Context alone carries
// everything a nested Eval call needs to resolve an outer binder's type.
func TypeOf(ctx Context, t Term) (Value, error) {
	return typeWith(ctx, t)
}

func typeWith(ctx Context, t Term) (Value, error) {
	switch t := t.(type) {
	case Universe:
		switch t {
		case Type:
			return Kind, nil
		case Kind:
			return Sort, nil
		default:
			return nil, mkTypeError(SortHasNoType, t, "Sort has no type")
		}
	case Builtin:
		return builtinType(t)
	case Var:
		if typ, ok := ctx.Lookup(t.Name, t.Index); ok {
			return typ, nil
		}
		return nil, mkTypeError(FreeVariable, t, "unbound variable %s", t.Name)
	case LocalVar:
		return nil, mkTypeError(FreeVariable, t, "unbound local variable %s", t.Name)
	case LambdaTerm:
		return typeOfLambda(ctx, t)
	case PiTerm:
		return typeOfPi(ctx, t)
	case AppTerm:
		return typeOfApp(ctx, t)
	case Let:
		return typeOfLet(ctx, t)
	case Annot:
		return typeOfAnnot(ctx, t)
	case BoolLit:
		return BoolType, nil
	case NaturalLit:
		return NaturalType, nil
	case IntegerLit:
		return IntegerType, nil
	case DoubleLit:
		return DoubleType, nil
	case TextLitTerm:
		return typeOfTextLit(ctx, t)
	case IfTerm:
		return typeOfIf(ctx, t)
	case OpTerm:
		return typeOfOp(ctx, t)
	case EmptyList:
		return typeOfEmptyList(ctx, t)
	case NonEmptyList:
		return typeOfNonEmptyList(ctx, t)
	case Some:
		return typeOfSome(ctx, t)
	case RecordType:
		return typeOfRecordType(ctx, t)
	case RecordLit:
		return typeOfRecordLit(ctx, t)
	case ToMap:
		return typeOfToMap(ctx, t)
	case Field:
		return typeOfField(ctx, t)
	case Project:
		return typeOfProject(ctx, t)
	case ProjectType:
		return typeOfProjectType(ctx, t)
	case UnionType:
		return typeOfUnionType(ctx, t)
	case Merge:
		return typeOfMerge(ctx, t)
	case Assert:
		return typeOfAssert(ctx, t)
	case Import:
		return nil, mkTypeError(UnknownBuiltin, t, "unresolved import reached the type checker")
	}
	panic("typeWith: unknown term type")
}

func typeOfLambda(ctx Context, t LambdaTerm) (Value, error) {
	domU, err := typeWith(ctx, t.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "lambda parameter %s", t.Label)
	}
	if _, ok := domU.(Universe); !ok {
		return nil, mkTypeError(ApplicationNotFunction, t, "%s is not a type", renderString(t.Type))
	}
	domain := Eval(t.Type)
	bodyType, err := typeWith(ctx.Insert(t.Label, domain), t.Body)
	if err != nil {
		return nil, err
	}
	piTerm := PiTerm{Label: t.Label, Type: t.Type, Body: Quote(bodyType)}
	if _, err := typeOfPi(ctx, piTerm); err != nil {
		return nil, err
	}
	return Eval(piTerm), nil
}

func typeOfPi(ctx Context, t PiTerm) (Value, error) {
	inU, err := typeWith(ctx, t.Type)
	if err != nil {
		return nil, err
	}
	inUniv, ok := inU.(Universe)
	if !ok {
		return nil, mkTypeError(ApplicationNotFunction, t, "%s is not a type", renderString(t.Type))
	}
	domain := Eval(t.Type)
	outU, err := typeWith(ctx.Insert(t.Label, domain), t.Body)
	if err != nil {
		return nil, err
	}
	outUniv, ok := outU.(Universe)
	if !ok {
		return nil, mkTypeError(ApplicationNotFunction, t, "%s is not a type", renderString(t.Body))
	}
	return functionCheck(inUniv, outUniv), nil
}

func typeOfApp(ctx Context, t AppTerm) (Value, error) {
	fnType, err := typeWith(ctx, t.Fn)
	if err != nil {
		return nil, err
	}
	pi, ok := fnType.(PiValue)
	if !ok {
		return nil, mkTypeError(ApplicationNotFunction, t, "%s is not a function", renderString(t.Fn))
	}
	argType, err := typeWith(ctx, t.Arg)
	if err != nil {
		return nil, err
	}
	if !judgmentallyEqualVals(argType, pi.Domain) {
		return nil, mkTypeError(ApplicationTypeMismatch, t, "expected argument of type %s, got %s",
			renderString(Quote(pi.Domain)), renderString(Quote(argType)))
	}
	return pi.Range(Eval(t.Arg)), nil
}

// typeOfLet reduces one binding to App(Lambda, value), matching evalWith's
// desugaring, so the inferred type for the remaining bindings and the body
// gets the bound value properly substituted in by Range instead of leaking
// a dangling reference to the let-bound name.
func typeOfLet(ctx Context, t Let) (Value, error) {
	if len(t.Bindings) == 0 {
		return typeWith(ctx, t.Body)
	}
	b := t.Bindings[0]
	valType, err := typeWith(ctx, b.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "let binding %s", b.Variable)
	}
	annot := Quote(valType)
	if b.Type != nil {
		annU, err := typeWith(ctx, b.Type)
		if err != nil {
			return nil, err
		}
		if _, ok := annU.(Universe); !ok {
			return nil, mkTypeError(AnnotationMismatch, t, "let binding %s annotation is not a type", b.Variable)
		}
		declVal := Eval(b.Type)
		if !judgmentallyEqualVals(valType, declVal) {
			return nil, mkTypeError(AnnotationMismatch, t, "let binding %s: value does not match declared type", b.Variable)
		}
		annot = b.Type
	}
	var rest Term = t.Body
	if len(t.Bindings) > 1 {
		rest = Let{Bindings: t.Bindings[1:], Body: t.Body}
	}
	return typeOfApp(ctx, AppTerm{Fn: LambdaTerm{Label: b.Variable, Type: annot, Body: rest}, Arg: b.Value})
}

func typeOfAnnot(ctx Context, t Annot) (Value, error) {
	exprType, err := typeWith(ctx, t.Expr)
	if err != nil {
		return nil, err
	}
	annU, err := typeWith(ctx, t.Annotation)
	if err != nil {
		return nil, err
	}
	if _, ok := annU.(Universe); !ok {
		return nil, mkTypeError(AnnotationMismatch, t, "%s is not a type", renderString(t.Annotation))
	}
	declVal := Eval(t.Annotation)
	if !judgmentallyEqualVals(exprType, declVal) {
		return nil, mkTypeError(AnnotationMismatch, t, "expected type %s, got %s",
			renderString(Quote(declVal)), renderString(Quote(exprType)))
	}
	return declVal, nil
}

func typeOfTextLit(ctx Context, t TextLitTerm) (Value, error) {
	for _, c := range t.Chunks {
		ty, err := typeWith(ctx, c.Expr)
		if err != nil {
			return nil, err
		}
		if !judgmentallyEqualVals(ty, TextType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "text interpolation must have type Text")
		}
	}
	return TextType, nil
}

func typeOfIf(ctx Context, t IfTerm) (Value, error) {
	condType, err := typeWith(ctx, t.Cond)
	if err != nil {
		return nil, err
	}
	if !judgmentallyEqualVals(condType, BoolType) {
		return nil, mkTypeError(NonBoolPredicate, t, "if predicate must have type Bool")
	}
	tType, err := typeWith(ctx, t.T)
	if err != nil {
		return nil, err
	}
	fType, err := typeWith(ctx, t.F)
	if err != nil {
		return nil, err
	}
	tKind, err := typeWith(ctx, Quote(tType))
	if err != nil {
		return nil, err
	}
	if u, ok := tKind.(Universe); !ok || u != Type {
		return nil, mkTypeError(MismatchedIf, t, "if branches must have a type of kind Type")
	}
	if !judgmentallyEqualVals(tType, fType) {
		return nil, mkTypeError(MismatchedIf, t, "if branches have mismatched types")
	}
	return tType, nil
}

func typeOfOp(ctx Context, t OpTerm) (Value, error) {
	if t.OpCode == CompleteOp {
		return typeWith(ctx, Annot{
			Expr:       OpTerm{OpCode: RightBiasedRecordMergeOp, L: Field{Record: t.L, FieldName: "default"}, R: t.R},
			Annotation: Field{Record: t.L, FieldName: "Type"},
		})
	}
	lType, err := typeWith(ctx, t.L)
	if err != nil {
		return nil, err
	}
	rType, err := typeWith(ctx, t.R)
	if err != nil {
		return nil, err
	}
	switch t.OpCode {
	case OrOp, AndOp, EqOp, NeOp:
		if !judgmentallyEqualVals(lType, BoolType) || !judgmentallyEqualVals(rType, BoolType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "operator %s requires Bool operands", t.OpCode)
		}
		return BoolType, nil
	case PlusOp, TimesOp:
		if !judgmentallyEqualVals(lType, NaturalType) || !judgmentallyEqualVals(rType, NaturalType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "operator %s requires Natural operands", t.OpCode)
		}
		return NaturalType, nil
	case TextAppendOp:
		if !judgmentallyEqualVals(lType, TextType) || !judgmentallyEqualVals(rType, TextType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "++ requires Text operands")
		}
		return TextType, nil
	case ListAppendOp:
		if !isListType(lType) || !isListType(rType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "# requires List operands")
		}
		if !judgmentallyEqualVals(lType, rType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "# requires matching List element types")
		}
		return lType, nil
	case RecordMergeOp:
		lRec, lok := lType.(RecordTypeVal)
		rRec, rok := rType.(RecordTypeVal)
		if !lok || !rok {
			return nil, mkTypeError(MergeOnNonRecord, t, "∧ requires record operands")
		}
		return mergeRecordTypes(lRec, rRec)
	case RecordTypeMergeOp:
		lRT, lok := Eval(t.L).(RecordTypeVal)
		rRT, rok := Eval(t.R).(RecordTypeVal)
		if !lok || !rok {
			return nil, mkTypeError(UnionAlternativeKindMismatch, t, "⩓ requires record type operands")
		}
		merged, err := mergeRecordTypes(lRT, rRT)
		if err != nil {
			return nil, err
		}
		return recordTypeKind(ctx, merged)
	case RightBiasedRecordMergeOp:
		lRec, lok := lType.(RecordTypeVal)
		rRec, rok := rType.(RecordTypeVal)
		if !lok || !rok {
			return nil, mkTypeError(MergeOnNonRecord, t, "⫽ requires record operands")
		}
		out := make(RecordTypeVal, len(lRec)+len(rRec))
		for k, v := range lRec {
			out[k] = v
		}
		for k, v := range rRec {
			out[k] = v
		}
		return out, nil
	case ImportAltOp:
		return lType, nil
	case EquivOp:
		if !judgmentallyEqualVals(lType, rType) {
			return nil, mkTypeError(ApplicationTypeMismatch, t, "≡ requires operands of the same type")
		}
		return Type, nil
	}
	panic("typeOfOp: unknown opcode")
}

func isListType(v Value) bool {
	app, ok := v.(AppValue)
	if !ok {
		return false
	}
	b, ok := app.Fn.(Builtin)
	return ok && b == ListType
}

// typeOfEmptyList checks the explicit `List a` annotation carried by an
// empty list literal: the annotation itself must be a type, it must take
// the form `List a` rather than some other type, and a must itself have
// kind Type.
func typeOfEmptyList(ctx Context, t EmptyList) (Value, error) {
	annU, err := typeWith(ctx, t.Type)
	if err != nil {
		return nil, err
	}
	if _, ok := annU.(Universe); !ok {
		return nil, mkTypeError(NonTypeListElement, t, "%s is not a type", renderString(t.Type))
	}
	listType := Eval(t.Type)
	if !isListType(listType) {
		return nil, mkTypeError(NonTypeListElement, t, "empty list annotation must have the form List a")
	}
	elemType := listType.(AppValue).Arg
	elemU, err := typeWith(ctx, Quote(elemType))
	if err != nil {
		return nil, err
	}
	if u, ok := elemU.(Universe); !ok || u != Type {
		return nil, mkTypeError(NonTypeListElement, t, "list element type must have kind Type")
	}
	return listType, nil
}

// typeOfNonEmptyList infers the element type from the first element, then
// requires every remaining element to have the judgmentally equal type.
func typeOfNonEmptyList(ctx Context, t NonEmptyList) (Value, error) {
	elemType, err := typeWith(ctx, t[0])
	if err != nil {
		return nil, err
	}
	elemU, err := typeWith(ctx, Quote(elemType))
	if err != nil {
		return nil, err
	}
	if u, ok := elemU.(Universe); !ok || u != Type {
		return nil, mkTypeError(NonTypeListElement, t, "list element type must have kind Type")
	}
	for _, elem := range t[1:] {
		ty, err := typeWith(ctx, elem)
		if err != nil {
			return nil, err
		}
		if !judgmentallyEqualVals(ty, elemType) {
			return nil, mkTypeError(HeterogeneousList, t, "every list element must have the same type")
		}
	}
	return AppValue{Fn: ListType, Arg: elemType}, nil
}

// typeOfSome synthesizes `Optional a` from the type of the wrapped value,
// requiring a to have kind Type just as List's element type does.
func typeOfSome(ctx Context, t Some) (Value, error) {
	valType, err := typeWith(ctx, t.Val)
	if err != nil {
		return nil, err
	}
	valU, err := typeWith(ctx, Quote(valType))
	if err != nil {
		return nil, err
	}
	if u, ok := valU.(Universe); !ok || u != Type {
		return nil, mkTypeError(NonTypeListElement, t, "Some argument's type must have kind Type")
	}
	return AppValue{Fn: OptionalType, Arg: valType}, nil
}

func recordTypeKind(ctx Context, rt RecordTypeVal) (Value, error) {
	result := Type
	for k, v := range rt {
		u, err := typeWith(ctx, Quote(v))
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", k)
		}
		uu, ok := u.(Universe)
		if !ok {
			return nil, mkTypeError(RecordFieldKindMismatch, nil, "field %s is not a type", k)
		}
		if uu > result {
			result = uu
		}
	}
	return result, nil
}

func typeOfRecordType(ctx Context, t RecordType) (Value, error) {
	result := Type
	for k, v := range t {
		u, err := typeWith(ctx, v)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", k)
		}
		uu, ok := u.(Universe)
		if !ok {
			return nil, mkTypeError(RecordFieldKindMismatch, t, "field %s is not a type", k)
		}
		if uu > result {
			result = uu
		}
	}
	return result, nil
}

func typeOfRecordLit(ctx Context, t RecordLit) (Value, error) {
	out := make(RecordTypeVal, len(t))
	for k, v := range t {
		ty, err := typeWith(ctx, v)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", k)
		}
		out[k] = ty
	}
	return out, nil
}

func typeOfToMap(ctx Context, t ToMap) (Value, error) {
	recType, err := typeWith(ctx, t.Record)
	if err != nil {
		return nil, err
	}
	rt, ok := recType.(RecordTypeVal)
	if !ok {
		return nil, mkTypeError(MergeOnNonRecord, t, "toMap requires a record")
	}
	var entryType Value
	for _, fieldType := range rt {
		if entryType == nil {
			entryType = fieldType
		} else if !judgmentallyEqualVals(entryType, fieldType) {
			return nil, mkTypeError(HeterogeneousList, t, "toMap requires every field to have the same type")
		}
	}
	if entryType == nil {
		if t.Type == nil {
			return nil, mkTypeError(MissingRecordField, t, "toMap of an empty record requires an explicit type annotation")
		}
		annU, err := typeWith(ctx, t.Type)
		if err != nil {
			return nil, err
		}
		if _, ok := annU.(Universe); !ok {
			return nil, mkTypeError(AnnotationMismatch, t, "toMap annotation is not a type")
		}
		return Eval(t.Type), nil
	}
	result := AppValue{Fn: ListType, Arg: RecordTypeVal{"mapKey": TextType, "mapValue": entryType}}
	if t.Type != nil {
		annU, err := typeWith(ctx, t.Type)
		if err != nil {
			return nil, err
		}
		if _, ok := annU.(Universe); !ok {
			return nil, mkTypeError(AnnotationMismatch, t, "toMap annotation is not a type")
		}
		declVal := Eval(t.Type)
		if !judgmentallyEqualVals(declVal, result) {
			return nil, mkTypeError(AnnotationMismatch, t, "toMap annotation does not match inferred type")
		}
	}
	return result, nil
}

func typeOfField(ctx Context, t Field) (Value, error) {
	recType, err := typeWith(ctx, t.Record)
	if err != nil {
		return nil, err
	}
	if rt, ok := recType.(RecordTypeVal); ok {
		ty, ok := rt[t.FieldName]
		if !ok {
			return nil, mkTypeError(MissingRecordField, t, "record has no field %s", t.FieldName)
		}
		return ty, nil
	}
	if _, ok := recType.(Universe); ok {
		if ut, ok := Eval(t.Record).(UnionTypeVal); ok {
			payload, ok := ut[t.FieldName]
			if !ok {
				return nil, mkTypeError(MissingRecordField, t, "union has no alternative %s", t.FieldName)
			}
			if payload == nil {
				return ut, nil
			}
			return PiValue{Label: "_", Domain: payload, Range: func(Value) Value { return ut }}, nil
		}
	}
	return nil, mkTypeError(NonRecordProjection, t, "%s is not a record", renderString(t.Record))
}

func typeOfProject(ctx Context, t Project) (Value, error) {
	recType, err := typeWith(ctx, t.Record)
	if err != nil {
		return nil, err
	}
	rt, ok := recType.(RecordTypeVal)
	if !ok {
		return nil, mkTypeError(NonRecordProjection, t, "%s is not a record", renderString(t.Record))
	}
	out := make(RecordTypeVal, len(t.FieldNames))
	seen := make(map[string]bool, len(t.FieldNames))
	for _, name := range t.FieldNames {
		if seen[name] {
			return nil, mkTypeError(DuplicateRecordField, t, "duplicate projected field %s", name)
		}
		seen[name] = true
		ty, ok := rt[name]
		if !ok {
			return nil, mkTypeError(MissingRecordField, t, "record has no field %s", name)
		}
		out[name] = ty
	}
	return out, nil
}

func typeOfProjectType(ctx Context, t ProjectType) (Value, error) {
	selU, err := typeWith(ctx, t.Selector)
	if err != nil {
		return nil, err
	}
	if _, ok := selU.(Universe); !ok {
		return nil, mkTypeError(NonRecordProjection, t, "projection selector must be a record type")
	}
	selVal, ok := Eval(t.Selector).(RecordTypeVal)
	if !ok {
		return nil, mkTypeError(NonRecordProjection, t, "projection selector must be a record type")
	}
	names := make([]string, 0, len(selVal))
	for k := range selVal {
		names = append(names, k)
	}
	return typeOfProject(ctx, Project{Record: t.Record, FieldNames: names})
}

func typeOfUnionType(ctx Context, t UnionType) (Value, error) {
	result := Type
	for k, v := range t {
		if v == nil {
			continue
		}
		u, err := typeWith(ctx, v)
		if err != nil {
			return nil, errors.Wrapf(err, "alternative %s", k)
		}
		uu, ok := u.(Universe)
		if !ok {
			return nil, mkTypeError(UnionAlternativeKindMismatch, t, "alternative %s is not a type", k)
		}
		if uu > result {
			result = uu
		}
	}
	return result, nil
}

func typeOfMerge(ctx Context, t Merge) (Value, error) {
	handlerType, err := typeWith(ctx, t.Handler)
	if err != nil {
		return nil, err
	}
	handlers, ok := handlerType.(RecordTypeVal)
	if !ok {
		return nil, mkTypeError(MergeOnNonRecord, t, "merge handler must be a record")
	}
	unionType, err := typeWith(ctx, t.Union)
	if err != nil {
		return nil, err
	}
	alternatives, ok := unionType.(UnionTypeVal)
	if !ok {
		return nil, mkTypeError(MergeOnNonUnion, t, "merge input must be a union")
	}
	var resultType Value
	for name, payload := range alternatives {
		h, ok := handlers[name]
		if !ok {
			return nil, mkTypeError(HandlerMissing, t, "missing handler for alternative %s", name)
		}
		var out Value
		if payload == nil {
			out = h
		} else {
			pi, ok := h.(PiValue)
			if !ok {
				return nil, mkTypeError(HandlerNotFunction, t, "handler for %s must be a function", name)
			}
			if !judgmentallyEqualVals(pi.Domain, payload) {
				return nil, mkTypeError(HandlerOutputMismatch, t, "handler for %s expects a different input type", name)
			}
			out = pi.Range(QuoteVar{Name: "_", Index: 0})
		}
		if resultType == nil {
			resultType = out
		} else if !judgmentallyEqualVals(resultType, out) {
			return nil, mkTypeError(HandlerOutputMismatch, t, "handler for %s has a mismatched result type", name)
		}
	}
	for name := range handlers {
		if _, ok := alternatives[name]; !ok {
			return nil, mkTypeError(ExtraneousHandler, t, "extraneous handler %s", name)
		}
	}
	if t.Annotation != nil {
		annU, err := typeWith(ctx, t.Annotation)
		if err != nil {
			return nil, err
		}
		if _, ok := annU.(Universe); !ok {
			return nil, mkTypeError(AnnotationMismatch, t, "merge annotation is not a type")
		}
		declVal := Eval(t.Annotation)
		if resultType != nil && !judgmentallyEqualVals(declVal, resultType) {
			return nil, mkTypeError(AnnotationMismatch, t, "merge annotation does not match the inferred result type")
		}
		return declVal, nil
	}
	if resultType == nil {
		return nil, mkTypeError(AnnotationMismatch, t, "merge with no alternatives requires an explicit type annotation")
	}
	return resultType, nil
}

func typeOfAssert(ctx Context, t Assert) (Value, error) {
	annU, err := typeWith(ctx, t.Annotation)
	if err != nil {
		return nil, err
	}
	if _, ok := annU.(Universe); !ok {
		return nil, mkTypeError(AssertionNotEquivalent, t, "assert requires an equivalence type")
	}
	op, ok := t.Annotation.(OpTerm)
	if !ok || op.OpCode != EquivOp {
		return nil, mkTypeError(AssertionNotEquivalent, t, "assert requires an ≡ expression")
	}
	if !judgmentallyEqualVals(Eval(op.L), Eval(op.R)) {
		return nil, mkTypeError(AssertionNotEquivalent, t, "assertion %s does not hold", renderString(t.Annotation))
	}
	return Eval(t.Annotation), nil
}

// builtinType returns the fixed type scheme for a reserved identifier,
// built as an ordinary Term and evaluated once; none of these schemes
// reference the caller's context, so the empty Env Eval uses is sufficient.
func builtinType(b Builtin) (Value, error) {
	var t Term
	switch b {
	case BoolType, NaturalType, IntegerType, DoubleType, TextType:
		return Type, nil
	case ListType, OptionalType:
		t = NewAnonPi(Type, Type)
	case NoneType:
		t = NewPi("a", Type, Apply(OptionalType, NewVar("a")))
	case NaturalBuild:
		shape := NewPi("natural", Type,
			NewPi("succ", NewAnonPi(NewVar("natural"), NewVar("natural")),
				NewPi("zero", NewVar("natural"), NewVar("natural"))))
		t = NewAnonPi(shape, NaturalType)
	case NaturalFold:
		t = NewAnonPi(NaturalType,
			NewPi("natural", Type,
				NewPi("succ", NewAnonPi(NewVar("natural"), NewVar("natural")),
					NewPi("zero", NewVar("natural"), NewVar("natural")))))
	case NaturalIsZero, NaturalEven, NaturalOdd:
		t = NewAnonPi(NaturalType, BoolType)
	case NaturalShow:
		t = NewAnonPi(NaturalType, TextType)
	case NaturalToInteger:
		t = NewAnonPi(NaturalType, IntegerType)
	case NaturalSubtract:
		t = NewAnonPi(NaturalType, NewAnonPi(NaturalType, NaturalType))
	case IntegerShow:
		t = NewAnonPi(IntegerType, TextType)
	case IntegerToDouble:
		t = NewAnonPi(IntegerType, DoubleType)
	case DoubleShow:
		t = NewAnonPi(DoubleType, TextType)
	case TextShow:
		t = NewAnonPi(TextType, TextType)
	case ListBuild:
		shape := NewPi("list", Type,
			NewPi("cons", NewAnonPi(NewVar("a"), NewAnonPi(NewVar("list"), NewVar("list"))),
				NewPi("nil", NewVar("list"), NewVar("list"))))
		t = NewPi("a", Type, NewAnonPi(shape, Apply(ListType, NewVar("a"))))
	case ListFold:
		shape := NewPi("list", Type,
			NewPi("cons", NewAnonPi(NewVar("a"), NewAnonPi(NewVar("list"), NewVar("list"))),
				NewPi("nil", NewVar("list"), NewVar("list"))))
		t = NewPi("a", Type, NewAnonPi(Apply(ListType, NewVar("a")), shape))
	case ListLength:
		t = NewPi("a", Type, NewAnonPi(Apply(ListType, NewVar("a")), NaturalType))
	case ListHead, ListLast:
		t = NewPi("a", Type, NewAnonPi(Apply(ListType, NewVar("a")), Apply(OptionalType, NewVar("a"))))
	case ListIndexed:
		entry := RecordType{"index": NaturalType, "value": NewVar("a")}
		t = NewPi("a", Type, NewAnonPi(Apply(ListType, NewVar("a")), Apply(ListType, entry)))
	case ListReverse:
		t = NewPi("a", Type, NewAnonPi(Apply(ListType, NewVar("a")), Apply(ListType, NewVar("a"))))
	case OptionalFold:
		shape := NewPi("optional", Type,
			NewPi("some", NewAnonPi(NewVar("a"), NewVar("optional")),
				NewPi("none", NewVar("optional"), NewVar("optional"))))
		t = NewPi("a", Type, NewAnonPi(Apply(OptionalType, NewVar("a")), shape))
	case OptionalBuild:
		shape := NewPi("optional", Type,
			NewPi("some", NewAnonPi(NewVar("a"), NewVar("optional")),
				NewPi("none", NewVar("optional"), NewVar("optional"))))
		t = NewPi("a", Type, NewAnonPi(shape, Apply(OptionalType, NewVar("a"))))
	default:
		return nil, mkTypeError(UnknownBuiltin, b, "unknown builtin %s", string(b))
	}
	return Eval(t), nil
}

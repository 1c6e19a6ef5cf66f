package core

// Value is the result of evalWith: a term in weak-head normal form plus,
// for binders, a Go closure standing in for the still-unevaluated body
// (normalization by evaluation).
type Value interface {
	valueNode()
}

// Callable is implemented by any Value that can be the function side of an
// application and wants a chance to reduce before falling back to a plain
// AppValue. Call returns nil to decline (caller wraps in AppValue).
type Callable interface {
	Call(Value) Value
}

// QuoteVar is the value-level placeholder equivalence.go substitutes for a
// bound variable while comparing two binders' bodies up to alpha
// equivalence (judgmentallyEqualValsWith), and that Quote substitutes while
// converting a Value back into a Term under a binder.
type QuoteVar struct {
	Name  string
	Index int
}

type LambdaValue struct {
	Label  string
	Domain Value
	Fn     func(Value) Value
}

func (l LambdaValue) Call(x Value) Value { return l.Fn(x) }

type PiValue struct {
	Label  string
	Domain Value
	Range  func(Value) Value
}

type AppValue struct {
	Fn  Value
	Arg Value
}

// OpValue is a binary operator application that didn't reduce further
// (either operand is not yet known, e.g. a free variable).
type OpValue struct {
	OpCode OpCode
	L      Value
	R      Value
}

type ChunkVal struct {
	Prefix string
	Expr   Value
}
type ChunkVals []ChunkVal

type TextLitVal struct {
	Chunks ChunkVals
	Suffix string
}

type IfVal struct {
	Cond Value
	T    Value
	F    Value
}

type EmptyListVal struct {
	Type Value
}
type NonEmptyListVal []Value

type SomeVal struct {
	Val Value
}

type RecordTypeVal map[string]Value
type RecordLitVal map[string]Value

type ToMapVal struct {
	Record Value
	Type   Value
}

type FieldVal struct {
	Record    Value
	FieldName string
}

type ProjectVal struct {
	Record     Value
	FieldNames []string
}

type UnionTypeVal map[string]Value

type MergeVal struct {
	Handler    Value
	Union      Value
	Annotation Value
}

type AssertVal struct {
	Annotation Value
}

// Singleton values for builtins with no arguments applied yet. Each has a
// Call method (in builtin_values.go) implementing its curried δ-rule.
type (
	naturalBuildVal0     struct{}
	naturalFoldVal0      struct{}
	naturalIsZeroVal0    struct{}
	naturalEvenVal0      struct{}
	naturalOddVal0       struct{}
	naturalShowVal0      struct{}
	naturalToIntegerVal0 struct{}
	naturalSubtractVal0  struct{}
	integerShowVal0      struct{}
	integerToDoubleVal0  struct{}
	doubleShowVal0       struct{}
	optionalBuildVal0    struct{}
	optionalFoldVal0     struct{}
	textShowVal0         struct{}
	listBuildVal0        struct{}
	listFoldVal0         struct{}
	listHeadVal0         struct{}
	listIndexedVal0      struct{}
	listLengthVal0       struct{}
	listLastVal0         struct{}
	listReverseVal0      struct{}
)

var (
	NaturalBuildVal     = naturalBuildVal0{}
	NaturalFoldVal      = naturalFoldVal0{}
	NaturalIsZeroVal    = naturalIsZeroVal0{}
	NaturalEvenVal      = naturalEvenVal0{}
	NaturalOddVal       = naturalOddVal0{}
	NaturalShowVal      = naturalShowVal0{}
	NaturalToIntegerVal = naturalToIntegerVal0{}
	NaturalSubtractVal  = naturalSubtractVal0{}
	IntegerShowVal      = integerShowVal0{}
	IntegerToDoubleVal  = integerToDoubleVal0{}
	DoubleShowVal       = doubleShowVal0{}
	OptionalBuildVal    = optionalBuildVal0{}
	OptionalFoldVal     = optionalFoldVal0{}
	TextShowVal         = textShowVal0{}
	ListBuildVal        = listBuildVal0{}
	ListFoldVal         = listFoldVal0{}
	ListHeadVal         = listHeadVal0{}
	ListIndexedVal      = listIndexedVal0{}
	ListLengthVal       = listLengthVal0{}
	ListLastVal         = listLastVal0{}
	ListReverseVal      = listReverseVal0{}
)

func (Var) valueNode()         {}
func (LocalVar) valueNode()    {}
func (QuoteVar) valueNode()    {}
func (LambdaValue) valueNode() {}
func (PiValue) valueNode()     {}
func (AppValue) valueNode()    {}
func (OpValue) valueNode()     {}
func (BoolLit) valueNode()     {}
func (NaturalLit) valueNode()  {}
func (IntegerLit) valueNode()  {}
func (DoubleLit) valueNode()   {}
func (TextLitVal) valueNode()  {}
func (IfVal) valueNode()       {}
func (EmptyListVal) valueNode()    {}
func (NonEmptyListVal) valueNode() {}
func (SomeVal) valueNode()         {}
func (RecordTypeVal) valueNode()   {}
func (RecordLitVal) valueNode()    {}
func (ToMapVal) valueNode()        {}
func (FieldVal) valueNode()        {}
func (ProjectVal) valueNode()      {}
func (UnionTypeVal) valueNode()    {}
func (MergeVal) valueNode()        {}
func (AssertVal) valueNode()       {}

func (naturalBuildVal0) valueNode()     {}
func (naturalFoldVal0) valueNode()      {}
func (naturalIsZeroVal0) valueNode()    {}
func (naturalEvenVal0) valueNode()      {}
func (naturalOddVal0) valueNode()       {}
func (naturalShowVal0) valueNode()      {}
func (naturalToIntegerVal0) valueNode() {}
func (naturalSubtractVal0) valueNode()  {}
func (integerShowVal0) valueNode()      {}
func (integerToDoubleVal0) valueNode()  {}
func (doubleShowVal0) valueNode()       {}
func (optionalBuildVal0) valueNode()    {}
func (optionalFoldVal0) valueNode()     {}
func (textShowVal0) valueNode()         {}
func (listBuildVal0) valueNode()        {}
func (listFoldVal0) valueNode()         {}
func (listHeadVal0) valueNode()         {}
func (listIndexedVal0) valueNode()      {}
func (listLengthVal0) valueNode()       {}
func (listLastVal0) valueNode()         {}
func (listReverseVal0) valueNode()      {}

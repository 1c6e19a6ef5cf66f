package core

// Builtin is a reserved identifier with a fixed type and (for most of them)
// a δ-reduction rule. Builtins that carry no special reduction (Bool,
// Natural, Integer, Double, Text, List, Optional, None) are represented by
// the same type and simply fail to match any case in evalWith's switch,
// returning themselves unchanged.
type Builtin string

const (
	BoolType     Builtin = "Bool"
	NaturalType  Builtin = "Natural"
	IntegerType  Builtin = "Integer"
	DoubleType   Builtin = "Double"
	TextType     Builtin = "Text"
	ListType     Builtin = "List"
	OptionalType Builtin = "Optional"
	NoneType     Builtin = "None"

	NaturalBuild     Builtin = "Natural/build"
	NaturalFold      Builtin = "Natural/fold"
	NaturalIsZero    Builtin = "Natural/isZero"
	NaturalEven      Builtin = "Natural/even"
	NaturalOdd       Builtin = "Natural/odd"
	NaturalShow      Builtin = "Natural/show"
	NaturalToInteger Builtin = "Natural/toInteger"
	NaturalSubtract  Builtin = "Natural/subtract"

	IntegerShow     Builtin = "Integer/show"
	IntegerToDouble Builtin = "Integer/toDouble"

	DoubleShow Builtin = "Double/show"

	TextShow Builtin = "Text/show"

	ListBuild   Builtin = "List/build"
	ListFold    Builtin = "List/fold"
	ListLength  Builtin = "List/length"
	ListHead    Builtin = "List/head"
	ListLast    Builtin = "List/last"
	ListIndexed Builtin = "List/indexed"
	ListReverse Builtin = "List/reverse"

	OptionalFold  Builtin = "Optional/fold"
	OptionalBuild Builtin = "Optional/build"
)

// builtinNames is the complete reserved set, used by the parser-facing
// helper LookupBuiltin and by the CBOR codec to decide whether a bare
// string decodes to a Builtin or a Var.
var builtinNames = map[string]Builtin{
	"Bool":             BoolType,
	"Natural":          NaturalType,
	"Integer":          IntegerType,
	"Double":           DoubleType,
	"Text":             TextType,
	"List":             ListType,
	"Optional":         OptionalType,
	"None":             NoneType,
	"Natural/build":    NaturalBuild,
	"Natural/fold":     NaturalFold,
	"Natural/isZero":   NaturalIsZero,
	"Natural/even":     NaturalEven,
	"Natural/odd":      NaturalOdd,
	"Natural/show":     NaturalShow,
	"Natural/toInteger": NaturalToInteger,
	"Natural/subtract": NaturalSubtract,
	"Integer/show":     IntegerShow,
	"Integer/toDouble": IntegerToDouble,
	"Double/show":      DoubleShow,
	"Text/show":        TextShow,
	"List/build":       ListBuild,
	"List/fold":        ListFold,
	"List/length":      ListLength,
	"List/head":        ListHead,
	"List/last":        ListLast,
	"List/indexed":     ListIndexed,
	"List/reverse":     ListReverse,
	"Optional/fold":    OptionalFold,
	"Optional/build":   OptionalBuild,
}

// LookupBuiltin returns the Builtin for name, and whether name is reserved.
// True/False are literals rather than builtins and are handled as BoolLit by
// the parser-facing layer, not here.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

func (Builtin) exprNode()  {}
func (Builtin) valueNode() {}

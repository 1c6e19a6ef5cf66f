package core

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("functionCheck",
	func(in, out, expected Universe) {
		Expect(functionCheck(in, out)).To(Equal(expected))
	},
	Entry(`Type ↝ Type : Type`, Type, Type, Type),
	Entry(`Kind ↝ Type : Type`, Kind, Type, Type),
	Entry(`Sort ↝ Type : Type`, Sort, Type, Type),
	Entry(`Type ↝ Kind : Kind`, Type, Kind, Kind),
	Entry(`Kind ↝ Kind : Kind`, Kind, Kind, Kind),
	Entry(`Sort ↝ Kind : Sort`, Sort, Kind, Sort),
	Entry(`Type ↝ Sort : Sort`, Type, Sort, Sort),
	Entry(`Kind ↝ Sort : Sort`, Kind, Sort, Sort),
	Entry(`Sort ↝ Sort : Sort`, Sort, Sort, Sort),
)

func typecheckTest(t Term, expectedType Value) {
	actualType, err := TypeOf(EmptyContext(), t)
	Ω(err).ShouldNot(HaveOccurred())
	Ω(judgmentallyEqualVals(actualType, expectedType)).Should(BeTrue())
}

var _ = Describe("TypeOf", func() {
	DescribeTable("Universe",
		typecheckTest,
		Entry("Type : Kind", Term(Type), Value(Kind)),
		Entry("Kind : Sort", Term(Kind), Value(Sort)),
	)
	DescribeTable("Builtin",
		typecheckTest,
		Entry(`Natural : Type`, Term(NaturalType), Value(Type)),
		Entry(`List : Type -> Type`, Term(ListType), PiValue{Label: "_", Domain: Type, Range: func(Value) Value { return Type }}),
	)
	DescribeTable("Lambda",
		typecheckTest,
		Entry("λ(x : Natural) → x : ∀(x : Natural) → Natural",
			NewLambda("x", NaturalType, NewVar("x")),
			PiValue{Label: "x", Domain: NaturalType, Range: func(Value) Value { return NaturalType }}),
		Entry("λ(a : Type) → ([] : List a) : ∀(a : Type) → List a, variables surviving into the result type",
			NewLambda("a", Type, EmptyList{Type: Apply(ListType, NewVar("a"))}),
			PiValue{Label: "a", Domain: Type, Range: func(a Value) Value { return AppValue{Fn: ListType, Arg: a} }}),
		Entry("λ(a : Natural) → assert : a ≡ a, variables surviving into the result type",
			NewLambda("a", NaturalType, Assert{Annotation: OpTerm{OpCode: EquivOp, L: NewVar("a"), R: NewVar("a")}}),
			PiValue{Label: "a", Domain: NaturalType, Range: func(a Value) Value { return OpValue{OpCode: EquivOp, L: a, R: a} }}),
	)
	DescribeTable("Pi",
		typecheckTest,
		Entry(`Natural → Natural : Type`, NewAnonPi(NaturalType, NaturalType), Value(Type)),
	)
	DescribeTable("Application",
		typecheckTest,
		Entry(`List Natural : Type`, AppTerm{Fn: ListType, Arg: NaturalType}, Value(Type)),
		Entry("(λ(a : Natural) → assert : a ≡ a) 3, variables surviving into the result type",
			Apply(
				NewLambda("a", NaturalType, Assert{Annotation: OpTerm{OpCode: EquivOp, L: NewVar("a"), R: NewVar("a")}}),
				NewNaturalLit(3)),
			OpValue{OpCode: EquivOp, L: NewNaturalLit(3), R: NewNaturalLit(3)}),
	)
	DescribeTable("Others",
		typecheckTest,
		Entry(`3 : Natural`, Term(NewNaturalLit(3)), Value(NaturalType)),
		Entry(`[] : List Natural : List Natural`,
			EmptyList{Type: Apply(ListType, NaturalType)}, AppValue{Fn: ListType, Arg: NaturalType}),
	)
	DescribeTable("Expected failures",
		func(t Term) {
			_, err := TypeOf(EmptyContext(), t)
			Ω(err).Should(HaveOccurred())
		},
		Entry(`Sort -- Sort has no type`, Term(Sort)),
		Entry(`[] : List 3 -- not a valid list type`,
			EmptyList{Type: Apply(ListType, NewNaturalLit(3))}),
		Entry(`[] : Natural -- not in form "List a"`,
			EmptyList{Type: NaturalType}),
		Entry(`Sort Type -- Fn of AppTerm doesn't typecheck`,
			Apply(Sort, Type)),
		Entry(`List Sort -- Arg of AppTerm doesn't typecheck`,
			Apply(ListType, Sort)),
		Entry(`List 3 -- Arg of AppTerm doesn't match function input type`,
			Apply(ListType, NewNaturalLit(3))),
		Entry(`Natural Natural -- Fn of AppTerm isn't of function type`,
			Apply(NaturalType, NaturalType)),
	)
})

package core

// Shift returns a new Term in which every free Var{name, i} with i >=
// minIndex has its index changed to i+amount. Binders
// that introduce a variable with the same name increment minIndex in their
// own body/type positions before recursing into the body (never into the
// binder's own type). Callers use amount = ±1 exclusively; the general
// integer is kept so Shift composes (shift by +2 is shift by +1 twice).
func Shift(amount int, name string, minIndex int, t Term) Term {
	switch t := t.(type) {
	case Var:
		if t.Name == name && t.Index >= minIndex {
			return Var{Name: t.Name, Index: t.Index + amount}
		}
		return t
	case LocalVar:
		return t
	case Universe, Builtin, BoolLit, NaturalLit, IntegerLit, DoubleLit:
		return t
	case LambdaTerm:
		newMin := minIndex
		if t.Label == name {
			newMin++
		}
		return LambdaTerm{
			Label: t.Label,
			Type:  Shift(amount, name, minIndex, t.Type),
			Body:  Shift(amount, name, newMin, t.Body),
		}
	case PiTerm:
		newMin := minIndex
		if t.Label == name {
			newMin++
		}
		return PiTerm{
			Label: t.Label,
			Type:  Shift(amount, name, minIndex, t.Type),
			Body:  Shift(amount, name, newMin, t.Body),
		}
	case AppTerm:
		return AppTerm{Fn: Shift(amount, name, minIndex, t.Fn), Arg: Shift(amount, name, minIndex, t.Arg)}
	case Let:
		newMin := minIndex
		newBindings := make([]Binding, len(t.Bindings))
		for i, b := range t.Bindings {
			newB := Binding{Variable: b.Variable, Value: Shift(amount, name, newMin, b.Value)}
			if b.Type != nil {
				newB.Type = Shift(amount, name, newMin, b.Type)
			}
			newBindings[i] = newB
			if b.Variable == name {
				newMin++
			}
		}
		return Let{Bindings: newBindings, Body: Shift(amount, name, newMin, t.Body)}
	case Annot:
		return Annot{Expr: Shift(amount, name, minIndex, t.Expr), Annotation: Shift(amount, name, minIndex, t.Annotation)}
	case TextLitTerm:
		newChunks := make(Chunks, len(t.Chunks))
		for i, c := range t.Chunks {
			newChunks[i] = Chunk{Prefix: c.Prefix, Expr: Shift(amount, name, minIndex, c.Expr)}
		}
		return TextLitTerm{Chunks: newChunks, Suffix: t.Suffix}
	case IfTerm:
		return IfTerm{
			Cond: Shift(amount, name, minIndex, t.Cond),
			T:    Shift(amount, name, minIndex, t.T),
			F:    Shift(amount, name, minIndex, t.F),
		}
	case OpTerm:
		return OpTerm{OpCode: t.OpCode, L: Shift(amount, name, minIndex, t.L), R: Shift(amount, name, minIndex, t.R)}
	case EmptyList:
		return EmptyList{Type: Shift(amount, name, minIndex, t.Type)}
	case NonEmptyList:
		newList := make(NonEmptyList, len(t))
		for i, e := range t {
			newList[i] = Shift(amount, name, minIndex, e)
		}
		return newList
	case Some:
		return Some{Val: Shift(amount, name, minIndex, t.Val)}
	case RecordType:
		newRT := make(RecordType, len(t))
		for k, v := range t {
			newRT[k] = Shift(amount, name, minIndex, v)
		}
		return newRT
	case RecordLit:
		newRT := make(RecordLit, len(t))
		for k, v := range t {
			newRT[k] = Shift(amount, name, minIndex, v)
		}
		return newRT
	case ToMap:
		newT := ToMap{Record: Shift(amount, name, minIndex, t.Record)}
		if t.Type != nil {
			newT.Type = Shift(amount, name, minIndex, t.Type)
		}
		return newT
	case Field:
		return Field{Record: Shift(amount, name, minIndex, t.Record), FieldName: t.FieldName}
	case Project:
		return Project{Record: Shift(amount, name, minIndex, t.Record), FieldNames: t.FieldNames}
	case ProjectType:
		return ProjectType{Record: Shift(amount, name, minIndex, t.Record), Selector: Shift(amount, name, minIndex, t.Selector)}
	case UnionType:
		newUT := make(UnionType, len(t))
		for k, v := range t {
			if v == nil {
				newUT[k] = nil
				continue
			}
			newUT[k] = Shift(amount, name, minIndex, v)
		}
		return newUT
	case Merge:
		newM := Merge{Handler: Shift(amount, name, minIndex, t.Handler), Union: Shift(amount, name, minIndex, t.Union)}
		if t.Annotation != nil {
			newM.Annotation = Shift(amount, name, minIndex, t.Annotation)
		}
		return newM
	case Assert:
		return Assert{Annotation: Shift(amount, name, minIndex, t.Annotation)}
	case Import:
		return t
	}
	panic("Shift: unknown term type")
}

// Substitute returns a new Term in which every free occurrence of
// Var{name, index} is replaced by replacement. Under every binder,
// replacement is shifted by +1 over the binder's var before recursing; when
// var == name, index is also incremented (because the binder shadows one
// more level of name). This is the textbook capture-avoiding substitution.
func Substitute(name string, index int, replacement Term, t Term) Term {
	switch t := t.(type) {
	case Var:
		if t.Name == name && t.Index == index {
			return replacement
		}
		return t
	case LocalVar:
		return t
	case Universe, Builtin, BoolLit, NaturalLit, IntegerLit, DoubleLit:
		return t
	case LambdaTerm:
		newIndex, newReplacement := index, Shift(1, t.Label, 0, replacement)
		if t.Label == name {
			newIndex++
		}
		return LambdaTerm{
			Label: t.Label,
			Type:  Substitute(name, index, replacement, t.Type),
			Body:  Substitute(name, newIndex, newReplacement, t.Body),
		}
	case PiTerm:
		newIndex, newReplacement := index, Shift(1, t.Label, 0, replacement)
		if t.Label == name {
			newIndex++
		}
		return PiTerm{
			Label: t.Label,
			Type:  Substitute(name, index, replacement, t.Type),
			Body:  Substitute(name, newIndex, newReplacement, t.Body),
		}
	case AppTerm:
		return AppTerm{Fn: Substitute(name, index, replacement, t.Fn), Arg: Substitute(name, index, replacement, t.Arg)}
	case Let:
		curIndex, curReplacement := index, replacement
		newBindings := make([]Binding, len(t.Bindings))
		for i, b := range t.Bindings {
			newB := Binding{Variable: b.Variable, Value: Substitute(name, curIndex, curReplacement, b.Value)}
			if b.Type != nil {
				newB.Type = Substitute(name, curIndex, curReplacement, b.Type)
			}
			newBindings[i] = newB
			if b.Variable == name {
				curIndex++
			}
			curReplacement = Shift(1, b.Variable, 0, curReplacement)
		}
		return Let{Bindings: newBindings, Body: Substitute(name, curIndex, curReplacement, t.Body)}
	case Annot:
		return Annot{Expr: Substitute(name, index, replacement, t.Expr), Annotation: Substitute(name, index, replacement, t.Annotation)}
	case TextLitTerm:
		newChunks := make(Chunks, len(t.Chunks))
		for i, c := range t.Chunks {
			newChunks[i] = Chunk{Prefix: c.Prefix, Expr: Substitute(name, index, replacement, c.Expr)}
		}
		return TextLitTerm{Chunks: newChunks, Suffix: t.Suffix}
	case IfTerm:
		return IfTerm{
			Cond: Substitute(name, index, replacement, t.Cond),
			T:    Substitute(name, index, replacement, t.T),
			F:    Substitute(name, index, replacement, t.F),
		}
	case OpTerm:
		return OpTerm{OpCode: t.OpCode, L: Substitute(name, index, replacement, t.L), R: Substitute(name, index, replacement, t.R)}
	case EmptyList:
		return EmptyList{Type: Substitute(name, index, replacement, t.Type)}
	case NonEmptyList:
		newList := make(NonEmptyList, len(t))
		for i, e := range t {
			newList[i] = Substitute(name, index, replacement, e)
		}
		return newList
	case Some:
		return Some{Val: Substitute(name, index, replacement, t.Val)}
	case RecordType:
		newRT := make(RecordType, len(t))
		for k, v := range t {
			newRT[k] = Substitute(name, index, replacement, v)
		}
		return newRT
	case RecordLit:
		newRT := make(RecordLit, len(t))
		for k, v := range t {
			newRT[k] = Substitute(name, index, replacement, v)
		}
		return newRT
	case ToMap:
		newT := ToMap{Record: Substitute(name, index, replacement, t.Record)}
		if t.Type != nil {
			newT.Type = Substitute(name, index, replacement, t.Type)
		}
		return newT
	case Field:
		return Field{Record: Substitute(name, index, replacement, t.Record), FieldName: t.FieldName}
	case Project:
		return Project{Record: Substitute(name, index, replacement, t.Record), FieldNames: t.FieldNames}
	case ProjectType:
		return ProjectType{Record: Substitute(name, index, replacement, t.Record), Selector: Substitute(name, index, replacement, t.Selector)}
	case UnionType:
		newUT := make(UnionType, len(t))
		for k, v := range t {
			if v == nil {
				newUT[k] = nil
				continue
			}
			newUT[k] = Substitute(name, index, replacement, v)
		}
		return newUT
	case Merge:
		newM := Merge{Handler: Substitute(name, index, replacement, t.Handler), Union: Substitute(name, index, replacement, t.Union)}
		if t.Annotation != nil {
			newM.Annotation = Substitute(name, index, replacement, t.Annotation)
		}
		return newM
	case Assert:
		return Assert{Annotation: Substitute(name, index, replacement, t.Annotation)}
	case Import:
		return t
	}
	panic("Substitute: unknown term type")
}

package core

// Universe is one of the three sort constants Type, Kind, Sort. It is both
// a Term and a Value: universes normalize to themselves.
type Universe int

const (
	Type Universe = iota
	Kind
	Sort
)

func (u Universe) String() string {
	switch u {
	case Type:
		return "Type"
	case Kind:
		return "Kind"
	case Sort:
		return "Sort"
	}
	return "<unknown universe>"
}

func (u Universe) WriteTo(w interface{ Write([]byte) (int, error) }) {
	w.Write([]byte(u.String()))
}

// functionCheck implements the Pi-formation rule of the universe hierarchy:
// a function's own universe is Type whenever it returns a Type, and
// otherwise the higher of its input and output universes.
func functionCheck(in, out Universe) Universe {
	if out == Type {
		return Type
	}
	if in > out {
		return in
	}
	return out
}

func (Universe) exprNode()  {}
func (Universe) valueNode() {}

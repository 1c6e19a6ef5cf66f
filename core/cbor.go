package core

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

var cborHandle = func() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}()

// EncodeCbor renders t as the binary form the Dhall standard specifies for
// caching and import integrity checks: every compound variant is a CBOR
// array whose first element is a small integer tag.
func EncodeCbor(t Term) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, cborHandle)
	if err := enc.Encode(termToCbor(t)); err != nil {
		return nil, errors.Wrap(err, "cbor encode")
	}
	return buf, nil
}

// DecodeCbor parses bytes produced by EncodeCbor (or any conformant Dhall
// CBOR encoding of a term) back into a Term.
func DecodeCbor(data []byte) (Term, error) {
	var generic interface{}
	dec := codec.NewDecoderBytes(data, cborHandle)
	if err := dec.Decode(&generic); err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return cborToTerm(generic)
}

// opCodeTags maps OpCode to tag-3's second element, the table in the
// external interfaces reference; CompleteOp has no wire tag of its own
// since it always desugars before encoding.
var opCodeTags = map[OpCode]int64{
	OrOp: 0, AndOp: 1, EqOp: 2, NeOp: 3, PlusOp: 4, TimesOp: 5,
	TextAppendOp: 6, ListAppendOp: 7, RecordMergeOp: 8,
	RightBiasedRecordMergeOp: 9, RecordTypeMergeOp: 10, ImportAltOp: 11,
	EquivOp: 12,
}

var tagToOpCode = func() map[int64]OpCode {
	m := make(map[int64]OpCode, len(opCodeTags))
	for op, tag := range opCodeTags {
		m[tag] = op
	}
	return m
}()

func termToCbor(t Term) interface{} {
	switch t := t.(type) {
	case Universe:
		return t.String()
	case Builtin:
		return string(t)
	case Var:
		if t.Index == 0 {
			return t.Name
		}
		return []interface{}{t.Name, int64(t.Index)}
	case LocalVar:
		return []interface{}{t.Name, int64(t.Index)}
	case LambdaTerm:
		return []interface{}{int64(1), t.Label, termToCbor(t.Type), termToCbor(t.Body)}
	case PiTerm:
		return []interface{}{int64(2), t.Label, termToCbor(t.Type), termToCbor(t.Body)}
	case AppTerm:
		fn, args := flattenApp(t)
		out := make([]interface{}, 0, len(args)+2)
		out = append(out, int64(0), termToCbor(fn))
		for _, a := range args {
			out = append(out, termToCbor(a))
		}
		return out
	case Let:
		out := make([]interface{}, 0, 3*len(t.Bindings)+2)
		out = append(out, int64(25))
		for _, b := range t.Bindings {
			out = append(out, b.Variable)
			if b.Type != nil {
				out = append(out, termToCbor(b.Type))
			} else {
				out = append(out, nil)
			}
			out = append(out, termToCbor(b.Value))
		}
		out = append(out, termToCbor(t.Body))
		return out
	case Annot:
		return []interface{}{int64(26), termToCbor(t.Expr), termToCbor(t.Annotation)}
	case BoolLit:
		return bool(t)
	case NaturalLit:
		return []interface{}{int64(15), bigToCbor(t.BigInt())}
	case IntegerLit:
		return []interface{}{int64(16), bigToCbor(t.BigInt())}
	case DoubleLit:
		return float64(t)
	case TextLitTerm:
		out := make([]interface{}, 0, 2*len(t.Chunks)+2)
		out = append(out, int64(18))
		for _, c := range t.Chunks {
			out = append(out, c.Prefix, termToCbor(c.Expr))
		}
		out = append(out, t.Suffix)
		return out
	case IfTerm:
		return []interface{}{int64(14), termToCbor(t.Cond), termToCbor(t.T), termToCbor(t.F)}
	case OpTerm:
		return []interface{}{int64(3), opCodeTags[t.OpCode], termToCbor(t.L), termToCbor(t.R)}
	case EmptyList:
		return []interface{}{int64(28), termToCbor(t.Type)}
	case NonEmptyList:
		out := make([]interface{}, 0, len(t)+2)
		out = append(out, int64(4), nil)
		for _, e := range t {
			out = append(out, termToCbor(e))
		}
		return out
	case Some:
		return []interface{}{int64(5), nil, termToCbor(t.Val)}
	case RecordType:
		return []interface{}{int64(7), fieldsToCbor(t)}
	case RecordLit:
		return []interface{}{int64(8), fieldsToCbor(t)}
	case ToMap:
		out := []interface{}{int64(27), termToCbor(t.Record)}
		if t.Type != nil {
			out = append(out, termToCbor(t.Type))
		}
		return out
	case Field:
		return []interface{}{int64(9), termToCbor(t.Record), t.FieldName}
	case Project:
		out := make([]interface{}, 0, len(t.FieldNames)+2)
		out = append(out, int64(10), termToCbor(t.Record))
		for _, f := range t.FieldNames {
			out = append(out, f)
		}
		return out
	case ProjectType:
		return []interface{}{int64(10), termToCbor(t.Record), []interface{}{termToCbor(t.Selector)}}
	case UnionType:
		m := make(map[interface{}]interface{}, len(t))
		for k, v := range t {
			if v == nil {
				m[k] = nil
			} else {
				m[k] = termToCbor(v)
			}
		}
		return []interface{}{int64(11), m}
	case Merge:
		out := []interface{}{int64(6), termToCbor(t.Handler), termToCbor(t.Union)}
		if t.Annotation != nil {
			out = append(out, termToCbor(t.Annotation))
		}
		return out
	case Assert:
		return []interface{}{int64(19), termToCbor(t.Annotation)}
	case Import:
		return importToCbor(t)
	}
	panic("termToCbor: unknown term type")
}

func flattenApp(t AppTerm) (Term, []Term) {
	var args []Term
	cur := Term(t)
	for {
		app, ok := cur.(AppTerm)
		if !ok {
			break
		}
		args = append([]Term{app.Arg}, args...)
		cur = app.Fn
	}
	return cur, args
}

func fieldsToCbor(m map[string]Term) map[interface{}]interface{} {
	out := make(map[interface{}]interface{}, len(m))
	for k, v := range m {
		out[k] = termToCbor(v)
	}
	return out
}

func bigToCbor(n *big.Int) interface{} {
	if n.IsUint64() {
		return n.Uint64()
	}
	if n.IsInt64() {
		return n.Int64()
	}
	return n.Bytes()
}

func importToCbor(t Import) interface{} {
	out := []interface{}{int64(24)}
	if t.Hash != nil {
		out = append(out, append([]byte{0x12, 0x20}, t.Hash...))
	} else {
		out = append(out, nil)
	}
	out = append(out, int64(t.Mode))
	switch t.PathKind {
	case LocalPath:
		out = append(out, int64(t.LocalKind))
		for _, c := range t.Components {
			out = append(out, c)
		}
	case RemotePath:
		out = append(out, int64(2+t.Scheme))
		out = append(out, t.Authority)
		for _, c := range t.Components {
			out = append(out, c)
		}
		if t.Query != "" {
			out = append(out, t.Query)
		} else {
			out = append(out, nil)
		}
	case EnvPath:
		out = append(out, int64(5))
		if len(t.Components) > 0 {
			out = append(out, t.Components[0])
		}
	case MissingPath:
		out = append(out, int64(6))
	}
	return out
}

func cborToTerm(v interface{}) (Term, error) {
	switch v := v.(type) {
	case string:
		if b, ok := LookupBuiltin(v); ok {
			return b, nil
		}
		switch v {
		case "Type":
			return Type, nil
		case "Kind":
			return Kind, nil
		case "Sort":
			return Sort, nil
		}
		return Var{Name: v, Index: 0}, nil
	case bool:
		return BoolLit(v), nil
	case float64:
		return DoubleLit(v), nil
	case float32:
		return DoubleLit(v), nil
	case []interface{}:
		return cborArrayToTerm(v)
	}
	return nil, &DecodeError{Message: "unrecognized cbor shape"}
}

func cborArrayToTerm(arr []interface{}) (Term, error) {
	if len(arr) == 2 {
		if name, ok := arr[0].(string); ok {
			idx, err := cborToInt(arr[1])
			if err != nil {
				return nil, err
			}
			return Var{Name: name, Index: idx}, nil
		}
	}
	if len(arr) == 0 {
		return nil, &DecodeError{Message: "empty cbor array"}
	}
	tag, err := cborToInt(arr[0])
	if err != nil {
		return nil, &DecodeError{Message: "expression array missing integer tag"}
	}
	rest := arr[1:]
	switch tag {
	case 0:
		if len(rest) < 2 {
			return nil, &DecodeError{Message: "App requires a function and at least one argument"}
		}
		fn, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		out := fn
		for _, a := range rest[1:] {
			arg, err := cborToTerm(a)
			if err != nil {
				return nil, err
			}
			out = AppTerm{Fn: out, Arg: arg}
		}
		return out, nil
	case 1, 2:
		if len(rest) != 3 {
			return nil, &DecodeError{Message: "Lambda/Pi requires exactly 3 fields"}
		}
		label, _ := rest[0].(string)
		if label == "" {
			label = "_"
		}
		typ, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		body, err := cborToTerm(rest[2])
		if err != nil {
			return nil, err
		}
		if tag == 1 {
			return LambdaTerm{Label: label, Type: typ, Body: body}, nil
		}
		return PiTerm{Label: label, Type: typ, Body: body}, nil
	case 3:
		if len(rest) != 3 {
			return nil, &DecodeError{Message: "BinaryOp requires exactly 3 fields"}
		}
		opTag, err := cborToInt(rest[0])
		if err != nil {
			return nil, err
		}
		op, ok := tagToOpCode[int64(opTag)]
		if !ok {
			return nil, &DecodeError{Message: "unknown operator tag"}
		}
		l, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		r, err := cborToTerm(rest[2])
		if err != nil {
			return nil, err
		}
		return OpTerm{OpCode: op, L: l, R: r}, nil
	case 4:
		if len(rest) < 1 {
			return nil, &DecodeError{Message: "List requires a type slot"}
		}
		elems := rest[1:]
		if len(elems) == 0 {
			typ, err := cborToTerm(rest[0])
			if err != nil {
				return nil, err
			}
			return EmptyList{Type: typ}, nil
		}
		out := make(NonEmptyList, len(elems))
		for i, e := range elems {
			el, err := cborToTerm(e)
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil
	case 5:
		if len(rest) != 2 {
			return nil, &DecodeError{Message: "Optional requires exactly 2 fields"}
		}
		val, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		return Some{Val: val}, nil
	case 6:
		if len(rest) < 2 {
			return nil, &DecodeError{Message: "Merge requires a handler and a union"}
		}
		h, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		u, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		m := Merge{Handler: h, Union: u}
		if len(rest) > 2 {
			ann, err := cborToTerm(rest[2])
			if err != nil {
				return nil, err
			}
			m.Annotation = ann
		}
		return m, nil
	case 7, 8:
		if len(rest) != 1 {
			return nil, &DecodeError{Message: "RecordType/Record requires exactly 1 field"}
		}
		fields, err := cborToFields(rest[0])
		if err != nil {
			return nil, err
		}
		if tag == 7 {
			return RecordType(fields), nil
		}
		return RecordLit(fields), nil
	case 9:
		if len(rest) != 2 {
			return nil, &DecodeError{Message: "RecordSelection requires exactly 2 fields"}
		}
		rec, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		name, _ := rest[1].(string)
		return Field{Record: rec, FieldName: name}, nil
	case 10:
		if len(rest) < 1 {
			return nil, &DecodeError{Message: "RecordProjection requires a record"}
		}
		rec, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		if len(rest) == 2 {
			if sels, ok := rest[1].([]interface{}); ok && len(sels) == 1 {
				sel, err := cborToTerm(sels[0])
				if err != nil {
					return nil, err
				}
				return ProjectType{Record: rec, Selector: sel}, nil
			}
		}
		names := make([]string, 0, len(rest)-1)
		for _, f := range rest[1:] {
			name, _ := f.(string)
			names = append(names, name)
		}
		return Project{Record: rec, FieldNames: names}, nil
	case 11:
		if len(rest) != 1 {
			return nil, &DecodeError{Message: "UnionType requires exactly 1 field"}
		}
		alts, err := cborToUnionFields(rest[0])
		if err != nil {
			return nil, err
		}
		return UnionType(alts), nil
	case 14:
		if len(rest) != 3 {
			return nil, &DecodeError{Message: "If requires exactly 3 fields"}
		}
		cond, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		th, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		el, err := cborToTerm(rest[2])
		if err != nil {
			return nil, err
		}
		return IfTerm{Cond: cond, T: th, F: el}, nil
	case 15:
		n, err := cborToBigInt(rest[0])
		if err != nil {
			return nil, err
		}
		return NaturalLit(*n), nil
	case 16:
		n, err := cborToBigInt(rest[0])
		if err != nil {
			return nil, err
		}
		return IntegerLit(*n), nil
	case 18:
		if len(rest) < 1 {
			return nil, &DecodeError{Message: "TextLiteral requires at least a suffix"}
		}
		var chunks Chunks
		i := 0
		for i+1 < len(rest) {
			prefix, _ := rest[i].(string)
			expr, err := cborToTerm(rest[i+1])
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, Chunk{Prefix: prefix, Expr: expr})
			i += 2
		}
		suffix, _ := rest[len(rest)-1].(string)
		return TextLitTerm{Chunks: chunks, Suffix: suffix}, nil
	case 19:
		if len(rest) != 1 {
			return nil, &DecodeError{Message: "Assert requires exactly 1 field"}
		}
		ann, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		return Assert{Annotation: ann}, nil
	case 25:
		if len(rest) < 4 || len(rest)%3 != 1 {
			return nil, &DecodeError{Message: "LetBlock has a malformed field count"}
		}
		var bindings []Binding
		i := 0
		for i+3 <= len(rest)-1 {
			variable, _ := rest[i].(string)
			b := Binding{Variable: variable}
			if rest[i+1] != nil {
				typ, err := cborToTerm(rest[i+1])
				if err != nil {
					return nil, err
				}
				b.Type = typ
			}
			val, err := cborToTerm(rest[i+2])
			if err != nil {
				return nil, err
			}
			b.Value = val
			bindings = append(bindings, b)
			i += 3
		}
		body, err := cborToTerm(rest[len(rest)-1])
		if err != nil {
			return nil, err
		}
		return Let{Bindings: bindings, Body: body}, nil
	case 26:
		if len(rest) != 2 {
			return nil, &DecodeError{Message: "TypeAnnotation requires exactly 2 fields"}
		}
		expr, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		ann, err := cborToTerm(rest[1])
		if err != nil {
			return nil, err
		}
		return Annot{Expr: expr, Annotation: ann}, nil
	case 27:
		if len(rest) < 1 {
			return nil, &DecodeError{Message: "ToMap requires a record"}
		}
		rec, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		tm := ToMap{Record: rec}
		if len(rest) > 1 {
			typ, err := cborToTerm(rest[1])
			if err != nil {
				return nil, err
			}
			tm.Type = typ
		}
		return tm, nil
	case 28:
		if len(rest) != 1 {
			return nil, &DecodeError{Message: "EmptyList requires exactly 1 field"}
		}
		typ, err := cborToTerm(rest[0])
		if err != nil {
			return nil, err
		}
		return EmptyList{Type: typ}, nil
	case 24:
		return cborToImport(rest)
	}
	return nil, &DecodeError{Message: "unknown expression tag"}
}

func cborToFields(v interface{}) (map[string]Term, error) {
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		if m2, ok := v.(map[string]interface{}); ok {
			out := make(map[string]Term, len(m2))
			for k, val := range m2 {
				t, err := cborToTerm(val)
				if err != nil {
					return nil, err
				}
				out[k] = t
			}
			return out, nil
		}
		return nil, &DecodeError{Message: "expected a field map"}
	}
	out := make(map[string]Term, len(m))
	for k, val := range m {
		key, _ := k.(string)
		t, err := cborToTerm(val)
		if err != nil {
			return nil, err
		}
		out[key] = t
	}
	return out, nil
}

func cborToUnionFields(v interface{}) (map[string]Term, error) {
	raw, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, &DecodeError{Message: "expected a union alternative map"}
	}
	out := make(map[string]Term, len(raw))
	for k, val := range raw {
		key, _ := k.(string)
		if val == nil {
			out[key] = nil
			continue
		}
		t, err := cborToTerm(val)
		if err != nil {
			return nil, err
		}
		out[key] = t
	}
	return out, nil
}

func cborToInt(v interface{}) (int, error) {
	switch v := v.(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case int:
		return v, nil
	}
	return 0, &DecodeError{Message: "expected an integer"}
}

func cborToBigInt(v interface{}) (*big.Int, error) {
	switch v := v.(type) {
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	case []byte:
		return new(big.Int).SetBytes(v), nil
	}
	return nil, &DecodeError{Message: "expected an integer literal"}
}

func cborToImport(rest []interface{}) (Term, error) {
	if len(rest) < 2 {
		return nil, &DecodeError{Message: "Import requires at least hash and mode"}
	}
	imp := Import{}
	if rest[0] != nil {
		if hb, ok := rest[0].([]byte); ok && len(hb) == 34 {
			imp.Hash = hb[2:]
		}
	}
	mode, err := cborToInt(rest[1])
	if err != nil {
		return nil, err
	}
	imp.Mode = ImportMode(mode)
	if len(rest) < 3 {
		return nil, &DecodeError{Message: "Import requires a path-kind discriminant"}
	}
	kind, err := cborToInt(rest[2])
	if err != nil {
		return nil, err
	}
	remainder := rest[3:]
	switch {
	case kind <= 1:
		imp.PathKind = LocalPath
		imp.LocalKind = LocalKind(kind)
		for _, c := range remainder {
			s, _ := c.(string)
			imp.Components = append(imp.Components, s)
		}
	case kind == 2 || kind == 3:
		imp.PathKind = RemotePath
		imp.Scheme = RemoteScheme(kind - 2)
		if len(remainder) > 0 {
			imp.Authority, _ = remainder[0].(string)
			remainder = remainder[1:]
		}
		if len(remainder) > 0 {
			if q, ok := remainder[len(remainder)-1].(string); ok {
				imp.Query = q
				remainder = remainder[:len(remainder)-1]
			} else {
				remainder = remainder[:len(remainder)-1]
			}
		}
		for _, c := range remainder {
			s, _ := c.(string)
			imp.Components = append(imp.Components, s)
		}
	case kind == 5:
		imp.PathKind = EnvPath
		if len(remainder) > 0 {
			s, _ := remainder[0].(string)
			imp.Components = []string{s}
		}
	default:
		imp.PathKind = MissingPath
	}
	return imp, nil
}

// Package host converts between Go values and Dhall expressions by
// reflection, for the sub-grammar of normal values: bool, Natural, Integer,
// Double, Text, List, Optional, and struct-like records. Arbitrary host
// objects without a struct/map/slice shape are not supported; functions on
// the Dhall side become Go callables that re-invoke the normalizer on each
// application, matching the teacher's normalize-by-evaluation style rather
// than a tree-walking interpreter of its own.
package host

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"github.com/dhall-run/dhall-go/core"
)

// AsDhall converts a Go value into the Dhall expression of the matching
// shape. Heterogeneous slices synthesize an anonymous union type whose tag
// per element is derived from the element's Dhall type, with a
// "ClassName_<hash>" tag on a name collision between two distinct types.
func AsDhall(v interface{}) (core.Term, error) {
	return asDhall(reflect.ValueOf(v))
}

func asDhall(rv reflect.Value) (core.Term, error) {
	if !rv.IsValid() {
		return nil, errors.New("as_dhall: nil interface has no Dhall representation")
	}
	switch rv.Kind() {
	case reflect.Bool:
		return core.BoolLit(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return core.IntegerLit(*big.NewInt(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return core.NaturalLit(*new(big.Int).SetUint64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return core.DoubleLit(rv.Float()), nil
	case reflect.String:
		return core.TextLitTerm{Suffix: rv.String()}, nil
	case reflect.Ptr:
		return asDhallOptional(rv)
	case reflect.Interface:
		if rv.IsNil() {
			return nil, errors.New("as_dhall: nil interface has no Dhall representation")
		}
		return asDhall(rv.Elem())
	case reflect.Slice, reflect.Array:
		return asDhallList(rv)
	case reflect.Map:
		return asDhallMapRecord(rv)
	case reflect.Struct:
		return asDhallStruct(rv)
	default:
		return nil, errors.Errorf("as_dhall: unsupported Go kind %s", rv.Kind())
	}
}

// asDhallOptional maps a nil pointer to `None <type>` and a non-nil one
// to `Some <value>`, inferring the element type from a
// zero-valued instance of the pointed-to type so that `None` still carries
// a concrete annotation.
func asDhallOptional(rv reflect.Value) (core.Term, error) {
	if rv.IsNil() {
		elemType := rv.Type().Elem()
		zero := reflect.New(elemType).Elem()
		typed, err := asDhall(zero)
		if err != nil {
			return nil, err
		}
		ty, err := dhallTypeOf(typed)
		if err != nil {
			return nil, err
		}
		return core.AppTerm{Fn: core.NoneType, Arg: ty}, nil
	}
	inner, err := asDhall(rv.Elem())
	if err != nil {
		return nil, err
	}
	return core.Some{Val: inner}, nil
}

// asDhallList builds a homogeneous List when every element has the same
// Dhall type, or a List of an anonymous union when the elements differ.
func asDhallList(rv reflect.Value) (core.Term, error) {
	n := rv.Len()
	if n == 0 {
		elemType, err := dhallTypeOf(zeroDhallFor(rv.Type().Elem()))
		if err != nil {
			return nil, err
		}
		return core.EmptyList{Type: core.Apply(core.ListType, elemType)}, nil
	}

	elems := make([]core.Term, n)
	types := make([]core.Term, n)
	for i := 0; i < n; i++ {
		t, err := asDhall(rv.Index(i))
		if err != nil {
			return nil, err
		}
		ty, err := dhallTypeOf(t)
		if err != nil {
			return nil, err
		}
		elems[i] = t
		types[i] = ty
	}

	if allSameType(types) {
		lit := core.NonEmptyList(elems)
		return lit, nil
	}

	tagged, _, err := tagHeterogeneous(elems, types)
	if err != nil {
		return nil, err
	}
	return core.NonEmptyList(tagged), nil
}

func zeroDhallFor(t reflect.Type) core.Term {
	// Best-effort placeholder used only to infer an empty list's element
	// type; a struct/interface element type falls back to Text since there
	// is no zero value reflection can meaningfully convert on its own.
	switch t.Kind() {
	case reflect.Bool:
		return core.BoolLit(false)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return core.NewIntegerLit(0)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return core.NewNaturalLit(0)
	case reflect.Float32, reflect.Float64:
		return core.DoubleLit(0)
	default:
		return core.TextLitTerm{}
	}
}

func allSameType(types []core.Term) bool {
	if len(types) == 0 {
		return true
	}
	first, err := core.SemanticHash(types[0])
	if err != nil {
		return false
	}
	for _, t := range types[1:] {
		h, err := core.SemanticHash(t)
		if err != nil || h != first {
			return false
		}
	}
	return true
}

// tagHeterogeneous builds an anonymous union type covering every distinct
// element type present, naming each alternative after the type's shape
// ("Bool", "Natural", "Record", ...), falling back to a
// "ClassName_<hash-of-type>" tag when two distinct types would otherwise
// claim the same shape name.
func tagHeterogeneous(elems, types []core.Term) ([]core.Term, core.UnionType, error) {
	unionType := core.UnionType{}
	tagOf := make(map[string]string, len(types)) // semantic hash -> tag
	usedNames := map[string]bool{}

	tagFor := func(ty core.Term) (string, error) {
		h, err := core.SemanticHash(ty)
		if err != nil {
			return "", err
		}
		if tag, ok := tagOf[h]; ok {
			return tag, nil
		}
		base := shapeName(ty)
		tag := base
		if usedNames[tag] {
			tag = fmt.Sprintf("ClassName_%s", h[len("sha256:"):len("sha256:")+8])
		}
		usedNames[tag] = true
		tagOf[h] = tag
		unionType[tag] = ty
		return tag, nil
	}

	tagged := make([]core.Term, len(elems))
	for i, elem := range elems {
		tag, err := tagFor(types[i])
		if err != nil {
			return nil, nil, err
		}
		tagged[i] = core.AppTerm{
			Fn:  core.Field{Record: unionType, FieldName: tag},
			Arg: elem,
		}
	}
	return tagged, unionType, nil
}

func shapeName(ty core.Term) string {
	switch t := ty.(type) {
	case core.Builtin:
		switch t {
		case core.BoolType:
			return "Bool"
		case core.NaturalType:
			return "Natural"
		case core.IntegerType:
			return "Integer"
		case core.DoubleType:
			return "Double"
		case core.TextType:
			return "Text"
		}
	case core.RecordType:
		return "Record"
	case core.AppTerm:
		if b, ok := t.Fn.(core.Builtin); ok {
			switch b {
			case core.ListType:
				return "List"
			case core.OptionalType:
				return "Optional"
			}
		}
	}
	return "Value"
}

// asDhallMapRecord requires a map[string]T so string keys become Dhall
// field names directly; any other key type has no natural Dhall record
// representation.
func asDhallMapRecord(rv reflect.Value) (core.Term, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Errorf("as_dhall: map key type %s is not string-keyed", rv.Type().Key())
	}
	fields := core.RecordLit{}
	iter := rv.MapRange()
	for iter.Next() {
		t, err := asDhall(iter.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "as_dhall: field %q", iter.Key().String())
		}
		fields[iter.Key().String()] = t
	}
	return fields, nil
}

// asDhallStruct converts exported fields into a record literal, one field
// per exported struct field named after it.
func asDhallStruct(rv reflect.Value) (core.Term, error) {
	fields := core.RecordLit{}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		term, err := asDhall(rv.Field(i))
		if err != nil {
			return nil, errors.Wrapf(err, "as_dhall: field %q", sf.Name)
		}
		fields[sf.Name] = term
	}
	return fields, nil
}

// dhallTypeOf typechecks a closed term built by asDhall, which never
// contains a free variable or an import, so an EmptyContext typecheck
// always succeeds for well-formed output.
func dhallTypeOf(t core.Term) (core.Term, error) {
	v, err := core.TypeOf(core.EmptyContext(), t)
	if err != nil {
		return nil, errors.Wrap(err, "as_dhall: inferring element type")
	}
	return core.Quote(v), nil
}

// FromDhall is the inverse of AsDhall for the sub-grammar of normal
// values: it normalizes expr first, then converts the result into a plain
// Go value (bool, *big.Int, float64, string, []interface{},
// map[string]interface{}, or nil for None). A Dhall function value
// becomes a Go func(interface{}) (interface{}, error) that re-applies
// AsDhall/core.Eval/FromDhall on each call, rather than being reduced here.
func FromDhall(expr core.Term) (interface{}, error) {
	return fromValue(core.Eval(expr))
}

func fromValue(v core.Value) (interface{}, error) {
	switch val := v.(type) {
	case core.BoolLit:
		return bool(val), nil
	case core.NaturalLit:
		return val.BigInt(), nil
	case core.IntegerLit:
		return val.BigInt(), nil
	case core.DoubleLit:
		return float64(val), nil
	case core.TextLitVal:
		if len(val.Chunks) > 0 {
			return nil, errors.New("from_dhall: text literal still has unevaluated interpolation chunks")
		}
		return val.Suffix, nil
	case core.EmptyListVal:
		return []interface{}{}, nil
	case core.NonEmptyListVal:
		out := make([]interface{}, len(val))
		for i, e := range val {
			conv, err := fromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case core.SomeVal:
		return fromValue(val.Val)
	case core.AppValue:
		if b, ok := val.Fn.(core.Builtin); ok && b == core.NoneType {
			return nil, nil
		}
		return nil, errors.Errorf("from_dhall: unsupported applied value %#v", val)
	case core.RecordLitVal:
		out := make(map[string]interface{}, len(val))
		for k, f := range val {
			conv, err := fromValue(f)
			if err != nil {
				return nil, errors.Wrapf(err, "from_dhall: field %q", k)
			}
			out[k] = conv
		}
		return out, nil
	case core.LambdaValue:
		fn := func(arg interface{}) (interface{}, error) {
			argTerm, err := AsDhall(arg)
			if err != nil {
				return nil, err
			}
			return fromValue(val.Call(core.Eval(argTerm)))
		}
		return fn, nil
	default:
		return nil, errors.Errorf("from_dhall: value %#v has no host representation", v)
	}
}


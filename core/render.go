package core

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// formatDouble renders a float64 the way Double/show does: always with a
// decimal point or exponent, "Infinity"/"-Infinity"/"NaN" for the specials,
// matching the textual grammar Dhall source accepts back.
func formatDouble(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quoteDhallText renders the Text/show escaping rules: a Dhall text
// literal is wrapped in double quotes with \", \\, and the usual
// control-character escapes.
func quoteDhallText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// escapeEnvName renders a POSIX environment variable name as a
// double-quoted Dhall string, for the env:NAME import form.
func escapeEnvName(name string) string {
	return quoteDhallText(name)
}

// Render writes a human-readable rendering of t, sufficient for error
// messages and the CLI's diagnostic output: cmd/dhall prints the inferred
// type and the normal form this way.
func Render(w io.Writer, t Term) {
	fmt.Fprint(w, renderString(t))
}

func renderString(t Term) string {
	switch t := t.(type) {
	case Universe:
		return t.String()
	case Builtin:
		return string(t)
	case Var:
		if t.Index == 0 {
			return t.Name
		}
		return fmt.Sprintf("%s@%d", t.Name, t.Index)
	case LocalVar:
		return fmt.Sprintf("%s!%d", t.Name, t.Index)
	case LambdaTerm:
		return fmt.Sprintf("λ(%s : %s) → %s", t.Label, renderString(t.Type), renderString(t.Body))
	case PiTerm:
		if t.Label == "_" {
			return fmt.Sprintf("%s → %s", renderString(t.Type), renderString(t.Body))
		}
		return fmt.Sprintf("∀(%s : %s) → %s", t.Label, renderString(t.Type), renderString(t.Body))
	case AppTerm:
		return fmt.Sprintf("%s %s", renderString(t.Fn), renderString(t.Arg))
	case Let:
		var b strings.Builder
		for _, bind := range t.Bindings {
			if bind.Type != nil {
				fmt.Fprintf(&b, "let %s : %s = %s ", bind.Variable, renderString(bind.Type), renderString(bind.Value))
			} else {
				fmt.Fprintf(&b, "let %s = %s ", bind.Variable, renderString(bind.Value))
			}
		}
		fmt.Fprintf(&b, "in %s", renderString(t.Body))
		return b.String()
	case Annot:
		return fmt.Sprintf("%s : %s", renderString(t.Expr), renderString(t.Annotation))
	case BoolLit:
		if t {
			return "True"
		}
		return "False"
	case NaturalLit:
		return t.String()
	case IntegerLit:
		return t.String()
	case DoubleLit:
		return formatDouble(float64(t))
	case TextLitTerm:
		var b strings.Builder
		b.WriteByte('"')
		for _, c := range t.Chunks {
			b.WriteString(c.Prefix)
			fmt.Fprintf(&b, "${%s}", renderString(c.Expr))
		}
		b.WriteString(t.Suffix)
		b.WriteByte('"')
		return b.String()
	case IfTerm:
		return fmt.Sprintf("if %s then %s else %s", renderString(t.Cond), renderString(t.T), renderString(t.F))
	case OpTerm:
		return fmt.Sprintf("(%s %s %s)", renderString(t.L), t.OpCode, renderString(t.R))
	case EmptyList:
		return fmt.Sprintf("([] : %s)", renderString(t.Type))
	case NonEmptyList:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = renderString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Some:
		return fmt.Sprintf("Some %s", renderString(t.Val))
	case RecordType:
		return renderFields(t, ":")
	case RecordLit:
		return renderFields(t, "=")
	case ToMap:
		if t.Type != nil {
			return fmt.Sprintf("(toMap %s : %s)", renderString(t.Record), renderString(t.Type))
		}
		return fmt.Sprintf("toMap %s", renderString(t.Record))
	case Field:
		return fmt.Sprintf("%s.%s", renderString(t.Record), t.FieldName)
	case Project:
		return fmt.Sprintf("%s.{%s}", renderString(t.Record), strings.Join(t.FieldNames, ", "))
	case ProjectType:
		return fmt.Sprintf("%s.(%s)", renderString(t.Record), renderString(t.Selector))
	case UnionType:
		keys := sortedKeysAny(t)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if t[k] == nil {
				parts = append(parts, k)
			} else {
				parts = append(parts, fmt.Sprintf("%s : %s", k, renderString(t[k])))
			}
		}
		return "< " + strings.Join(parts, " | ") + " >"
	case Merge:
		if t.Annotation != nil {
			return fmt.Sprintf("merge %s %s : %s", renderString(t.Handler), renderString(t.Union), renderString(t.Annotation))
		}
		return fmt.Sprintf("merge %s %s", renderString(t.Handler), renderString(t.Union))
	case Assert:
		return fmt.Sprintf("assert : %s", renderString(t.Annotation))
	case Import:
		return "<import>"
	}
	return "<?>"
}

func renderFields(m map[string]Term, sep string) string {
	keys := sortedKeysAny(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s %s", k, sep, renderString(m[k])))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func sortedKeysAny(m map[string]Term) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

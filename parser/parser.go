// Package parser is the narrow AST-producing interface the core evaluator
// consumes. The concrete Dhall grammar (full string interpolation escapes,
// quoted URL paths, `using` header forwarding, multi-line literals) is an
// external collaborator per the evaluator's scope and is not reproduced
// here; this is a hand-written recursive-descent parser over the literal,
// binder, operator and application forms the evaluator and its tests
// actually exercise, enough to drive `imports` end to end on real source
// text without committing to a PEG grammar generator.
package parser

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhall-run/dhall-go/core"
)

// ParseError reports a syntax error at a byte offset in the source.
type ParseError struct {
	Filename string
	Offset   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Offset, e.Message)
}

// Parse turns src into a Term, or returns a *ParseError. filename is used
// only for error messages.
func Parse(filename string, src []byte) (core.Term, error) {
	p := &parser{filename: filename, src: string(src)}
	p.skipWhitespace()
	t, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return t, nil
}

type parser struct {
	filename string
	src      string
	pos      int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Filename: p.filename, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peekByte() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipWhitespace() {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '-' && p.hasPrefix("--"):
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '{' && p.hasPrefix("{-"):
			p.pos += 2
			depth := 1
			for !p.eof() && depth > 0 {
				if p.hasPrefix("{-") {
					depth++
					p.pos += 2
				} else if p.hasPrefix("-}") {
					depth--
					p.pos += 2
				} else {
					p.pos++
				}
			}
		default:
			return
		}
	}
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) consume(s string) bool {
	if p.hasPrefix(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) consumeTok(s string) bool {
	if !p.consume(s) {
		return false
	}
	p.skipWhitespace()
	return true
}

// keyword consumes s only when it is not immediately followed by an
// identifier character, so "let" doesn't also match a prefix of "letter".
func (p *parser) keyword(s string) bool {
	if !p.hasPrefix(s) {
		return false
	}
	next := p.pos + len(s)
	if next < len(p.src) && isIdentCont(rune(p.src[next])) {
		return false
	}
	p.pos = next
	p.skipWhitespace()
	return true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}
func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '/' || r == '-'
}

var reservedKeywords = map[string]bool{
	"let": true, "in": true, "if": true, "then": true, "else": true,
	"as": true, "using": true, "merge": true, "Some": true, "toMap": true,
	"assert": true, "forall": true, "with": true, "missing": true,
}

func (p *parser) identifier() (string, bool) {
	if p.eof() {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if !isIdentStart(r) {
		return "", false
	}
	start := p.pos
	p.pos += size
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentCont(r) {
			break
		}
		p.pos += size
	}
	name := p.src[start:p.pos]
	p.skipWhitespace()
	return name, true
}

// parseExpression is the entry point for the whole grammar: binders, then
// annotation, then operators, then application, then primaries.
func (p *parser) parseExpression() (core.Term, error) {
	switch {
	case p.keyword("let"):
		return p.parseLet()
	case p.keyword("if"):
		return p.parseIf()
	case p.consumeLambda():
		return p.parseLambda()
	case p.consumeForall():
		return p.parsePi()
	case p.keyword("merge"):
		return p.parseMerge()
	case p.keyword("assert"):
		if !p.consumeTok(":") {
			return nil, p.errorf("expected ':' after assert")
		}
		annot, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return core.Assert{Annotation: annot}, nil
	}
	return p.parseAnnotated()
}

func (p *parser) consumeLambda() bool {
	if p.hasPrefix("\\(") || p.hasPrefix("λ(") {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		return true
	}
	return false
}

func (p *parser) consumeForall() bool {
	if p.hasPrefix("∀(") {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		return true
	}
	if p.keyword("forall") {
		if p.hasPrefix("(") {
			return true
		}
		p.pos -= len("forall")
		return false
	}
	return false
}

func (p *parser) parseLambda() (core.Term, error) {
	if !p.consumeTok("(") {
		return nil, p.errorf("expected '(' after lambda")
	}
	label, ok := p.identifier()
	if !ok {
		return nil, p.errorf("expected identifier in lambda binder")
	}
	if !p.consumeTok(":") {
		return nil, p.errorf("expected ':' in lambda binder")
	}
	typ, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.consumeTok(")") {
		return nil, p.errorf("expected ')' to close lambda binder")
	}
	if !p.consumeArrow() {
		return nil, p.errorf("expected '->' after lambda binder")
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return core.LambdaTerm{Label: label, Type: typ, Body: body}, nil
}

func (p *parser) parsePi() (core.Term, error) {
	if !p.consumeTok("(") {
		return nil, p.errorf("expected '(' after forall")
	}
	label, ok := p.identifier()
	if !ok {
		return nil, p.errorf("expected identifier in forall binder")
	}
	if !p.consumeTok(":") {
		return nil, p.errorf("expected ':' in forall binder")
	}
	typ, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.consumeTok(")") {
		return nil, p.errorf("expected ')' to close forall binder")
	}
	if !p.consumeArrow() {
		return nil, p.errorf("expected '->' after forall binder")
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return core.PiTerm{Label: label, Type: typ, Body: body}, nil
}

func (p *parser) consumeArrow() bool {
	return p.consumeTok("->") || p.consumeTok("→")
}

func (p *parser) parseLet() (core.Term, error) {
	var bindings []core.Binding
	for {
		label, ok := p.identifier()
		if !ok {
			return nil, p.errorf("expected identifier after let")
		}
		var typ core.Term
		if p.consumeTok(":") {
			t, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		if !p.consumeTok("=") {
			return nil, p.errorf("expected '=' in let binding")
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, core.Binding{Variable: label, Type: typ, Value: value})
		if !p.keyword("let") {
			break
		}
	}
	if !p.keyword("in") {
		return nil, p.errorf("expected 'in' to close let")
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return core.Let{Bindings: bindings, Body: body}, nil
}

func (p *parser) parseIf() (core.Term, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.keyword("then") {
		return nil, p.errorf("expected 'then'")
	}
	t, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.keyword("else") {
		return nil, p.errorf("expected 'else'")
	}
	f, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return core.IfTerm{Cond: cond, T: t, F: f}, nil
}

func (p *parser) parseMerge() (core.Term, error) {
	handler, err := p.parseApplication()
	if err != nil {
		return nil, err
	}
	union, err := p.parseApplication()
	if err != nil {
		return nil, err
	}
	m := core.Merge{Handler: handler, Union: union}
	if p.consumeTok(":") {
		annot, err := p.parseOperator(0)
		if err != nil {
			return nil, err
		}
		m.Annotation = annot
	}
	return m, nil
}

func (p *parser) parseAnnotated() (core.Term, error) {
	e, err := p.parseOperator(0)
	if err != nil {
		return nil, err
	}
	if p.consumeTok(":") {
		annot, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if lit, ok := e.(core.NonEmptyList); ok && len(lit) == 0 {
			return core.EmptyList{Type: annot}, nil
		}
		return core.Annot{Expr: e, Annotation: annot}, nil
	}
	return e, nil
}

// operator precedence, loosest to tightest, matching the external operator
// table: ImportAlt, Or, TextAppend, ListAppend, And, CombineTypes, Prefer,
// Combine, Equivalent, NotEqual, Equal, Times, Plus.
var opLevels = []struct {
	tok string
	op  core.OpCode
}{
	{"?", core.ImportAltOp},
	{"||", core.OrOp},
	{"++", core.TextAppendOp},
	{"#", core.ListAppendOp},
	{"&&", core.AndOp},
	{"⩓", core.RecordTypeMergeOp},
	{"⫽", core.RightBiasedRecordMergeOp},
	{"∧", core.RecordMergeOp},
	{"≡", core.EquivOp},
	{"!=", core.NeOp},
	{"==", core.EqOp},
	{"*", core.TimesOp},
	{"+", core.PlusOp},
}

func (p *parser) parseOperator(level int) (core.Term, error) {
	if level >= len(opLevels) {
		return p.parseApplication()
	}
	lhs, err := p.parseOperator(level + 1)
	if err != nil {
		return nil, err
	}
	tok := opLevels[level].tok
	for p.peekOperator(tok) {
		p.consumeTok(tok)
		rhs, err := p.parseOperator(level + 1)
		if err != nil {
			return nil, err
		}
		lhs = core.OpTerm{OpCode: opLevels[level].op, L: lhs, R: rhs}
	}
	return lhs, nil
}

// peekOperator avoids "+5" (unary-looking juxtaposition, a NaturalPlus
// without whitespace is still addition; only bare "+" not followed by an
// identifier-looking application boundary is ambiguous in the full
// grammar) by just requiring the exact token followed by whitespace-or-eof
// in this reduced grammar.
func (p *parser) peekOperator(tok string) bool {
	if !p.hasPrefix(tok) {
		return false
	}
	next := p.pos + len(tok)
	return next >= len(p.src) || strings.IndexByte(" \t\r\n", p.src[next]) >= 0
}

func (p *parser) parseApplication() (core.Term, error) {
	if p.keyword("Some") {
		v, err := p.parseApplication()
		if err != nil {
			return nil, err
		}
		return core.Some{Val: v}, nil
	}
	if p.keyword("toMap") {
		rec, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		tm := core.ToMap{Record: rec}
		if p.consumeTok(":") {
			t, err := p.parseApplication()
			if err != nil {
				return nil, err
			}
			tm.Type = t
		}
		return tm, nil
	}
	fn, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if p.eof() || p.startsBinderKeyword() {
			break
		}
		arg, ok := p.tryParseSelector()
		if !ok {
			p.pos = save
			break
		}
		fn = core.AppTerm{Fn: fn, Arg: arg}
	}
	return fn, nil
}

func (p *parser) startsBinderKeyword() bool {
	for _, kw := range []string{"then", "else", "in"} {
		save := p.pos
		if p.keyword(kw) {
			p.pos = save
			return true
		}
	}
	return false
}

func (p *parser) tryParseSelector() (core.Term, bool) {
	save := p.pos
	t, err := p.parseSelector()
	if err != nil {
		p.pos = save
		return nil, false
	}
	return t, true
}

// parseSelector handles `.field` / `.{fields}` / `.(Type)` postfix chains.
func (p *parser) parseSelector() (core.Term, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.consume(".") {
		switch {
		case p.consumeTok("("):
			sel, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.consumeTok(")") {
				return nil, p.errorf("expected ')' closing type selector")
			}
			e = core.ProjectType{Record: e, Selector: sel}
		case p.consumeTok("{"):
			var names []string
			for {
				name, ok := p.identifier()
				if !ok {
					return nil, p.errorf("expected field name in projection")
				}
				names = append(names, name)
				if !p.consumeTok(",") {
					break
				}
			}
			if !p.consumeTok("}") {
				return nil, p.errorf("expected '}' closing projection")
			}
			e = core.Project{Record: e, FieldNames: names}
		default:
			name, ok := p.identifier()
			if !ok {
				return nil, p.errorf("expected field name after '.'")
			}
			e = core.Field{Record: e, FieldName: name}
		}
	}
	return e, nil
}

func (p *parser) parsePrimary() (core.Term, error) {
	p.skipWhitespace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	switch {
	case p.hasPrefix("https://"):
		return p.parseRemoteImport(core.HTTPS)
	case p.hasPrefix("http://"):
		return p.parseRemoteImport(core.HTTP)
	case p.hasPrefix("env:"):
		return p.parseEnvImport()
	case p.keyword("missing"):
		return p.finishImport(core.Import{ImportHashed: core.ImportHashed{PathKind: core.MissingPath}})
	case p.hasPrefix("./"), p.hasPrefix("../"), p.hasPrefix("~/"):
		return p.parseLocalImport()
	case p.consumeTok("("):
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.consumeTok(")") {
			return nil, p.errorf("expected ')'")
		}
		return e, nil
	case p.consumeTok("{"):
		return p.parseRecord()
	case p.consumeTok("["):
		return p.parseList()
	case p.consumeTok("<"):
		return p.parseUnion()
	case p.peekByte() == '"':
		return p.parseTextLiteral()
	case p.peekByte() == '/':
		return p.parseLocalImport()
	}
	if n, ok, err := p.tryNumber(); ok || err != nil {
		return n, err
	}
	name, ok := p.identifier()
	if !ok {
		return nil, p.errorf("expected an expression")
	}
	if reservedKeywords[name] {
		return nil, p.errorf("unexpected keyword %q", name)
	}
	switch name {
	case "Type":
		return core.Type, nil
	case "Kind":
		return core.Kind, nil
	case "Sort":
		return core.Sort, nil
	case "True":
		return core.BoolLit(true), nil
	case "False":
		return core.BoolLit(false), nil
	}
	if b, ok := core.LookupBuiltin(name); ok {
		return b, nil
	}
	index := 0
	if p.consume("@") {
		n, ok := p.tryUint()
		if !ok {
			return nil, p.errorf("expected integer after '@'")
		}
		index = n
		p.skipWhitespace()
	}
	return core.Var{Name: name, Index: index}, nil
}

func (p *parser) tryUint() (int, bool) {
	start := p.pos
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *parser) tryNumber() (core.Term, bool, error) {
	start := p.pos
	neg := false
	if p.consume("+") {
	} else if p.consume("-") {
		neg = true
	}
	digitsStart := p.pos
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digitsStart {
		p.pos = start
		return nil, false, nil
	}
	isDouble := false
	if p.consume(".") {
		isDouble = true
		fracStart := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == fracStart {
			p.pos = start
			return nil, false, nil
		}
	}
	if !p.eof() && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		isDouble = true
		p.pos++
		if !p.eof() && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		expStart := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == expStart {
			p.pos = start
			return nil, false, nil
		}
	}
	text := p.src[start:p.pos]
	p.skipWhitespace()
	if isDouble {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false, p.errorf("invalid double literal %q", text)
		}
		return core.DoubleLit(f), true, nil
	}
	var b big.Int
	if _, ok := b.SetString(strings.TrimLeft(text, "+-"), 10); !ok {
		return nil, false, p.errorf("invalid integer literal %q", text)
	}
	if neg {
		b.Neg(&b)
		return core.IntegerLit(b), true, nil
	}
	if strings.HasPrefix(text, "+") {
		return core.IntegerLit(b), true, nil
	}
	return core.NaturalLit(b), true, nil
}

// parseTextLiteral supports double-quoted strings with "${expr}"
// interpolation and the common backslash escapes; it does not support
// multi-line '' literals.
func (p *parser) parseTextLiteral() (core.Term, error) {
	if !p.consume(`"`) {
		return nil, p.errorf("expected '\"'")
	}
	var chunks core.Chunks
	var lit strings.Builder
	for {
		if p.eof() {
			return nil, p.errorf("unterminated text literal")
		}
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			p.skipWhitespace()
			return core.TextLitTerm{Chunks: chunks, Suffix: lit.String()}, nil
		case c == '$' && p.hasPrefix("${"):
			p.pos += 2
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.consume("}") {
				return nil, p.errorf("expected '}' closing interpolation")
			}
			chunks = append(chunks, core.Chunk{Prefix: lit.String(), Expr: e})
			lit.Reset()
		case c == '\\':
			p.pos++
			if p.eof() {
				return nil, p.errorf("unterminated escape")
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			case '"', '\\', '$':
				lit.WriteByte(esc)
			case 'u':
				if p.pos+4 > len(p.src) {
					return nil, p.errorf("invalid unicode escape")
				}
				code, err := strconv.ParseInt(p.src[p.pos:p.pos+4], 16, 32)
				if err != nil {
					return nil, p.errorf("invalid unicode escape")
				}
				p.pos += 4
				lit.WriteRune(rune(code))
			default:
				lit.WriteByte(esc)
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			lit.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) parseRecord() (core.Term, error) {
	if p.consumeTok("}") {
		return core.RecordLit{}, nil
	}
	if p.consumeTok("=") {
		if !p.consumeTok("}") {
			return nil, p.errorf("expected '}' after empty record assignment")
		}
		return core.RecordLit{}, nil
	}
	fields := map[string]core.Term{}
	isType := false
	first := true
	for {
		name, ok := p.identifier()
		if !ok {
			return nil, p.errorf("expected field name")
		}
		if p.consumeTok(":") {
			if first {
				isType = true
			}
			t, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			fields[name] = t
		} else if p.consumeTok("=") {
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			fields[name] = v
		} else {
			return nil, p.errorf("expected ':' or '=' in record field %q", name)
		}
		first = false
		if p.consumeTok(",") {
			continue
		}
		break
	}
	if !p.consumeTok("}") {
		return nil, p.errorf("expected '}' closing record")
	}
	if isType {
		return core.RecordType(fields), nil
	}
	return core.RecordLit(fields), nil
}

func (p *parser) parseList() (core.Term, error) {
	if p.consumeTok("]") {
		// An empty bracket pair only makes sense annotated (`[] : List a`);
		// parseAnnotated turns this empty marker into an EmptyList once it
		// sees the trailing annotation.
		return core.NonEmptyList{}, nil
	}
	var elems core.NonEmptyList
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.consumeTok(",") {
			continue
		}
		break
	}
	if !p.consumeTok("]") {
		return nil, p.errorf("expected ']' closing list")
	}
	return elems, nil
}

func (p *parser) parseUnion() (core.Term, error) {
	fields := core.UnionType{}
	if p.consumeTok(">") {
		return fields, nil
	}
	for {
		name, ok := p.identifier()
		if !ok {
			return nil, p.errorf("expected alternative name")
		}
		var typ core.Term
		if p.consumeTok(":") {
			t, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			typ = t
		}
		fields[name] = typ
		if p.consumeTok("|") {
			continue
		}
		break
	}
	if !p.consumeTok(">") {
		return nil, p.errorf("expected '>' closing union type")
	}
	return fields, nil
}

// parseLocalImport reads an unquoted local path: "./", "../" (one level per
// occurrence, each extra one adds a literal ".." component that
// canonicalize's path join pops against the parent directory), "~/", or a
// bare "/" for an already-absolute path.
func (p *parser) parseLocalImport() (core.Term, error) {
	var kind core.LocalKind
	var prefix []string
	switch {
	case p.consume("~/"):
		kind = core.RelativeToHome
	case p.consume("./"):
		kind = core.RelativeToCwd
	case p.hasPrefix("../"):
		kind = core.RelativeToParent
		for p.consume("../") {
			prefix = append(prefix, "..")
		}
	case p.consume("/"):
		kind = core.Absolute
	default:
		return nil, p.errorf("expected a path")
	}
	start := p.pos
	for !p.eof() && isPathChar(p.src[p.pos]) {
		p.pos++
	}
	rest := p.src[start:p.pos]
	p.skipWhitespace()
	var components []string
	if rest != "" {
		components = strings.Split(rest, "/")
	}
	components = append(prefix, components...)
	imp := core.Import{ImportHashed: core.ImportHashed{PathKind: core.LocalPath, LocalKind: kind, Components: components}}
	return p.finishImport(imp)
}

// parseEnvImport reads "env:NAME".
func (p *parser) parseEnvImport() (core.Term, error) {
	p.pos += len("env:")
	name, ok := p.identifier()
	if !ok {
		return nil, p.errorf("expected environment variable name after 'env:'")
	}
	imp := core.Import{ImportHashed: core.ImportHashed{PathKind: core.EnvPath, Components: []string{name}}}
	return p.finishImport(imp)
}

// parseRemoteImport reads "http://" or "https://" followed by an unquoted
// authority, path and optional query, stopping at whitespace or a grammar
// delimiter; it doesn't support the full grammar's percent-decoding or
// "using" header-forwarding syntax.
func (p *parser) parseRemoteImport(scheme core.RemoteScheme) (core.Term, error) {
	if scheme == core.HTTPS {
		p.pos += len("https://")
	} else {
		p.pos += len("http://")
	}
	start := p.pos
	for !p.eof() && isURLChar(p.src[p.pos]) {
		p.pos++
	}
	raw := p.src[start:p.pos]
	p.skipWhitespace()

	authority, rest := raw, ""
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		authority, rest = raw[:i], raw[i+1:]
	}
	query := ""
	if j := strings.IndexByte(rest, '?'); j >= 0 {
		query, rest = rest[j+1:], rest[:j]
	} else if j := strings.IndexByte(authority, '?'); rest == "" && j >= 0 {
		query, authority = authority[j+1:], authority[:j]
	}
	var components []string
	if rest != "" {
		components = strings.Split(rest, "/")
	}
	imp := core.Import{ImportHashed: core.ImportHashed{
		PathKind: core.RemotePath, Scheme: scheme, Authority: authority, Components: components, Query: query,
	}}
	return p.finishImport(imp)
}

// finishImport reads the optional "sha256:<hex>" integrity hash and "as
// Text"/"as Location" mode suffix that may follow any import path.
func (p *parser) finishImport(imp core.Import) (core.Term, error) {
	if h, ok := p.tryIntegrityHash(); ok {
		imp.Hash = h
	}
	if p.keyword("as") {
		switch {
		case p.keyword("Text"):
			imp.Mode = core.RawText
		case p.keyword("Location"):
			imp.Mode = core.Location
		default:
			return nil, p.errorf("expected 'Text' or 'Location' after 'as'")
		}
	}
	return imp, nil
}

func (p *parser) tryIntegrityHash() ([]byte, bool) {
	if !p.hasPrefix("sha256:") {
		return nil, false
	}
	p.pos += len("sha256:")
	start := p.pos
	for !p.eof() && isHexDigit(p.src[p.pos]) {
		p.pos++
	}
	digits := p.src[start:p.pos]
	p.skipWhitespace()
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, false
	}
	return b, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isPathChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', '%':
		return true
	}
	return false
}

func isURLChar(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', ',', '{', '}', '[', ']', '"':
		return false
	}
	return true
}

// ParseAsEmptyListType builds the EmptyList term `[] : List elemType` for a
// known element type. Callers that parse a full expression never need it:
// parseList returns an empty marker for `[]`, and parseAnnotated turns that
// marker followed by `: T` into EmptyList{Type: T} directly.
func ParseAsEmptyListType(elemType core.Term) core.Term {
	return core.EmptyList{Type: core.Apply(core.ListType, elemType)}
}

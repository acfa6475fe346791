package selector

import (
	"strconv"
	"strings"

	"github.com/anvil-idl/anvil/model"
)

// Parse parses selector text into its expression pipeline. Parsing is a
// separate phase from evaluation; a syntax error reports the offending
// fragment and nothing is evaluated.
func Parse(src string) (*Selector, error) {
	p := &parser{src: src}
	sel, err := p.parseSelector("")
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing input")
	}
	if len(sel.Expressions) == 0 {
		return nil, p.errorf("empty selector")
	}
	return sel, nil
}

// MustParse is Parse that panics on error, for selector literals in rules
// and tests.
func MustParse(src string) *Selector {
	sel, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return sel
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(msg string) error {
	fragment := p.src[p.pos:]
	if len(fragment) > 24 {
		fragment = fragment[:24]
	}
	return &SyntaxError{Offset: p.pos, Fragment: fragment, Message: msg}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) take(prefix string) bool {
	if strings.HasPrefix(p.src[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) expect(c byte, what string) error {
	if p.peek() != c {
		return p.errorf("expected " + what)
	}
	p.pos++
	return nil
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func (p *parser) ident() (model.Identifier, error) {
	start := p.pos
	for !p.eof() && isIdentByte(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected identifier")
	}
	return model.Identifier(p.src[start:p.pos]), nil
}

// parseSelector parses expressions until one of the stop bytes (or end of
// input) is reached at expression position.
func (p *parser) parseSelector(stop string) (*Selector, error) {
	sel := &Selector{}
	for {
		p.skipSpace()
		if p.eof() || strings.ContainsRune(stop, rune(p.peek())) {
			return sel, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		sel.Expressions = append(sel.Expressions, expr)
	}
}

func (p *parser) parseExpression() (Expression, error) {
	switch c := p.peek(); {
	case c == '*':
		p.pos++
		return TypeAll, nil
	case c == '[':
		return p.parseAttribute()
	case c == '>':
		p.pos++
		return &Neighbor{Direction: Forward}, nil
	case c == '~':
		if !p.take("~>") {
			return nil, p.errorf("expected \"~>\"")
		}
		return &Neighbor{Direction: Forward, Recursive: true}, nil
	case c == '<':
		if strings.HasPrefix(p.src[p.pos:], "<-[") {
			return p.parseDirected(Reverse)
		}
		p.pos++
		return &Neighbor{Direction: Reverse}, nil
	case c == '-':
		return p.parseDirected(Forward)
	case c == ':':
		return p.parseFunction()
	case c == '$':
		return p.parseVariable()
	case isIdentByte(c, true):
		start := p.pos
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		t, ok := ParseShapeType(string(name))
		if !ok {
			p.pos = start
			return nil, p.errorf("unknown shape type " + strconv.Quote(string(name)))
		}
		return t, nil
	default:
		return nil, p.errorf("unexpected character")
	}
}

func (p *parser) parseDirected(dir NeighborDirection) (Expression, error) {
	open, close := "-[", "]->"
	if dir == Reverse {
		open, close = "<-[", "]-"
	}
	if !p.take(open) {
		return nil, p.errorf("expected " + strconv.Quote(open))
	}
	var rels []model.Identifier
	for {
		p.skipSpace()
		rel, err := p.ident()
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if !p.take(close) {
		return nil, p.errorf("expected " + strconv.Quote(close))
	}
	return &Neighbor{Direction: dir, Relations: rels}, nil
}

func (p *parser) parseFunction() (Expression, error) {
	p.pos++ // ':'
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect('(', "\"(\" after function name"); err != nil {
		return nil, err
	}
	var args []*Selector
	for {
		arg, err := p.parseSelector(",)")
		if err != nil {
			return nil, err
		}
		if len(arg.Expressions) == 0 {
			return nil, p.errorf("empty selector argument")
		}
		args = append(args, arg)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')', "\")\""); err != nil {
		return nil, err
	}
	return &Function{Name: name, Args: args}, nil
}

func (p *parser) parseVariable() (Expression, error) {
	p.pos++ // '$'
	if p.peek() == '{' {
		p.pos++
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect('}', "\"}\""); err != nil {
			return nil, err
		}
		return &VariableReference{Name: name}, nil
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect('(', "\"(\" after variable name"); err != nil {
		return nil, err
	}
	sel, err := p.parseSelector(")")
	if err != nil {
		return nil, err
	}
	if len(sel.Expressions) == 0 {
		return nil, p.errorf("empty variable selector")
	}
	if err := p.expect(')', "\")\""); err != nil {
		return nil, err
	}
	return &VariableDefinition{Name: name, Selector: sel}, nil
}

func (p *parser) parseAttribute() (Expression, error) {
	p.pos++ // '['
	if p.peek() == '@' {
		p.pos++
		return p.parseScopedAttribute()
	}
	p.skipSpace()
	key, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	attr := &AttributeSelector{Key: key}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return attr, nil
	}
	cmp, err := p.parseComparator()
	if err != nil {
		return nil, err
	}
	values, insensitive, err := p.parseValueList()
	if err != nil {
		return nil, err
	}
	attr.Comparison = &Comparison{Comparator: cmp, Values: values, CaseInsensitive: insensitive}
	if err := p.expect(']', "\"]\""); err != nil {
		return nil, err
	}
	return attr, nil
}

func (p *parser) parseScopedAttribute() (Expression, error) {
	scoped := &ScopedAttributeSelector{}
	p.skipSpace()
	if p.peek() != ':' {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		scoped.Key = &key
	}
	if err := p.expect(':', "\":\" after scoped attribute key"); err != nil {
		return nil, err
	}
	for {
		assertion, err := p.parseAssertion()
		if err != nil {
			return nil, err
		}
		scoped.Assertions = append(scoped.Assertions, assertion)
		p.skipSpace()
		if p.take("&&") {
			continue
		}
		break
	}
	if err := p.expect(']', "\"]\""); err != nil {
		return nil, err
	}
	return scoped, nil
}

func (p *parser) parseAssertion() (Assertion, error) {
	lhs, err := p.parseScopedValue()
	if err != nil {
		return Assertion{}, err
	}
	cmp, err := p.parseComparator()
	if err != nil {
		return Assertion{}, err
	}
	var rhs []ScopedValue
	insensitive := false
	for {
		p.skipSpace()
		v, err := p.parseScopedValue()
		if err != nil {
			return Assertion{}, err
		}
		rhs = append(rhs, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.caseFlag("]&") {
		insensitive = true
	}
	return Assertion{LHS: lhs, Comparator: cmp, RHS: rhs, CaseInsensitive: insensitive}, nil
}

func (p *parser) parseScopedValue() (ScopedValue, error) {
	p.skipSpace()
	if p.take("@{") {
		var path []PathSegment
		for {
			seg, err := p.parsePathSegment()
			if err != nil {
				return ScopedValue{}, err
			}
			path = append(path, seg)
			if p.peek() == '|' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect('}', "\"}\""); err != nil {
			return ScopedValue{}, err
		}
		return ScopedValue{IsContext: true, Context: path}, nil
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return ScopedValue{}, err
	}
	return ScopedValue{Literal: lit}, nil
}

func (p *parser) parseKey() (Key, error) {
	id, err := p.ident()
	if err != nil {
		return Key{}, err
	}
	key := Key{Identifier: id}
	for p.peek() == '|' {
		p.pos++
		seg, err := p.parsePathSegment()
		if err != nil {
			return Key{}, err
		}
		key.Path = append(key.Path, seg)
	}
	return key, nil
}

func (p *parser) parsePathSegment() (PathSegment, error) {
	if p.peek() == '(' {
		p.pos++
		name, err := p.ident()
		if err != nil {
			return PathSegment{}, err
		}
		if err := p.expect(')', "\")\""); err != nil {
			return PathSegment{}, err
		}
		return PathSegment{Property: name}, nil
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return PathSegment{}, err
	}
	return PathSegment{Literal: lit}, nil
}

// parseComparator matches the published comparator tokens, longest first so
// that "{<<}" beats "{<}" and ">=" beats ">".
func (p *parser) parseComparator() (Comparator, error) {
	p.skipSpace()
	ordered := []Comparator{
		ComparatorProjProperSubset, ComparatorProjNotEqual, ComparatorProjEqual, ComparatorProjSubset,
		ComparatorStartsWith, ComparatorEndsWith, ComparatorContains, ComparatorNotEqual,
		ComparatorExists, ComparatorGTE, ComparatorLTE, ComparatorEqual, ComparatorGT, ComparatorLT,
	}
	for _, c := range ordered {
		if p.take(comparatorTokens[c]) {
			return c, nil
		}
	}
	return 0, p.errorf("expected comparator")
}

// parseValueList parses the right-hand side of an attribute comparison,
// including the optional trailing case-insensitive "i" flag.
func (p *parser) parseValueList() ([]Literal, bool, error) {
	var values []Literal
	for {
		p.skipSpace()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, false, err
		}
		values = append(values, lit)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return values, p.caseFlag("]"), nil
}

// caseFlag consumes a standalone "i" flag when it is immediately followed
// by whitespace or one of the given closing bytes.
func (p *parser) caseFlag(closers string) bool {
	p.skipSpace()
	if p.peek() != 'i' {
		return false
	}
	if p.pos+1 < len(p.src) {
		next := p.src[p.pos+1]
		if isIdentByte(next, false) {
			return false
		}
		if next != ' ' && next != '\t' && next != '\n' && next != '\r' && !strings.ContainsRune(closers, rune(next)) {
			return false
		}
	}
	p.pos++
	p.skipSpace()
	return true
}

func (p *parser) parseLiteral() (Literal, error) {
	switch c := p.peek(); {
	case c == '"' || c == '\'':
		return p.parseQuoted(c)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isIdentByte(c, true):
		return p.parseIDLiteral()
	default:
		return nil, p.errorf("expected literal value")
	}
}

func (p *parser) parseQuoted(quote byte) (Literal, error) {
	p.pos++
	start := p.pos
	for !p.eof() {
		if p.src[p.pos] == quote {
			text := p.src[start:p.pos]
			p.pos++
			return TextLiteral(text), nil
		}
		p.pos++
	}
	p.pos = start - 1
	return nil, p.errorf("unterminated string literal")
}

func (p *parser) parseNumber() (Literal, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := func() {
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	digits()
	isFloat := false
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		digits()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		digits()
	}
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.pos = start
			return nil, p.errorf("malformed number")
		}
		return NumberLiteral{Value: model.Float(f)}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("malformed number")
	}
	return NumberLiteral{Value: model.Integer(i)}, nil
}

// parseIDLiteral parses a bare identifier or an absolute shape-id literal
// (namespace, "#", shape name, optional "$" member).
func (p *parser) parseIDLiteral() (Literal, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if isIdentByte(c, false) || c == '.' || c == '#' || c == '$' {
			p.pos++
			continue
		}
		break
	}
	text := p.src[start:p.pos]
	id, err := model.ParseShapeID(text)
	if err != nil {
		p.pos = start
		return nil, p.errorf("malformed shape id literal")
	}
	return IDLiteral{ID: id}, nil
}

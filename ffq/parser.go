package ffq

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a syntax problem with its position in the input.
type ParseError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ffq: parse error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// errNoMatch signals that an alternative did not apply; the caller tries
// the next one. It never escapes Parse.
var errNoMatch = errors.New("no match")

// Parse reads a complete query: headers followed by one expression. The
// whole input must be consumed.
func Parse(input string) (*Start, error) {
	p := &parser{input: input}
	p.skipWS()

	var headers []Header
	for p.peek() == '@' {
		h, err := p.parseHeader()
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
		p.skipWS()
	}

	expr, err := p.parseExpr()
	if err != nil {
		if err == errNoMatch {
			return nil, p.errf("expected expression")
		}
		return nil, err
	}

	p.skipWS()
	if p.pos < len(p.input) {
		return nil, p.errf("unexpected input")
	}

	return &Start{Headers: headers, Expr: expr}, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errf(format string, args ...any) error {
	line, col := 1, 1
	for _, c := range p.input[:p.pos] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{Offset: p.pos, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// peek returns the next byte or 0 at end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// skipWS consumes whitespace, // line comments, and /* */ block comments.
func (p *parser) skipWS() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case strings.HasPrefix(p.input[p.pos:], "//"):
			if nl := strings.IndexByte(p.input[p.pos:], '\n'); nl >= 0 {
				p.pos += nl
			} else {
				p.pos = len(p.input)
			}
		case strings.HasPrefix(p.input[p.pos:], "/*"):
			if end := strings.Index(p.input[p.pos+2:], "*/"); end >= 0 {
				p.pos += 2 + end + 2
			} else {
				p.pos = len(p.input)
			}
		default:
			return
		}
	}
}

// accept consumes c if it is next, after skipping whitespace.
func (p *parser) accept(c byte) bool {
	p.skipWS()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// lit consumes s if it is literally next (no whitespace skipping).
func (p *parser) lit(s string) bool {
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// kw consumes word case-insensitively if followed by a word boundary, so
// "in" does not swallow the start of "instrument".
func (p *parser) kw(word string) bool {
	end := p.pos + len(word)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], word) {
		return false
	}
	if end < len(p.input) {
		c := p.input[end]
		if isAlnum(c) || c == '_' {
			return false
		}
	}
	p.pos = end
	return true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isCodeChar(c byte) bool {
	return isAlnum(c) || c == '.' || c == '_' || c == ':' || c == '-'
}

// isURIChar admits everything except whitespace and the separators the
// grammar itself uses.
func isURIChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '|', '(', ')', ',', '#':
		return false
	}
	return true
}

// parseIdent reads [A-Za-z_][A-Za-z0-9_]*.
func (p *parser) parseIdent() (string, error) {
	start := p.pos
	c := p.peek()
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
		return "", errNoMatch
	}
	p.pos++
	for p.pos < len(p.input) && (isAlnum(p.input[p.pos]) || p.input[p.pos] == '_') {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

// parseCode reads [A-Za-z0-9][A-Za-z0-9._:-]*.
func (p *parser) parseCode() (string, error) {
	start := p.pos
	if !isAlnum(p.peek()) {
		return "", errNoMatch
	}
	p.pos++
	for p.pos < len(p.input) && isCodeChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

// parseVersionCode reads [A-Za-z0-9][A-Za-z0-9._-]*: like a code but
// without ':' so it cannot eat the clause separator.
func (p *parser) parseVersionCode() (string, error) {
	start := p.pos
	if !isAlnum(p.peek()) {
		return "", errNoMatch
	}
	p.pos++
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if !(isAlnum(c) || c == '.' || c == '_' || c == '-') {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos], nil
}

func (p *parser) uriScheme() bool {
	save := p.pos
	lower := strings.ToLower(p.input[p.pos:])
	for _, scheme := range []string{"http://", "https://", "urn:"} {
		if strings.HasPrefix(lower, scheme) {
			p.pos += len(scheme)
			return true
		}
	}
	p.pos = save
	return false
}

// parseURI reads a full URI value: scheme plus a run of URI characters.
func (p *parser) parseURI() (string, error) {
	start := p.pos
	if !p.uriScheme() {
		return "", errNoMatch
	}
	body := p.pos
	for p.pos < len(p.input) && isURIChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == body {
		p.pos = start
		return "", errNoMatch
	}
	return p.input[start:p.pos], nil
}

// parseSystemURI is parseURI restricted for the system position: the body
// additionally stops at '|' (the version separator) and ':' (the clause
// separator).
func (p *parser) parseSystemURI() (string, error) {
	start := p.pos
	if !p.uriScheme() {
		return "", errNoMatch
	}
	body := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if !isURIChar(c) || c == '|' || c == ':' {
			break
		}
		p.pos++
	}
	if p.pos == body {
		p.pos = start
		return "", errNoMatch
	}
	return p.input[start:p.pos], nil
}

// parseString reads a double-quoted string with \" and \\ escapes.
func (p *parser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", errNoMatch
	}
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '"':
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.input) && (p.input[p.pos+1] == '"' || p.input[p.pos+1] == '\\'):
			b.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case c == '\n' || c == '\r':
			p.pos = start
			return "", errNoMatch
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", errNoMatch
}

// parseRegexBody reads /pattern/ with \/ unescaped to '/'.
func (p *parser) parseRegexBody() (string, error) {
	if p.peek() != '/' {
		return "", errNoMatch
	}
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '/':
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.input) && p.input[p.pos+1] == '/':
			b.WriteByte('/')
			p.pos += 2
		case c == '\n' || c == '\r':
			p.pos = start
			return "", errNoMatch
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", errNoMatch
}

/* Headers */

func (p *parser) parseHeader() (Header, error) {
	if p.peek() != '@' {
		return Header{}, p.errf("expected '@alias'")
	}
	p.pos++
	if !p.kw("alias") {
		return Header{}, p.errf("expected 'alias' after '@'")
	}
	p.skipWS()

	name, err := p.parseIdent()
	if err != nil {
		return Header{}, p.errf("expected alias name")
	}

	if !p.accept('=') {
		return Header{}, p.errf("expected '=' in alias declaration")
	}
	p.skipWS()

	if url, err := p.parseValueSetRef(); err == nil {
		return Header{Name: name, Target: ValueSetTarget{URL: url}}, nil
	} else if err != errNoMatch {
		return Header{}, err
	}

	system, err := p.parseSystemRef()
	if err != nil {
		return Header{}, p.errf("expected system URI, alias, or vs(url)")
	}
	var version string
	if p.peek() == '|' {
		p.pos++
		version, err = p.parseVersionCode()
		if err != nil {
			return Header{}, p.errf("expected version after '|'")
		}
	}
	return Header{Name: name, Target: SystemTarget{System: system, Version: version}}, nil
}

// parseValueSetRef reads vs(uri).
func (p *parser) parseValueSetRef() (string, error) {
	save := p.pos
	if !p.kwNoBoundary("vs") {
		return "", errNoMatch
	}
	if !p.accept('(') {
		p.pos = save
		return "", errNoMatch
	}
	p.skipWS()
	uri, err := p.parseURI()
	if err != nil {
		p.pos = save
		return "", errNoMatch
	}
	if !p.accept(')') {
		return "", p.errf("expected ')' after ValueSet URL")
	}
	return uri, nil
}

// kwNoBoundary matches a tag case-insensitively without a word-boundary
// check; used for 'vs' which is always followed by '('.
func (p *parser) kwNoBoundary(word string) bool {
	end := p.pos + len(word)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], word) {
		return false
	}
	p.pos = end
	return true
}

/* Outer expression: precedence ! > & > | > - */

func (p *parser) parseExpr() (Expr, error) {
	return p.parseMinusExpr()
}

func (p *parser) parseMinusExpr() (Expr, error) {
	left, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('-') {
			return left, nil
		}
		right, err := p.parseOrExpr()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = MinusExpr{Left: left, Right: right}
	}
}

func (p *parser) parseOrExpr() (Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('|') {
			return left, nil
		}
		right, err := p.parseAndExpr()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = OrExpr{Left: left, Right: right}
	}
}

func (p *parser) parseAndExpr() (Expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('&') {
			return left, nil
		}
		right, err := p.parseUnaryExpr()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = AndExpr{Left: left, Right: right}
	}
}

func (p *parser) parseUnaryExpr() (Expr, error) {
	p.skipWS()
	if p.peek() == '!' {
		save := p.pos
		p.pos++
		inner, err := p.parseUnaryExpr()
		if err == errNoMatch {
			p.pos = save
			return nil, errNoMatch
		}
		if err != nil {
			return nil, err
		}
		return NotExpr{Inner: inner}, nil
	}

	save := p.pos
	if clause, err := p.parseClause(); err == nil {
		return clause, nil
	} else if err != errNoMatch {
		return nil, err
	}
	p.pos = save

	if p.peek() == '(' {
		p.pos++
		inner, err := p.parseExpr()
		if err == errNoMatch {
			return nil, p.errf("expected expression after '('")
		}
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errf("expected ')'")
		}
		return GroupExpr{Inner: inner}, nil
	}

	return nil, errNoMatch
}

/* Clause */

func (p *parser) parseClause() (Expr, error) {
	system, err := p.parseSystemRef()
	if err != nil {
		return nil, errNoMatch
	}

	var version string
	if p.peek() == '|' {
		p.pos++
		version, err = p.parseVersionCode()
		if err != nil {
			return nil, errNoMatch
		}
	}

	if !p.accept(':') {
		return nil, errNoMatch
	}

	inner, err := p.parseInnerExpr()
	if err == errNoMatch {
		return nil, p.errf("expected term after ':'")
	}
	if err != nil {
		return nil, err
	}
	return ClauseExpr{System: system, Version: version, Inner: inner}, nil
}

func (p *parser) parseSystemRef() (SystemRef, error) {
	if uri, err := p.parseSystemURI(); err == nil {
		return SystemRef{URI: uri}, nil
	}
	if name, err := p.parseIdent(); err == nil {
		return SystemRef{Alias: name}, nil
	}
	return SystemRef{}, errNoMatch
}

/* Inner expression: same precedence stack over terms */

func (p *parser) parseInnerExpr() (InnerExpr, error) {
	return p.parseInnerMinus()
}

func (p *parser) parseInnerMinus() (InnerExpr, error) {
	left, err := p.parseInnerOr()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('-') {
			return left, nil
		}
		right, err := p.parseInnerOr()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = InnerMinus{Left: left, Right: right}
	}
}

func (p *parser) parseInnerOr() (InnerExpr, error) {
	left, err := p.parseInnerAnd()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('|') {
			return left, nil
		}
		right, err := p.parseInnerAnd()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = InnerOr{Left: left, Right: right}
	}
}

func (p *parser) parseInnerAnd() (InnerExpr, error) {
	left, err := p.parseInnerUnary()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if !p.accept('&') {
			return left, nil
		}
		right, err := p.parseInnerUnary()
		if err == errNoMatch {
			p.pos = save
			return left, nil
		}
		if err != nil {
			return nil, err
		}
		left = InnerAnd{Left: left, Right: right}
	}
}

func (p *parser) parseInnerUnary() (InnerExpr, error) {
	p.skipWS()
	if p.peek() == '!' {
		save := p.pos
		p.pos++
		inner, err := p.parseInnerUnary()
		if err == errNoMatch {
			p.pos = save
			return nil, errNoMatch
		}
		if err != nil {
			return nil, err
		}
		return InnerNot{Inner: inner}, nil
	}

	if p.peek() == '(' {
		save := p.pos
		p.pos++
		inner, err := p.parseInnerExpr()
		if err == nil && p.accept(')') {
			return InnerGroup{Inner: inner}, nil
		}
		if err != nil && err != errNoMatch {
			return nil, err
		}
		p.pos = save
		return nil, errNoMatch
	}

	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return TermExpr{Term: term}, nil
}

/* Terms */

func (p *parser) parseTerm() (Term, error) {
	save := p.pos

	if t, err := p.parseHierarchyTerm(); err == nil {
		return t, nil
	} else if err != errNoMatch {
		return nil, err
	}
	p.pos = save

	if t, err := p.parsePropertyTerm(); err == nil {
		return t, nil
	} else if err != errNoMatch {
		return nil, err
	}
	p.pos = save

	if t, err := p.parseMembershipTerm(); err == nil {
		return t, nil
	} else if err != errNoMatch {
		return nil, err
	}
	p.pos = save

	if t, err := p.parseExistsTerm(); err == nil {
		return t, nil
	} else if err != errNoMatch {
		return nil, err
	}
	p.pos = save

	return nil, errNoMatch
}

func (p *parser) parseHierarchyOp() (HierarchyOp, bool) {
	switch {
	case p.lit("<<"):
		return DescOrSelf, true
	case p.lit("<"):
		return DescOnly, true
	case p.kw("isa"):
		return Isa, true
	}
	return 0, false
}

func (p *parser) parseHierarchyTerm() (Term, error) {
	op, ok := p.parseHierarchyOp()
	if !ok {
		return nil, errNoMatch
	}
	p.skipWS()
	code, err := p.parseCodeRef()
	if err != nil {
		return nil, errNoMatch
	}
	return HierarchyTerm{Op: op, Code: code}, nil
}

// parseCodeRef reads a quoted or bare code.
func (p *parser) parseCodeRef() (string, error) {
	if s, err := p.parseString(); err == nil {
		return s, nil
	}
	return p.parseCode()
}

func (p *parser) parsePropertyTerm() (Term, error) {
	prop, err := p.parsePropRef()
	if err != nil {
		return nil, errNoMatch
	}
	p.skipWS()

	switch {
	case p.peek() == '=':
		p.pos++
		p.skipWS()
		v, err := p.parseValue()
		if err != nil {
			return nil, errNoMatch
		}
		return PropertyEqTerm{Property: prop, Value: v}, nil

	case p.kw("in"):
		p.skipWS()
		if p.peek() != '(' {
			return nil, errNoMatch
		}
		p.pos++
		p.skipWS()

		var values []Value
		if p.peek() != ')' {
			for {
				v, err := p.parseValue()
				if err != nil {
					return nil, p.errf("expected value in 'in' list")
				}
				values = append(values, v)
				if !p.accept(',') {
					break
				}
				p.skipWS()
			}
		}
		if !p.accept(')') {
			return nil, p.errf("expected ')' to close 'in' list")
		}
		return PropertyInTerm{Property: prop, Values: values}, nil

	case p.peek() == '~':
		p.pos++
		p.skipWS()
		re, err := p.parseRegexBody()
		if err != nil {
			return nil, errNoMatch
		}
		return PropertyRegexTerm{Property: prop, Pattern: re}, nil
	}

	return nil, errNoMatch
}

// parsePropRef reads ident('.'ident)*, a dotted property path.
func (p *parser) parsePropRef() (string, error) {
	start := p.pos
	if _, err := p.parseIdent(); err != nil {
		return "", errNoMatch
	}
	for p.peek() == '.' {
		save := p.pos
		p.pos++
		if _, err := p.parseIdent(); err != nil {
			p.pos = save
			break
		}
	}
	return p.input[start:p.pos], nil
}

func (p *parser) parseMembershipTerm() (Term, error) {
	if !p.kw("in") {
		return nil, errNoMatch
	}
	p.skipWS()

	if url, err := p.parseValueSetRef(); err == nil {
		return MembershipValueSetTerm{URL: url}, nil
	} else if err != errNoMatch {
		return nil, err
	}

	if p.peek() == '#' {
		p.pos++
		name, err := p.parseIdent()
		if err != nil {
			return nil, p.errf("expected alias name after '#'")
		}
		return MembershipAliasTerm{Name: name}, nil
	}

	return nil, errNoMatch
}

func (p *parser) parseExistsTerm() (Term, error) {
	if !p.kw("has") {
		return nil, errNoMatch
	}
	// has requires real whitespace before the property name.
	start := p.pos
	p.skipWS()
	if p.pos == start {
		return nil, errNoMatch
	}
	prop, err := p.parsePropRef()
	if err != nil {
		return nil, errNoMatch
	}
	return ExistsTerm{Property: prop}, nil
}

/* Values */

func (p *parser) parseValue() (Value, error) {
	if s, err := p.parseString(); err == nil {
		return StringValue{S: s}, nil
	}
	if u, err := p.parseURI(); err == nil {
		return URIValue{URI: u}, nil
	}
	if op, ok := p.parseHierarchyOp(); ok {
		p.skipWS()
		code, err := p.parseCodeRef()
		if err != nil {
			return nil, errNoMatch
		}
		return HierarchyValue{Op: op, Code: code}, nil
	}
	if c, err := p.parseCode(); err == nil {
		return CodeValue{Code: c}, nil
	}
	return nil, errNoMatch
}

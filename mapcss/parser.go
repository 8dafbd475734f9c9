package mapcss

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Parse parses MapCSS source into rules. Malformed input returns a *SyntaxError.
func Parse(text string) ([]*Rule, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{text: text, tokens: tokens}
	return p.parseRules()
}

type parser struct {
	text   string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

// peekAt returns the token n positions ahead, or the end of input token.
func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if !tok.isEOF() {
		p.pos++
	}
	return tok
}

func (p *parser) skipWhitespace() {
	for p.peek().Type == css.WhitespaceToken {
		p.pos++
	}
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	return newSyntaxError(p.text, tok.Offset, format, args...)
}

func (p *parser) expect(tt css.TokenType, what string) (token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, found %s", what, tok.describe())
	}
	return tok, nil
}

func (p *parser) parseRules() ([]*Rule, error) {
	var rules []*Rule
	for {
		p.skipWhitespace()
		tok := p.peek()
		switch tok.Type {
		case css.ErrorToken:
			return rules, nil
		case css.AtKeywordToken:
			return nil, p.errorf(tok, "at-rule %s is not supported", tok.Data)
		case css.CDOToken, css.CDCToken, css.SemicolonToken:
			p.next()
			continue
		}

		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
}

func (p *parser) parseRule() (*Rule, error) {
	rule := new(Rule)
	for {
		selector, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		rule.Selectors = append(rule.Selectors, selector)

		p.skipWhitespace()
		tok := p.peek()
		if tok.Type == css.CommaToken {
			p.next()
			p.skipWhitespace()
			continue
		}
		if tok.Type == css.LeftBraceToken {
			break
		}
		return nil, p.errorf(tok, "unexpected %s in selector", tok.describe())
	}

	declarations, err := p.parseDeclarationBlock()
	if err != nil {
		return nil, err
	}
	rule.Declarations = declarations
	return rule, nil
}

func (p *parser) parseSelector() (*Selector, error) {
	tok := p.next()
	var base BaseKind
	switch {
	case tok.isDelim("*"):
		base = BaseAny
	case tok.Type == css.IdentToken:
		kind, ok := baseKinds[tok.Data]
		if !ok {
			return nil, p.errorf(tok, "unknown selector type %s", tok.describe())
		}
		base = kind
	default:
		return nil, p.errorf(tok, "expected selector, found %s", tok.describe())
	}

	selector := &Selector{Base: base}
	for {
		tok := p.peek()
		switch {
		case tok.isDelim("|"):
			p.next()
			zoom, err := p.parseZoom()
			if err != nil {
				return nil, err
			}
			selector.Zoom = zoom
		case tok.Type == css.LeftBracketToken:
			condition, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			selector.Conditions = append(selector.Conditions, condition)
		case tok.isDelim("."):
			p.next()
			name, err := p.expect(css.IdentToken, "class name")
			if err != nil {
				return nil, err
			}
			selector.Conditions = append(selector.Conditions, &ClassCondition{Class: name.Data})
		case tok.isDelim("!"):
			p.next()
			condition, err := p.parseNegatedClass()
			if err != nil {
				return nil, err
			}
			selector.Conditions = append(selector.Conditions, condition)
		case tok.Type == css.ColonToken:
			p.next()
			if p.peek().Type == css.ColonToken {
				p.next()
				name, err := p.expect(css.IdentToken, "subpart name")
				if err != nil {
					return nil, err
				}
				selector.Subpart = name.Data
				continue
			}
			name, err := p.expect(css.IdentToken, "pseudo class name")
			if err != nil {
				return nil, err
			}
			selector.Conditions = append(selector.Conditions, &PseudoClassCondition{Class: name.Data})
		case tok.isDelim(">"):
			return nil, p.errorf(tok, "parent/child selectors are not supported")
		case tok.Type == css.WhitespaceToken:
			following := p.peekAt(1)
			if following.Type == css.IdentToken || following.isDelim("*") || following.isDelim(">") {
				return nil, p.errorf(following, "parent/child selectors are not supported")
			}
			return selector, nil
		default:
			return selector, nil
		}
	}
}

func (p *parser) parseNegatedClass() (Condition, error) {
	tok := p.next()
	switch {
	case tok.isDelim("."):
		name, err := p.expect(css.IdentToken, "class name")
		if err != nil {
			return nil, err
		}
		return &ClassCondition{Class: name.Data, Not: true}, nil
	case tok.Type == css.ColonToken:
		name, err := p.expect(css.IdentToken, "pseudo class name")
		if err != nil {
			return nil, err
		}
		return &PseudoClassCondition{Class: name.Data, Not: true}, nil
	}
	return nil, p.errorf(tok, "expected class after \"!\", found %s", tok.describe())
}

// parseZoom parses the part after "|": z12, z12-, z-14 or z12-14.
func (p *parser) parseZoom() (*ZoomRange, error) {
	tok := p.next()
	if tok.Type != css.IdentToken || !strings.HasPrefix(tok.Data, "z") {
		return nil, p.errorf(tok, "expected zoom range, found %s", tok.describe())
	}

	spec := tok.Data[1:]
	parseLevel := func(s string, fallback float64) (float64, error) {
		if s == "" {
			return fallback, nil
		}
		level, err := strconv.ParseFloat(s, 64)
		if err != nil || level < 0 {
			return 0, p.errorf(tok, "invalid zoom level %q", s)
		}
		return level, nil
	}

	idx := strings.Index(spec, "-")
	if idx < 0 {
		level, err := parseLevel(spec, -1)
		if err != nil {
			return nil, err
		}
		if level < 0 {
			return nil, p.errorf(tok, "invalid zoom range %s", tok.describe())
		}
		return &ZoomRange{Min: level, Max: level}, nil
	}

	min, err := parseLevel(spec[:idx], 0)
	if err != nil {
		return nil, err
	}
	max, err := parseLevel(spec[idx+1:], math.Inf(1))
	if err != nil {
		return nil, err
	}
	if min > max {
		return nil, p.errorf(tok, "invalid zoom range %s", tok.describe())
	}
	return &ZoomRange{Min: min, Max: max}, nil
}

func (p *parser) parseCondition() (Condition, error) {
	p.next() // [
	p.skipWhitespace()

	negated := false
	tok := p.peek()
	if tok.isDelim("!") {
		p.next()
		p.skipWhitespace()
		negated = true
		tok = p.peek()
	}

	if tok.Type == css.FunctionToken || tok.Type == css.LeftParenthesisToken {
		expression, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.closeCondition(); err != nil {
			return nil, err
		}
		return &ExpressionCondition{Expression: expression, Not: negated}, nil
	}

	key, err := p.parsePattern("key")
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	tok = p.peek()
	switch {
	case tok.Type == css.RightBracketToken:
		p.next()
		return &KeyCondition{Key: key, Not: negated}, nil
	case tok.isDelim("?"):
		p.next()
		condition := &KeyCondition{Key: key, Not: negated, IsTrue: true}
		if p.peek().isDelim("!") {
			p.next()
			condition.IsTrue = false
			condition.IsFalse = true
		}
		if err := p.closeCondition(); err != nil {
			return nil, err
		}
		return condition, nil
	}

	if negated {
		return nil, p.errorf(tok, "\"!\" is only allowed before a key without a value")
	}

	opTok := tok
	op, err := p.parseConditionOperator()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	switch op {
	case "<", "<=", ">", ">=":
		if key.IsRegexp() {
			return nil, p.errorf(opTok, "numeric comparison requires a plain key")
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if err := p.closeCondition(); err != nil {
			return nil, err
		}
		return &ExpressionCondition{Expression: &Operation{Op: op, Args: []Expression{
			&Operation{Op: "tag", Args: []Expression{&Literal{String(key.Text)}}},
			operand,
		}}}, nil
	}

	valueTok := p.peek()
	value, err := p.parsePattern("value")
	if err != nil {
		return nil, err
	}

	kvOp := KeyValueOp(op)
	switch kvOp {
	case OpMatch, OpNotMatch:
		if !value.IsRegexp() {
			re, err := regexp.Compile(value.Text)
			if err != nil {
				return nil, p.errorf(valueTok, "invalid regular expression: %s", err)
			}
			value = RegexpPattern(re)
		}
	case OpPrefix, OpSuffix, OpSubstring:
		if value.IsRegexp() {
			return nil, p.errorf(valueTok, "operator %s requires a string value", op)
		}
	}

	if err := p.closeCondition(); err != nil {
		return nil, err
	}
	return &KeyValueCondition{Key: key, Op: kvOp, Value: value}, nil
}

func (p *parser) closeCondition() error {
	p.skipWhitespace()
	_, err := p.expect(css.RightBracketToken, "\"]\"")
	return err
}

func (p *parser) parseConditionOperator() (string, error) {
	tok := p.next()
	switch tok.Type {
	case css.PrefixMatchToken:
		return string(OpPrefix), nil
	case css.SuffixMatchToken:
		return string(OpSuffix), nil
	case css.SubstringMatchToken:
		return string(OpSubstring), nil
	case css.IncludeMatchToken:
		return string(OpListItem), nil
	case css.DelimToken:
		switch tok.Data {
		case "=":
			switch {
			case p.peek().isDelim("~"):
				p.next()
				return string(OpMatch), nil
			case p.peek().isDelim("="):
				p.next()
			}
			return string(OpEqual), nil
		case "!":
			switch {
			case p.peek().isDelim("="):
				p.next()
				return string(OpNotEqual), nil
			case p.peek().isDelim("~"):
				p.next()
				return string(OpNotMatch), nil
			}
		case "<", ">":
			if p.peek().isDelim("=") {
				p.next()
				return tok.Data + "=", nil
			}
			return tok.Data, nil
		}
	}
	return "", p.errorf(tok, "expected condition operator, found %s", tok.describe())
}

// parsePattern parses a key or value: a quoted string, a regular expression
// or a run of adjacent tokens such as addr:street.
func (p *parser) parsePattern(what string) (Pattern, error) {
	tok := p.peek()
	switch {
	case tok.Type == css.StringToken:
		p.next()
		return ExactPattern(unquote(tok.Data)), nil
	case tok.isDelim("/"):
		return p.parseRegexp()
	}

	var sb strings.Builder
	for {
		tok := p.peek()
		switch {
		case tok.Type == css.IdentToken, tok.Type == css.NumberToken, tok.Type == css.DimensionToken,
			tok.Type == css.PercentageToken, tok.Type == css.HashToken, tok.Type == css.ColonToken,
			tok.isDelim("."), tok.isDelim("-"), tok.isDelim("_"):
			p.next()
			sb.WriteString(tok.Data)
			continue
		}
		break
	}

	if sb.Len() == 0 {
		return Pattern{}, p.errorf(tok, "expected %s, found %s", what, tok.describe())
	}
	return ExactPattern(sb.String()), nil
}

func (p *parser) parseRegexp() (Pattern, error) {
	start := p.next()
	for {
		tok := p.next()
		if tok.isEOF() {
			return Pattern{}, p.errorf(start, "unterminated regular expression")
		}
		if !tok.isDelim("/") {
			continue
		}

		source := p.text[start.Offset+1 : tok.Offset]
		if flags := p.peek(); flags.Type == css.IdentToken && flags.Data == "i" {
			p.next()
			source = "(?i)" + source
		}
		re, err := regexp.Compile(source)
		if err != nil {
			return Pattern{}, p.errorf(start, "invalid regular expression: %s", err)
		}
		return RegexpPattern(re), nil
	}
}

func (p *parser) parseDeclarationBlock() ([]Declaration, error) {
	if _, err := p.expect(css.LeftBraceToken, "\"{\""); err != nil {
		return nil, err
	}

	declarations := []Declaration{}
	for {
		p.skipWhitespace()
		tok := p.peek()
		switch tok.Type {
		case css.RightBraceToken:
			p.next()
			return declarations, nil
		case css.SemicolonToken:
			p.next()
			continue
		case css.ErrorToken:
			return nil, p.errorf(tok, "unexpected end of input, expected \"}\"")
		}

		declaration, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, declaration)

		p.skipWhitespace()
		tok = p.peek()
		switch tok.Type {
		case css.SemicolonToken:
			p.next()
		case css.RightBraceToken:
		default:
			return nil, p.errorf(tok, "expected \";\" or \"}\", found %s", tok.describe())
		}
	}
}

func (p *parser) parseDeclaration() (Declaration, error) {
	name, err := p.expect(css.IdentToken, "property name")
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	if name.Data == "set" && p.peek().Type != css.ColonToken {
		if p.peek().isDelim(".") {
			p.next()
		}
		class, err := p.expect(css.IdentToken, "class name")
		if err != nil {
			return nil, err
		}
		return &SetInstruction{Class: class.Data}, nil
	}

	if _, err := p.expect(css.ColonToken, "\":\""); err != nil {
		return nil, err
	}
	p.skipWhitespace()

	value, err := p.parseDeclarationValue()
	if err != nil {
		return nil, err
	}
	return &Instruction{Key: name.Data, Value: value}, nil
}

// parseDeclarationValue parses an expression, or a list of literals separated by
// commas or whitespace. A list of numbers becomes a vector, any other list a string
// made of the terms as written, so "bold 12pt / 1.0 Noto Sans" keeps its units and slash.
func (p *parser) parseDeclarationValue() (Expression, error) {
	start := p.peek()
	first, firstText, err := p.parseListItem()
	if err != nil {
		return nil, err
	}

	items := []Expression{first}
	texts := []string{firstText}
	var separators []string
	for {
		p.skipWhitespace()
		tok := p.peek()
		if tok.Type == css.SemicolonToken || tok.Type == css.RightBraceToken || tok.isEOF() {
			break
		}
		separator := " "
		if tok.Type == css.CommaToken {
			p.next()
			p.skipWhitespace()
			separator = ", "
		}
		item, text, err := p.parseListItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		texts = append(texts, text)
		separators = append(separators, separator)
	}

	if len(items) == 1 {
		return first, nil
	}

	numeric := true
	var sb strings.Builder
	var vector []float64
	for i, item := range items {
		if !isConstant(item) {
			return nil, p.errorf(start, "a list may only contain literal values")
		}
		if i > 0 {
			sb.WriteString(separators[i-1])
			if separators[i-1] != ", " {
				numeric = false
			}
		}

		literal, ok := item.(*Literal)
		switch {
		case ok && literal.Value.Kind() == KindNumber:
			vector = append(vector, literal.Value.num)
			sb.WriteString(texts[i])
		case ok && literal.Value.Kind() == KindString:
			numeric = false
			sb.WriteString(literal.Value.String())
		default:
			numeric = false
			sb.WriteString(texts[i])
		}
	}

	if numeric {
		return &Literal{Vector(vector...)}, nil
	}
	return &Literal{String(sb.String())}, nil
}

// parseListItem parses one expression and also returns its source text with
// whitespace runs collapsed.
func (p *parser) parseListItem() (Expression, string, error) {
	startOffset := p.peek().Offset
	item, err := p.parseExpression()
	if err != nil {
		return nil, "", err
	}
	endOffset := p.peek().Offset
	if endOffset > len(p.text) {
		endOffset = len(p.text)
	}
	return item, strings.Join(strings.Fields(p.text[startOffset:endOffset]), " "), nil
}

// isConstant reports whether the expression is built from literals only.
func isConstant(expr Expression) bool {
	switch e := expr.(type) {
	case *Literal:
		return true
	case *Operation:
		switch e.Op {
		case "+", "-", "*", "/":
		default:
			return false
		}
		for _, arg := range e.Args {
			if !isConstant(arg) {
				return false
			}
		}
		return true
	}
	return false
}

func (p *parser) parseExpression() (Expression, error) {
	condition, err := p.parseBinary(precedenceOr)
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if !p.peek().isDelim("?") {
		return condition, nil
	}
	p.next()
	p.skipWhitespace()

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if _, err := p.expect(css.ColonToken, "\":\""); err != nil {
		return nil, err
	}
	p.skipWhitespace()

	otherwise, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Operation{Op: "cond", Args: []Expression{condition, then, otherwise}}, nil
}

const (
	precedenceCond = iota + 1
	precedenceOr
	precedenceAnd
	precedenceCompare
	precedenceAdd
	precedenceMultiply
	precedencePrimary
)

func precedence(op string) int {
	switch op {
	case "cond":
		return precedenceCond
	case "||":
		return precedenceOr
	case "&&":
		return precedenceAnd
	case ">", ">=", "<", "<=", "=", "==", "!=":
		return precedenceCompare
	case "+", "-":
		return precedenceAdd
	case "*", "/":
		return precedenceMultiply
	}
	return precedencePrimary
}

func isReducible(op string) bool {
	switch op {
	case "||", "&&", "+", "-", "*", "/":
		return true
	}
	return false
}

func (p *parser) parseBinary(minPrecedence int) (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		op, ok := p.peekBinaryOperator()
		if !ok || precedence(op) < minPrecedence {
			return left, nil
		}
		p.consumeBinaryOperator(op)
		p.skipWhitespace()

		right, err := p.parseBinary(precedence(op) + 1)
		if err != nil {
			return nil, err
		}

		if operation, ok := left.(*Operation); ok && operation.Op == op && isReducible(op) {
			operation.Args = append(operation.Args, right)
			continue
		}
		left = &Operation{Op: op, Args: []Expression{left, right}}
	}
}

// peekBinaryOperator reports the binary operator at the current position, if any.
// Signed numbers such as the "-1" in "2 -1" count as an operator followed by a number.
func (p *parser) peekBinaryOperator() (string, bool) {
	tok := p.peek()
	following := p.peekAt(1)
	switch tok.Type {
	case css.ColumnToken:
		return "||", true
	case css.NumberToken, css.DimensionToken, css.PercentageToken, css.FunctionToken:
		if strings.HasPrefix(tok.Data, "-") || strings.HasPrefix(tok.Data, "+") {
			return tok.Data[:1], true
		}
	case css.DelimToken:
		switch tok.Data {
		case "&":
			if following.isDelim("&") {
				return "&&", true
			}
		case ">", "<", "=":
			if following.isDelim("=") {
				if tok.Data == "=" {
					return "==", true
				}
				return tok.Data + "=", true
			}
			return tok.Data, true
		case "!":
			if following.isDelim("=") {
				return "!=", true
			}
		case "+", "-", "*", "/":
			return tok.Data, true
		}
	}
	return "", false
}

func (p *parser) consumeBinaryOperator(op string) {
	tok := p.peek()
	switch tok.Type {
	case css.NumberToken, css.DimensionToken, css.PercentageToken, css.FunctionToken:
		// keep the number, drop its sign
		p.tokens[p.pos] = token{Type: tok.Type, Data: tok.Data[1:], Offset: tok.Offset + 1}
		return
	}
	if len(op) == 2 && op != "||" {
		p.next()
	}
	p.next()
}

func (p *parser) parseUnary() (Expression, error) {
	tok := p.peek()
	switch {
	case tok.isDelim("-"):
		p.next()
		p.skipWhitespace()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negate(operand), nil
	case tok.isDelim("+"):
		p.next()
		p.skipWhitespace()
		return p.parseUnary()
	case tok.isDelim("!") && !p.peekAt(1).isDelim("="):
		p.next()
		p.skipWhitespace()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Operation{Op: "!", Args: []Expression{operand}}, nil
	case tok.Type == css.FunctionToken && strings.HasPrefix(tok.Data, "-"):
		p.tokens[p.pos] = token{Type: tok.Type, Data: tok.Data[1:], Offset: tok.Offset + 1}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return negate(operand), nil
	}
	return p.parsePrimary()
}

func negate(operand Expression) Expression {
	if literal, ok := operand.(*Literal); ok && literal.Value.Kind() == KindNumber {
		return &Literal{Number(-literal.Value.num)}
	}
	return &Operation{Op: "-", Args: []Expression{&Literal{Number(0)}, operand}}
}

func (p *parser) parsePrimary() (Expression, error) {
	tok := p.next()
	switch tok.Type {
	case css.NumberToken:
		f, err := strconv.ParseFloat(tok.Data, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %s", tok.describe())
		}
		return &Literal{Number(f)}, nil
	case css.DimensionToken, css.PercentageToken:
		f, err := strconv.ParseFloat(numericPrefix(tok.Data), 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %s", tok.describe())
		}
		if tok.Type == css.PercentageToken {
			f /= 100
		}
		return &Literal{Number(f)}, nil
	case css.StringToken:
		return &Literal{String(unquote(tok.Data))}, nil
	case css.HashToken:
		return &Literal{String(tok.Data)}, nil
	case css.URLToken:
		return &Literal{String(urlContents(tok.Data))}, nil
	case css.IdentToken:
		name := tok.Data
		// join keys such as addr:street
		for p.peek().Type == css.ColonToken && p.peekAt(1).Type == css.IdentToken {
			p.next()
			name += ":" + p.next().Data
		}
		return &Literal{String(name)}, nil
	case css.FunctionToken:
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		return &Operation{Op: strings.TrimSuffix(tok.Data, "("), Args: args}, nil
	case css.LeftParenthesisToken:
		p.skipWhitespace()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if _, err := p.expect(css.RightParenthesisToken, "\")\""); err != nil {
			return nil, err
		}
		return &Operation{Op: "eval", Args: []Expression{inner}}, nil
	}
	return nil, p.errorf(tok, "unexpected %s in expression", tok.describe())
}

func (p *parser) parseArguments() ([]Expression, error) {
	var args []Expression
	p.skipWhitespace()
	if p.peek().Type == css.RightParenthesisToken {
		p.next()
		return args, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipWhitespace()
		tok := p.next()
		switch tok.Type {
		case css.CommaToken:
			p.skipWhitespace()
		case css.RightParenthesisToken:
			return args, nil
		default:
			return nil, p.errorf(tok, "expected \",\" or \")\", found %s", tok.describe())
		}
	}
}

func numericPrefix(s string) string {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || ((r == '-' || r == '+') && i == 0) {
			end = i + 1
			continue
		}
		if (r == 'e' || r == 'E') && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			end = i + 1
			continue
		}
		break
	}
	return s[:end]
}

func urlContents(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "url("), ")")
	return unquote(strings.TrimSpace(s))
}

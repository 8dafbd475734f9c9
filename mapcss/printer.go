package mapcss

import (
	"regexp"
	"strings"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(:[A-Za-z_][A-Za-z0-9_-]*)*$`)
	hashPattern  = regexp.MustCompile(`^#[A-Za-z0-9_-]+$`)
)

// Format prints rules as canonical MapCSS.
func Format(rules []*Rule) string {
	var sb strings.Builder
	for i, rule := range rules {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(rule.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Rule) String() string {
	var sb strings.Builder
	for i, selector := range r.Selectors {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(selector.String())
	}

	if len(r.Declarations) == 0 {
		sb.WriteString(" {}")
		return sb.String()
	}

	sb.WriteString(" {\n")
	for _, declaration := range r.Declarations {
		sb.WriteString("  ")
		sb.WriteString(declaration.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (s *Selector) String() string {
	var sb strings.Builder
	sb.WriteString(string(s.Base))
	if s.Zoom != nil {
		sb.WriteString(s.Zoom.String())
	}
	for _, condition := range s.Conditions {
		sb.WriteString(condition.String())
	}
	if s.Subpart != "" {
		sb.WriteString("::")
		sb.WriteString(s.Subpart)
	}
	return sb.String()
}

func (z ZoomRange) String() string {
	switch {
	case z.Min == z.Max:
		return "|z" + formatNumber(z.Min)
	case z.isOpenEnded():
		return "|z" + formatNumber(z.Min) + "-"
	case z.Min == 0:
		return "|z-" + formatNumber(z.Max)
	}
	return "|z" + formatNumber(z.Min) + "-" + formatNumber(z.Max)
}

func (p Pattern) String() string {
	if p.Regexp != nil {
		return "/" + p.Regexp.String() + "/"
	}
	return formatText(p.Text)
}

func formatText(s string) string {
	if identPattern.MatchString(s) || hashPattern.MatchString(s) {
		return s
	}
	return quote(s)
}

func (c *KeyCondition) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	if c.Not {
		sb.WriteString("!")
	}
	sb.WriteString(c.Key.String())
	switch {
	case c.IsTrue:
		sb.WriteString("?")
	case c.IsFalse:
		sb.WriteString("?!")
	}
	sb.WriteString("]")
	return sb.String()
}

func (c *KeyValueCondition) String() string {
	return "[" + c.Key.String() + string(c.Op) + c.Value.String() + "]"
}

func (c *ClassCondition) String() string {
	if c.Not {
		return "!." + c.Class
	}
	return "." + c.Class
}

func (c *PseudoClassCondition) String() string {
	if c.Not {
		return "!:" + c.Class
	}
	return ":" + c.Class
}

var startsWithCall = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*\(`)

func (c *ExpressionCondition) String() string {
	expression := c.Expression.String()
	if !startsWithCall.MatchString(expression) && !strings.HasPrefix(expression, "(") {
		expression = "(" + expression + ")"
	}
	if c.Not {
		return "[!" + expression + "]"
	}
	return "[" + expression + "]"
}

func (i *Instruction) String() string {
	return i.Key + ": " + i.Value.String() + ";"
}

func (s *SetInstruction) String() string {
	return "set ." + s.Class + ";"
}

func (l *Literal) String() string {
	switch l.Value.Kind() {
	case KindString:
		return formatText(l.Value.str)
	case KindVector:
		return strings.Join(strings.Split(l.Value.String(), ","), ", ")
	}
	return l.Value.String()
}

func (o *Operation) String() string {
	switch {
	case o.Op == "cond" && len(o.Args) == 3:
		return o.formatArg(0, precedenceCond+1) + " ? " + o.formatArg(1, precedenceCond) + " : " + o.formatArg(2, precedenceCond)
	case o.Op == "eval" && len(o.Args) == 1:
		return "(" + o.Args[0].String() + ")"
	case o.Op == "!" && len(o.Args) == 1:
		return "!" + o.formatArg(0, precedencePrimary)
	case precedence(o.Op) < precedencePrimary && len(o.Args) >= 2:
		opPrecedence := precedence(o.Op)
		parts := make([]string, len(o.Args))
		for i := range o.Args {
			minPrecedence := opPrecedence
			if i > 0 {
				minPrecedence++
			}
			parts[i] = o.formatArg(i, minPrecedence)
		}
		return strings.Join(parts, " "+o.Op+" ")
	}

	args := make([]string, len(o.Args))
	for i, arg := range o.Args {
		args[i] = arg.String()
	}
	return o.Op + "(" + strings.Join(args, ", ") + ")"
}

// formatArg wraps the argument in parentheses when it binds looser than minPrecedence.
func (o *Operation) formatArg(i int, minPrecedence int) string {
	arg := o.Args[i]
	if operation, ok := arg.(*Operation); ok && operation.bindingPrecedence() < minPrecedence {
		return "(" + arg.String() + ")"
	}
	return arg.String()
}

func (o *Operation) bindingPrecedence() int {
	switch {
	case o.Op == "cond" && len(o.Args) == 3:
		return precedenceCond
	case precedence(o.Op) < precedencePrimary && len(o.Args) >= 2:
		return precedence(o.Op)
	}
	return precedencePrimary
}

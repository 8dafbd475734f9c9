package mapcss

import "strings"

// Matches reports whether any of the rule's selectors match t.
func (r *Rule) Matches(t Target) bool {
	for _, selector := range r.Selectors {
		if selector.Matches(t) {
			return true
		}
	}
	return false
}

func (s *Selector) Matches(t Target) bool {
	if !s.matchesBase(t.GeometryKind()) {
		return false
	}

	if s.Subpart != "" && s.Subpart != t.Subpart() {
		return false
	}

	if s.Zoom != nil {
		zoom, ok := zoomOf(t)
		if ok && !s.Zoom.Contains(zoom) {
			return false
		}
	}

	for _, condition := range s.Conditions {
		if !condition.Matches(t) {
			return false
		}
	}
	return true
}

func (s *Selector) matchesBase(kind GeometryKind) bool {
	if kind == GeometryCanvas || s.Base == BaseCanvas {
		return kind == GeometryCanvas && s.Base == BaseCanvas
	}

	switch s.Base {
	case BaseAny:
		return true
	case BaseNode:
		return kind == GeometryPoint
	case BaseWay, BaseLine:
		return kind == GeometryLine
	case BaseArea:
		return kind == GeometryArea
	default:
		// relation, meta and setting have no geometry kind of their own
		return false
	}
}

func (c *KeyCondition) Matches(t Target) bool {
	var found bool
	for _, key := range matchingKeys(t, c.Key) {
		value, _ := t.Tag(key)
		switch {
		case c.IsTrue:
			found = isTrueValue(value)
		case c.IsFalse:
			found = isFalseValue(value)
		default:
			found = true
		}
		if found {
			break
		}
	}
	return found != c.Not
}

func (c *KeyValueCondition) Matches(t Target) bool {
	if !c.Key.IsRegexp() {
		value, _ := t.Tag(c.Key.Text)
		return c.matchesValue(value) != c.Op.negated()
	}

	for _, key := range matchingKeys(t, c.Key) {
		value, _ := t.Tag(key)
		if c.matchesValue(value) {
			return !c.Op.negated()
		}
	}
	return c.Op.negated()
}

// matchesValue applies the positive form of the operator.
func (c *KeyValueCondition) matchesValue(value string) bool {
	switch c.Op {
	case OpEqual, OpNotEqual, OpMatch, OpNotMatch:
		return c.Value.MatchString(value)
	case OpPrefix:
		return strings.HasPrefix(value, c.Value.Text)
	case OpSuffix:
		return strings.HasSuffix(value, c.Value.Text)
	case OpSubstring:
		return strings.Contains(value, c.Value.Text)
	case OpListItem:
		for _, item := range strings.Split(value, ";") {
			if c.Value.MatchString(strings.TrimSpace(item)) {
				return true
			}
		}
	}
	return false
}

func (c *ClassCondition) Matches(t Target) bool {
	return t.HasClass(c.Class) != c.Not
}

func (c *PseudoClassCondition) Matches(t Target) bool {
	return t.HasClass(c.Class) != c.Not
}

func (c *ExpressionCondition) Matches(t Target) bool {
	return c.Expression.Eval(t).Truthy() != c.Not
}

func matchingKeys(t Target, key Pattern) []string {
	if !key.IsRegexp() {
		if _, ok := t.Tag(key.Text); ok {
			return []string{key.Text}
		}
		return nil
	}

	var keys []string
	for _, k := range t.TagKeys() {
		if key.MatchString(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func isTrueValue(value string) bool {
	switch value {
	case "yes", "true", "1":
		return true
	}
	return false
}

func isFalseValue(value string) bool {
	switch value {
	case "no", "false", "0":
		return true
	}
	return false
}

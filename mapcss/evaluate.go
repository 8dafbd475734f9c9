package mapcss

// EvaluateRules evaluates rules in order against t and returns the merged
// declarations of every matching rule. Later rules override earlier ones.
// An empty result means no rule applied.
func EvaluateRules(rules []*Rule, t Target) *Declarations {
	declarations := NewDeclarations()
	for _, rule := range rules {
		if !rule.Matches(t) {
			continue
		}
		for _, declaration := range rule.Declarations {
			declaration.Apply(t, declarations)
		}
	}
	return declarations
}

// EvaluateCanvas returns the declarations of the canvas rules.
func EvaluateCanvas(rules []*Rule) *Declarations {
	return EvaluateRules(rules, NewCanvas())
}

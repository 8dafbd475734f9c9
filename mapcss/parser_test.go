package mapcss

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_structure(t *testing.T) {
	rules, err := Parse(`
/* landuse */
area[landuse=forest], area[natural=wood] { fill-color: green; fill-opacity: 0.4 }
way|z12-14[highway]::casing { width: 3; dashes: 5,3; }
node.station!.disused:closed { set .visited; text: addr:street; }
`)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	landuse := rules[0]
	require.Len(t, landuse.Selectors, 2)
	assert.Equal(t, BaseArea, landuse.Selectors[0].Base)
	assert.Equal(t, &KeyValueCondition{Key: ExactPattern("landuse"), Op: OpEqual, Value: ExactPattern("forest")}, landuse.Selectors[0].Conditions[0])
	assert.Equal(t, &KeyValueCondition{Key: ExactPattern("natural"), Op: OpEqual, Value: ExactPattern("wood")}, landuse.Selectors[1].Conditions[0])
	assert.Equal(t, []Declaration{
		&Instruction{Key: "fill-color", Value: &Literal{String("green")}},
		&Instruction{Key: "fill-opacity", Value: &Literal{Number(0.4)}},
	}, landuse.Declarations)

	casing := rules[1].Selectors[0]
	assert.Equal(t, BaseWay, casing.Base)
	assert.Equal(t, &ZoomRange{Min: 12, Max: 14}, casing.Zoom)
	assert.Equal(t, "casing", casing.Subpart)
	assert.Equal(t, []Condition{&KeyCondition{Key: ExactPattern("highway")}}, casing.Conditions)
	assert.Equal(t, &Instruction{Key: "dashes", Value: &Literal{Vector(5, 3)}}, rules[1].Declarations[1])

	station := rules[2]
	assert.Equal(t, []Condition{
		&ClassCondition{Class: "station"},
		&ClassCondition{Class: "disused", Not: true},
		&PseudoClassCondition{Class: "closed"},
	}, station.Selectors[0].Conditions)
	assert.Equal(t, []Declaration{
		&SetInstruction{Class: "visited"},
		&Instruction{Key: "text", Value: &Literal{String("addr:street")}},
	}, station.Declarations)
}

func TestParse_conditions(t *testing.T) {
	feature := point(map[string]string{
		"name":        "Wien Westbahnhof",
		"addr:street": "Europaplatz",
		"lanes":       "2",
		"oneway":      "yes",
		"bridge":      "no",
		"cuisine":     "pizza;kebab",
		"name:de":     "Wien",
	})

	tests := []struct {
		selector string
		want     bool
	}{
		{`node[name]`, true},
		{`node[!name]`, false},
		{`node[!ref]`, true},
		{`node["addr:street"]`, true},
		{`node[addr:street=Europaplatz]`, true},
		{`node[name="Wien Westbahnhof"]`, true},
		{`node[name!="Wien Westbahnhof"]`, false},
		{`node[ref!=1]`, true},
		{`node[name^=Wien]`, true},
		{`node[name$=bahnhof]`, true},
		{`node[name*=West]`, true},
		{`node[cuisine~=kebab]`, true},
		{`node[cuisine~=burger]`, false},
		{`node[name=~/^wien/i]`, true},
		{`node[name=~/^wien/]`, false},
		{`node[name!~/Ost/]`, true},
		{`node[name=/Westbahn/]`, true},
		{`node[/^name:/]`, true},
		{`node[/^name:/=Wien]`, true},
		{`node[/^name:/=Vienna]`, false},
		{`node[/^name:/!=Vienna]`, true},
		{`node[oneway?]`, true},
		{`node[bridge?]`, false},
		{`node[bridge?!]`, true},
		{`node[lanes>1]`, true},
		{`node[lanes>=3]`, false},
		{`node[lanes<3]`, true},
		{`node[tag("lanes") * 2 = 4]`, true},
		{`node[!(tag("lanes") > 1)]`, false},
		{`node[name][lanes=2]`, true},
		{`node[name][lanes=3]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			rules := mustParse(t, tt.selector+" { matched: yes; }")
			_, matched := EvaluateRules(rules, feature).Get("matched")
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestParse_zoomRanges(t *testing.T) {
	tests := []struct {
		selector string
		want     ZoomRange
	}{
		{"node|z12", ZoomRange{Min: 12, Max: 12}},
		{"node|z12-", ZoomRange{Min: 12, Max: math.Inf(1)}},
		{"node|z-14", ZoomRange{Min: 0, Max: 14}},
		{"node|z10-14", ZoomRange{Min: 10, Max: 14}},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			rules := mustParse(t, tt.selector+" {}")
			require.NotNil(t, rules[0].Selectors[0].Zoom)
			assert.Equal(t, tt.want, *rules[0].Selectors[0].Zoom)
		})
	}
}

func TestParse_empty(t *testing.T) {
	rules, err := Parse("  /* nothing here */\n")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParse_syntaxErrors(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantMessage string
		wantOffset  int
	}{
		{"unknown selector type", "foo { }", `unknown selector type "foo"`, 0},
		{"child combinator", "node > way {}", "parent/child selectors are not supported", 5},
		{"descendant selector", "way node {}", "parent/child selectors are not supported", 4},
		{"at-rule", `@import "other.mapcss";`, "at-rule @import is not supported", 0},
		{"missing colon", "node { color red; }", `expected ":", found "red"`, 13},
		{"missing operand", "node { width: 1 +; }", `unexpected ";" in expression`, 17},
		{"unclosed block", "node { color: red;", `unexpected end of input, expected "}"`, 18},
		{"invalid regular expression", "node[name=~/(/] {}", "invalid regular expression", 11},
		{"unterminated regular expression", "node[name=~/abc] {}", "unterminated regular expression", 11},
		{"negated key with value", "node[!name=x] {}", `"!" is only allowed before a key without a value`, 10},
		{"invalid zoom", "node|z14-12 {}", "invalid zoom range", 5},
		{"missing selector", "{ color: red; }", "expected selector", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Contains(t, syntaxErr.Message, tt.wantMessage)
			assert.Equal(t, tt.wantOffset, syntaxErr.Offset)
			assert.Equal(t, 1, syntaxErr.Line)
		})
	}
}

func TestParse_syntaxErrorPosition(t *testing.T) {
	_, err := Parse("node { color: red; }\nway { color: ; }\n")
	require.Error(t, err)

	syntaxErr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, 34, syntaxErr.Offset)
	assert.Equal(t, 2, syntaxErr.Line)
	assert.Contains(t, syntaxErr.Error(), "line 2")
}

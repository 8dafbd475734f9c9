// Package mapcss parses MapCSS styling rules and evaluates them against map features.
package mapcss

import (
	"math"
	"regexp"
)

type BaseKind string

const (
	BaseAny      BaseKind = "*"
	BaseNode     BaseKind = "node"
	BaseWay      BaseKind = "way"
	BaseRelation BaseKind = "relation"
	BaseLine     BaseKind = "line"
	BaseArea     BaseKind = "area"
	BaseMeta     BaseKind = "meta"
	BaseCanvas   BaseKind = "canvas"
	BaseSetting  BaseKind = "setting"
)

var baseKinds = map[string]BaseKind{
	string(BaseAny):      BaseAny,
	"any":                BaseAny,
	string(BaseNode):     BaseNode,
	string(BaseWay):      BaseWay,
	string(BaseRelation): BaseRelation,
	string(BaseLine):     BaseLine,
	string(BaseArea):     BaseArea,
	string(BaseMeta):     BaseMeta,
	string(BaseCanvas):   BaseCanvas,
	string(BaseSetting):  BaseSetting,
}

// Rule is a list of alternative selectors sharing one declaration block.
type Rule struct {
	Selectors    []*Selector
	Declarations []Declaration
}

type Selector struct {
	Base       BaseKind
	Zoom       *ZoomRange
	Conditions []Condition
	Subpart    string
}

// ZoomRange is inclusive on both ends. An open upper end is +Inf.
type ZoomRange struct {
	Min, Max float64
}

func (z ZoomRange) Contains(zoom float64) bool {
	return zoom >= z.Min && zoom <= z.Max
}

func (z ZoomRange) isOpenEnded() bool {
	return math.IsInf(z.Max, 1)
}

// Pattern matches either an exact string or a regular expression.
type Pattern struct {
	Text   string
	Regexp *regexp.Regexp
}

func ExactPattern(s string) Pattern {
	return Pattern{Text: s}
}

func RegexpPattern(re *regexp.Regexp) Pattern {
	return Pattern{Text: re.String(), Regexp: re}
}

func (p Pattern) IsRegexp() bool {
	return p.Regexp != nil
}

func (p Pattern) MatchString(s string) bool {
	if p.Regexp != nil {
		return p.Regexp.MatchString(s)
	}
	return p.Text == s
}

type KeyValueOp string

const (
	OpEqual     KeyValueOp = "="
	OpNotEqual  KeyValueOp = "!="
	OpPrefix    KeyValueOp = "^="
	OpSuffix    KeyValueOp = "$="
	OpSubstring KeyValueOp = "*="
	OpListItem  KeyValueOp = "~="
	OpMatch     KeyValueOp = "=~"
	OpNotMatch  KeyValueOp = "!~"
)

func (op KeyValueOp) negated() bool {
	return op == OpNotEqual || op == OpNotMatch
}

type Condition interface {
	Matches(t Target) bool
	String() string
}

type KeyCondition struct {
	Key Pattern
	Not bool
	// IsTrue and IsFalse select the "key?" and "key?!" forms.
	IsTrue  bool
	IsFalse bool
}

type KeyValueCondition struct {
	Key   Pattern
	Op    KeyValueOp
	Value Pattern
}

type ClassCondition struct {
	Class string
	Not   bool
}

type PseudoClassCondition struct {
	Class string
	Not   bool
}

type ExpressionCondition struct {
	Expression Expression
	Not        bool
}

type Declaration interface {
	Apply(t Target, into *Declarations)
	String() string
}

// Instruction sets a style property.
type Instruction struct {
	Key   string
	Value Expression
}

// SetInstruction sets a class flag on the target.
type SetInstruction struct {
	Class string
}

package mapcss

import (
	"testing"

	snapshot "github.com/jamesrr39/go-snapshot-testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStyle = `
canvas { fill-color: #f2efe9; }
area[landuse=forest], area[natural=wood] { fill-color: green; fill-opacity: 0.4; }
way[highway=~/^(primary|secondary)$/]|z12- { width: 2 + 1; color: #dc0000; dashes: 5,3; }
node[railway=station]::foreground { text: name; font-size: 12; set station; }
node.station[!disused] { icon-width: tag("platforms") > 2 ? 6 : 4; }
`

func TestFormat(t *testing.T) {
	rules, err := Parse(sampleStyle)
	require.NoError(t, err)

	snapshot.AssertMatchesSnapshot(t, "TestFormat_sampleStyle", snapshot.NewTextSnapshot(Format(rules)))
}

func TestFormat_roundTrip(t *testing.T) {
	inputs := []string{
		sampleStyle,
		`* {value: -2.7 > +3 ? 12 : 2 * (3 + 4);}`,
		`node[name=~/^wien/i][!ref][oneway?][bridge?!]|z-14 { text: concat(name, " ", ref); }`,
		`way[lanes>=2][cuisine~=pizza][name^="St. "]!.visited { width: 10 - (4 - 1) - 2; }`,
		`area[(tag("height") / 3) > 10] { z-index: -1; fill-color: rgba(0, 0, 0, 0.5); }`,
		`relation, meta, setting { font: "bold 12px sans-serif"; text: "addr:housenumber"; }`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			rules, err := Parse(input)
			require.NoError(t, err)

			formatted := Format(rules)
			reparsed, err := Parse(formatted)
			require.NoError(t, err)

			assert.Equal(t, formatted, Format(reparsed))
		})
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		expression string
		want       string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"-2.7 > +3 ? 12 : 2 * (3 + 4)", "-2.7 > 3 ? 12 : 2 * (3 + 4)"},
		{`tag("name") || "unnamed"`, `tag(name) || unnamed`},
		{`"two words"`, `"two words"`},
		{"-tag(lanes)", "0 - tag(lanes)"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			rules := mustParse(t, "* { v: "+tt.expression+"; }")
			instruction := rules[0].Declarations[0].(*Instruction)
			assert.Equal(t, tt.want, instruction.Value.String())
		})
	}

	nested := &Operation{Op: "*", Args: []Expression{
		&Operation{Op: "+", Args: []Expression{&Literal{Number(1)}, &Literal{Number(2)}}},
		&Literal{Number(3)},
	}}
	assert.Equal(t, "(1 + 2) * 3", nested.String())
}

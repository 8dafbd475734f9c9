package mapcss

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector_Matches_base(t *testing.T) {
	kinds := []GeometryKind{GeometryPoint, GeometryLine, GeometryArea, GeometryCanvas, GeometryUnknown}

	tests := []struct {
		base BaseKind
		want map[GeometryKind]bool
	}{
		{BaseAny, map[GeometryKind]bool{GeometryPoint: true, GeometryLine: true, GeometryArea: true, GeometryUnknown: true}},
		{BaseNode, map[GeometryKind]bool{GeometryPoint: true}},
		{BaseWay, map[GeometryKind]bool{GeometryLine: true}},
		{BaseLine, map[GeometryKind]bool{GeometryLine: true}},
		{BaseArea, map[GeometryKind]bool{GeometryArea: true}},
		{BaseCanvas, map[GeometryKind]bool{GeometryCanvas: true}},
		{BaseRelation, map[GeometryKind]bool{}},
		{BaseMeta, map[GeometryKind]bool{}},
		{BaseSetting, map[GeometryKind]bool{}},
	}

	for _, tt := range tests {
		for _, kind := range kinds {
			t.Run(fmt.Sprintf("%s/%s", tt.base, kind), func(t *testing.T) {
				var target Target = &MapTarget{Kind: kind}
				if kind == GeometryCanvas {
					target = NewCanvas()
				}
				selector := &Selector{Base: tt.base}
				assert.Equal(t, tt.want[kind], selector.Matches(target))
			})
		}
	}
}

func TestSelector_Matches_shortCircuits(t *testing.T) {
	feature := point(map[string]string{"amenity": "cafe"})
	selector := &Selector{
		Base: BaseNode,
		Conditions: []Condition{
			&KeyCondition{Key: ExactPattern("shop")},
			&ExpressionCondition{Expression: &classSetter{class: "reached"}},
		},
	}

	assert.False(t, selector.Matches(feature))
	assert.False(t, feature.HasClass("reached"))
}

func TestAtZoom(t *testing.T) {
	feature := point(nil)
	selector := &Selector{Base: BaseNode, Zoom: &ZoomRange{Min: 10, Max: 12}}

	assert.True(t, selector.Matches(feature))
	assert.True(t, selector.Matches(AtZoom(feature, 11)))
	assert.False(t, selector.Matches(AtZoom(AtZoom(feature, 11), 15)))

	AtZoom(feature, 11).SetClass("zoomed")
	assert.True(t, feature.HasClass("zoomed"))
}

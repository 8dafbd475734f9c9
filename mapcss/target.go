package mapcss

import "sort"

type GeometryKind int

const (
	GeometryUnknown GeometryKind = iota
	GeometryPoint
	GeometryLine
	GeometryArea
	GeometryCanvas
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryPoint:
		return "point"
	case GeometryLine:
		return "line"
	case GeometryArea:
		return "area"
	case GeometryCanvas:
		return "canvas"
	default:
		return "unknown"
	}
}

type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Target is anything rules can be evaluated against: a map feature or the canvas.
// Class flags set by rules are stored on the target itself.
type Target interface {
	GeometryKind() GeometryKind
	Tag(key string) (string, bool)
	TagKeys() []string
	Subpart() string
	HasClass(name string) bool
	SetClass(name string)
	Extent() (Extent, bool)
}

// Canvas is the target for map-wide declarations such as the background.
type Canvas struct {
	classes map[string]bool
}

var _ Target = &Canvas{}

func NewCanvas() *Canvas {
	return &Canvas{classes: make(map[string]bool)}
}

func (c *Canvas) GeometryKind() GeometryKind {
	return GeometryCanvas
}

func (c *Canvas) Tag(key string) (string, bool) {
	return "", false
}

func (c *Canvas) TagKeys() []string {
	return nil
}

func (c *Canvas) Subpart() string {
	return ""
}

func (c *Canvas) HasClass(name string) bool {
	return c.classes[name]
}

func (c *Canvas) SetClass(name string) {
	if c.classes == nil {
		c.classes = make(map[string]bool)
	}
	c.classes[name] = true
}

func (c *Canvas) Extent() (Extent, bool) {
	return Extent{}, false
}

type zoomedTarget struct {
	Target
	zoom float64
}

// AtZoom attaches a zoom level to t so that selectors with a zoom range can be checked.
// Targets without a zoom level ignore zoom ranges.
func AtZoom(t Target, zoom float64) Target {
	if zt, ok := t.(*zoomedTarget); ok {
		t = zt.Target
	}
	return &zoomedTarget{t, zoom}
}

func zoomOf(t Target) (float64, bool) {
	zt, ok := t.(*zoomedTarget)
	if !ok {
		return 0, false
	}
	return zt.zoom, true
}

// MapTarget is a minimal in-memory Target, handy for evaluating rules against plain tag maps.
type MapTarget struct {
	Kind        GeometryKind
	Tags        map[string]string
	SubpartName string
	Bounds      *Extent
	classes     map[string]bool
}

var _ Target = &MapTarget{}

func (m *MapTarget) GeometryKind() GeometryKind {
	return m.Kind
}

func (m *MapTarget) Tag(key string) (string, bool) {
	v, ok := m.Tags[key]
	return v, ok
}

func (m *MapTarget) TagKeys() []string {
	keys := make([]string, 0, len(m.Tags))
	for k := range m.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MapTarget) Subpart() string {
	return m.SubpartName
}

func (m *MapTarget) HasClass(name string) bool {
	return m.classes[name]
}

func (m *MapTarget) SetClass(name string) {
	if m.classes == nil {
		m.classes = make(map[string]bool)
	}
	m.classes[name] = true
}

func (m *MapTarget) Extent() (Extent, bool) {
	if m.Bounds == nil {
		return Extent{}, false
	}
	return *m.Bounds, true
}

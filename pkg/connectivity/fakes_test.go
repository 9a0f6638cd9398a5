package connectivity

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/stretchr/testify/require"
)

type fakeFootprint struct {
	dup    bool
	groups [][]string
}

func (f *fakeFootprint) DuplicatePadNumbersAreJumpers() bool { return f.dup }
func (f *fakeFootprint) JumperPadGroups() [][]string        { return f.groups }

// fakeItem implements every board item interface; kind decides which one
// the engine sees.
type fakeItem struct {
	name      string
	kind      Kind
	layers    LayerSet
	net       int
	fixed     bool
	offCopper bool
	shape     geom.Shape
	hole      geom.Shape
	anchors   []geom.Point

	conditional LayerSet
	noZone      LayerSet
	backdrilled LayerSet
	free        bool

	fp     *fakeFootprint
	number string

	polys map[LayerID][]*geom.Polygon
}

func (f *fakeItem) Kind() Kind            { return f.kind }
func (f *fakeItem) IsOnCopperLayer() bool { return !f.offCopper }
func (f *fakeItem) Layers() LayerSet      { return f.layers }
func (f *fakeItem) NetCode() int          { return f.net }
func (f *fakeItem) SetNetCode(net int)    { f.net = net }
func (f *fakeItem) CanChangeNet() bool    { return !f.fixed }
func (f *fakeItem) Anchors() []geom.Point { return f.anchors }
func (f *fakeItem) Number() string        { return f.number }
func (f *fakeItem) IsFree() bool          { return f.free }

func (f *fakeItem) EffectiveShape(layer LayerID, flash Flashing) geom.Shape {
	if !f.layers.Has(layer) {
		return nil
	}
	if flash == FlashNever {
		return f.hole
	}
	return f.shape
}

func (f *fakeItem) ConditionallyFlashed(layer LayerID) bool { return f.conditional.Has(layer) }
func (f *fakeItem) IsBackdrilled(layer LayerID) bool        { return f.backdrilled.Has(layer) }

func (f *fakeItem) ZoneLayerOverride(layer LayerID) ZoneLayerOverride {
	if f.noZone.Has(layer) {
		return ZoneOverrideNoConnection
	}
	return ZoneOverrideNone
}

func (f *fakeItem) Footprint() Footprint {
	if f.fp == nil {
		return nil
	}
	return f.fp
}

func (f *fakeItem) FilledPolygons(layer LayerID) []*geom.Polygon {
	return f.polys[layer]
}

func squarePad(name string, x, y, size float64, net int) *fakeItem {
	h := size / 2
	return &fakeItem{
		name:    name,
		kind:    KindPad,
		layers:  NewLayerSet(0),
		net:     net,
		shape:   geom.Rect(geom.Pt(x-h, y-h), geom.Pt(x+h, y+h)),
		anchors: []geom.Point{geom.Pt(x, y)},
	}
}

func fixedPad(name string, x, y, size float64, net int) *fakeItem {
	p := squarePad(name, x, y, size, net)
	p.fixed = true
	return p
}

func track(name string, x1, y1, x2, y2, width float64, net int) *fakeItem {
	a, b := geom.Pt(x1, y1), geom.Pt(x2, y2)
	return &fakeItem{
		name:    name,
		kind:    KindTrack,
		layers:  NewLayerSet(0),
		net:     net,
		shape:   geom.Segment(a, b, width),
		anchors: []geom.Point{a, b},
	}
}

func via(name string, x, y, size, drill float64, net int) *fakeItem {
	c := geom.Pt(x, y)
	return &fakeItem{
		name:    name,
		kind:    KindVia,
		layers:  NewLayerSet(0, 1),
		net:     net,
		shape:   geom.Circle(c, size/2),
		hole:    geom.Circle(c, drill/2),
		anchors: []geom.Point{c},
	}
}

func zone(name string, net int, layer LayerID, islands ...*geom.Polygon) *fakeItem {
	return &fakeItem{
		name:   name,
		kind:   KindZone,
		layers: NewLayerSet(layer),
		net:    net,
		fixed:  true,
		polys:  map[LayerID][]*geom.Polygon{layer: islands},
	}
}

func square(x0, y0, side float64) *geom.Polygon {
	return geom.Rect(geom.Pt(x0, y0), geom.Pt(x0+side, y0+side))
}

func items(fs ...*fakeItem) []BoardItem {
	out := make([]BoardItem, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func newEngine(t *testing.T, exec Executor) *Algorithm {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 2
	a, err := New(exec, cfg)
	require.NoError(t, err)
	return a
}

func buildEngine(t *testing.T, fs ...*fakeItem) *Algorithm {
	t.Helper()
	a := newEngine(t, Inline{})
	require.NoError(t, a.Build(context.Background(), items(fs...)))
	return a
}

// clusterNames returns each cluster as the sorted names of its board
// objects, clusters sorted by their joined names.
func clusterNames(clusters []*Cluster) [][]string {
	out := make([][]string, 0, len(clusters))
	for _, c := range clusters {
		var names []string
		for _, p := range c.Parents() {
			names = append(names, p.(*fakeItem).name)
		}
		sort.Strings(names)
		out = append(out, names)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], ",") < strings.Join(out[j], ",")
	})
	return out
}

func connectedNames(t *testing.T, a *Algorithm, item *fakeItem) []string {
	t.Helper()
	conn, err := a.ConnectedItems(context.Background(), item)
	require.NoError(t, err)
	names := []string{}
	for _, c := range conn {
		names = append(names, c.(*fakeItem).name)
	}
	sort.Strings(names)
	return names
}

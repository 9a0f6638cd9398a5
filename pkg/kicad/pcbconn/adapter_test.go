package pcbconn

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedBoard has a SIG pad feeding a netless route across both layers and
// a GND pad sitting in a two-island GND fill with a netless free via.
const routedBoard = `(kicad_pcb (version 20240108) (generator "pcbnew")
  (layers (0 "F.Cu" signal) (31 "B.Cu" signal) (44 "Edge.Cuts" user))
  (net 0 "")
  (net 1 "GND")
  (net 2 "SIG")
  (footprint "Test:Pads" (layer "F.Cu") (at 0 0)
    (property "Reference" "U1")
    (pad "1" smd rect (at 0 0) (size 1 1) (layers "F.Cu") (net 2 "SIG"))
    (pad "2" smd rect (at 20 0) (size 1 1) (layers "F.Cu") (net 1 "GND"))
  )
  (segment (start 0 0) (end 5 0) (width 0.25) (layer "F.Cu") (net 0))
  (segment (start 5 0) (end 10 0) (width 0.25) (layer "F.Cu") (net 0))
  (via (at 10 0) (size 0.6) (drill 0.3) (layers "F.Cu" "B.Cu") (net 0))
  (segment (start 10 0) (end 15 0) (width 0.25) (layer "B.Cu") (net 0))
  (via (at 21 1) (size 0.6) (drill 0.3) (layers "F.Cu" "B.Cu") (free yes) (net 0))
  (gr_line (start 30 10) (end 40 10) (stroke (width 0.2) (type solid)) (layer "F.Cu"))
  (gr_circle (center 3 4) (end 6 4) (stroke (width 0.1) (type solid)) (fill none) (layer "Edge.Cuts"))
  (zone (net 1) (net_name "GND") (layer "F.Cu") (name "gnd")
    (polygon (pts (xy 18 -2) (xy 33 -2) (xy 33 2) (xy 18 2)))
    (filled_polygon (layer "F.Cu") (pts (xy 18 -2) (xy 22 -2) (xy 22 2) (xy 18 2)))
    (filled_polygon (layer "F.Cu") (island) (pts (xy 30 -2) (xy 33 -2) (xy 33 2) (xy 30 2)))
  )
)`

const stackBoard = `(kicad_pcb (version 20240108) (generator "pcbnew")
  (layers (0 "F.Cu" signal) (2 "B.Cu" signal) (4 "In1.Cu" signal) (6 "In2.Cu" signal))
  (net 0 "")
  (net 1 "A")
  (footprint "Test:Mixed" (layer "F.Cu") (at 0 0)
    (property "Reference" "J1")
    (zone_connect 3)
    (pad "1" thru_hole circle (at 0 0) (size 1.6 1.6) (drill 0.8) (layers "*.Cu")
      (remove_unused_layers yes) (keep_end_layers yes) (net 1 "A"))
    (pad "2" smd rect (at 5 0) (size 1 1) (layers "F.Cu") (net 1 "A"))
    (pad "3" smd rect (at 10 0) (size 1 1) (layers "B.Cu") (zone_connect 0) (net 1 "A"))
    (pad "" np_thru_hole circle (at 15 0) (size 1 1) (drill 1) (layers "F&B.Cu"))
  )
  (via blind (at 20 0) (size 0.5) (drill 0.2) (layers "F.Cu" "In2.Cu") (remove_unused_layers) (net 1))
)`

func parseBoard(t *testing.T, src string) *pcb.Board {
	t.Helper()
	board, err := pcb.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return board
}

func newAdapter(t *testing.T, src string) *Adapter {
	t.Helper()
	a, err := New(parseBoard(t, src), nil)
	require.NoError(t, err)
	return a
}

func build(t *testing.T, a *Adapter) *connectivity.Algorithm {
	t.Helper()
	cfg := connectivity.DefaultConfig()
	engine, err := connectivity.New(connectivity.Inline{}, cfg)
	require.NoError(t, err)
	engine.SetEnabledLayers(a.CopperLayers())
	require.NoError(t, engine.Build(context.Background(), a.Items()))
	return engine
}

func TestLayerStack(t *testing.T) {
	a := newAdapter(t, stackBoard)

	for name, want := range map[string]connectivity.LayerID{"F.Cu": 0, "In1.Cu": 1, "In2.Cu": 2, "B.Cu": 3} {
		id, ok := a.LayerID(name)
		require.True(t, ok, name)
		assert.Equal(t, want, id, name)
		assert.Equal(t, name, a.LayerName(id))
	}
	_, ok := a.LayerID("F.SilkS")
	assert.False(t, ok)
	assert.Equal(t, "layer9", a.LayerName(9))
	assert.Equal(t, 4, a.CopperLayers().Count())

	require.Len(t, a.Pads, 4)
	assert.Equal(t, a.CopperLayers(), a.Pads[0].Layers(), "*.Cu")
	assert.Equal(t, connectivity.NewLayerSet(0, 3), a.Pads[3].Layers(), "F&B.Cu")

	require.Len(t, a.Vias, 1)
	assert.Equal(t, connectivity.NewLayerSet(0, 1, 2), a.Vias[0].Layers())
}

func TestDefaultStack(t *testing.T) {
	a, err := New(&pcb.Board{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "F.Cu", a.LayerName(0))
	assert.Equal(t, "B.Cu", a.LayerName(1))
}

func TestTooManyLayers(t *testing.T) {
	board := &pcb.Board{Layers: []pcb.Layer{{Number: 0, Name: "F.Cu"}, {Number: 2, Name: "B.Cu"}}}
	for i := 1; i <= connectivity.MaxCopperLayers; i++ {
		board.Layers = append(board.Layers, pcb.Layer{Number: 2 + 2*i, Name: fmt.Sprintf("In%d.Cu", i)})
	}
	_, err := New(board, nil)
	assert.ErrorIs(t, err, ErrTooManyLayers)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestPadShapes(t *testing.T) {
	circle := padShape(&pcb.Pad{
		Shape:    "circle",
		Position: pcb.PositionAngle{Position: pcb.Position{X: 1, Y: 1}},
		Size:     pcb.Size{Width: 2, Height: 2},
	})
	assert.Equal(t, geom.Circle(geom.Pt(1, 1), 1), circle)

	ov, ok := padShape(&pcb.Pad{
		Shape:    "oval",
		Position: pcb.PositionAngle{Angle: 90},
		Size:     pcb.Size{Width: 4, Height: 2},
	}).(geom.Capsule)
	require.True(t, ok)
	assert.InDelta(t, 1, ov.R, 1e-9)
	assert.InDelta(t, 0, ov.A.X, 1e-9)
	assert.InDelta(t, 2, ov.A.Distance(ov.B), 1e-9, "long axis turned vertical")

	rect := padShape(&pcb.Pad{
		Shape:  "roundrect",
		Size:   pcb.Size{Width: 2, Height: 1},
		Offset: pcb.Position{X: 1},
	})
	box := rect.BBox()
	assert.InDelta(t, 0, box.Min.X, 1e-9)
	assert.InDelta(t, 2, box.Max.X, 1e-9)
	assert.InDelta(t, -0.5, box.Min.Y, 1e-9)
	assert.InDelta(t, 0.5, box.Max.Y, 1e-9)
}

func TestHoleShape(t *testing.T) {
	assert.Nil(t, holeShape(geom.Pt(0, 0), pcb.Size{}, 0))
	assert.Equal(t, geom.Circle(geom.Pt(0, 0), 0.4), holeShape(geom.Pt(0, 0), pcb.Size{Width: 0.8, Height: 0.8}, 0))

	slot, ok := holeShape(geom.Pt(0, 0), pcb.Size{Width: 1, Height: 2}, 0).(geom.Capsule)
	require.True(t, ok)
	assert.InDelta(t, 0.5, slot.R, 1e-9)
	assert.InDelta(t, 1, slot.A.Distance(slot.B), 1e-9)
}

func TestPadFlashing(t *testing.T) {
	a := newAdapter(t, stackBoard)
	th, smd, back, npth := a.Pads[0], a.Pads[1], a.Pads[2], a.Pads[3]

	assert.False(t, th.ConditionallyFlashed(0), "end layers kept")
	assert.True(t, th.ConditionallyFlashed(1))
	assert.True(t, th.ConditionallyFlashed(2))
	assert.False(t, th.ConditionallyFlashed(3), "end layers kept")
	assert.False(t, smd.ConditionallyFlashed(0))

	assert.Equal(t, geom.Circle(geom.Pt(0, 0), 0.4), th.EffectiveShape(1, connectivity.FlashNever))
	assert.Equal(t, geom.Circle(geom.Pt(0, 0), 0.8), th.EffectiveShape(1, connectivity.FlashAlways))
	assert.Nil(t, smd.EffectiveShape(0, connectivity.FlashNever))
	assert.Nil(t, smd.EffectiveShape(3, connectivity.FlashAlways))

	assert.Equal(t, connectivity.ZoneOverrideNone, th.ZoneLayerOverride(0), "thermal for through-hole")
	assert.Equal(t, connectivity.ZoneOverrideNoConnection, smd.ZoneLayerOverride(0), "no thermal for smd")
	assert.Equal(t, connectivity.ZoneOverrideNoConnection, back.ZoneLayerOverride(3))
	assert.False(t, th.IsBackdrilled(0))

	assert.False(t, npth.IsOnCopperLayer(), "hole as large as the pad")
	assert.False(t, th.CanChangeNet())
	assert.Equal(t, "pad J1.1", Describe(th))
	assert.Equal(t, "1", th.Number())
	assert.False(t, th.Footprint().DuplicatePadNumbersAreJumpers())

	v := a.Vias[0]
	assert.True(t, v.ConditionallyFlashed(0))
	assert.True(t, v.ConditionallyFlashed(2))
	assert.Nil(t, v.EffectiveShape(3, connectivity.FlashAlways))
	assert.Equal(t, geom.Circle(geom.Pt(20, 0), 0.1), v.EffectiveShape(1, connectivity.FlashNever))
}

func TestShapesOnCopperOnly(t *testing.T) {
	a := newAdapter(t, routedBoard)
	require.Len(t, a.Shapes, 1, "edge cut circle skipped")

	s := a.Shapes[0]
	assert.Equal(t, connectivity.NewLayerSet(0), s.Layers())
	assert.Equal(t, geom.Segment(geom.Pt(30, 10), geom.Pt(40, 10), 0.2), s.EffectiveShape(0, connectivity.FlashDefault))
	assert.Nil(t, s.EffectiveShape(1, connectivity.FlashDefault))
	assert.Zero(t, s.NetCode())
	assert.Equal(t, "line F.Cu (30,10)-(40,10)", Describe(s))
}

func TestFilledShapes(t *testing.T) {
	board := &pcb.Board{
		Layers: []pcb.Layer{{Number: 0, Name: "F.Cu"}, {Number: 2, Name: "B.Cu"}},
		Graphics: pcb.Graphics{
			Rects: []pcb.GrRect{{
				Start: pcb.Position{}, End: pcb.Position{X: 5, Y: 5},
				Stroke: pcb.Stroke{Width: 0.1}, Fill: pcb.Fill{Type: "solid"}, Layer: "B.Cu",
			}},
			Circles: []pcb.GrCircle{{
				Center: pcb.Position{X: 10, Y: 10}, End: pcb.Position{X: 12, Y: 10},
				Stroke: pcb.Stroke{Width: 0.2}, Layer: "F.Cu",
			}},
		},
	}
	a, err := New(board, nil)
	require.NoError(t, err)
	require.Len(t, a.Shapes, 2)

	circle, rect := a.Shapes[0], a.Shapes[1]
	center := geom.Circle(geom.Pt(10, 10), 0.1)
	assert.False(t, geom.Collide(circle.EffectiveShape(0, connectivity.FlashDefault), center), "open ring")
	assert.True(t, geom.Collide(circle.EffectiveShape(0, connectivity.FlashDefault), geom.Circle(geom.Pt(12, 10), 0.1)))

	inside := geom.Circle(geom.Pt(2.5, 2.5), 0.1)
	assert.True(t, geom.Collide(rect.EffectiveShape(1, connectivity.FlashDefault), inside), "filled")
}

func TestPropagateWritesBoard(t *testing.T) {
	a := newAdapter(t, routedBoard)
	board := a.Board()
	engine := build(t, a)

	changed, err := engine.PropagateNets(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, changed, "four SIG items plus the free via joining GND")

	for i, tr := range board.Tracks {
		require.NotNil(t, tr.Net, "track %d", i)
		assert.Equal(t, "SIG", tr.Net.Name, "track %d", i)
	}
	assert.Equal(t, "SIG", board.Vias[0].Net.Name)
	assert.Equal(t, "GND", board.Vias[1].Net.Name, "free via adopts the zone net")
	assert.Equal(t, "SIG", board.Footprints[0].Pads[0].Net.Name)
	assert.Equal(t, "GND", board.Footprints[0].Pads[1].Net.Name)

	changed, err = engine.PropagateNets(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestZoneIslands(t *testing.T) {
	a := newAdapter(t, routedBoard)
	engine := build(t, a)

	require.Len(t, a.Zones, 1)
	z := a.Zones[0]
	assert.Len(t, z.FilledPolygons(0), 2)
	assert.Empty(t, z.FilledPolygons(1))
	assert.Equal(t, `zone "gnd"`, Describe(z))

	islands := connectivity.ZoneIslandMap{z: nil}
	require.NoError(t, engine.FillIsolatedIslandsMap(context.Background(), islands, true))
	set := islands[z][0]
	require.NotNil(t, set)
	assert.Equal(t, []int{1}, set.Isolated)
	assert.Empty(t, set.SingleConnection)
}

func TestConnectedItems(t *testing.T) {
	a := newAdapter(t, routedBoard)
	engine := build(t, a)

	conn, err := engine.ConnectedItems(context.Background(), a.Vias[0])
	require.NoError(t, err)
	var got []string
	for _, item := range conn {
		got = append(got, Describe(item))
	}
	assert.ElementsMatch(t, []string{
		"track F.Cu (5,0)-(10,0)",
		"track B.Cu (10,0)-(15,0)",
	}, got)
}

func TestSetNetCode(t *testing.T) {
	a := newAdapter(t, routedBoard)
	tr := a.Tracks[0]

	tr.SetNetCode(1)
	assert.Same(t, &a.Board().Nets[1], a.Board().Tracks[0].Net)

	tr.SetNetCode(7)
	require.NotNil(t, a.Board().Tracks[0].Net)
	assert.Equal(t, 7, tr.NetCode())
	assert.Empty(t, a.NetName(7))

	tr.SetNetCode(0)
	assert.Zero(t, tr.NetCode())
	assert.Equal(t, "GND", a.NetName(1))
}

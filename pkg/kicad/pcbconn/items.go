package pcbconn

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
)

// FootprintRef is the connectivity view of a footprint.
type FootprintRef struct {
	fp *pcb.Footprint
}

func (f *FootprintRef) Footprint() *pcb.Footprint { return f.fp }

func (f *FootprintRef) DuplicatePadNumbersAreJumpers() bool {
	return f.fp.DuplicatePadNumbersAreJumpers
}

func (f *FootprintRef) JumperPadGroups() [][]string { return f.fp.JumperPadGroups }

// PadItem wraps a footprint pad. Pad nets come from the netlist, so the
// engine never rewrites them.
type PadItem struct {
	adapter *Adapter
	fp      *FootprintRef
	pad     *pcb.Pad
	layers  connectivity.LayerSet
	copper  bool
}

func (a *Adapter) newPad(fp *FootprintRef, pad *pcb.Pad) *PadItem {
	p := &PadItem{adapter: a, fp: fp, pad: pad, layers: a.layerSet(pad.Layers)}
	// A non-plated hole only carries copper if the pad is larger than it.
	p.copper = p.layers != 0
	if pad.Type == "np_thru_hole" {
		p.copper = p.copper && (pad.Size.Width > pad.Drill.Width || pad.Size.Height > pad.Drill.Height)
	}
	return p
}

func (p *PadItem) Pad() *pcb.Pad                     { return p.pad }
func (p *PadItem) Kind() connectivity.Kind           { return connectivity.KindPad }
func (p *PadItem) IsOnCopperLayer() bool             { return p.copper }
func (p *PadItem) Layers() connectivity.LayerSet     { return p.layers }
func (p *PadItem) NetCode() int                      { return netCode(p.pad.Net) }
func (p *PadItem) SetNetCode(code int)               { p.pad.Net = p.adapter.net(code) }
func (p *PadItem) CanChangeNet() bool                { return false }
func (p *PadItem) Footprint() connectivity.Footprint { return p.fp }
func (p *PadItem) Number() string                    { return p.pad.Number }

func (p *PadItem) Anchors() []geom.Point {
	return []geom.Point{pt(p.pad.Position.Position)}
}

func (p *PadItem) EffectiveShape(layer connectivity.LayerID, flash connectivity.Flashing) geom.Shape {
	if !p.copper || !p.layers.Has(layer) {
		return nil
	}
	if flash == connectivity.FlashNever {
		if p.pad.Type != "thru_hole" {
			return nil
		}
		return holeShape(pt(p.pad.Position.Position), p.pad.Drill, float64(p.pad.Position.Angle))
	}
	return padShape(p.pad)
}

func (p *PadItem) ConditionallyFlashed(layer connectivity.LayerID) bool {
	if !p.pad.RemoveUnusedLayers || p.pad.Type != "thru_hole" {
		return false
	}
	return !(p.pad.KeepEndLayers && isEndLayer(p.layers, layer))
}

func (p *PadItem) ZoneLayerOverride(connectivity.LayerID) connectivity.ZoneLayerOverride {
	switch p.pad.ZoneConnect {
	case pcb.ZoneConnectNone:
		return connectivity.ZoneOverrideNoConnection
	case pcb.ZoneConnectTHT:
		// Thermal reliefs for through-hole pads only.
		if !p.pad.HasHole() {
			return connectivity.ZoneOverrideNoConnection
		}
	}
	return connectivity.ZoneOverrideNone
}

// IsBackdrilled is always false: backdrills are not part of the board file.
func (p *PadItem) IsBackdrilled(connectivity.LayerID) bool { return false }

func (p *PadItem) String() string {
	ref := p.fp.fp.Reference
	if ref == "" {
		ref = "?"
	}
	return fmt.Sprintf("pad %s.%s", ref, p.pad.Number)
}

// TrackItem wraps a straight track.
type TrackItem struct {
	adapter *Adapter
	track   *pcb.Track
	layers  connectivity.LayerSet
}

func (t *TrackItem) Track() *pcb.Track             { return t.track }
func (t *TrackItem) Kind() connectivity.Kind       { return connectivity.KindTrack }
func (t *TrackItem) IsOnCopperLayer() bool         { return t.layers != 0 }
func (t *TrackItem) Layers() connectivity.LayerSet { return t.layers }
func (t *TrackItem) NetCode() int                  { return netCode(t.track.Net) }
func (t *TrackItem) SetNetCode(code int)           { t.track.Net = t.adapter.net(code) }
func (t *TrackItem) CanChangeNet() bool            { return true }

func (t *TrackItem) Anchors() []geom.Point {
	return []geom.Point{pt(t.track.Start), pt(t.track.End)}
}

func (t *TrackItem) EffectiveShape(layer connectivity.LayerID, _ connectivity.Flashing) geom.Shape {
	if !t.layers.Has(layer) {
		return nil
	}
	return geom.Segment(pt(t.track.Start), pt(t.track.End), t.track.Width)
}

func (t *TrackItem) String() string {
	return fmt.Sprintf("track %s (%g,%g)-(%g,%g)", t.track.Layer,
		t.track.Start.X, t.track.Start.Y, t.track.End.X, t.track.End.Y)
}

// ArcItem wraps an arc track.
type ArcItem struct {
	adapter *Adapter
	arc     *pcb.Arc
	layers  connectivity.LayerSet
}

func (a *ArcItem) Arc() *pcb.Arc                 { return a.arc }
func (a *ArcItem) Kind() connectivity.Kind       { return connectivity.KindArc }
func (a *ArcItem) IsOnCopperLayer() bool         { return a.layers != 0 }
func (a *ArcItem) Layers() connectivity.LayerSet { return a.layers }
func (a *ArcItem) NetCode() int                  { return netCode(a.arc.Net) }
func (a *ArcItem) SetNetCode(code int)           { a.arc.Net = a.adapter.net(code) }
func (a *ArcItem) CanChangeNet() bool            { return true }

func (a *ArcItem) Anchors() []geom.Point {
	return []geom.Point{pt(a.arc.Start), pt(a.arc.End)}
}

func (a *ArcItem) EffectiveShape(layer connectivity.LayerID, _ connectivity.Flashing) geom.Shape {
	if !a.layers.Has(layer) {
		return nil
	}
	return geom.ArcThrough(pt(a.arc.Start), pt(a.arc.Mid), pt(a.arc.End), a.arc.Width, a.adapter.opts.MaxArcSegment)
}

func (a *ArcItem) String() string {
	return fmt.Sprintf("arc %s (%g,%g)-(%g,%g)", a.arc.Layer,
		a.arc.Start.X, a.arc.Start.Y, a.arc.End.X, a.arc.End.Y)
}

// ViaItem wraps a via.
type ViaItem struct {
	adapter *Adapter
	via     *pcb.Via
	layers  connectivity.LayerSet
}

func (a *Adapter) newVia(v *pcb.Via) *ViaItem {
	item := &ViaItem{adapter: a, via: v}
	if len(v.Layers) == 2 {
		item.layers = a.span(v.Layers[0], v.Layers[1])
	}
	return item
}

func (v *ViaItem) Via() *pcb.Via                 { return v.via }
func (v *ViaItem) Kind() connectivity.Kind       { return connectivity.KindVia }
func (v *ViaItem) IsOnCopperLayer() bool         { return v.layers != 0 }
func (v *ViaItem) Layers() connectivity.LayerSet { return v.layers }
func (v *ViaItem) NetCode() int                  { return netCode(v.via.Net) }
func (v *ViaItem) SetNetCode(code int)           { v.via.Net = v.adapter.net(code) }
func (v *ViaItem) CanChangeNet() bool            { return true }
func (v *ViaItem) IsFree() bool                  { return v.via.Free }

func (v *ViaItem) Anchors() []geom.Point {
	return []geom.Point{pt(v.via.Position)}
}

func (v *ViaItem) EffectiveShape(layer connectivity.LayerID, flash connectivity.Flashing) geom.Shape {
	if !v.layers.Has(layer) {
		return nil
	}
	if flash == connectivity.FlashNever {
		return geom.Circle(pt(v.via.Position), v.via.Drill/2)
	}
	return geom.Circle(pt(v.via.Position), v.via.Size/2)
}

func (v *ViaItem) ConditionallyFlashed(layer connectivity.LayerID) bool {
	if !v.via.RemoveUnusedLayers {
		return false
	}
	return !(v.via.KeepEndLayers && isEndLayer(v.layers, layer))
}

func (v *ViaItem) ZoneLayerOverride(connectivity.LayerID) connectivity.ZoneLayerOverride {
	return connectivity.ZoneOverrideNone
}

func (v *ViaItem) IsBackdrilled(connectivity.LayerID) bool { return false }

func (v *ViaItem) String() string {
	return fmt.Sprintf("via (%g,%g)", v.via.Position.X, v.via.Position.Y)
}

// ShapeItem wraps a board graphic drawn on copper.
type ShapeItem struct {
	adapter *Adapter
	label   string
	layers  connectivity.LayerSet
	net     **pcb.Net
	shape   geom.Shape
	anchors []geom.Point
}

func (s *ShapeItem) Kind() connectivity.Kind       { return connectivity.KindShape }
func (s *ShapeItem) IsOnCopperLayer() bool         { return s.layers != 0 }
func (s *ShapeItem) Layers() connectivity.LayerSet { return s.layers }
func (s *ShapeItem) NetCode() int                  { return netCode(*s.net) }
func (s *ShapeItem) SetNetCode(code int)           { *s.net = s.adapter.net(code) }
func (s *ShapeItem) CanChangeNet() bool            { return true }
func (s *ShapeItem) Anchors() []geom.Point         { return s.anchors }
func (s *ShapeItem) String() string                { return s.label }

func (s *ShapeItem) EffectiveShape(layer connectivity.LayerID, _ connectivity.Flashing) geom.Shape {
	if !s.layers.Has(layer) {
		return nil
	}
	return s.shape
}

// ZoneItem wraps a copper zone and its fill.
type ZoneItem struct {
	adapter *Adapter
	zone    *pcb.Zone
	layers  connectivity.LayerSet
	fills   map[connectivity.LayerID][]*geom.Polygon
}

func (a *Adapter) newZone(z *pcb.Zone) *ZoneItem {
	item := &ZoneItem{
		adapter: a,
		zone:    z,
		layers:  a.layerSet(z.Layers),
		fills:   make(map[connectivity.LayerID][]*geom.Polygon),
	}
	for _, f := range z.Fills {
		id, ok := a.layers[f.Layer]
		if !ok {
			continue
		}
		pts := make([]geom.Point, len(f.Points))
		for i, p := range f.Points {
			pts[i] = pt(p)
		}
		item.fills[id] = append(item.fills[id], geom.NewPolygon(pts))
	}
	return item
}

func (z *ZoneItem) Zone() *pcb.Zone               { return z.zone }
func (z *ZoneItem) Kind() connectivity.Kind       { return connectivity.KindZone }
func (z *ZoneItem) IsOnCopperLayer() bool         { return z.layers != 0 }
func (z *ZoneItem) Layers() connectivity.LayerSet { return z.layers }
func (z *ZoneItem) NetCode() int                  { return netCode(z.zone.Net) }
func (z *ZoneItem) SetNetCode(code int)           { z.zone.Net = z.adapter.net(code) }
func (z *ZoneItem) CanChangeNet() bool            { return false }
func (z *ZoneItem) Anchors() []geom.Point         { return nil }

// FilledPolygons returns the fill islands on layer, in file order.
func (z *ZoneItem) FilledPolygons(layer connectivity.LayerID) []*geom.Polygon {
	return z.fills[layer]
}

func (z *ZoneItem) EffectiveShape(layer connectivity.LayerID, _ connectivity.Flashing) geom.Shape {
	polys := z.fills[layer]
	if len(polys) == 0 {
		return nil
	}
	out := make(geom.Compound, len(polys))
	for i, p := range polys {
		out[i] = p
	}
	return out
}

func (z *ZoneItem) String() string {
	name := z.zone.Name
	if name == "" {
		name = z.zone.NetName
	}
	return fmt.Sprintf("zone %q", name)
}

// isEndLayer reports whether layer is the outermost layer of span on either
// side.
func isEndLayer(span connectivity.LayerSet, layer connectivity.LayerID) bool {
	ls := span.Layers()
	return len(ls) > 0 && (layer == ls[0] || layer == ls[len(ls)-1])
}

// Package pcbconn exposes a parsed KiCad board to the connectivity engine.
//
// Every copper object of a pcb.Board is wrapped in an item implementing
// connectivity.BoardItem. Items point into the board, so nets written by
// connectivity.Algorithm.PropagateNets land in the board model.
package pcbconn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
)

// ErrTooManyLayers is returned for boards with more copper layers than a
// connectivity.LayerSet holds.
var ErrTooManyLayers = errors.New("pcbconn: too many copper layers")

// Options tune how board objects are turned into shapes.
type Options struct {
	// MaxArcSegment bounds the chord length used to approximate arcs and
	// circles, in mm (default: 0.1).
	MaxArcSegment float64
}

// Adapter holds the connectivity view of one board.
type Adapter struct {
	board *pcb.Board
	opts  Options

	stack  []string
	layers map[string]connectivity.LayerID

	Footprints []*FootprintRef
	Pads       []*PadItem
	Tracks     []*TrackItem
	Arcs       []*ArcItem
	Vias       []*ViaItem
	Shapes     []*ShapeItem
	Zones      []*ZoneItem
}

// New wraps every copper object of board. A nil opts uses defaults.
func New(board *pcb.Board, opts *Options) (*Adapter, error) {
	if board == nil {
		return nil, errors.New("pcbconn: nil board")
	}
	a := &Adapter{board: board, layers: make(map[string]connectivity.LayerID)}
	if opts != nil {
		a.opts = *opts
	}
	if a.opts.MaxArcSegment <= 0 {
		a.opts.MaxArcSegment = 0.1
	}

	a.stack = board.LayerMap().CopperStack()
	if len(a.stack) == 0 {
		// Boards without a layer table are two-layer boards.
		a.stack = []string{"F.Cu", "B.Cu"}
	}
	if len(a.stack) > connectivity.MaxCopperLayers {
		return nil, fmt.Errorf("%w: %d", ErrTooManyLayers, len(a.stack))
	}
	for i, name := range a.stack {
		a.layers[name] = connectivity.LayerID(i)
	}

	for i := range board.Footprints {
		fp := &board.Footprints[i]
		ref := &FootprintRef{fp: fp}
		a.Footprints = append(a.Footprints, ref)
		for j := range fp.Pads {
			a.Pads = append(a.Pads, a.newPad(ref, &fp.Pads[j]))
		}
	}
	for i := range board.Tracks {
		t := &board.Tracks[i]
		a.Tracks = append(a.Tracks, &TrackItem{adapter: a, track: t, layers: a.layerSet(pcb.LayerSet{t.Layer})})
	}
	for i := range board.Arcs {
		arc := &board.Arcs[i]
		a.Arcs = append(a.Arcs, &ArcItem{adapter: a, arc: arc, layers: a.layerSet(pcb.LayerSet{arc.Layer})})
	}
	for i := range board.Vias {
		a.Vias = append(a.Vias, a.newVia(&board.Vias[i]))
	}
	a.addShapes(&board.Graphics)
	for i := range board.Zones {
		a.Zones = append(a.Zones, a.newZone(&board.Zones[i]))
	}
	return a, nil
}

// Board returns the wrapped board.
func (a *Adapter) Board() *pcb.Board { return a.board }

// CopperLayers returns the set of the board's copper layers.
func (a *Adapter) CopperLayers() connectivity.LayerSet {
	return connectivity.CopperLayers(len(a.stack))
}

// LayerID returns the engine layer of a copper layer name.
func (a *Adapter) LayerID(name string) (connectivity.LayerID, bool) {
	id, ok := a.layers[name]
	return id, ok
}

// LayerName returns the copper layer name of an engine layer.
func (a *Adapter) LayerName(id connectivity.LayerID) string {
	if int(id) < 0 || int(id) >= len(a.stack) {
		return fmt.Sprintf("layer%d", id)
	}
	return a.stack[id]
}

// NetName names a net code, for reports.
func (a *Adapter) NetName(code int) string {
	return a.board.NetName(code)
}

// Items returns every wrapped object: zones first, then tracks, arcs, vias
// and shapes, then pads.
func (a *Adapter) Items() []connectivity.BoardItem {
	out := make([]connectivity.BoardItem, 0,
		len(a.Zones)+len(a.Tracks)+len(a.Arcs)+len(a.Vias)+len(a.Shapes)+len(a.Pads))
	for _, z := range a.Zones {
		out = append(out, z)
	}
	for _, t := range a.Tracks {
		out = append(out, t)
	}
	for _, arc := range a.Arcs {
		out = append(out, arc)
	}
	for _, v := range a.Vias {
		out = append(out, v)
	}
	for _, s := range a.Shapes {
		out = append(out, s)
	}
	for _, p := range a.Pads {
		out = append(out, p)
	}
	return out
}

// layerSet resolves layer names, wildcards included, to engine layers.
// Non-copper names are ignored.
func (a *Adapter) layerSet(names pcb.LayerSet) connectivity.LayerSet {
	var s connectivity.LayerSet
	for _, name := range names {
		switch name {
		case "*.Cu":
			return a.CopperLayers()
		case "F&B.Cu":
			s |= connectivity.NewLayerSet(0, connectivity.LayerID(len(a.stack)-1))
			continue
		}
		if id, ok := a.layers[name]; ok {
			s |= connectivity.NewLayerSet(id)
		}
	}
	return s
}

// span returns every copper layer between two named layers, inclusive.
func (a *Adapter) span(from, to string) connectivity.LayerSet {
	i, ok1 := a.layers[from]
	j, ok2 := a.layers[to]
	if !ok1 || !ok2 {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	var s connectivity.LayerSet
	for l := i; l <= j; l++ {
		s |= connectivity.NewLayerSet(l)
	}
	return s
}

// netCode returns the code of net, 0 for none.
func netCode(net *pcb.Net) int {
	if net == nil {
		return 0
	}
	return net.Number
}

// net resolves a code to the board's net, creating a detached one for codes
// missing from the net table.
func (a *Adapter) net(code int) *pcb.Net {
	if code <= 0 {
		if n, ok := a.board.NetMap().GetByNumber(0); ok {
			return n
		}
		return nil
	}
	if n, ok := a.board.NetMap().GetByNumber(code); ok {
		return n
	}
	return &pcb.Net{Number: code}
}

func pt(p pcb.Position) geom.Point {
	return geom.Pt(p.X, p.Y)
}

// Describe returns a short human-readable label for an item.
func Describe(item connectivity.BoardItem) string {
	if s, ok := item.(fmt.Stringer); ok {
		return s.String()
	}
	return strings.ToLower(item.Kind().String())
}

package pcb

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Position is a board coordinate in millimetres, Y pointing down.
type Position struct {
	X float64
	Y float64
}

// Angle is a rotation in degrees, counter-clockwise on screen.
type Angle float64

// PositionAngle is a position with a rotation, as written by (at x y [angle]).
type PositionAngle struct {
	Position
	Angle Angle
}

// Rotate returns p rotated by a degrees about the origin, in KiCad's
// Y-down convention.
func (p Position) Rotate(a Angle) Position {
	if a == 0 {
		return p
	}
	rad := -float64(a) * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	return Position{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// Size is a width and height in millimetres.
type Size struct {
	Width  float64
	Height float64
}

// Stroke is the outline of a graphic shape.
type Stroke struct {
	Width float64 // mm
	Type  string  // solid, dash, ...
}

// Fill tells whether a closed graphic shape is filled.
type Fill struct {
	Type string // none, solid
}

// Filled reports whether the shape covers its interior.
func (f Fill) Filled() bool {
	return f.Type == "solid" || f.Type == "yes"
}

// BoundingBox is an axis-aligned rectangle.
type BoundingBox struct {
	Min Position
	Max Position
}

// NewBoundingBox returns an empty box that any Expand call initializes.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = min(bb.Min.X, pos.X)
	bb.Min.Y = min(bb.Min.Y, pos.Y)
	bb.Max.X = max(bb.Max.X, pos.X)
	bb.Max.Y = max(bb.Max.Y, pos.Y)
}

// ExpandBox grows bb to cover other.
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

func (bb BoundingBox) Width() float64  { return bb.Max.X - bb.Min.X }
func (bb BoundingBox) Height() float64 { return bb.Max.Y - bb.Min.Y }

// Layer is an entry of the board's (layers ...) section.
type Layer struct {
	Number int    // ordinal in the file
	Name   string // e.g. "F.Cu", "In1.Cu", "F.SilkS"
	Type   string // signal, power, mixed, jumper, user
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool {
	return strings.HasSuffix(l.Name, ".Cu")
}

// Net is an electrical net. Number 0 is the unconnected net.
type Net struct {
	Number int
	Name   string
}

// LayerSet is a list of layer names, possibly with wildcards such as "*.Cu".
type LayerSet []string

// LayerMap indexes layers by number and name and orders the copper stack.
type LayerMap struct {
	byNumber map[int]*Layer
	byName   map[string]*Layer
	copper   []string
}

// NewLayerMap indexes layers.
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*Layer),
		byName:   make(map[string]*Layer),
	}
	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
		if layer.IsCopper() {
			lm.copper = append(lm.copper, layer.Name)
		}
	}
	sort.SliceStable(lm.copper, func(i, j int) bool {
		return copperRank(lm.copper[i]) < copperRank(lm.copper[j])
	})
	return lm
}

// copperRank orders F.Cu first, then In1.Cu..InN.Cu, then B.Cu. Layer
// ordinals cannot be used since their meaning changed between versions.
func copperRank(name string) int {
	switch name {
	case "F.Cu":
		return 0
	case "B.Cu":
		return math.MaxInt
	}
	if n, ok := strings.CutPrefix(name, "In"); ok {
		if i, err := strconv.Atoi(strings.TrimSuffix(n, ".Cu")); err == nil {
			return i
		}
	}
	return math.MaxInt - 1
}

func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

func (lm *LayerMap) GetByNumber(num int) (*Layer, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// IsCopperLayer reports whether name is a copper layer of the board.
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.byName[name]
	return ok && layer.IsCopper()
}

// CopperStack returns the copper layer names from front to back.
func (lm *LayerMap) CopperStack() []string {
	return lm.copper
}

// NetMap indexes nets by number and name.
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap indexes nets. The map points into the given slice.
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}
	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}
	return nm
}

func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// IsUnconnected reports whether num is KiCad's reserved unconnected net.
func (nm *NetMap) IsUnconnected(num int) bool {
	return num == 0
}

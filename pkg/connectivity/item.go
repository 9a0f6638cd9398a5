package connectivity

import (
	"math/bits"
	"slices"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/dhconnelly/rtreego"
)

// LayerID identifies a copper layer, 0 being the front copper.
type LayerID int

// MaxCopperLayers is the number of copper layers a LayerSet can hold.
const MaxCopperLayers = 64

// LayerSet is a bit mask of copper layers.
type LayerSet uint64

// NewLayerSet returns the set holding the given layers.
func NewLayerSet(layers ...LayerID) LayerSet {
	var s LayerSet
	for _, l := range layers {
		if l >= 0 && l < MaxCopperLayers {
			s |= 1 << uint(l)
		}
	}
	return s
}

// CopperLayers returns the set of the first n copper layers.
func CopperLayers(n int) LayerSet {
	if n >= MaxCopperLayers {
		return ^LayerSet(0)
	}
	if n <= 0 {
		return 0
	}
	return LayerSet(1)<<uint(n) - 1
}

// Has reports whether l is in the set.
func (s LayerSet) Has(l LayerID) bool {
	return l >= 0 && l < MaxCopperLayers && s&(1<<uint(l)) != 0
}

// Count returns the number of layers in the set.
func (s LayerSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Layers returns the layers in ascending order.
func (s LayerSet) Layers() []LayerID {
	out := make([]LayerID, 0, s.Count())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, LayerID(bits.TrailingZeros64(v)))
	}
	return out
}

// Kind is the closed set of board object kinds the engine understands.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPad
	KindTrack
	KindArc
	KindVia
	KindShape
	// KindZone is reported by host zones; the engine splits each zone into
	// KindZoneLayer items, one per filled island per layer.
	KindZone
	KindZoneLayer
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindTrack:
		return "track"
	case KindArc:
		return "arc"
	case KindVia:
		return "via"
	case KindShape:
		return "shape"
	case KindZone:
		return "zone"
	case KindZoneLayer:
		return "zone-layer"
	default:
		return "unsupported"
	}
}

// Flashing selects which copper of a pad or via an effective shape covers.
type Flashing int

const (
	// FlashDefault lets the item decide; used for items without flashing.
	FlashDefault Flashing = iota
	// FlashAlways returns the full pad or annular ring.
	FlashAlways
	// FlashNever returns only the plated hole.
	FlashNever
)

// ZoneLayerOverride is a per-layer zone connection override on a pad or via.
type ZoneLayerOverride int

const (
	ZoneOverrideNone ZoneLayerOverride = iota
	ZoneOverrideForceFlashed
	ZoneOverrideNoConnection
)

// BoardItem is a host board object taking part in connectivity. Items are
// compared by identity, so implementations must be comparable, usually
// pointers.
type BoardItem interface {
	Kind() Kind
	IsOnCopperLayer() bool
	Layers() LayerSet
	NetCode() int
	SetNetCode(net int)
	CanChangeNet() bool
	// EffectiveShape returns the copper on one layer, or nil if the item has
	// none there.
	EffectiveShape(layer LayerID, flash Flashing) geom.Shape
	// Anchors are representative connection points, such as pad centres or
	// track ends.
	Anchors() []geom.Point
}

// FlashedItem is implemented by pads and vias.
type FlashedItem interface {
	ConditionallyFlashed(layer LayerID) bool
	ZoneLayerOverride(layer LayerID) ZoneLayerOverride
	IsBackdrilled(layer LayerID) bool
}

// Footprint is the parent of a set of pads.
type Footprint interface {
	DuplicatePadNumbersAreJumpers() bool
	JumperPadGroups() [][]string
}

// Pad is a footprint pad.
type Pad interface {
	BoardItem
	FlashedItem
	Footprint() Footprint
	Number() string
}

// Via is a plated through or blind via.
type Via interface {
	BoardItem
	FlashedItem
	// IsFree reports whether the via is free-standing, so a zone it sits
	// in may hand it its net.
	IsFree() bool
}

// Zone is a filled copper zone.
type Zone interface {
	BoardItem
	// FilledPolygons returns one polygon per filled island on the layer. The
	// island index reported by FillIsolatedIslandsMap is the position in this
	// slice.
	FilledPolygons(layer LayerID) []*geom.Polygon
}

// Handle addresses an Item in the engine's arena. Handles are never reused
// within one engine, so ordering by handle is ordering by insertion.
type Handle uint32

// Item is the engine's view of one electrical primitive: a pad, track, arc,
// via, copper shape, or one filled island of a zone on one layer.
type Item struct {
	handle    Handle
	kind      Kind
	parent    BoardItem
	layers    LayerSet
	bbox      geom.Box
	rect      rtreego.Rect
	anchors   []geom.Point
	connected []Handle
	valid     bool
	dirty     bool

	// Kind payload: pad for KindPad, via for KindVia, island for
	// KindZoneLayer.
	pad    Pad
	via    Via
	island *zoneIsland
}

type zoneIsland struct {
	zone  Zone
	layer LayerID
	index int
	poly  *geom.Polygon
}

// Bounds implements rtreego.Spatial.
func (it *Item) Bounds() rtreego.Rect {
	return it.rect
}

func (it *Item) Handle() Handle           { return it.handle }
func (it *Item) Kind() Kind               { return it.kind }
func (it *Item) Parent() BoardItem        { return it.parent }
func (it *Item) Layers() LayerSet         { return it.layers }
func (it *Item) BBox() geom.Box           { return it.bbox }
func (it *Item) Anchors() []geom.Point    { return it.anchors }
func (it *Item) Valid() bool              { return it.valid }
func (it *Item) Dirty() bool              { return it.dirty }
func (it *Item) ConnectionCount() int     { return len(it.connected) }
func (it *Item) Connected() []Handle      { return slices.Clone(it.connected) }
func (it *Item) connectedTo(h Handle) bool { return slices.Contains(it.connected, h) }

// Net returns the current net code of the owning board object.
func (it *Item) Net() int {
	return it.parent.NetCode()
}

// CanChangeNet reports whether propagation may rewrite the item's net.
// Zone islands never change net.
func (it *Item) CanChangeNet() bool {
	if it.kind == KindZoneLayer {
		return false
	}
	return it.parent.CanChangeNet()
}

// Island returns the zone layer and island index of a KindZoneLayer item.
func (it *Item) Island() (LayerID, int, bool) {
	if it.island == nil {
		return 0, 0, false
	}
	return it.island.layer, it.island.index, true
}

func (it *Item) flashed() FlashedItem {
	switch it.kind {
	case KindPad:
		return it.pad
	case KindVia:
		return it.via
	}
	return nil
}

// shape returns the item's copper on layer, honoring conditional flashing.
func (it *Item) shape(layer LayerID) geom.Shape {
	flash := FlashDefault
	if f := it.flashed(); f != nil {
		flash = FlashAlways
		if f.ConditionallyFlashed(layer) {
			flash = FlashNever
		}
	}
	return it.parent.EffectiveShape(layer, flash)
}

func (it *Item) connect(h Handle) {
	if h != it.handle && !it.connectedTo(h) {
		it.connected = append(it.connected, h)
	}
}

func (it *Item) disconnect(h Handle) {
	if i := slices.Index(it.connected, h); i >= 0 {
		it.connected = slices.Delete(it.connected, i, i+1)
	}
}

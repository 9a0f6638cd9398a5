package pcb

// Board is a parsed KiCad PCB.
type Board struct {
	Version    int         // File format version
	Generator  string      // e.g. "pcbnew"
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Graphics   Graphics    // Board-level graphics
	Tracks     []Track     // Straight track segments
	Arcs       []Arc       // Arc tracks
	Vias       []Via       // Vias
	Zones      []Zone      // Copper zones with their fills

	nets   *NetMap
	layers *LayerMap
}

// General contains general board properties.
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string
	Date      string
	Revision  string
	Company   string
}

// Footprint is a placed component.
type Footprint struct {
	Library   string
	Name      string
	Layer     string        // F.Cu or B.Cu
	Position  PositionAngle // Placement
	Pads      []Pad
	Reference string // e.g. "R1"
	Value     string
	Locked    bool

	// ZoneConnect is the default pad zone connection, -1 when unset.
	ZoneConnect int

	// DuplicatePadNumbersAreJumpers makes pads sharing a number one node.
	DuplicatePadNumbersAreJumpers bool
	// JumperPadGroups lists pad numbers that are internally connected.
	JumperPadGroups [][]string
}

// Pad zone connection modes, as written by (zone_connect n).
const (
	ZoneConnectInherit = -1
	ZoneConnectNone    = 0
	ZoneConnectThermal = 1
	ZoneConnectSolid   = 2
	ZoneConnectTHT     = 3
)

// Pad is a footprint pad. Position is absolute; its Angle is the pad's
// absolute rotation.
type Pad struct {
	Number   string        // Pad number, may be empty
	Type     string        // thru_hole, smd, connect, np_thru_hole
	Shape    string        // circle, rect, oval, roundrect, trapezoid, custom
	Position PositionAngle // Absolute position and rotation
	Size     Size
	Drill    Size    // Drill size; Width == Height for round holes
	Offset   Position // Shape offset from the drill, in pad coordinates
	Layers   LayerSet
	Net      *Net

	ZoneConnect        int
	RemoveUnusedLayers bool
	KeepEndLayers      bool
}

// HasHole reports whether the pad is drilled.
func (p *Pad) HasHole() bool {
	return p.Drill.Width > 0 || p.Type == "thru_hole" || p.Type == "np_thru_hole"
}

// Track is a straight copper segment.
type Track struct {
	Start  Position
	End    Position
	Width  float64 // mm
	Layer  string
	Net    *Net
	Locked bool
}

// Arc is a circular copper track through Start, Mid and End.
type Arc struct {
	Start  Position
	Mid    Position
	End    Position
	Width  float64
	Layer  string
	Net    *Net
	Locked bool
}

// Via is a plated hole between two copper layers.
type Via struct {
	Type     string // through, blind, buried or micro
	Position Position
	Size     float64 // Annular diameter
	Drill    float64 // Drill diameter
	Layers   LayerSet
	Net      *Net
	Locked   bool

	// Free vias keep their net when the router moves tracks around them.
	Free               bool
	RemoveUnusedLayers bool
	KeepEndLayers      bool
}

// Zone is a copper zone. A zone may span several layers; each filled
// polygon is one island on one layer.
type Zone struct {
	Net      *Net
	NetName  string
	Name     string
	Layers   LayerSet
	Priority int
	Outline  []Position
	Fills    []ZoneFill
}

// ZoneFill is one filled island of a zone.
type ZoneFill struct {
	Layer  string
	Island bool // marked as an island by the last fill
	Points []Position
}

// FilledPolygons returns the islands of the zone on layer, in file order.
func (z *Zone) FilledPolygons(layer string) [][]Position {
	var out [][]Position
	for _, f := range z.Fills {
		if f.Layer == layer {
			out = append(out, f.Points)
		}
	}
	return out
}

// NetMap returns the board's net index.
func (b *Board) NetMap() *NetMap {
	if b.nets == nil {
		b.nets = NewNetMap(b.Nets)
	}
	return b.nets
}

// LayerMap returns the board's layer index.
func (b *Board) LayerMap() *LayerMap {
	if b.layers == nil {
		b.layers = NewLayerMap(b.Layers)
	}
	return b.layers
}

// GetNet returns a net by name, or nil if not found.
func (b *Board) GetNet(name string) *Net {
	net, _ := b.NetMap().GetByName(name)
	return net
}

// NetInfo lists the copper of one net.
type NetInfo struct {
	Net    *Net
	Pads   []Pad
	Tracks []Track
	Arcs   []Arc
	Vias   []Via
	Zones  []Zone
}

// GetNetInfo returns everything on the named net, or nil for an unknown
// net.
func (b *Board) GetNetInfo(netName string) *NetInfo {
	net := b.GetNet(netName)
	if net == nil {
		return nil
	}
	on := func(n *Net) bool { return n != nil && n.Number == net.Number }

	info := &NetInfo{Net: net}
	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			if on(pad.Net) {
				info.Pads = append(info.Pads, pad)
			}
		}
	}
	for _, t := range b.Tracks {
		if on(t.Net) {
			info.Tracks = append(info.Tracks, t)
		}
	}
	for _, a := range b.Arcs {
		if on(a.Net) {
			info.Arcs = append(info.Arcs, a)
		}
	}
	for _, v := range b.Vias {
		if on(v.Net) {
			info.Vias = append(info.Vias, v)
		}
	}
	for _, z := range b.Zones {
		if on(z.Net) {
			info.Zones = append(info.Zones, z)
		}
	}
	return info
}

// NetName returns the name of net number num, or "" if unknown.
func (b *Board) NetName(num int) string {
	if net, ok := b.NetMap().GetByNumber(num); ok {
		return net.Name
	}
	return ""
}

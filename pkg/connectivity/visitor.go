package connectivity

import (
	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
)

// netAdoption records a free via taking the net of the zone it sits in.
type netAdoption struct {
	via Handle
	net int
}

// visitor runs the collision test between one dirty item and each of its
// spatial neighbours. It only reads the item graph; the links it finds are
// applied by the orchestrator once the pass is over.
type visitor struct {
	item    *Item
	enabled LayerSet
	links   []Handle
	adopt   []netAdoption
}

func newVisitor(it *Item, enabled LayerSet) *visitor {
	return &visitor{item: it, enabled: enabled}
}

func (v *visitor) visit(cand *Item) {
	it := v.item
	if !it.valid || !cand.valid {
		return
	}
	// When both are dirty the lower handle's task tests the pair.
	if cand.dirty && cand.handle < it.handle {
		return
	}
	if cand.parent == it.parent || it.connectedTo(cand.handle) {
		return
	}
	if !it.CanChangeNet() && !cand.CanChangeNet() && it.Net() != cand.Net() {
		return
	}

	var hit bool
	switch {
	case it.kind == KindZoneLayer && cand.kind == KindZoneLayer:
		hit = zonesConnect(it, cand)
	case it.kind == KindZoneLayer:
		hit = v.zoneConnects(it, cand)
	case cand.kind == KindZoneLayer:
		hit = v.zoneConnects(cand, it)
	default:
		hit = v.itemsConnect(it, cand)
	}
	if !hit {
		return
	}

	v.links = append(v.links, cand.handle)

	switch {
	case it.kind == KindZoneLayer && cand.kind == KindVia:
		v.adoptZoneNet(it, cand)
	case cand.kind == KindZoneLayer && it.kind == KindVia:
		v.adoptZoneNet(cand, it)
	}
}

// zonesConnect reports whether two islands on the same layer touch: either
// outline holds a vertex of the other.
func zonesConnect(a, b *Item) bool {
	if a.island.layer != b.island.layer || !a.bbox.Intersects(b.bbox) {
		return false
	}
	pa, pb := a.island.poly, b.island.poly
	for _, p := range pa.Points {
		if b.bbox.Contains(p) && pb.Contains(p) {
			return true
		}
	}
	for _, p := range pb.Points {
		if a.bbox.Contains(p) && pa.Contains(p) {
			return true
		}
	}
	return false
}

// zoneConnects reports whether item o connects to zone island z.
func (v *visitor) zoneConnects(z, o *Item) bool {
	layer := z.island.layer
	if !o.layers.Has(layer) || !v.enabled.Has(layer) {
		return false
	}
	if !z.bbox.Intersects(o.bbox) {
		return false
	}

	f := o.flashed()
	if f != nil {
		if f.ZoneLayerOverride(layer) == ZoneOverrideNoConnection || f.IsBackdrilled(layer) {
			return false
		}
	}

	poly := z.island.poly
	for _, p := range o.anchors {
		if poly.Contains(p) {
			return true
		}
	}
	if f != nil {
		return geom.Collide(poly, o.parent.EffectiveShape(layer, FlashAlways))
	}
	return false
}

// itemsConnect compares two non-zone items layer by layer.
func (v *visitor) itemsConnect(a, b *Item) bool {
	common := a.layers & b.layers & v.enabled
	if common == 0 || !a.bbox.Intersects(b.bbox) {
		return false
	}
	for _, layer := range common.Layers() {
		if geom.Collide(a.shape(layer), b.shape(layer)) {
			return true
		}
	}
	return false
}

func (v *visitor) adoptZoneNet(z, via *Item) {
	net := z.Net()
	if net <= 0 || !via.CanChangeNet() || via.Net() == net {
		return
	}
	if !via.via.IsFree() && via.Net() > 0 {
		return
	}
	v.adopt = append(v.adopt, netAdoption{via: via.handle, net: net})
}

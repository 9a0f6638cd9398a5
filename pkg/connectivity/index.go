package connectivity

import (
	"github.com/dhconnelly/rtreego"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// itemList is the item arena plus one R-tree per copper layer.
//
// Thread Safety:
//
//	Not safe for concurrent mutation. During a search pass the list is only
//	read by worker tasks; all mutation happens on the orchestrating goroutine.
type itemList struct {
	items  []*Item
	trees  [MaxCopperLayers]*rtreego.Rtree
	live   int
	dirty  bool
	minBox float64
}

func newItemList(minBox float64) *itemList {
	return &itemList{minBox: minBox}
}

// add assigns the next handle to it and indexes it under every layer it
// occupies.
func (l *itemList) add(it *Item) Handle {
	it.handle = Handle(len(l.items))
	it.valid = true
	it.dirty = true
	it.rect = l.rectFor(it)

	l.items = append(l.items, it)
	l.live++
	for _, layer := range it.layers.Layers() {
		if l.trees[layer] == nil {
			l.trees[layer] = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren)
		}
		l.trees[layer].Insert(it)
	}
	l.dirty = true
	return it.handle
}

func (l *itemList) rectFor(it *Item) rtreego.Rect {
	// rtreego treats touching rectangles as disjoint, so pad by minBox on
	// every side.
	w := it.bbox.Width() + 2*l.minBox
	h := it.bbox.Height() + 2*l.minBox
	origin := rtreego.Point{it.bbox.Min.X - l.minBox, it.bbox.Min.Y - l.minBox}
	r, err := rtreego.NewRect(origin, []float64{w, h})
	if err != nil {
		// Only reachable with NaN coordinates; index a unit box at the origin
		// so the item is still tracked.
		r, _ = rtreego.NewRect(rtreego.Point{0, 0}, []float64{l.minBox, l.minBox})
	}
	return r
}

// get returns the item for h, or nil once it has been swept.
func (l *itemList) get(h Handle) *Item {
	if int(h) >= len(l.items) {
		return nil
	}
	return l.items[h]
}

// invalidate marks it for removal by the next sweep.
func (l *itemList) invalidate(it *Item) {
	if it.valid {
		it.valid = false
		l.dirty = true
	}
}

// removeInvalidItems drops invalid items from every layer tree, severs
// their links and frees their arena slots. It returns the swept items.
func (l *itemList) removeInvalidItems() []*Item {
	var garbage []*Item
	for i, it := range l.items {
		if it == nil || it.valid {
			continue
		}
		for _, layer := range it.layers.Layers() {
			if t := l.trees[layer]; t != nil {
				t.Delete(it)
			}
		}
		for _, h := range it.connected {
			if n := l.get(h); n != nil {
				n.disconnect(it.handle)
			}
		}
		it.connected = nil
		l.items[i] = nil
		l.live--
		garbage = append(garbage, it)
	}
	return garbage
}

// findNearby calls fn once for every indexed item, other than it, whose box
// intersects its box on a layer it occupies.
func (l *itemList) findNearby(it *Item, fn func(*Item)) {
	layers := it.layers.Layers()
	var seen map[Handle]struct{}
	if len(layers) > 1 {
		seen = make(map[Handle]struct{})
	}

	for _, layer := range layers {
		t := l.trees[layer]
		if t == nil || t.Size() == 0 {
			continue
		}
		for _, s := range t.SearchIntersect(it.rect) {
			cand := s.(*Item)
			if cand == it {
				continue
			}
			if seen != nil {
				if _, ok := seen[cand.handle]; ok {
					continue
				}
				seen[cand.handle] = struct{}{}
			}
			fn(cand)
		}
	}
}

// dirtyItems returns valid dirty items in handle order.
func (l *itemList) dirtyItems() []*Item {
	var out []*Item
	for _, it := range l.items {
		if it != nil && it.valid && it.dirty {
			out = append(out, it)
		}
	}
	return out
}

// isDirty reports whether anything was added or removed since the last
// complete search pass.
func (l *itemList) isDirty() bool {
	return l.dirty
}

// count returns the number of items in the arena, valid or not.
func (l *itemList) count() int {
	return l.live
}

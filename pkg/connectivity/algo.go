package connectivity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/bits-and-blooms/bitset"
)

// Algorithm is the connectivity engine. It owns the item arena and spatial
// index, keeps the link graph current, and answers clustering and
// propagation queries.
//
// Thread Safety:
//
//	Add, Remove, Build and Clear must not run concurrently with each other
//	or with a query. Search passes are serialized by an internal mutex.
type Algorithm struct {
	cfg      *Config
	exec     Executor
	logger   *slog.Logger
	reporter ProgressReporter

	searchMu sync.Mutex

	list      *itemList
	groups    map[BoardItem][]Handle
	dirtyNets *bitset.BitSet
	enabled   LayerSet
	global    *Algorithm

	// adoptions are zone nets found for vias by search passes, applied by
	// the next query.
	adoptions []netAdoption
}

// New creates an engine that runs search tasks on exec. A nil cfg uses
// DefaultConfig.
func New(exec Executor, cfg *Config) (*Algorithm, error) {
	if exec == nil {
		return nil, ErrNilExecutor
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Algorithm{
		cfg:     cfg,
		exec:    exec,
		logger:  cfg.Logger,
		enabled: ^LayerSet(0),
	}
	a.Clear()
	return a, nil
}

// Clear drops every item, link and dirty net. The enabled layers and the
// progress reporter are kept.
func (a *Algorithm) Clear() {
	a.list = newItemList(a.cfg.MinBoxSize)
	a.groups = make(map[BoardItem][]Handle)
	a.dirtyNets = newDirtyNets()
	a.global = nil
	a.adoptions = nil
}

// SetProgressReporter installs r for later Build and search passes. A nil
// reporter disables reporting.
func (a *Algorithm) SetProgressReporter(r ProgressReporter) {
	a.reporter = r
}

// SetEnabledLayers restricts collision tests to the given copper layers.
// All layers are enabled by default.
func (a *Algorithm) SetEnabledLayers(layers LayerSet) {
	a.enabled = layers
}

// ItemCount returns the number of items in the arena, including removed
// items not yet swept.
func (a *Algorithm) ItemCount() int {
	return a.list.count()
}

// Items returns the engine items spawned by a board object, or nil if it is
// not present.
func (a *Algorithm) Items(item BoardItem) []*Item {
	hs, ok := a.groups[item]
	if !ok {
		return nil
	}
	out := make([]*Item, 0, len(hs))
	for _, h := range hs {
		if it := a.list.get(h); it != nil && it.valid {
			out = append(out, it)
		}
	}
	return out
}

// Item returns the item for h, or nil if it was swept.
func (a *Algorithm) Item(h Handle) *Item {
	return a.list.get(h)
}

// Add inserts a board object. It returns false for unsupported kinds, items
// off copper, and items without geometry, zones without a usable island
// included. Adding an object already present
// replaces its items.
func (a *Algorithm) Add(item BoardItem) bool {
	if item == nil || !item.IsOnCopperLayer() {
		return false
	}

	var handles []Handle
	switch item.Kind() {
	case KindPad:
		p, ok := item.(Pad)
		if !ok {
			return false
		}
		it := a.newItem(item, KindPad)
		if it == nil {
			return false
		}
		it.pad = p
		a.replace(item)
		handles = append(handles, a.list.add(it))

	case KindVia:
		v, ok := item.(Via)
		if !ok {
			return false
		}
		it := a.newItem(item, KindVia)
		if it == nil {
			return false
		}
		it.via = v
		a.replace(item)
		handles = append(handles, a.list.add(it))

	case KindTrack, KindArc, KindShape:
		it := a.newItem(item, item.Kind())
		if it == nil {
			return false
		}
		a.replace(item)
		handles = append(handles, a.list.add(it))

	case KindZone:
		z, ok := item.(Zone)
		if !ok {
			return false
		}
		a.replace(item)
		if handles = a.addZone(z); len(handles) == 0 {
			return false
		}

	default:
		return false
	}

	a.groups[item] = handles
	a.MarkNetAsDirty(item.NetCode())
	return true
}

// replace invalidates the items of an object that is being added again.
func (a *Algorithm) replace(item BoardItem) {
	if _, ok := a.groups[item]; ok {
		a.Remove(item)
	}
}

// Remove invalidates every item spawned by a board object. It returns false
// if the object is not present.
func (a *Algorithm) Remove(item BoardItem) bool {
	hs, ok := a.groups[item]
	if !ok {
		return false
	}
	for _, h := range hs {
		if it := a.list.get(h); it != nil {
			a.list.invalidate(it)
		}
	}
	delete(a.groups, item)
	a.list.dirty = true
	a.MarkNetAsDirty(item.NetCode())
	return true
}

// newItem wraps a non-zone object. The box covers the always-flashed shape
// on every layer plus the anchors.
func (a *Algorithm) newItem(parent BoardItem, kind Kind) *Item {
	layers := parent.Layers()
	if layers == 0 {
		return nil
	}

	bbox := geom.NewBox()
	flash := FlashDefault
	if kind == KindPad || kind == KindVia {
		flash = FlashAlways
	}
	for _, layer := range layers.Layers() {
		if s := parent.EffectiveShape(layer, flash); s != nil {
			bbox = bbox.Union(s.BBox())
		}
	}
	anchors := parent.Anchors()
	for _, p := range anchors {
		bbox.Expand(p)
	}
	if bbox.IsEmpty() {
		return nil
	}

	return &Item{
		kind:    kind,
		parent:  parent,
		layers:  layers,
		bbox:    bbox,
		anchors: anchors,
	}
}

// addZone creates one item per non-degenerate island per layer.
func (a *Algorithm) addZone(z Zone) []Handle {
	var hs []Handle
	for _, layer := range z.Layers().Layers() {
		for i, poly := range z.FilledPolygons(layer) {
			if poly == nil || poly.IsDegenerate() {
				continue
			}
			poly.BuildCache()
			it := &Item{
				kind:   KindZoneLayer,
				parent: z,
				layers: NewLayerSet(layer),
				bbox:   poly.BBox(),
				island: &zoneIsland{zone: z, layer: layer, index: i, poly: poly},
			}
			hs = append(hs, a.list.add(it))
		}
	}
	return hs
}

// LocalBuild adds the pads, tracks, arcs, vias and shapes of a local edit to
// this engine and attaches global as a read-only fallback for lookups.
// Zones are skipped.
func (a *Algorithm) LocalBuild(global *Algorithm, items []BoardItem) {
	a.global = global
	for _, item := range items {
		switch item.Kind() {
		case KindPad, KindTrack, KindArc, KindVia, KindShape:
			a.Add(item)
		}
	}
}

// ConnectedItems returns the board objects linked to item. Objects unknown
// to this engine are looked up in the global engine attached by LocalBuild.
func (a *Algorithm) ConnectedItems(ctx context.Context, item BoardItem) ([]BoardItem, error) {
	hs, ok := a.groups[item]
	if !ok {
		if a.global != nil {
			return a.global.ConnectedItems(ctx, item)
		}
		return nil, nil
	}
	if err := a.ensureSearched(ctx); err != nil {
		return nil, err
	}
	a.applyAdoptions(nil)

	var out []BoardItem
	seen := map[BoardItem]bool{item: true}
	for _, h := range hs {
		it := a.list.get(h)
		if it == nil {
			continue
		}
		for _, c := range it.connected {
			n := a.list.get(c)
			if n == nil || !n.valid || seen[n.parent] {
				continue
			}
			seen[n.parent] = true
			out = append(out, n.parent)
		}
	}
	return out, nil
}

// ensureSearched runs a search pass if anything changed since the last one.
func (a *Algorithm) ensureSearched(ctx context.Context) error {
	if !a.list.isDirty() {
		return nil
	}
	return a.searchConnections(ctx)
}

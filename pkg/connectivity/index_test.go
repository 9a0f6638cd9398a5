package connectivity

import (
	"sort"
	"sync/atomic"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(layers LayerSet, min, max geom.Point) *Item {
	return &Item{
		kind:   KindTrack,
		layers: layers,
		bbox:   geom.BoxOf(min, max),
	}
}

func nearbyHandles(l *itemList, it *Item) []Handle {
	var out []Handle
	l.findNearby(it, func(c *Item) { out = append(out, c.handle) })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestItemListFindNearby(t *testing.T) {
	l := newItemList(1e-6)
	a := newTestItem(NewLayerSet(0, 1), geom.Pt(0, 0), geom.Pt(2, 2))
	b := newTestItem(NewLayerSet(0, 1), geom.Pt(1, 1), geom.Pt(3, 3))
	c := newTestItem(NewLayerSet(1), geom.Pt(1, 1), geom.Pt(3, 3))
	d := newTestItem(NewLayerSet(0), geom.Pt(10, 10), geom.Pt(11, 11))
	for _, it := range []*Item{a, b, c, d} {
		l.add(it)
	}

	assert.Equal(t, []Handle{1, 2}, nearbyHandles(l, a), "b once despite two shared layers")
	assert.Empty(t, nearbyHandles(l, d))
	assert.Equal(t, 4, l.count())
	assert.Len(t, l.dirtyItems(), 4)
}

func TestItemListZeroSizeBox(t *testing.T) {
	l := newItemList(1e-6)
	p := newTestItem(NewLayerSet(0), geom.Pt(1, 1), geom.Pt(1, 1))
	q := newTestItem(NewLayerSet(0), geom.Pt(0, 0), geom.Pt(2, 2))
	l.add(p)
	l.add(q)
	assert.Equal(t, []Handle{1}, nearbyHandles(l, p))
}

func TestItemListSweep(t *testing.T) {
	l := newItemList(1e-6)
	a := newTestItem(NewLayerSet(0), geom.Pt(0, 0), geom.Pt(2, 2))
	b := newTestItem(NewLayerSet(0), geom.Pt(1, 1), geom.Pt(3, 3))
	l.add(a)
	l.add(b)
	a.connect(b.handle)
	b.connect(a.handle)

	l.invalidate(b)
	assert.True(t, l.isDirty())
	assert.Equal(t, 2, l.count(), "invalid items count until swept")

	garbage := l.removeInvalidItems()
	require.Len(t, garbage, 1)
	assert.Same(t, b, garbage[0])
	assert.Nil(t, l.get(1))
	assert.Nil(t, l.get(99))
	assert.Zero(t, a.ConnectionCount())
	assert.Equal(t, 1, l.count())
	assert.Empty(t, nearbyHandles(l, a))

	// Handles are never reused.
	c := newTestItem(NewLayerSet(0), geom.Pt(0, 0), geom.Pt(1, 1))
	assert.Equal(t, Handle(2), l.add(c))
}

func TestItemConnect(t *testing.T) {
	it := &Item{handle: 3}
	it.connect(3)
	it.connect(5)
	it.connect(5)
	it.connect(7)
	assert.Equal(t, []Handle{5, 7}, it.Connected())

	it.disconnect(5)
	it.disconnect(42)
	assert.Equal(t, []Handle{7}, it.Connected())
}

func TestLayerSet(t *testing.T) {
	s := NewLayerSet(0, 5, 63)
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(4))
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, []LayerID{0, 5, 63}, s.Layers())
	assert.Equal(t, 4, CopperLayers(4).Count())
}

func TestPoolRunsEveryTask(t *testing.T) {
	pool := NewPool(3)
	var n atomic.Int64
	for range 100 {
		pool.Go(func() { n.Add(1) })
	}
	pool.Close()
	pool.Close()
	assert.Equal(t, int64(100), n.Load())
}

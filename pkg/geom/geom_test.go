package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, side float64) *Polygon {
	return Rect(Pt(x0, y0), Pt(x0+side, y0+side))
}

func TestBox(t *testing.T) {
	b := NewBox()
	assert.True(t, b.IsEmpty())
	assert.False(t, b.Intersects(BoxOf(Pt(0, 0), Pt(1, 1))))

	b.Expand(Pt(1, 2))
	b.Expand(Pt(-1, 0))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 2.0, b.Width())
	assert.Equal(t, 2.0, b.Height())
	assert.Equal(t, Pt(0, 1), b.Center())

	other := BoxOf(Pt(1, 2), Pt(3, 3))
	assert.True(t, b.Intersects(other), "touching boxes intersect")
	assert.Equal(t, BoxOf(Pt(-1, 0), Pt(3, 3)), b.Union(other))
	assert.Equal(t, b, b.Union(NewBox()))
}

func TestPolygonContains(t *testing.T) {
	sq := square(0, 0, 10)
	concave := NewPolygon([]Point{
		{0, 0}, {10, 0}, {10, 10}, {5, 5}, {0, 10},
	})

	tests := []struct {
		name string
		poly *Polygon
		pt   Point
		want bool
	}{
		{"centre", sq, Pt(5, 5), true},
		{"outside", sq, Pt(11, 5), false},
		{"on edge", sq, Pt(10, 5), true},
		{"on vertex", sq, Pt(0, 0), true},
		{"concave notch", concave, Pt(5, 8), false},
		{"concave body", concave, Pt(5, 2), true},
		{"degenerate", NewPolygon([]Point{{0, 0}, {1, 1}}), Pt(0, 0), false},
		{"collinear", NewPolygon([]Point{{0, 0}, {1, 1}, {2, 2}}), Pt(1, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.poly.Contains(tt.pt))

			// The edge cache must not change the answer.
			cached := NewPolygon(tt.poly.Points)
			cached.BuildCache()
			assert.Equal(t, tt.want, cached.Contains(tt.pt), "cached")
		})
	}
}

func TestPolygonClosingPointDropped(t *testing.T) {
	p := NewPolygon([]Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	assert.Len(t, p.Points, 3)
	assert.InDelta(t, 0.5, p.Area(), 1e-12)
}

func TestBuildCache(t *testing.T) {
	p := square(0, 0, 1)
	assert.False(t, p.HasCache())
	p.BuildCache()
	assert.True(t, p.HasCache())

	d := NewPolygon([]Point{{0, 0}, {1, 0}})
	d.BuildCache()
	assert.False(t, d.HasCache(), "degenerate outlines stay uncached")
}

func TestCollide(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want bool
	}{
		{"overlapping squares", square(-0.5, -0.5, 1), square(0, 0, 1), true},
		{"touching squares", square(0, 0, 1), square(1, 0, 1), true},
		{"separate squares", square(0, 0, 1), square(2, 0, 1), false},
		{"square inside square", square(0, 0, 10), square(4, 4, 1), true},
		{"crossing bars", Rect(Pt(0, 4), Pt(10, 6)), Rect(Pt(4, 0), Pt(6, 10)), true},
		{"circles touching", Circle(Pt(0, 0), 1), Circle(Pt(2, 0), 1), true},
		{"circles apart", Circle(Pt(0, 0), 1), Circle(Pt(2.1, 0), 1), false},
		{"track over circle", Segment(Pt(-5, 0), Pt(5, 0), 0.2), Circle(Pt(0, 0.5), 0.45), true},
		{"track misses circle", Segment(Pt(-5, 0), Pt(5, 0), 0.2), Circle(Pt(0, 1), 0.45), false},
		{"crossing tracks", Segment(Pt(-1, -1), Pt(1, 1), 0.1), Segment(Pt(-1, 1), Pt(1, -1), 0.1), true},
		{"track end in polygon", Segment(Pt(5, 5), Pt(20, 5), 0.1), square(0, 0, 10), true},
		{"track near polygon", Segment(Pt(10.05, 0), Pt(10.05, 10), 0.2), square(0, 0, 10), true},
		{"track far from polygon", Segment(Pt(11, 0), Pt(11, 10), 0.2), square(0, 0, 10), false},
		{"zero width track", Segment(Pt(0, 0), Pt(1, 0), 0), Circle(Pt(0, 0), 1), false},
		{"degenerate polygon", NewPolygon([]Point{{0, 0}, {1, 1}}), Circle(Pt(0, 0), 1), false},
		{"nil shape", nil, Circle(Pt(0, 0), 1), false},
		{"compound", Compound{Circle(Pt(10, 10), 1), Circle(Pt(0, 0), 1)}, Circle(Pt(1.5, 0), 1), true},
		{"empty compound", Compound{}, Circle(Pt(0, 0), 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collide(tt.a, tt.b), "a vs b")
			assert.Equal(t, tt.want, Collide(tt.b, tt.a), "b vs a")
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(Pt(0, 0), Pt(2, 2), Pt(0, 2), Pt(2, 0)))
	assert.True(t, SegmentsIntersect(Pt(0, 0), Pt(2, 0), Pt(1, 0), Pt(3, 0)), "collinear overlap")
	assert.True(t, SegmentsIntersect(Pt(0, 0), Pt(1, 0), Pt(1, 0), Pt(1, 1)), "shared end")
	assert.False(t, SegmentsIntersect(Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 0)), "collinear apart")
	assert.False(t, SegmentsIntersect(Pt(0, 0), Pt(1, 1), Pt(0, 1), Pt(0.4, 0.6)))
}

func TestArcThrough(t *testing.T) {
	// Quarter circle of radius 10 around the origin.
	start := Pt(10, 0)
	mid := Pt(10*math.Cos(math.Pi/4), 10*math.Sin(math.Pi/4))
	end := Pt(0, 10)

	s := ArcThrough(start, mid, end, 0.2, 0.5)
	arc, ok := s.(Compound)
	require.True(t, ok)
	require.NotEmpty(t, arc)

	first := arc[0].(Capsule)
	last := arc[len(arc)-1].(Capsule)
	assert.Equal(t, start, first.A)
	assert.Equal(t, end, last.B)

	assert.True(t, Collide(s, Circle(mid, 0.1)), "arc passes through mid")
	assert.False(t, Collide(s, Circle(Pt(0, 0), 1)), "arc avoids its centre")
	assert.False(t, Collide(s, Circle(Pt(-10, 0), 0.5)), "arc takes the short way")

	line := ArcThrough(Pt(0, 0), Pt(1, 0), Pt(2, 0), 0.2, 0.5)
	assert.Equal(t, Segment(Pt(0, 0), Pt(2, 0), 0.2), line)
}

func TestRotatedRect(t *testing.T) {
	r := RotatedRect(Pt(0, 0), 4, 2, 90)
	b := r.BBox()
	assert.InDelta(t, 2, b.Width(), 1e-9)
	assert.InDelta(t, 4, b.Height(), 1e-9)
}

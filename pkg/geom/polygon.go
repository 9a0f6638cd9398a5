package geom

import (
	"math"

	flatbush "github.com/bmharper/flatbush-go/v2"
)

// Polygon is a simple closed outline, such as one filled island of a zone.
// The closing edge from the last point back to the first is implicit.
//
// BuildCache indexes the edges in a static packed R-tree so containment and
// collision queries only visit nearby edges. Without the cache every edge is
// scanned. BuildCache must not run concurrently with queries on the same
// polygon; distinct polygons may be cached in parallel.
type Polygon struct {
	Points []Point

	bbox  Box
	edges *flatbush.Flatbush[float64]
}

// NewPolygon creates a polygon from its outline points. A repeated closing
// point is dropped.
func NewPolygon(pts []Point) *Polygon {
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return &Polygon{
		Points: pts,
		bbox:   BoxOf(pts...),
	}
}

// Rect returns the axis-aligned rectangle polygon spanning min and max.
func Rect(min, max Point) *Polygon {
	return NewPolygon([]Point{
		{X: min.X, Y: min.Y},
		{X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y},
		{X: min.X, Y: max.Y},
	})
}

// RotatedRect returns a w×h rectangle centred on c and rotated by deg.
func RotatedRect(c Point, w, h, deg float64) *Polygon {
	hw, hh := w/2, h/2
	corners := []Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	for i, p := range corners {
		corners[i] = p.Rotate(deg).Add(c)
	}
	return NewPolygon(corners)
}

// BBox returns the bounding box of the outline.
func (p *Polygon) BBox() Box {
	return p.bbox
}

// Area returns the unsigned area of the outline.
func (p *Polygon) Area() float64 {
	n := len(p.Points)
	if n < 3 {
		return 0
	}
	var a float64
	for i := range n {
		a += p.Points[i].Cross(p.Points[(i+1)%n])
	}
	return math.Abs(a) / 2
}

// IsDegenerate reports whether the outline has fewer than three points or
// encloses no area.
func (p *Polygon) IsDegenerate() bool {
	return len(p.Points) < 3 || p.Area() <= Epsilon
}

// HasCache reports whether BuildCache has run.
func (p *Polygon) HasCache() bool {
	return p.edges != nil
}

// BuildCache indexes the outline edges. Degenerate outlines are left
// uncached.
func (p *Polygon) BuildCache() {
	if p.edges != nil || p.IsDegenerate() {
		return
	}
	idx := flatbush.NewFlatbush[float64]()
	idx.Reserve(len(p.Points))
	for i := range p.Points {
		a, b := p.edge(i)
		idx.Add(min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X), max(a.Y, b.Y))
	}
	idx.Finish()
	p.edges = idx
}

func (p *Polygon) edge(i int) (Point, Point) {
	return p.Points[i], p.Points[(i+1)%len(p.Points)]
}

// edgesNear returns the indices of edges whose boxes touch b.
func (p *Polygon) edgesNear(b Box, buf []int) []int {
	buf = buf[:0]
	if p.edges != nil {
		return p.edges.SearchFast(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, buf)
	}
	for i := range p.Points {
		a, c := p.edge(i)
		if BoxOf(a, c).Intersects(b) {
			buf = append(buf, i)
		}
	}
	return buf
}

// Contains reports whether pt lies inside the outline or on its boundary.
// Degenerate outlines contain nothing.
func (p *Polygon) Contains(pt Point) bool {
	if p.IsDegenerate() || !p.bbox.Inflate(Epsilon).Contains(pt) {
		return false
	}

	// Edges touching a horizontal ray from pt to the right edge of the box.
	ray := Box{
		Min: Point{X: pt.X - Epsilon, Y: pt.Y - Epsilon},
		Max: Point{X: p.bbox.Max.X + Epsilon, Y: pt.Y + Epsilon},
	}
	inside := false
	for _, i := range p.edgesNear(ray, nil) {
		a, b := p.edge(i)
		if PointSegmentDist2(pt, a, b) <= Epsilon*Epsilon {
			return true
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// collideCapsule reports whether the capsule touches the polygon.
func (p *Polygon) collideCapsule(c Capsule) bool {
	if p.IsDegenerate() || !p.bbox.Intersects(c.BBox()) {
		return false
	}
	if p.Contains(c.A) {
		return true
	}
	r2 := c.R * c.R
	for _, i := range p.edgesNear(c.BBox(), nil) {
		a, b := p.edge(i)
		if SegmentDist2(c.A, c.B, a, b) <= r2 {
			return true
		}
	}
	return false
}

// collidePolygon reports whether two outlines overlap or touch.
func (p *Polygon) collidePolygon(o *Polygon) bool {
	if p.IsDegenerate() || o.IsDegenerate() || !p.bbox.Intersects(o.bbox) {
		return false
	}
	if p.Contains(o.Points[0]) || o.Contains(p.Points[0]) {
		return true
	}

	// Walk the smaller outline, querying the other's edge index.
	small, large := p, o
	if len(small.Points) > len(large.Points) {
		small, large = large, small
	}
	var buf []int
	for i := range small.Points {
		a, b := small.edge(i)
		buf = large.edgesNear(BoxOf(a, b), buf)
		for _, j := range buf {
			c, d := large.edge(j)
			if SegmentsIntersect(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

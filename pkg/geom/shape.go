package geom

import "math"

// Shape is a copper outline on one layer. The set of implementations is
// closed: Capsule, *Polygon and Compound.
type Shape interface {
	BBox() Box
	isShape()
}

// Capsule is a segment A-B swept by a disc of radius R. A capsule with
// A == B is a circle; tracks are capsules of half their width.
type Capsule struct {
	A, B Point
	R    float64
}

// Circle returns a circle of radius r centred on c.
func Circle(c Point, r float64) Capsule {
	return Capsule{A: c, B: c, R: r}
}

// Segment returns a segment from a to b with the given total width.
func Segment(a, b Point, width float64) Capsule {
	return Capsule{A: a, B: b, R: width / 2}
}

// BBox returns the bounding box of the capsule.
func (c Capsule) BBox() Box {
	return BoxOf(c.A, c.B).Inflate(c.R)
}

func (Capsule) isShape() {}
func (*Polygon) isShape() {}
func (Compound) isShape() {}

// IsDegenerate reports whether the capsule has no area.
func (c Capsule) IsDegenerate() bool {
	return c.R <= 0 || math.IsNaN(c.R)
}

// Compound is a union of shapes, such as an arc approximated by segments.
type Compound []Shape

// BBox returns the union of the member boxes.
func (s Compound) BBox() Box {
	b := NewBox()
	for _, m := range s {
		if m != nil {
			b = b.Union(m.BBox())
		}
	}
	return b
}

// Collide reports whether two shapes overlap or touch with zero clearance.
// Nil and degenerate shapes never collide.
func Collide(a, b Shape) bool {
	if a == nil || b == nil || !a.BBox().Intersects(b.BBox()) {
		return false
	}

	if ca, ok := a.(Compound); ok {
		for _, m := range ca {
			if Collide(m, b) {
				return true
			}
		}
		return false
	}
	if cb, ok := b.(Compound); ok {
		for _, m := range cb {
			if Collide(a, m) {
				return true
			}
		}
		return false
	}

	switch sa := a.(type) {
	case Capsule:
		switch sb := b.(type) {
		case Capsule:
			return collideCapsules(sa, sb)
		case *Polygon:
			return !sa.IsDegenerate() && sb.collideCapsule(sa)
		}
	case *Polygon:
		switch sb := b.(type) {
		case Capsule:
			return !sb.IsDegenerate() && sa.collideCapsule(sb)
		case *Polygon:
			return sa.collidePolygon(sb)
		}
	}
	return false
}

func collideCapsules(a, b Capsule) bool {
	if a.IsDegenerate() || b.IsDegenerate() {
		return false
	}
	r := a.R + b.R
	return SegmentDist2(a.A, a.B, b.A, b.B) <= r*r
}

// ArcThrough approximates the arc from start through mid to end, stroked
// with the given width, by a chain of segments no longer than maxSeg. If the
// three points are collinear the result is a single segment.
func ArcThrough(start, mid, end Point, width, maxSeg float64) Shape {
	center, ok := circumcenter(start, mid, end)
	if !ok {
		return Segment(start, end, width)
	}
	radius := center.Distance(start)

	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	am := math.Atan2(mid.Y-center.Y, mid.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)

	// Sweep from a0 to a1 in the direction that passes through am.
	sweep := normAngle(a1 - a0)
	if normAngle(am-a0) > sweep {
		sweep -= 2 * math.Pi
	}

	if maxSeg <= 0 {
		maxSeg = radius / 4
	}
	n := max(2, int(math.Ceil(math.Abs(sweep)*radius/maxSeg)))

	out := make(Compound, 0, n)
	prev := start
	for i := 1; i <= n; i++ {
		var p Point
		if i == n {
			p = end
		} else {
			t := a0 + sweep*float64(i)/float64(n)
			p = Point{X: center.X + radius*math.Cos(t), Y: center.Y + radius*math.Sin(t)}
		}
		out = append(out, Segment(prev, p, width))
		prev = p
	}
	return out
}

// normAngle maps a to [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func circumcenter(a, b, c Point) (Point, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < Epsilon {
		return Point{}, false
	}
	a2 := a.Dot(a)
	b2 := b.Dot(b)
	c2 := c.Dot(c)
	return Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

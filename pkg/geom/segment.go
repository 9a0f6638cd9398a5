package geom

// orientation returns >0 when a, b, c turn counter-clockwise, <0 for
// clockwise and 0 for collinear points.
func orientation(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(p, a, b Point) bool {
	return p.X >= min(a.X, b.X)-Epsilon && p.X <= max(a.X, b.X)+Epsilon &&
		p.Y >= min(a.Y, b.Y)-Epsilon && p.Y <= max(a.Y, b.Y)+Epsilon
}

func sign(v float64) int {
	switch {
	case v > Epsilon:
		return 1
	case v < -Epsilon:
		return -1
	}
	return 0
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 share a point.
func SegmentsIntersect(a1, a2, b1, b2 Point) bool {
	d1 := sign(orientation(b1, b2, a1))
	d2 := sign(orientation(b1, b2, a2))
	d3 := sign(orientation(a1, a2, b1))
	d4 := sign(orientation(a1, a2, b2))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}

	switch {
	case d1 == 0 && onSegment(a1, b1, b2):
		return true
	case d2 == 0 && onSegment(a2, b1, b2):
		return true
	case d3 == 0 && onSegment(b1, a1, a2):
		return true
	case d4 == 0 && onSegment(b2, a1, a2):
		return true
	}
	return false
}

// PointSegmentDist2 returns the squared distance from p to segment a-b.
func PointSegmentDist2(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		d := p.Sub(a)
		return d.Dot(d)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = max(0, min(1, t))
	d := p.Sub(a.Add(ab.Scale(t)))
	return d.Dot(d)
}

// SegmentDist2 returns the squared distance between segments a1-a2 and
// b1-b2, zero when they cross.
func SegmentDist2(a1, a2, b1, b2 Point) float64 {
	if SegmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	return min(
		PointSegmentDist2(a1, b1, b2),
		PointSegmentDist2(a2, b1, b2),
		PointSegmentDist2(b1, a1, a2),
		PointSegmentDist2(b2, a1, a2),
	)
}

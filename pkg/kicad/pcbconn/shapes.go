package pcbconn

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
)

// padShape returns the copper of a pad. Rounded and chamfered corners are
// approximated by the full rectangle.
func padShape(pad *pcb.Pad) geom.Shape {
	angle := float64(pad.Position.Angle)
	center := pt(pad.Position.Position).Add(pt(pad.Offset).Rotate(angle))
	w, h := pad.Size.Width, pad.Size.Height

	switch pad.Shape {
	case "circle":
		return geom.Circle(center, w/2)
	case "oval":
		return oval(center, w, h, angle)
	default:
		return geom.RotatedRect(center, w, h, angle)
	}
}

// holeShape returns a round or slotted drill.
func holeShape(center geom.Point, drill pcb.Size, angle float64) geom.Shape {
	if drill.Width <= 0 {
		return nil
	}
	if drill.Height <= 0 || drill.Height == drill.Width {
		return geom.Circle(center, drill.Width/2)
	}
	return oval(center, drill.Width, drill.Height, angle)
}

// oval returns a w×h stadium, as a capsule along its long axis.
func oval(center geom.Point, w, h, angle float64) geom.Shape {
	if w == h {
		return geom.Circle(center, w/2)
	}
	var half geom.Point
	r := h / 2
	if w > h {
		half = geom.Pt((w-h)/2, 0)
	} else {
		half = geom.Pt(0, (h-w)/2)
		r = w / 2
	}
	half = half.Rotate(angle)
	return geom.Capsule{A: center.Sub(half), B: center.Add(half), R: r}
}

// ring approximates a stroked circle by a closed chain of segments.
func ring(center geom.Point, radius, width, maxSeg float64) geom.Shape {
	n := max(8, int(math.Ceil(2*math.Pi*radius/maxSeg)))
	out := make(geom.Compound, 0, n)
	prev := geom.Pt(center.X+radius, center.Y)
	for i := 1; i <= n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n)
		p := geom.Pt(center.X+radius*math.Cos(t), center.Y+radius*math.Sin(t))
		out = append(out, geom.Segment(prev, p, width))
		prev = p
	}
	return out
}

// outline returns the closed polyline through pts stroked with width.
func outline(pts []geom.Point, width float64) geom.Shape {
	out := make(geom.Compound, 0, len(pts))
	for i := range pts {
		out = append(out, geom.Segment(pts[i], pts[(i+1)%len(pts)], width))
	}
	return out
}

// addShapes wraps the graphics drawn on copper layers.
func (a *Adapter) addShapes(g *pcb.Graphics) {
	add := func(layer string, net **pcb.Net, label string, shape geom.Shape, anchors ...geom.Point) {
		id, ok := a.layers[layer]
		if !ok || shape == nil {
			return
		}
		a.Shapes = append(a.Shapes, &ShapeItem{
			adapter: a,
			label:   label,
			layers:  connectivity.NewLayerSet(id),
			net:     net,
			shape:   shape,
			anchors: anchors,
		})
	}

	for i := range g.Lines {
		l := &g.Lines[i]
		s, e := pt(l.Start), pt(l.End)
		add(l.Layer, &l.Net, fmt.Sprintf("line %s (%g,%g)-(%g,%g)", l.Layer, s.X, s.Y, e.X, e.Y),
			geom.Segment(s, e, l.Stroke.Width), s, e)
	}
	for i := range g.Arcs {
		arc := &g.Arcs[i]
		s, m, e := pt(arc.Start), pt(arc.Mid), pt(arc.End)
		add(arc.Layer, &arc.Net, fmt.Sprintf("arc %s (%g,%g)-(%g,%g)", arc.Layer, s.X, s.Y, e.X, e.Y),
			geom.ArcThrough(s, m, e, arc.Stroke.Width, a.opts.MaxArcSegment), s, e)
	}
	for i := range g.Circles {
		c := &g.Circles[i]
		center := pt(c.Center)
		var shape geom.Shape
		if c.Fill.Filled() {
			shape = geom.Circle(center, c.Radius()+c.Stroke.Width/2)
		} else {
			shape = ring(center, c.Radius(), c.Stroke.Width, a.opts.MaxArcSegment)
		}
		add(c.Layer, &c.Net, fmt.Sprintf("circle %s (%g,%g)", c.Layer, center.X, center.Y), shape, pt(c.End))
	}
	for i := range g.Rects {
		r := &g.Rects[i]
		s, e := pt(r.Start), pt(r.End)
		corners := []geom.Point{s, geom.Pt(e.X, s.Y), e, geom.Pt(s.X, e.Y)}
		var shape geom.Shape = outline(corners, r.Stroke.Width)
		if r.Fill.Filled() {
			shape = geom.Compound{geom.NewPolygon(corners), shape}
		}
		add(r.Layer, &r.Net, fmt.Sprintf("rect %s (%g,%g)-(%g,%g)", r.Layer, s.X, s.Y, e.X, e.Y), shape, s)
	}
	for i := range g.Polys {
		p := &g.Polys[i]
		if len(p.Points) < 2 {
			continue
		}
		pts := make([]geom.Point, len(p.Points))
		for j, q := range p.Points {
			pts[j] = pt(q)
		}
		var shape geom.Shape = outline(pts, p.Stroke.Width)
		if p.Fill.Filled() && len(pts) >= 3 {
			shape = geom.Compound{geom.NewPolygon(pts), shape}
		}
		add(p.Layer, &p.Net, fmt.Sprintf("poly %s (%g,%g)", p.Layer, pts[0].X, pts[0].Y), shape, pts[0])
	}
}

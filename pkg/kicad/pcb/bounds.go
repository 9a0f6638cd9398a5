package pcb

import "math"

// GetBoundingBox returns the extent of the board's copper and graphics.
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, track := range b.Tracks {
		bbox.Expand(track.Start)
		bbox.Expand(track.End)
	}
	for _, arc := range b.Arcs {
		bbox.Expand(arc.Start)
		bbox.Expand(arc.Mid)
		bbox.Expand(arc.End)
	}
	for _, via := range b.Vias {
		expandRadius(&bbox, via.Position, via.Size/2)
	}
	for i := range b.Footprints {
		bbox.ExpandBox(b.Footprints[i].GetBoundingBox())
	}
	for _, zone := range b.Zones {
		for _, p := range zone.Outline {
			bbox.Expand(p)
		}
	}

	g := &b.Graphics
	for _, line := range g.Lines {
		bbox.Expand(line.Start)
		bbox.Expand(line.End)
	}
	for _, circle := range g.Circles {
		expandRadius(&bbox, circle.Center, circle.Radius())
	}
	for _, arc := range g.Arcs {
		// Approximate: the three defining points.
		bbox.Expand(arc.Start)
		bbox.Expand(arc.Mid)
		bbox.Expand(arc.End)
	}
	for _, rect := range g.Rects {
		bbox.Expand(rect.Start)
		bbox.Expand(rect.End)
	}
	for _, poly := range g.Polys {
		for _, point := range poly.Points {
			bbox.Expand(point)
		}
	}

	return bbox
}

// GetBoundingBox returns the extent of the footprint's pads, or its anchor
// when it has none.
func (fp *Footprint) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	for _, pad := range fp.Pads {
		// Pads are approximated by their circumscribed square so rotation
		// does not matter.
		r := math.Hypot(pad.Size.Width, pad.Size.Height) / 2
		expandRadius(&bbox, pad.Position.Position, r)
	}
	if len(fp.Pads) == 0 {
		bbox.Expand(fp.Position.Position)
	}
	return bbox
}

func expandRadius(bbox *BoundingBox, c Position, r float64) {
	bbox.Expand(Position{X: c.X - r, Y: c.Y - r})
	bbox.Expand(Position{X: c.X + r, Y: c.Y + r})
}

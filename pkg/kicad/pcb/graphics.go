package pcb

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// GrLine is a board-level line.
type GrLine struct {
	Start  Position
	End    Position
	Stroke Stroke
	Layer  string
	Net    *Net
}

// GrCircle is a circle given by its centre and a point on it.
type GrCircle struct {
	Center Position
	End    Position
	Stroke Stroke
	Fill   Fill
	Layer  string
	Net    *Net
}

// Radius returns the distance from Center to End.
func (c *GrCircle) Radius() float64 {
	return math.Hypot(c.End.X-c.Center.X, c.End.Y-c.Center.Y)
}

// GrArc is an arc through Start, Mid and End.
type GrArc struct {
	Start  Position
	Mid    Position
	End    Position
	Stroke Stroke
	Layer  string
	Net    *Net
}

// GrRect is an axis-aligned rectangle.
type GrRect struct {
	Start  Position
	End    Position
	Stroke Stroke
	Fill   Fill
	Layer  string
	Net    *Net
}

// GrPoly is a polygon.
type GrPoly struct {
	Points []Position
	Stroke Stroke
	Fill   Fill
	Layer  string
	Net    *Net
}

// Graphics holds the board-level graphic shapes. Only those on copper
// layers are electrically relevant.
type Graphics struct {
	Lines   []GrLine
	Circles []GrCircle
	Arcs    []GrArc
	Rects   []GrRect
	Polys   []GrPoly
}

// parseStroke reads (stroke (width w) (type t)). KiCad 5 wrote a bare
// (width w) on the shape instead, which the caller handles.
func parseStroke(node kicadsexp.Sexp) Stroke {
	stroke := Stroke{Width: 0.15, Type: "solid"}
	if strokeNode, found := findNode(node, "stroke"); found {
		if widthNode, found := findNode(strokeNode, "width"); found {
			if w, err := getFloat(widthNode, 1); err == nil {
				stroke.Width = w
			}
		}
		if typeNode, found := findNode(strokeNode, "type"); found {
			if t, err := getString(typeNode, 1); err == nil {
				stroke.Type = t
			}
		}
	} else if widthNode, found := findNode(node, "width"); found {
		if w, err := getFloat(widthNode, 1); err == nil {
			stroke.Width = w
		}
	}
	return stroke
}

// parseFill reads (fill solid), (fill yes) or (fill (type solid)).
func parseFill(node kicadsexp.Sexp) Fill {
	fill := Fill{Type: "none"}
	fillNode, found := findNode(node, "fill")
	if !found {
		return fill
	}
	if typeNode, found := findNode(fillNode, "type"); found {
		if t, err := getString(typeNode, 1); err == nil {
			fill.Type = t
		}
	} else if t, err := getString(fillNode, 1); err == nil {
		fill.Type = t
	}
	return fill
}

func parseGrLine(node kicadsexp.Sexp, netMap *NetMap) (*GrLine, error) {
	line := &GrLine{Stroke: parseStroke(node), Net: getNet(node, netMap)}
	var err error
	if line.Start, err = requirePosition(node, "start"); err != nil {
		return nil, err
	}
	if line.End, err = requirePosition(node, "end"); err != nil {
		return nil, err
	}
	if line.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	return line, nil
}

func parseGrCircle(node kicadsexp.Sexp, netMap *NetMap) (*GrCircle, error) {
	circle := &GrCircle{Stroke: parseStroke(node), Fill: parseFill(node), Net: getNet(node, netMap)}
	var err error
	if circle.Center, err = requirePosition(node, "center"); err != nil {
		return nil, err
	}
	if circle.End, err = requirePosition(node, "end"); err != nil {
		return nil, err
	}
	if circle.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	return circle, nil
}

func parseGrArc(node kicadsexp.Sexp, netMap *NetMap) (*GrArc, error) {
	arc := &GrArc{Stroke: parseStroke(node), Net: getNet(node, netMap)}
	var err error
	if arc.Start, err = requirePosition(node, "start"); err != nil {
		return nil, err
	}
	if arc.Mid, err = requirePosition(node, "mid"); err != nil {
		return nil, err
	}
	if arc.End, err = requirePosition(node, "end"); err != nil {
		return nil, err
	}
	if arc.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	return arc, nil
}

func parseGrRect(node kicadsexp.Sexp, netMap *NetMap) (*GrRect, error) {
	rect := &GrRect{Stroke: parseStroke(node), Fill: parseFill(node), Net: getNet(node, netMap)}
	var err error
	if rect.Start, err = requirePosition(node, "start"); err != nil {
		return nil, err
	}
	if rect.End, err = requirePosition(node, "end"); err != nil {
		return nil, err
	}
	if rect.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	return rect, nil
}

func parseGrPoly(node kicadsexp.Sexp, netMap *NetMap) (*GrPoly, error) {
	poly := &GrPoly{Stroke: parseStroke(node), Fill: parseFill(node), Net: getNet(node, netMap)}
	ptsNode, found := findNode(node, "pts")
	if !found {
		return nil, fmt.Errorf("missing required 'pts' field")
	}
	poly.Points = parsePoints(ptsNode)
	if len(poly.Points) < 2 {
		return nil, fmt.Errorf("polygon needs at least 2 points, got %d", len(poly.Points))
	}
	var err error
	if poly.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	return poly, nil
}

// parseGraphics extracts gr_line, gr_circle, gr_arc, gr_rect and gr_poly
// from the root node.
func parseGraphics(root kicadsexp.Sexp, netMap *NetMap) (*Graphics, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	graphics := &Graphics{}
	for _, n := range findAllNodes(root, "gr_line") {
		line, err := parseGrLine(n, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gr_line: %w", err)
		}
		graphics.Lines = append(graphics.Lines, *line)
	}
	for _, n := range findAllNodes(root, "gr_circle") {
		circle, err := parseGrCircle(n, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gr_circle: %w", err)
		}
		graphics.Circles = append(graphics.Circles, *circle)
	}
	for _, n := range findAllNodes(root, "gr_arc") {
		arc, err := parseGrArc(n, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gr_arc: %w", err)
		}
		graphics.Arcs = append(graphics.Arcs, *arc)
	}
	for _, n := range findAllNodes(root, "gr_rect") {
		rect, err := parseGrRect(n, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gr_rect: %w", err)
		}
		graphics.Rects = append(graphics.Rects, *rect)
	}
	for _, n := range findAllNodes(root, "gr_poly") {
		poly, err := parseGrPoly(n, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse gr_poly: %w", err)
		}
		graphics.Polys = append(graphics.Polys, *poly)
	}
	return graphics, nil
}

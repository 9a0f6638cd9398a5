package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// defaultTrackWidth is used when a segment omits (width ...).
const defaultTrackWidth = 0.15

// parseSegment extracts a straight track.
// Expected format: (segment (start x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseSegment(node kicadsexp.Sexp, netMap *NetMap) (*Track, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected segment list, got leaf")
	}

	track := &Track{Width: defaultTrackWidth}
	var err error
	if track.Start, err = requirePosition(node, "start"); err != nil {
		return nil, err
	}
	if track.End, err = requirePosition(node, "end"); err != nil {
		return nil, err
	}
	if track.Width, err = parseWidth(node); err != nil {
		return nil, err
	}
	if track.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	track.Net = getNet(node, netMap)
	track.Locked = getFlag(node, "locked")
	return track, nil
}

// parseArc extracts an arc track.
// Expected format: (arc (start x y) (mid x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseArc(node kicadsexp.Sexp, netMap *NetMap) (*Arc, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected arc list, got leaf")
	}

	arc := &Arc{Width: defaultTrackWidth}
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
	if arc.Width, err = parseWidth(node); err != nil {
		return nil, err
	}
	if arc.Layer, err = getLayer(node); err != nil {
		return nil, err
	}
	arc.Net = getNet(node, netMap)
	arc.Locked = getFlag(node, "locked")
	return arc, nil
}

func parseWidth(node kicadsexp.Sexp) (float64, error) {
	widthNode, found := findNode(node, "width")
	if !found {
		return defaultTrackWidth, nil
	}
	width, err := getFloat(widthNode, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to parse width: %w", err)
	}
	return width, nil
}

// parseVia extracts a via.
// Expected format: (via [blind|micro] (at x y) (size d) (drill d) (layers "L1" "L2") (net n) ...)
func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected via list, got leaf")
	}

	via := &Via{Type: "through"}
	for _, kind := range []string{"blind", "buried", "micro"} {
		if hasSymbol(node, kind) {
			via.Type = kind
		}
	}

	var err error
	if via.Position, err = requirePosition(node, "at"); err != nil {
		return nil, err
	}

	sizeNode, found := findNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if via.Size, err = getFloat(sizeNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse size: %w", err)
	}

	drillNode, found := findNode(node, "drill")
	if !found {
		return nil, fmt.Errorf("missing required 'drill' field")
	}
	if via.Drill, err = getFloat(drillNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse drill: %w", err)
	}

	layersNode, found := findNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	via.Layers = getLayerNames(layersNode)
	if len(via.Layers) != 2 {
		return nil, fmt.Errorf("via must span two layers, got %d", len(via.Layers))
	}

	via.Net = getNet(node, netMap)
	via.Locked = getFlag(node, "locked")
	via.Free = getFlag(node, "free")
	via.RemoveUnusedLayers = getFlag(node, "remove_unused_layers")
	via.KeepEndLayers = getFlag(node, "keep_end_layers")
	return via, nil
}

// parseTracks extracts every segment, arc and via of the board.
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, []Arc, []Via, error) {
	if root.IsLeaf() {
		return nil, nil, nil, fmt.Errorf("expected root list")
	}

	var (
		tracks []Track
		arcs   []Arc
		vias   []Via
	)
	for _, node := range findAllNodes(root, "segment") {
		track, err := parseSegment(node, netMap)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to parse segment: %w", err)
		}
		tracks = append(tracks, *track)
	}
	for _, node := range findAllNodes(root, "arc") {
		arc, err := parseArc(node, netMap)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to parse arc: %w", err)
		}
		arcs = append(arcs, *arc)
	}
	for _, node := range findAllNodes(root, "via") {
		via, err := parseVia(node, netMap)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to parse via: %w", err)
		}
		vias = append(vias, *via)
	}
	return tracks, arcs, vias, nil
}

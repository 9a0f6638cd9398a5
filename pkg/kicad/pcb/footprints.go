package pcb

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// parsePad extracts a pad definition from a footprint.
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node kicadsexp.Sexp, fp *Footprint, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{ZoneConnect: ZoneConnectInherit}

	number, err := getQuotedString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	if pad.Type, err = getString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	if pad.Shape, err = getString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := findNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	local, err := parsePositionAngle(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad position: %w", err)
	}
	// The pad angle in the file already includes the footprint rotation.
	pad.Position = PositionAngle{Position: fp.TransformPosition(local.Position), Angle: local.Angle}

	sizeNode, found := findNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	width, err := getFloat(sizeNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad width: %w", err)
	}
	height, err := getFloat(sizeNode, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad height: %w", err)
	}
	pad.Size = Size{Width: width, Height: height}

	if drillNode, found := findNode(node, "drill"); found {
		pad.Drill, pad.Offset = parseDrill(drillNode)
	}

	layersNode, found := findNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	pad.Layers = getLayerNames(layersNode)

	pad.Net = getNet(node, netMap)

	pad.ZoneConnect = fp.ZoneConnect
	if zcNode, found := findNode(node, "zone_connect"); found {
		if zc, err := getInt(zcNode, 1); err == nil {
			pad.ZoneConnect = zc
		}
	}
	pad.RemoveUnusedLayers = getFlag(node, "remove_unused_layers")
	pad.KeepEndLayers = getFlag(node, "keep_end_layers")

	return pad, nil
}

// parseDrill reads (drill d), (drill oval w h) and an optional
// (offset x y).
func parseDrill(node kicadsexp.Sexp) (Size, Position) {
	var size Size
	if kind, err := getString(node, 1); err == nil && kind == "oval" {
		w, _ := getFloat(node, 2)
		h, errH := getFloat(node, 3)
		if errH != nil {
			h = w
		}
		size = Size{Width: w, Height: h}
	} else if d, err := getFloat(node, 1); err == nil {
		size = Size{Width: d, Height: d}
	}

	var offset Position
	if offNode, found := findNode(node, "offset"); found {
		offset, _ = parsePosition(offNode)
	}
	return size, offset
}

// parseFootprint extracts a footprint and its pads.
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{ZoneConnect: ZoneConnectInherit}

	fpName, err := getQuotedString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	// Example: "Resistor_SMD:R_0603_1608Metric"
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library, footprint.Name = lib, name
	} else {
		footprint.Name = fpName
	}

	if footprint.Layer, err = getLayer(node); err != nil {
		return nil, err
	}

	atNode, found := findNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if footprint.Position, err = parsePositionAngle(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse footprint position: %w", err)
	}

	footprint.Locked = getFlag(node, "locked")

	// KiCad 6+ writes (property "Reference" "R1"); KiCad 5 wrote fp_text.
	for _, propNode := range findAllNodes(node, "property") {
		propName, err := getQuotedString(propNode, 1)
		if err != nil {
			continue
		}
		propValue, err := getQuotedString(propNode, 2)
		if err != nil {
			continue
		}
		switch propName {
		case "Reference":
			footprint.Reference = propValue
		case "Value":
			footprint.Value = propValue
		}
	}
	for _, textNode := range findAllNodes(node, "fp_text") {
		kind, _ := getString(textNode, 1)
		text, err := getQuotedString(textNode, 2)
		if err != nil {
			continue
		}
		switch {
		case kind == "reference" && footprint.Reference == "":
			footprint.Reference = text
		case kind == "value" && footprint.Value == "":
			footprint.Value = text
		}
	}

	if zcNode, found := findNode(node, "zone_connect"); found {
		if zc, err := getInt(zcNode, 1); err == nil {
			footprint.ZoneConnect = zc
		}
	}

	footprint.DuplicatePadNumbersAreJumpers = getFlag(node, "duplicate_pad_numbers_are_jumpers")
	if groupsNode, found := findNode(node, "jumper_pad_groups"); found {
		for _, g := range getListItems(groupsNode) {
			var group []string
			for _, num := range items(g) {
				if sym, ok := num.(kicadsexp.Symbol); ok {
					group = append(group, string(sym))
				}
			}
			if len(group) > 0 {
				footprint.JumperPadGroups = append(footprint.JumperPadGroups, group)
			}
		}
	}

	for _, padNode := range findAllNodes(node, "pad") {
		pad, err := parsePad(padNode, footprint, netMap)
		if err != nil {
			slog.Warn("pcb: skipping pad",
				slog.String("footprint", footprint.Reference),
				slog.Any("error", err),
			)
			continue
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	return footprint, nil
}

// parseFootprints extracts every (footprint ...) node. KiCad 5 files use
// (module ...) for the same thing.
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	nodes := findAllNodes(root, "footprint")
	nodes = append(nodes, findAllNodes(root, "module")...)

	footprints := make([]Footprint, 0, len(nodes))
	for i, fpNode := range nodes {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			slog.Warn("pcb: skipping footprint", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		footprints = append(footprints, *footprint)
	}
	return footprints, nil
}

// TransformPosition maps a footprint-relative position to board
// coordinates.
func (fp *Footprint) TransformPosition(rel Position) Position {
	p := rel.Rotate(fp.Position.Angle)
	return Position{X: p.X + fp.Position.X, Y: p.Y + fp.Position.Y}
}

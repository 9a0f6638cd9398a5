package pcb

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// S-expression navigation helpers

// items returns the elements of a list node, nil for atoms.
func items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}
	return nil
}

// nodeKey returns the leading symbol of a list node.
func nodeKey(s kicadsexp.Sexp) string {
	elems := items(s)
	if len(elems) == 0 {
		return ""
	}
	if sym, ok := elems[0].(kicadsexp.Symbol); ok {
		return string(sym)
	}
	return ""
}

// findNode returns the first child that is the symbol key or a list
// starting with it.
// Example: findNode(sexp, "at") finds (at 100 50) in a list
func findNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok {
			if string(sym) == key {
				return item, true
			}
			continue
		}
		if nodeKey(item) == key {
			return item, true
		}
	}
	return nil, false
}

// findAllNodes returns every child list starting with key.
func findAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range items(s) {
		if nodeKey(item) == key {
			results = append(results, item)
		}
	}
	return results
}

// getListItems returns a list's elements after its key.
// Example: getListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func getListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	elems := items(s)
	if len(elems) <= 1 {
		return nil
	}
	return elems[1:]
}

// getString returns the atom at index. Index 0 is the key.
func getString(s kicadsexp.Sexp, index int) (string, error) {
	elems := items(s)
	if elems == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}
	if index < 0 || index >= len(elems) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(elems))
	}
	if sym, ok := elems[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got %T", index, elems[index])
}

// getQuotedString returns the string at index. The lexer already strips
// quotes, so this only differs from getString in intent.
func getQuotedString(s kicadsexp.Sexp, index int) (string, error) {
	return getString(s, index)
}

func getFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

func getInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// getFlag reads a boolean option. KiCad writes these as a bare symbol
// (locked), an empty list (free), or a list with yes/no (free yes).
func getFlag(s kicadsexp.Sexp, key string) bool {
	node, found := findNode(s, key)
	if !found {
		return false
	}
	v, err := getString(node, 1)
	if err != nil {
		return true
	}
	return v != "no" && v != "false"
}

// hasSymbol reports whether a list holds the bare symbol.
func hasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// getNodeName returns the symbol of a leaf or the key of a list.
func getNodeName(s kicadsexp.Sexp) (string, error) {
	if sym, ok := s.(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	if key := nodeKey(s); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}

// parsePosition reads the x y pair of an (at x y), (start x y) or
// (xy x y) node.
func parsePosition(node kicadsexp.Sexp) (Position, error) {
	x, err := getFloat(node, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X coordinate: %w", err)
	}
	y, err := getFloat(node, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y coordinate: %w", err)
	}
	return Position{X: x, Y: y}, nil
}

// parsePositionAngle reads (at x y [angle]).
func parsePositionAngle(node kicadsexp.Sexp) (PositionAngle, error) {
	pos, err := parsePosition(node)
	if err != nil {
		return PositionAngle{}, err
	}
	pa := PositionAngle{Position: pos}
	if angle, err := getFloat(node, 3); err == nil {
		pa.Angle = Angle(angle)
	}
	return pa, nil
}

// requirePosition reads the child key as a position.
func requirePosition(node kicadsexp.Sexp, key string) (Position, error) {
	child, found := findNode(node, key)
	if !found {
		return Position{}, fmt.Errorf("missing required '%s' position", key)
	}
	pos, err := parsePosition(child)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse %s position: %w", key, err)
	}
	return pos, nil
}

// parsePoints reads the (xy x y) entries of a (pts ...) node.
func parsePoints(ptsNode kicadsexp.Sexp) []Position {
	var points []Position
	for _, item := range getListItems(ptsNode) {
		if nodeKey(item) != "xy" {
			continue
		}
		if p, err := parsePosition(item); err == nil {
			points = append(points, p)
		}
	}
	return points
}

// getLayerNames reads (layer "F.Cu") or (layers "F.Cu" "B.Cu").
func getLayerNames(node kicadsexp.Sexp) LayerSet {
	var layers LayerSet
	for _, item := range getListItems(node) {
		if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
			layers = append(layers, string(sym))
		}
	}
	return layers
}

// getLayer reads the single (layer ...) child of node.
func getLayer(node kicadsexp.Sexp) (string, error) {
	layerNode, found := findNode(node, "layer")
	if !found {
		return "", fmt.Errorf("missing required 'layer' field")
	}
	layer, err := getQuotedString(layerNode, 1)
	if err != nil {
		return "", fmt.Errorf("failed to parse layer: %w", err)
	}
	return layer, nil
}

// getNet resolves the (net ...) child of node. Files before KiCad 10 write
// (net 3 "GND") or (net 3); newer ones (net "GND").
func getNet(node kicadsexp.Sexp, netMap *NetMap) *Net {
	netNode, found := findNode(node, "net")
	if !found || netMap == nil {
		return nil
	}
	if num, err := getInt(netNode, 1); err == nil {
		if net, ok := netMap.GetByNumber(num); ok {
			return net
		}
		return nil
	}
	if name, err := getQuotedString(netNode, 1); err == nil {
		if net, ok := netMap.GetByName(name); ok {
			return net
		}
	}
	return nil
}

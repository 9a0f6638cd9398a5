// Package pcb reads KiCad board files (.kicad_pcb) into a copper-centric
// model: nets, layers, footprints with their pads, tracks, arcs, vias,
// zones with their fills, and board graphics.
package pcb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// MinSupportedVersion is the oldest file format accepted (KiCad 6.0).
const MinSupportedVersion = 20211014

var (
	// ErrNotBoard is returned when the root node is not (kicad_pcb ...).
	ErrNotBoard = errors.New("pcb: not a KiCad PCB file")
	// ErrUnsupportedVersion is returned for files older than KiCad 6.
	ErrUnsupportedVersion = errors.New("pcb: unsupported KiCad version")
)

// ParseFile reads and parses a KiCad board file.
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("pcb: open %s: %w", filename, err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from r.
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("pcb: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotBoard)
	}

	root := sexps[0]
	rootName, err := getNodeName(root)
	if err != nil || rootName != "kicad_pcb" {
		return nil, fmt.Errorf("%w: root is %q", ErrNotBoard, rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, err
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := findNode(root, "general"); found {
		board.General = parseGeneral(generalNode)
	}

	if layersNode, found := findNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("pcb: layers: %w", err)
		}
		board.Layers = layers
	}

	board.Nets, err = parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("pcb: nets: %w", err)
	}
	netMap := board.NetMap()

	graphics, err := parseGraphics(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("pcb: graphics: %w", err)
	}
	board.Graphics = *graphics

	board.Tracks, board.Arcs, board.Vias, err = parseTracks(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("pcb: tracks: %w", err)
	}

	board.Footprints, err = parseFootprints(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("pcb: footprints: %w", err)
	}

	board.Zones, err = parseZones(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("pcb: zones: %w", err)
	}

	slog.Debug("pcb: parsed board",
		slog.Int("version", board.Version),
		slog.Int("nets", len(board.Nets)),
		slog.Int("footprints", len(board.Footprints)),
		slog.Int("tracks", len(board.Tracks)),
		slog.Int("arcs", len(board.Arcs)),
		slog.Int("vias", len(board.Vias)),
		slog.Int("zones", len(board.Zones)),
	)
	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := findNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("pcb: missing required 'version' field")
	}

	ver, err := getInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("pcb: version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("%w: %d (minimum %d / KiCad 6.0)", ErrUnsupportedVersion, ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := findNode(root, "host"); found {
		// Example: (host pcbnew "(6.0.0)")
		if toolName, err := getString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := findNode(root, "generator"); found {
		if generatorName, err := getString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties. KiCad 6+ keeps the title
// block in (title_block ...); both places are read.
func parseGeneral(node kicadsexp.Sexp) General {
	var general General
	if thicknessNode, found := findNode(node, "thickness"); found {
		general.Thickness, _ = getFloat(thicknessNode, 1)
	}
	for key, dst := range map[string]*string{
		"title":   &general.Title,
		"date":    &general.Date,
		"rev":     &general.Revision,
		"company": &general.Company,
	} {
		if n, found := findNode(node, key); found {
			*dst, _ = getQuotedString(n, 1)
		}
	}
	return general
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	layerNodes := getListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		number, err := getInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}
		name, err := getQuotedString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}
		layerType, err := getString(layerNode, 2)
		if err != nil {
			layerType = "user"
		}

		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}
	return layers, nil
}

// parseNets extracts the top-level net table.
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	var nets []Net
	for _, netNode := range findAllNodes(root, "net") {
		number, err := getInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}
		name, _ := getQuotedString(netNode, 2)
		nets = append(nets, Net{Number: number, Name: name})
	}
	return nets, nil
}

package pcb

import (
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/kicadsexp"
)

// parseZone extracts a zone and its filled polygons.
// Expected format: (zone (net n) (net_name "GND") (layer "F.Cu") (polygon (pts ...)) (filled_polygon (layer "F.Cu") (pts ...)) ...)
func parseZone(node kicadsexp.Sexp, netMap *NetMap) (*Zone, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected zone list, got leaf")
	}

	zone := &Zone{Net: getNet(node, netMap)}

	if nameNode, found := findNode(node, "net_name"); found {
		zone.NetName, _ = getQuotedString(nameNode, 1)
	}
	if zone.Net == nil && zone.NetName != "" && netMap != nil {
		zone.Net, _ = netMap.GetByName(zone.NetName)
	}
	if nameNode, found := findNode(node, "name"); found {
		zone.Name, _ = getQuotedString(nameNode, 1)
	}
	if prioNode, found := findNode(node, "priority"); found {
		zone.Priority, _ = getInt(prioNode, 1)
	}

	// (layers ...) on multi-layer zones, (layer ...) otherwise.
	if layersNode, found := findNode(node, "layers"); found {
		zone.Layers = getLayerNames(layersNode)
	} else if layer, err := getLayer(node); err == nil {
		zone.Layers = LayerSet{layer}
	}
	if len(zone.Layers) == 0 {
		return nil, fmt.Errorf("zone has no layer")
	}

	if polyNode, found := findNode(node, "polygon"); found {
		if ptsNode, found := findNode(polyNode, "pts"); found {
			zone.Outline = parsePoints(ptsNode)
		}
	}

	for _, fpNode := range findAllNodes(node, "filled_polygon") {
		fill := ZoneFill{Island: getFlag(fpNode, "island")}
		if layer, err := getLayer(fpNode); err == nil {
			fill.Layer = layer
		} else if len(zone.Layers) == 1 {
			fill.Layer = zone.Layers[0]
		} else {
			return nil, fmt.Errorf("filled polygon of a multi-layer zone has no layer")
		}
		if ptsNode, found := findNode(fpNode, "pts"); found {
			fill.Points = parsePoints(ptsNode)
		}
		if len(fill.Points) > 0 {
			zone.Fills = append(zone.Fills, fill)
		}
	}

	return zone, nil
}

// parseZones extracts every zone. Keepout zones carry no copper and are
// skipped.
func parseZones(root kicadsexp.Sexp, netMap *NetMap) ([]Zone, error) {
	zoneNodes := findAllNodes(root, "zone")
	zones := make([]Zone, 0, len(zoneNodes))

	for i, zoneNode := range zoneNodes {
		if _, keepout := findNode(zoneNode, "keepout"); keepout {
			continue
		}
		zone, err := parseZone(zoneNode, netMap)
		if err != nil {
			slog.Warn("pcb: skipping zone", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		if len(zone.Fills) == 0 {
			slog.Debug("pcb: zone has no fills",
				slog.Int("index", i),
				slog.String("net", zone.NetName),
			)
		}
		zones = append(zones, *zone)
	}

	slog.Debug("pcb: parsed zones", slog.Int("zones", len(zones)), slog.Int("nodes", len(zoneNodes)))
	return zones, nil
}

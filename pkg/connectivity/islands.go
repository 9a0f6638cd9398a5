package connectivity

import (
	"context"
	"sort"
)

// IslandSet classifies the filled islands of one zone on one layer by their
// index in Zone.FilledPolygons.
type IslandSet struct {
	// Isolated islands connect to nothing outside their own zone.
	Isolated []int
	// SingleConnection islands connect to exactly one outside item.
	SingleConnection []int
}

// ZoneIslandMap holds the zones to classify and receives the results per
// layer.
type ZoneIslandMap map[Zone]map[LayerID]*IslandSet

// FillIsolatedIslandsMap classifies the islands of every zone in islands.
// Unless connectivityRebuilt is set, each zone is first re-added so its
// islands reflect the latest fill. Islands of netless zones are not
// classified.
func (a *Algorithm) FillIsolatedIslandsMap(ctx context.Context, islands ZoneIslandMap, connectivityRebuilt bool) error {
	ctx, span := startSpan(ctx, "FillIsolatedIslandsMap")
	defer span.End()

	if !connectivityRebuilt {
		for z := range islands {
			a.Remove(z)
			a.Add(z)
		}
	}

	clusters, err := a.SearchClusters(ctx, ClusterConnectivity, false, AnyNet)
	if err != nil {
		return err
	}
	owner := make(map[Handle]*Cluster)
	for _, c := range clusters {
		for _, it := range c.items {
			owner[it.handle] = c
		}
	}

	for z, layers := range islands {
		if layers == nil {
			layers = make(map[LayerID]*IslandSet)
			islands[z] = layers
		}
		for _, layer := range z.Layers().Layers() {
			set := &IslandSet{}
			layers[layer] = set

			for _, h := range a.groups[z] {
				it := a.list.get(h)
				if it == nil || it.island == nil || it.island.layer != layer {
					continue
				}
				c := owner[h]
				if c == nil {
					continue
				}
				switch {
				case !c.hasExternalMember(z):
					set.Isolated = append(set.Isolated, it.island.index)
				case a.externalConnections(it) == 1:
					set.SingleConnection = append(set.SingleConnection, it.island.index)
				}
			}
			sort.Ints(set.Isolated)
			sort.Ints(set.SingleConnection)
		}
	}
	return nil
}

// externalConnections counts the valid items on the same net, outside the
// island's zone, linked to the island.
func (a *Algorithm) externalConnections(island *Item) int {
	n := 0
	net := island.Net()
	for _, h := range island.connected {
		o := a.list.get(h)
		if o == nil || !o.valid || o.parent == island.parent || o.Net() != net {
			continue
		}
		n++
	}
	return n
}

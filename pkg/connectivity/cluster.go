package connectivity

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// ClusterMode selects which items a clustering pass includes and which links
// it follows.
type ClusterMode int

const (
	// ClusterPropagate includes every valid item and follows every link
	// regardless of net. Used by PropagateNets.
	ClusterPropagate ClusterMode = iota
	// ClusterConnectivity skips netless seeds and only follows links to
	// items on the seed's net.
	ClusterConnectivity
	// ClusterRatsnest is ClusterConnectivity that also groups netless items.
	ClusterRatsnest
)

func (m ClusterMode) String() string {
	switch m {
	case ClusterPropagate:
		return "propagate"
	case ClusterConnectivity:
		return "connectivity"
	case ClusterRatsnest:
		return "ratsnest"
	default:
		return "unknown"
	}
}

// AnyNet disables the single-net filter of SearchClusters.
const AnyNet = -1

// ClusterState is the propagation state of a cluster.
type ClusterState int

const (
	ClusterNoNet ClusterState = iota
	ClusterValidNet
	ClusterConflicting
)

func (s ClusterState) String() string {
	switch s {
	case ClusterNoNet:
		return "no-net"
	case ClusterValidNet:
		return "valid"
	case ClusterConflicting:
		return "conflicting"
	default:
		return "unknown"
	}
}

// Cluster is a set of items reachable from one seed through the link
// graph. Members are kept in traversal order, seed first.
type Cluster struct {
	items       []*Item
	origin      *Item
	originNet   int
	conflicting bool
}

// add appends it and updates the origin net. The first fixed member with a
// valid net wins, even over a valid seed net; without one the first valid
// net in traversal order (the seed's, if valid) is used. Preferring fixed
// members departs from a plain seed-first rule so that tracks always take
// the net of the pad they touch. Two fixed members on different nets make
// the cluster conflicting.
func (c *Cluster) add(it *Item) {
	c.items = append(c.items, it)

	net := it.Net()
	if net <= 0 {
		return
	}
	fixed := !it.CanChangeNet()

	switch {
	case c.origin == nil:
		c.origin, c.originNet = it, net
	case fixed && c.origin.CanChangeNet():
		c.origin, c.originNet = it, net
	case fixed && net != c.originNet:
		c.conflicting = true
	}
}

// Items returns the members in traversal order.
func (c *Cluster) Items() []*Item { return c.items }

// Size returns the number of members.
func (c *Cluster) Size() int { return len(c.items) }

// OriginNet is the net propagation assigns to the cluster, or 0.
func (c *Cluster) OriginNet() int { return c.originNet }

// OriginItem is the member the origin net was taken from, or nil.
func (c *Cluster) OriginItem() *Item { return c.origin }

// IsConflicting reports whether two fixed members carry different nets.
func (c *Cluster) IsConflicting() bool { return c.conflicting }

// HasValidNet reports whether any member has a net.
func (c *Cluster) HasValidNet() bool { return c.originNet > 0 }

// IsOrphaned reports whether no member has a net.
func (c *Cluster) IsOrphaned() bool { return !c.HasValidNet() }

// State returns the propagation state.
func (c *Cluster) State() ClusterState {
	switch {
	case c.conflicting:
		return ClusterConflicting
	case c.HasValidNet():
		return ClusterValidNet
	default:
		return ClusterNoNet
	}
}

// Contains reports whether any member belongs to the board object.
func (c *Cluster) Contains(parent BoardItem) bool {
	for _, it := range c.items {
		if it.parent == parent {
			return true
		}
	}
	return false
}

// Parents returns the distinct board objects of the members in traversal
// order.
func (c *Cluster) Parents() []BoardItem {
	seen := make(map[BoardItem]bool, len(c.items))
	out := make([]BoardItem, 0, len(c.items))
	for _, it := range c.items {
		if !seen[it.parent] {
			seen[it.parent] = true
			out = append(out, it.parent)
		}
	}
	return out
}

// hasExternalMember reports whether a member belongs to another object
// than parent.
func (c *Cluster) hasExternalMember(parent BoardItem) bool {
	for _, it := range c.items {
		if it.parent != parent {
			return true
		}
	}
	return false
}

// SearchClusters brings the link graph up to date and groups the items
// into clusters. excludeZones leaves zone islands out of the traversal;
// singleNet restricts seeds to one net unless it is AnyNet. Clusters are
// sorted by origin net, then by seed handle.
func (a *Algorithm) SearchClusters(ctx context.Context, mode ClusterMode, excludeZones bool, singleNet int) ([]*Cluster, error) {
	ctx, span := startSpan(ctx, "SearchClusters",
		attribute.String("connectivity.mode", mode.String()),
		attribute.Bool("connectivity.exclude_zones", excludeZones),
	)
	defer span.End()

	if err := a.ensureSearched(ctx); err != nil {
		return nil, err
	}
	a.applyAdoptions(nil)
	if mode == ClusterPropagate {
		a.updateJumperPads()
	}

	start := time.Now()
	clusters := a.searchClusters(mode, excludeZones, singleNet)
	recordClusterMetrics(ctx, mode, time.Since(start))
	span.SetAttributes(attribute.Int("connectivity.clusters", len(clusters)))
	return clusters, nil
}

// GetClusters returns ratsnest clusters: zones and netless items included.
func (a *Algorithm) GetClusters(ctx context.Context) ([]*Cluster, error) {
	return a.SearchClusters(ctx, ClusterRatsnest, false, AnyNet)
}

func (a *Algorithm) searchClusters(mode ClusterMode, excludeZones bool, singleNet int) []*Cluster {
	withinNet := mode != ClusterPropagate
	items := a.list.items
	visited := make([]bool, len(items))

	var clusters []*Cluster
	var queue []*Item
	for _, seed := range items {
		if seed == nil || !seed.valid || visited[seed.handle] {
			continue
		}
		if excludeZones && seed.kind == KindZoneLayer {
			continue
		}
		seedNet := seed.Net()
		if mode == ClusterConnectivity && seedNet <= 0 {
			continue
		}
		if singleNet != AnyNet && seedNet != singleNet {
			continue
		}

		c := &Cluster{}
		visited[seed.handle] = true
		queue = append(queue[:0], seed)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			c.add(cur)

			for _, h := range cur.connected {
				n := a.list.get(h)
				if n == nil || !n.valid || visited[h] {
					continue
				}
				if excludeZones && n.kind == KindZoneLayer {
					continue
				}
				if withinNet && n.Net() != seedNet {
					continue
				}
				visited[h] = true
				queue = append(queue, n)
			}
		}
		clusters = append(clusters, c)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].originNet != clusters[j].originNet {
			return clusters[i].originNet < clusters[j].originNet
		}
		return clusters[i].items[0].handle < clusters[j].items[0].handle
	})
	return clusters
}

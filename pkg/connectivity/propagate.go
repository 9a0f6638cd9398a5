package connectivity

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
)

// PropagateNets first gives free vias sitting in a zone the zone's net, then
// assigns each cluster's origin net to every member that can change net.
// Zones take no part: they neither give nor receive a net here.
// Clusters without a net or with conflicting fixed nets are left alone.
// commit, if not nil, sees each item before its net is rewritten. It
// returns the number of rewritten items; a second call without edits in
// between returns zero.
func (a *Algorithm) PropagateNets(ctx context.Context, commit CommitSink) (int, error) {
	ctx, span := startSpan(ctx, "PropagateNets")
	defer span.End()

	if err := a.ensureSearched(ctx); err != nil {
		return 0, err
	}
	changed := a.applyAdoptions(commit)

	clusters, err := a.SearchClusters(ctx, ClusterPropagate, true, AnyNet)
	if err != nil {
		return 0, err
	}

	for _, c := range clusters {
		switch c.State() {
		case ClusterNoNet:
			continue
		case ClusterConflicting:
			a.logger.Debug("connectivity: skipping conflicting cluster",
				slog.Int("origin_net", c.originNet),
				slog.Int("items", c.Size()),
			)
			continue
		}

		for _, it := range c.items {
			net := it.Net()
			if net == c.originNet || !it.CanChangeNet() {
				continue
			}
			a.MarkNetAsDirty(net)
			a.MarkNetAsDirty(c.originNet)
			if commit != nil {
				commit.Modify(it.parent)
			}
			it.parent.SetNetCode(c.originNet)
			changed++

			a.logger.Debug("connectivity: net propagated",
				slog.String("kind", it.kind.String()),
				slog.Int("from", net),
				slog.Int("to", c.originNet),
			)
		}
	}

	span.SetAttributes(attribute.Int("connectivity.changed", changed))
	recordPropagateMetrics(ctx, changed)
	return changed, nil
}

// updateJumperPads links pads a footprint declares electrically identical:
// same-numbered pads when duplicate numbers are jumpers, and every pad of
// each explicit jumper group.
func (a *Algorithm) updateJumperPads() {
	type footprintPads struct {
		fp    Footprint
		byNum map[string][]*Item
	}

	index := make(map[Footprint]*footprintPads)
	var order []*footprintPads
	for _, it := range a.list.items {
		if it == nil || !it.valid || it.kind != KindPad {
			continue
		}
		fp := it.pad.Footprint()
		if fp == nil {
			continue
		}
		entry, ok := index[fp]
		if !ok {
			entry = &footprintPads{fp: fp, byNum: make(map[string][]*Item)}
			index[fp] = entry
			order = append(order, entry)
		}
		num := it.pad.Number()
		entry.byNum[num] = append(entry.byNum[num], it)
	}

	for _, entry := range order {
		if entry.fp.DuplicatePadNumbersAreJumpers() {
			nums := make([]string, 0, len(entry.byNum))
			for num := range entry.byNum {
				nums = append(nums, num)
			}
			sort.Strings(nums)
			for _, num := range nums {
				if num != "" {
					a.connectAll(entry.byNum[num])
				}
			}
		}

		for _, group := range entry.fp.JumperPadGroups() {
			var pads []*Item
			for _, num := range group {
				pads = append(pads, entry.byNum[num]...)
			}
			a.connectAll(pads)
		}
	}
}

// connectAll links every pair of items.
func (a *Algorithm) connectAll(items []*Item) {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			items[i].connect(items[j].handle)
			items[j].connect(items[i].handle)
		}
	}
}

package connectivity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// searchResult is what one search task sends back to the orchestrator.
type searchResult struct {
	handle Handle
	done   bool
	links  []Handle
	adopt  []netAdoption
}

// searchConnections sweeps removed items and links every dirty item to the
// items it touches. One task per dirty item runs on the executor; the tasks
// only read the graph and the orchestrator applies their links once all of
// them have reported. On cancellation the links of finished tasks are
// kept, their items lose the dirty flag, and ErrSearchCancelled is
// returned.
func (a *Algorithm) searchConnections(ctx context.Context) error {
	a.searchMu.Lock()
	defer a.searchMu.Unlock()

	start := time.Now()
	garbage := a.list.removeInvalidItems()
	dirty := a.list.dirtyItems()

	ctx, span := startSpan(ctx, "searchConnections",
		attribute.Int("connectivity.dirty_items", len(dirty)),
		attribute.Int("connectivity.swept_items", len(garbage)),
	)
	defer span.End()

	if len(dirty) == 0 {
		a.list.dirty = false
		return nil
	}

	a.logger.Debug("connectivity: search pass",
		slog.Int("dirty", len(dirty)),
		slog.Int("swept", len(garbage)),
	)

	var (
		progress  atomic.Int64
		cancelled atomic.Bool
		results   = make(chan searchResult, len(dirty))
		enabled   = a.enabled
	)

	if a.reporter != nil {
		a.reporter.SetMaxProgress(len(dirty))
	}
	if a.cancelled(ctx) {
		cancelled.Store(true)
	}

	// Submit from a separate goroutine so a blocking executor cannot stall
	// the progress loop below.
	go func() {
		for _, it := range dirty {
			a.exec.Go(func() {
				if cancelled.Load() || ctx.Err() != nil {
					results <- searchResult{handle: it.handle}
					return
				}
				v := newVisitor(it, enabled)
				a.list.findNearby(it, v.visit)
				progress.Add(1)
				results <- searchResult{handle: it.handle, done: true, links: v.links, adopt: v.adopt}
			})
		}
	}()

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	done := ctx.Done()
	completed := make([]searchResult, 0, len(dirty))
	for received := 0; received < len(dirty); {
		select {
		case r := <-results:
			received++
			if r.done {
				completed = append(completed, r)
			}
			if a.reporter != nil && a.reporter.IsCancelled() {
				cancelled.Store(true)
			}
		case <-ticker.C:
			if a.reporter != nil {
				a.reporter.SetCurrentProgress(float64(progress.Load()) / float64(len(dirty)))
				if !a.reporter.KeepRefreshing(false) || a.reporter.IsCancelled() {
					cancelled.Store(true)
				}
			}
		case <-done:
			cancelled.Store(true)
			done = nil
		}
	}

	links := a.applyResults(completed)
	stopped := len(completed) < len(dirty)
	if !stopped {
		a.list.dirty = false
	}

	span.SetAttributes(
		attribute.Int("connectivity.links", links),
		attribute.Bool("connectivity.cancelled", stopped),
	)
	recordSearchMetrics(ctx, time.Since(start), len(dirty), links, stopped)

	if stopped {
		a.logger.Debug("connectivity: search pass cancelled",
			slog.Int("completed", len(completed)),
			slog.Int("dirty", len(dirty)),
		)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSearchCancelled, err)
		}
		return ErrSearchCancelled
	}
	return nil
}

// applyResults links the pairs found by completed tasks in both directions,
// queues zone net adoptions, and clears the dirty flag of each searched
// item. It returns the number of new links.
func (a *Algorithm) applyResults(completed []searchResult) int {
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].handle < completed[j].handle
	})

	links := 0
	for _, r := range completed {
		it := a.list.get(r.handle)
		if it == nil {
			continue
		}
		for _, h := range r.links {
			other := a.list.get(h)
			if other == nil || it.connectedTo(h) {
				continue
			}
			it.connect(h)
			other.connect(it.handle)
			links++
		}
		a.adoptions = append(a.adoptions, r.adopt...)
		it.dirty = false
	}
	return links
}

// applyAdoptions gives each queued via the net of the zone it sits in; the
// first zone found for a via wins. commit, if not nil, sees each via before
// its net is rewritten. It returns the number of rewritten vias.
func (a *Algorithm) applyAdoptions(commit CommitSink) int {
	pending := a.adoptions
	a.adoptions = nil

	changed := 0
	seen := make(map[Handle]bool, len(pending))
	for _, ad := range pending {
		if seen[ad.via] {
			continue
		}
		seen[ad.via] = true

		via := a.list.get(ad.via)
		if via == nil || !via.valid || !via.CanChangeNet() {
			continue
		}
		old := via.Net()
		if old == ad.net {
			continue
		}
		a.MarkNetAsDirty(old)
		a.MarkNetAsDirty(ad.net)
		if commit != nil {
			commit.Modify(via.parent)
		}
		via.parent.SetNetCode(ad.net)
		changed++

		a.logger.Debug("connectivity: via adopted zone net",
			slog.Int("from", old),
			slog.Int("to", ad.net),
		)
	}
	return changed
}

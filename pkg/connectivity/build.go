package connectivity

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/geom"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Build replaces the engine contents with items. Zone island edge caches are
// built in parallel first; zones are then indexed before tracks, arcs, vias
// and shapes, and pads last. The collision pass itself is deferred to the
// first query.
func (a *Algorithm) Build(ctx context.Context, items []BoardItem) error {
	ctx, span := startSpan(ctx, "Build", attribute.Int("connectivity.items", len(items)))
	defer span.End()

	a.Clear()

	var (
		zones  []Zone
		tracks []BoardItem
		pads   []BoardItem
	)
	for _, item := range items {
		if item == nil {
			continue
		}
		switch item.Kind() {
		case KindZone:
			if z, ok := item.(Zone); ok {
				zones = append(zones, z)
			}
		case KindPad:
			pads = append(pads, item)
		default:
			tracks = append(tracks, item)
		}
	}

	var polys []*geom.Polygon
	for _, z := range zones {
		if !z.IsOnCopperLayer() {
			continue
		}
		for _, layer := range z.Layers().Layers() {
			for _, p := range z.FilledPolygons(layer) {
				if p != nil && !p.HasCache() {
					polys = append(polys, p)
				}
			}
		}
	}
	if err := a.buildIslandCaches(ctx, polys); err != nil {
		return err
	}

	if a.reporter != nil {
		a.reporter.SetMaxProgress(len(zones) + len(tracks) + len(pads))
	}

	added := 0
	for _, group := range [][]BoardItem{zonesAsItems(zones), tracks, pads} {
		for _, item := range group {
			if a.cancelled(ctx) {
				return a.cancelErr(ctx)
			}
			if a.Add(item) {
				added++
			}
			if a.reporter != nil {
				a.reporter.AdvanceProgress()
			}
		}
	}

	a.logger.Debug("connectivity: build complete",
		slog.Int("items", len(items)),
		slog.Int("added", added),
		slog.Int("zones", len(zones)),
		slog.Int("islands", len(polys)),
	)
	span.SetAttributes(attribute.Int("connectivity.added", added))
	return nil
}

func zonesAsItems(zones []Zone) []BoardItem {
	out := make([]BoardItem, len(zones))
	for i, z := range zones {
		out[i] = z
	}
	return out
}

// buildIslandCaches builds the edge index of every polygon, bounded by
// Config.Workers, while servicing the progress reporter.
func (a *Algorithm) buildIslandCaches(ctx context.Context, polys []*geom.Polygon) error {
	if len(polys) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)

	errc := make(chan error, 1)
	go func() {
		for _, p := range polys {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				p.BuildCache()
				done.Add(1)
				return nil
			})
		}
		errc <- g.Wait()
	}()

	if a.reporter != nil {
		a.reporter.SetMaxProgress(len(polys))
	}
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSearchCancelled, err)
			}
			return nil
		case <-ticker.C:
			if a.reporter != nil {
				a.reporter.SetCurrentProgress(float64(done.Load()) / float64(len(polys)))
				if !a.reporter.KeepRefreshing(false) || a.reporter.IsCancelled() {
					cancel()
				}
			}
		}
	}
}

func (a *Algorithm) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return a.reporter != nil && a.reporter.IsCancelled()
}

func (a *Algorithm) cancelErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSearchCancelled, err)
	}
	return ErrSearchCancelled
}

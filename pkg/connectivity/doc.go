// Package connectivity computes which copper objects of a board touch each
// other, groups them into clusters, and propagates net codes through those
// clusters.
//
// # Overview
//
// The host hands board objects to the engine through the BoardItem interface
// (pads, tracks, arcs, vias, copper shapes and zones). Each object becomes
// one or more Items held in an arena and addressed by Handle; a zone becomes
// one Item per filled island per layer. Items are indexed in one R-tree per
// copper layer.
//
// Edits are incremental:
//  1. Add and Remove mark items and nets dirty. Remove only invalidates.
//  2. The next query runs a search pass: invalid items are swept, then one
//     task per dirty item looks up its spatial neighbours and tests them for
//     collision. Tasks run on the injected Executor.
//  3. Clusters are found by breadth-first traversal of the link graph.
//  4. PropagateNets rewrites the nets of changeable members to each
//     cluster's origin net.
//
// # Usage
//
//	pool := connectivity.NewPool(runtime.NumCPU())
//	defer pool.Close()
//
//	engine, err := connectivity.New(pool, connectivity.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if err := engine.Build(ctx, items); err != nil {
//		return err
//	}
//	changed, err := engine.PropagateNets(ctx, nil)
//
// # Collision Rules
//
// Two items link when their copper touches with zero clearance on a layer
// both occupy. Pads and vias that are conditionally flashed on a layer only
// contribute their plated hole there. A pad or via touches a zone island
// when one of its anchors lies inside the island or its full shape overlaps
// it, unless the pad or via opts out of zone connection or is backdrilled on
// that layer. Two islands touch when either holds a vertex of the other.
// Items whose nets are both fixed and different are never linked.
//
// # Determinism
//
// When both items of a pair are dirty, the task of the lower Handle tests
// the pair. Links are applied by the orchestrator in handle order, and
// clusters are sorted by origin net, so results do not depend on the
// executor's scheduling.
package connectivity

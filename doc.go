/*
Package waypoint is a navigation and transition state engine for screens, cards and any other
set of destinations a renderer moves between.

It separates the canonical state (which elements exist and which state each one is heading to)
from the animation timeline that plays the way there. A host renders frames and feeds input; the
engine decides what is on screen, what is stashed and what is being torn down.

# Concept

Every destination is a keyed element with a unique, strictly increasing id. Operations (push,
pop, replace, new root, remove) rewrite the element collection in one step and mark each touched
element with the state it comes from and the state it goes to. The interaction component turns
those rewrites into keyframe segments and tracks a scalar progress across them; when progress
crosses a segment boundary the affected elements settle and destroyed ones are pruned.

# Key Features

  - Single writer, many readers: every committed snapshot is broadcast in commit order.
  - Keyframe or immediate mode per operation; progress can be driven by a clock or a drag.
  - Saved state is a plain slot map, persisted through memory, file or Redis stores, with
    optional encryption at rest.
  - Hooks and Prometheus metrics for every applied, skipped or rejected operation.

# Usage

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aretw0/waypoint"
	)

	func main() {
		ctx := context.Background()

		nav, err := waypoint.New("home", waypoint.WithSegmentDuration(300*time.Millisecond))
		if err != nil {
			log.Fatal(err)
		}
		defer nav.Close()

		if err := nav.Push(ctx, "details"); err != nil {
			log.Fatal(err)
		}

		// Render loop: advance the timeline until it settles.
		for nav.Tick(ctx, 16*time.Millisecond) {
			log.Println(nav.Snapshot().Frame.Progress)
		}

		// Back pops "details"; a second press is left to the host.
		handled, _ := nav.Back(ctx)
		log.Println("handled:", handled)
	}
*/
package waypoint

/*
Package reel is a frame-stepped execution engine for authored action graphs:
sequences of nodes that say lines, move objects, wait, branch on game
variables and chain into other graphs.

The engine is non-preemptive. Nothing runs between ticks; the host calls
Tick once per frame with the elapsed seconds and every active instance
advances exactly as far as that budget allows. A node that finishes with no
wait lets its successor run within the same tick, so authored zero-delay
chains resolve atomically from the host's point of view.

# Concept

Reel separates the authored graph (what happens) from the world ports (what
it happens to). Graphs carry typed parameters; a play request binds
arguments over the declared defaults and every step resolves its values
through those bindings. Side-effects never execute inside the engine: say
and move steps emit HostRequests through the Dispatcher port and the host
decides what a line of dialog or an object move means.

# Key Features

  - Budgeted stepping: waits consume the tick's delta time first and
    zero-wait successors cascade in the same call.
  - Concurrent instances: many graphs, and many runs of one graph when its
    policy allows, advance in a single pass.
  - Skipping: a fast-forward request drives every skippable node through
    its skip path, applying irreversible effects without the delays.
  - Derived game state: pause, blocking cutscenes and dialog options fold
    into one enumeration the host polls for input gating.
  - Save and resume: snapshots capture graph identity, node index, pending
    wait and bound parameters, and restore through pluggable stores.

# Usage

Build graphs with the dsl package or load them from YAML, then drive the
engine from your frame loop.

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/reelvm/reel"
		"github.com/reelvm/reel/pkg/adapters/memory"
		"github.com/reelvm/reel/pkg/dsl"
	)

	func main() {
		g, err := dsl.NewGraph("intro").
			Say("guard", "Halt!").For(2).
			Wait(1.5).
			Say("guard", "State your business.").For(3).
			Build()
		if err != nil {
			log.Fatal(err)
		}

		lib := memory.NewLibrary()
		lib.Add(g)

		eng, err := reel.New(lib)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if err := eng.Play(ctx, "intro"); err != nil {
			log.Fatal(err)
		}

		for range time.Tick(time.Second / 30) {
			eng.Tick(ctx, 1.0/30)
			if len(eng.Status().Instances) == 0 {
				break
			}
		}
	}
*/
package reel

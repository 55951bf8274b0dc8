// Command boardrun is a minimal driver for the board execution engine:
// it loads a Descriptor from disk, runs it to completion or a pause,
// and (given a ticket) resumes a paused run with a JSON object of reply
// inputs. It is
// deliberately not a product surface — no HTTP API, no auth — just
// enough wiring to exercise the engine end to end, grounded on
// cmd/server/main.go's composition order (config, pool, registries,
// then the thing being composed) with the HTTP/LLM/auth layers it
// wired stripped out.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/spf13/cobra"

	"github.com/duragraph/boardgraph/cmd/boardrun/config"
	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/infra/loader"
	"github.com/duragraph/boardgraph/internal/infra/metrics"
	"github.com/duragraph/boardgraph/internal/infra/migrate"
	runstatepg "github.com/duragraph/boardgraph/internal/infra/runstate/postgres"
	natstransport "github.com/duragraph/boardgraph/internal/infra/transport/nats"
	"github.com/duragraph/boardgraph/internal/infra/transport/outbox"
	"github.com/duragraph/boardgraph/internal/kit/builtin"
	"github.com/duragraph/boardgraph/internal/lifecycle"
	"github.com/duragraph/boardgraph/internal/probe"
	"github.com/duragraph/boardgraph/internal/subgraph"
	"github.com/duragraph/boardgraph/internal/traversal"
)

func main() {
	root := &cobra.Command{
		Use:   "boardrun",
		Short: "run and resume boards against the board execution engine",
	}
	root.AddCommand(runCmd(), resumeCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func migrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply (or, with --down, roll back) the postgres schema the engine's stores depend on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if down {
				return migrate.Down(cfg.Database.URL())
			}
			return migrate.Up(cfg.Database.URL())
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the schema instead of applying it")
	return cmd
}

func runCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "run <descriptor.json> <thread-id>",
		Short: "start a run from a descriptor file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			descPath, threadID := args[0], args[1]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			engine, cleanup, err := wireEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			raw, err := os.ReadFile(descPath)
			if err != nil {
				return fmt.Errorf("read descriptor: %w", err)
			}
			var d board.Descriptor
			if err := json.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("parse descriptor: %w", err)
			}

			runArgs := map[string]interface{}{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &runArgs); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}

			run, result, err := engine.Start(cmd.Context(), threadID, &d, runArgs)
			if err != nil {
				return fmt.Errorf("start run: %w", err)
			}
			return printResult(run.ID(), result)
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "", "JSON object of top-level run arguments")
	return cmd
}

func resumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <descriptor.json> <ticket> <inputs-json>",
		Short: "resume a paused run by injecting a reply onto the waiting node's input ports",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			descPath, ticket, inputsJSON := args[0], args[1], args[2]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			engine, cleanup, err := wireEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			raw, err := os.ReadFile(descPath)
			if err != nil {
				return fmt.Errorf("read descriptor: %w", err)
			}
			var d board.Descriptor
			if err := json.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("parse descriptor: %w", err)
			}

			var inputs map[string]interface{}
			if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
				return fmt.Errorf("parse inputs: %w", err)
			}

			// boardrun has no run repository of its own (that belongs to
			// the embedding system this engine is a library for); a fresh
			// Run is synthesized into the paused state the ticket implies
			// so Resume's transition check has something valid to move
			// off of.
			run := lifecycle.NewRun("", 0)
			if err := run.Start(); err != nil {
				return err
			}
			if err := run.Pause(ticket); err != nil {
				return err
			}

			result, err := engine.Resume(cmd.Context(), run, &d, ticket, inputs)
			if err != nil {
				return fmt.Errorf("resume run: %w", err)
			}
			return printResult(run.ID(), result)
		},
	}
	return cmd
}

func printResult(id string, result lifecycle.Result) error {
	if result.Ticket != "" {
		fmt.Printf("run %s paused; ticket=%s\n", id, result.Ticket)
		return nil
	}
	out, err := json.MarshalIndent(result.Output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("run %s completed:\n%s\n", id, out)
	return nil
}

// wireEngine builds a lifecycle.Engine with postgres-backed run state,
// the builtin handler kit, and (if configured) a NATS event forwarder,
// mirroring cmd/server/main.go's "config, pool, registries" ordering.
func wireEngine(ctx context.Context, cfg *config.Config) (*lifecycle.Engine, func(), error) {
	pool, err := runstatepg.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := runstatepg.New(pool)

	ld := loader.New()

	stream := harness.NewStream(64)
	pb := probe.New()
	pb.Attach(metrics.NewSink(metrics.New("boardgraph")))

	var invoker *subgraph.Invoker
	registry := handler.New(ld, func(ctx context.Context, d *board.Descriptor, inputs map[string]interface{}) (map[string]interface{}, error) {
		out, _, err := invoker.Invoke(ctx, d, inputs, nil)
		return out, err
	})
	registry.Use(builtin.Kit())
	invoker = &subgraph.Invoker{Registry: registry, Stream: stream, Probe: pb}

	engine := &lifecycle.Engine{
		Registry: registry,
		Stream:   stream,
		Probe:    pb,
		Store:    store,
		Opts:     traversal.Options{},
	}

	cleanup := func() { pool.Close() }

	if cfg.NATS.Enabled {
		logger := watermill.NewStdLogger(false, false)
		pub, err := natstransport.NewPublisher(cfg.NATS.URL, logger)
		if err == nil {
			ob := outbox.New(pool)
			relay := outbox.NewRelay(ob, pub)
			relayCtx, stopRelay := context.WithCancel(ctx)
			go relay.Run(relayCtx)

			stopJanitor, jerr := outbox.StartJanitor(relayCtx, ob, "")
			if jerr != nil {
				log.Printf("outbox janitor disabled: %v", jerr)
				stopJanitor = func() {}
			}

			go ob.Forward(ctx, "", stream)

			prev := cleanup
			cleanup = func() { prev(); stopJanitor(); stopRelay(); pub.Close() }
		} else {
			log.Printf("nats publisher disabled: %v", err)
			go drain(stream)
		}
	} else {
		go drain(stream)
	}

	return engine, cleanup, nil
}

// drain keeps the harness stream's single reader requirement satisfied
// when no transport is forwarding events.
func drain(stream *harness.Stream) {
	for range stream.Events() {
	}
}

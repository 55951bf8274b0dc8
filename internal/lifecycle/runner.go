package lifecycle

import (
	"context"
	"time"

	"github.com/duragraph/boardgraph/internal/board"
	"github.com/duragraph/boardgraph/internal/handler"
	"github.com/duragraph/boardgraph/internal/harness"
	"github.com/duragraph/boardgraph/internal/pkg/boarderrors"
	"github.com/duragraph/boardgraph/internal/pkg/idgen"
	"github.com/duragraph/boardgraph/internal/ports"
	"github.com/duragraph/boardgraph/internal/probe"
	"github.com/duragraph/boardgraph/internal/rep"
	"github.com/duragraph/boardgraph/internal/sched"
	"github.com/duragraph/boardgraph/internal/traversal"
)

// Engine ties a board's Representation together with a handler
// registry, event sinks, and a run-state store into the full
// run/pause/resume orchestration. One Engine can drive many
// independent runs concurrently (each gets its own Run, sched.State,
// and traversal.Machine); it holds no per-run mutable state itself.
type Engine struct {
	Registry *handler.Registry
	Stream   *harness.Stream
	Probe    *probe.Probe
	Store    ports.RunStateStore
	Opts     traversal.Options
}

// Result is what a top-level run produced: either a captured output, or
// a ticket the caller must present to Resume once it has a reply.
type Result struct {
	Output map[string]interface{}
	Ticket string
}

// Start runs a board from scratch: builds its Representation, seeds
// entries with args, and drives the traversal machine until it
// completes or pauses.
func (e *Engine) Start(ctx context.Context, threadID string, d *board.Descriptor, args map[string]interface{}) (*Run, Result, error) {
	run := NewRun(threadID, recursionLimitFromArgs(args))
	if err := run.Start(); err != nil {
		return run, Result{}, err
	}

	r, err := rep.Build(d)
	if err != nil {
		_ = run.Fail(err.Error())
		return run, Result{}, err
	}

	seeded := mergeArgsDefaults(d.Args, args)
	st := sched.New(r)
	for _, entry := range r.Entries {
		st.Seed(entry, seeded)
	}

	result, err := e.drive(ctx, run, r, st, nil)
	return run, result, err
}

// Resume presents a reply for the paused node recorded behind ticket,
// reconstructs scheduler state verbatim, injects each named input on
// its own port (the paused node's schema, not a fixed port name,
// determines which keys it expects), and continues the traversal
// machine. The ticket is deleted immediately on a successful load so
// it can never be replayed.
func (e *Engine) Resume(ctx context.Context, run *Run, d *board.Descriptor, ticket string, inputs map[string]interface{}) (Result, error) {
	rec, err := e.Store.Load(ctx, ticket)
	if err != nil {
		return Result{}, boarderrors.UnknownTicket(ticket)
	}
	if err := e.Store.Delete(ctx, ticket); err != nil {
		return Result{}, err
	}

	state, err := Unmarshal(rec.State)
	if err != nil {
		return Result{}, boarderrors.UnknownTicket(ticket)
	}

	r, err := rep.Build(d)
	if err != nil {
		return Result{}, err
	}
	st := sched.Restore(r, state.Snapshot)
	st.InjectReanimationInputs(state.PendingNodeID, inputs)

	if err := run.Resume(); err != nil {
		return Result{}, err
	}

	return e.drive(ctx, run, r, st, state.InvocationPath)
}

// drive runs the traversal machine to completion or a pause, handling
// both lifecycle transitions and reanimation-state persistence.
func (e *Engine) drive(ctx context.Context, run *Run, r *rep.Representation, st *sched.State, path []string) (Result, error) {
	m := traversal.New(st, e.Registry, e.Stream, e.Probe, path, e.Opts)
	outcome, err := m.Run(ctx)
	if err != nil {
		if boarderrors.Is(err, boarderrors.ErrAborted) {
			_ = run.Fail("aborted")
			return Result{}, err
		}
		_ = run.Fail(err.Error())
		return Result{}, err
	}

	if outcome.Paused != nil {
		ticket := idgen.New()
		state := ReanimationState{
			RunID:          run.ID(),
			Snapshot:       st.Snapshot(),
			PendingNodeID:  outcome.Paused.NodeID,
			PendingSchema:  outcome.Paused.Schema,
			InvocationPath: path,
			PausedAt:       time.Now(),
		}
		data, marshalErr := state.Marshal()
		if marshalErr != nil {
			_ = run.Fail(marshalErr.Error())
			return Result{}, marshalErr
		}
		if saveErr := e.Store.Save(ctx, ticket, ports.ReanimationRecord{RunID: run.ID(), State: data, Created: time.Now().Unix()}); saveErr != nil {
			_ = run.Fail(saveErr.Error())
			return Result{}, saveErr
		}
		if err := run.Pause(ticket); err != nil {
			return Result{}, err
		}
		return Result{Ticket: ticket}, nil
	}

	if err := run.Complete(outcome.Output); err != nil {
		return Result{}, err
	}
	return Result{Output: outcome.Output}, nil
}

// mergeArgsDefaults layers a graph's own declared args beneath the
// caller-supplied run args: args ⊕ supplied, with the caller's values
// taking precedence. Neither map is mutated.
func mergeArgsDefaults(defaults, supplied map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(defaults)+len(supplied))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range supplied {
		out[k] = v
	}
	return out
}

func recursionLimitFromArgs(args map[string]interface{}) int {
	if args == nil {
		return 0
	}
	if v, ok := args["recursion_limit"]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return 0
}

// CheckMultitaskStrategy reports whether starting a new run is allowed
// given an existing run's status on the same thread, per strategy.
// Grounded on the teacher's CheckMultitaskStrategy.
func CheckMultitaskStrategy(existing Status, strategy MultitaskStrategy) error {
	if existing.IsTerminal() {
		return nil
	}
	switch strategy {
	case StrategyReject:
		return boarderrors.InvalidState(string(existing), "start (reject strategy)")
	case StrategyInterrupt, StrategyRollback, StrategyEnqueue:
		return nil
	default:
		return boarderrors.InvalidState(string(existing), "start (unknown strategy)")
	}
}

// Package order tracks where a conversation is in the ordering lifecycle.
// Successful tool calls drive the transitions; everything else is ignored.
package order

import (
	"context"
	"log/slog"

	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/tool"
	"github.com/qmuntal/stateless"
)

type State string

const (
	StateBrowsing   State = "browsing"
	StateCart       State = "cart"
	StateSummarized State = "summarized"
	StateConfirmed  State = "confirmed"
	StatePaid       State = "paid"
)

var states = []State{StateBrowsing, StateCart, StateSummarized, StateConfirmed, StatePaid}

type Flow struct {
	sm     *stateless.StateMachine
	logger *mylog.Logger
}

// ParseState maps a stored state to a State. Unknown or empty values are
// treated as browsing.
func ParseState(s string) State {
	for _, st := range states {
		if string(st) == s {
			return st
		}
	}
	return StateBrowsing
}

func NewFlow(initial State, logger *mylog.Logger) *Flow {
	sm := stateless.NewStateMachine(initial)

	sm.Configure(StateBrowsing).
		Permit(tool.AddToCartName, StateCart)

	sm.Configure(StateCart).
		PermitReentry(tool.AddToCartName).
		PermitReentry(tool.CalculateTotalName).
		Permit(tool.GenerateOrderSummaryName, StateSummarized).
		Permit(tool.ProcessOrderName, StateConfirmed)

	sm.Configure(StateSummarized).
		PermitReentry(tool.GenerateOrderSummaryName).
		PermitReentry(tool.CalculateTotalName).
		Permit(tool.ProcessOrderName, StateConfirmed)

	sm.Configure(StateConfirmed).
		Permit(tool.PayOrderName, StatePaid)

	sm.Configure(StatePaid).
		Permit(tool.AddToCartName, StateCart)

	f := &Flow{
		sm:     sm,
		logger: logger,
	}
	sm.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		logger.DebugContext(ctx, "order state changed",
			slog.Any("from", t.Source),
			slog.Any("to", t.Destination),
			slog.Any("trigger", t.Trigger),
		)
	})

	return f
}

func (f *Flow) State() State {
	return f.sm.MustState().(State)
}

// Fire applies one trigger. Illegal transitions are logged and ignored.
func (f *Flow) Fire(ctx context.Context, trigger string) State {
	ok, err := f.sm.CanFire(trigger)
	if err != nil || !ok {
		if isTrigger(trigger) {
			f.logger.InfoContext(ctx, "ignoring order transition",
				slog.String("state", string(f.State())),
				slog.String("trigger", trigger),
			)
		}
		return f.State()
	}
	if err := f.sm.FireCtx(ctx, trigger); err != nil {
		f.logger.WarnContext(ctx, "failed to fire order transition", slog.String("trigger", trigger), mylog.Err(err))
	}
	return f.State()
}

// Apply fires the calls of one turn in order, skipping error results.
func (f *Flow) Apply(ctx context.Context, calls []tool.CallData) State {
	for _, call := range calls {
		if call.IsError() {
			continue
		}
		f.Fire(ctx, call.Name)
	}
	return f.State()
}

func isTrigger(name string) bool {
	switch name {
	case tool.AddToCartName,
		tool.CalculateTotalName,
		tool.GenerateOrderSummaryName,
		tool.ProcessOrderName,
		tool.PayOrderName:
		return true
	}
	return false
}

// Advance is a convenience for stored states: it parses from, applies the
// calls and returns the resulting state as a string.
func Advance(ctx context.Context, from string, calls []tool.CallData, logger *mylog.Logger) string {
	return string(NewFlow(ParseState(from), logger).Apply(ctx, calls))
}

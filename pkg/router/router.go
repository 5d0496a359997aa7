// Package router selects and invokes the talent responsible for a command.
package router

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// ErrNoMatch is returned by Route when no talent accepts the command.
var ErrNoMatch = errors.New("no talent can handle this command")

// Router dispatches commands to an ordered set of talents.
// The set is fixed at construction and safe for concurrent use.
type Router struct {
	talents []talent.Talent
	logger  *log.Logger
	tracer  trace.Tracer
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New builds a router. Registration order breaks priority ties.
func New(talents []talent.Talent, opts ...Option) *Router {
	r := &Router{
		talents: append([]talent.Talent(nil), talents...),
		logger:  log.Default(),
		tracer:  otel.Tracer("github.com/talon-assistant/talent-catalog/pkg/router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Talents returns the registered talents in registration order.
func (r *Router) Talents() []talent.Talent {
	return append([]talent.Talent(nil), r.talents...)
}

// Lookup returns the talent registered under name.
func (r *Router) Lookup(name string) (talent.Talent, bool) {
	for _, t := range r.talents {
		if t.Info().Name == name {
			return t, true
		}
	}
	return nil, false
}

// Select returns the talent that would handle text: the highest priority
// candidate, or the earliest registered among equals.
func (r *Router) Select(text string) (talent.Talent, bool) {
	var best talent.Talent
	bestPriority := 0
	for _, t := range r.talents {
		if !t.CanHandle(text) {
			continue
		}
		if p := t.Info().Priority; best == nil || p > bestPriority {
			best, bestPriority = t, p
		}
	}
	return best, best != nil
}

// Route executes cmd on the selected talent and returns its result unchanged.
// Talents convert their own failures into results; Route does not recover.
func (r *Router) Route(ctx context.Context, cmd talent.Command) (talent.Result, error) {
	_, res, err := r.Dispatch(ctx, cmd)
	return res, err
}

// Dispatch is Route that also returns the talent that ran. Each talent's
// CanHandle is consulted once.
func (r *Router) Dispatch(ctx context.Context, cmd talent.Command) (talent.Talent, talent.Result, error) {
	ctx, span := r.tracer.Start(ctx, "router.route")
	defer span.End()

	t, ok := r.Select(cmd.Text)
	if !ok {
		span.SetAttributes(attribute.Bool("talent.matched", false))
		r.logger.Debug("no talent matched", "command", cmd.Text)
		return nil, talent.Result{}, ErrNoMatch
	}

	info := t.Info()
	span.SetAttributes(
		attribute.Bool("talent.matched", true),
		attribute.String("talent.name", info.Name),
		attribute.Int("talent.priority", info.Priority),
	)
	r.logger.Debug("routing command", "talent", info.Name, "priority", info.Priority)

	res := t.Execute(ctx, cmd)
	span.SetAttributes(attribute.Bool("talent.success", res.Success))
	return t, res, nil
}

package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/radsafe/pkg/logging"
	"github.com/sweetpotato0/radsafe/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Step names a node of the state machine.
type Step string

// StepFunc runs one step against the shared state. Steps mutate the state in
// place; an error aborts the run.
type StepFunc[S any] func(ctx context.Context, state *S) error

// RouteFunc decides the step that follows from. It must be pure: everything it
// needs has to be recorded in the state by the step that just ran.
type RouteFunc[S any] func(from Step, state *S) Step

// Observer is notified after every successful step.
type Observer[S any] func(step Step, state *S)

// Graph is an explicit finite state machine over a state of type S.
type Graph[S any] struct {
	steps      map[Step]StepFunc[S]
	route      RouteFunc[S]
	start      Step
	end        Step
	maxVisits  int
	spanPrefix string
	observers  []Observer[S]
	logger     *slog.Logger
}

// Run executes steps from the start step until the end step is reached and
// returns the path that was taken. The end step has no StepFunc.
func (g *Graph[S]) Run(ctx context.Context, state *S) ([]Step, error) {
	if state == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}

	visited := make(map[Step]int, len(g.steps))
	path := make([]Step, 0, len(g.steps))
	current := g.start

	for current != g.end {
		if err := ctx.Err(); err != nil {
			return path, err
		}

		fn, exists := g.steps[current]
		if !exists {
			return path, fmt.Errorf("step %s not found", current)
		}

		// Detect runaway loops by counting how many times we revisit a step.
		visited[current]++
		if visited[current] > g.maxVisits {
			return path, fmt.Errorf("infinite loop detected at step %s", current)
		}

		if err := g.runStep(ctx, current, fn, state); err != nil {
			return path, err
		}
		path = append(path, current)
		for _, observe := range g.observers {
			observe(current, state)
		}

		next := g.route(current, state)
		g.logger.Debug("step completed", "step", string(current), "next", string(next))
		current = next
	}
	return path, nil
}

func (g *Graph[S]) runStep(ctx context.Context, step Step, fn StepFunc[S], state *S) (err error) {
	ctx, span := telemetry.Start(ctx, g.spanPrefix+string(step), attribute.String("step", string(step)))
	defer func() { telemetry.End(span, err) }()

	if err = fn(ctx, state); err != nil {
		return fmt.Errorf("error executing step %s: %w", step, err)
	}
	return nil
}

// Steps lists the registered step names, excluding the end step.
func (g *Graph[S]) Steps() []Step {
	out := make([]Step, 0, len(g.steps))
	for name := range g.steps {
		out = append(out, name)
	}
	return out
}

// Builder helps build graphs fluently
type Builder[S any] struct {
	graph *Graph[S]
	errs  []error
}

// NewBuilder creates a new graph builder
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{
		graph: &Graph[S]{
			steps:     make(map[Step]StepFunc[S]),
			maxVisits: 10,
			logger:    logging.WithComponent("graph"),
		},
	}
}

// AddStep registers a step.
func (b *Builder[S]) AddStep(name Step, fn StepFunc[S]) *Builder[S] {
	switch {
	case name == "":
		b.errs = append(b.errs, fmt.Errorf("step name cannot be empty"))
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("step %s must have non-nil function", name))
	default:
		if _, exists := b.graph.steps[name]; exists {
			b.errs = append(b.errs, fmt.Errorf("step %s already exists", name))
			return b
		}
		b.graph.steps[name] = fn
	}
	return b
}

// Route sets the transition function.
func (b *Builder[S]) Route(fn RouteFunc[S]) *Builder[S] {
	b.graph.route = fn
	return b
}

// SetStart sets the start step
func (b *Builder[S]) SetStart(name Step) *Builder[S] {
	b.graph.start = name
	return b
}

// SetEnd sets the terminal step
func (b *Builder[S]) SetEnd(name Step) *Builder[S] {
	b.graph.end = name
	return b
}

// SetMaxVisits sets the maximum number of visits to a step
func (b *Builder[S]) SetMaxVisits(n int) *Builder[S] {
	b.graph.maxVisits = n
	return b
}

// SpanPrefix prefixes span names, e.g. "radsafe.step.".
func (b *Builder[S]) SpanPrefix(prefix string) *Builder[S] {
	b.graph.spanPrefix = prefix
	return b
}

// Observe registers an observer.
func (b *Builder[S]) Observe(fn Observer[S]) *Builder[S] {
	if fn != nil {
		b.graph.observers = append(b.graph.observers, fn)
	}
	return b
}

// WithLogger overrides the component logger.
func (b *Builder[S]) WithLogger(logger *slog.Logger) *Builder[S] {
	if logger != nil {
		b.graph.logger = logger
	}
	return b
}

// Build validates the definition and returns the graph.
func (b *Builder[S]) Build() (*Graph[S], error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	g := b.graph
	switch {
	case g.start == "":
		return nil, fmt.Errorf("start step not set")
	case g.end == "":
		return nil, fmt.Errorf("end step not set")
	case g.route == nil:
		return nil, fmt.Errorf("route function not set")
	case g.maxVisits <= 0:
		return nil, fmt.Errorf("max visits must be positive, got %d", g.maxVisits)
	}
	if _, exists := g.steps[g.start]; !exists && g.start != g.end {
		return nil, fmt.Errorf("start step %s not found", g.start)
	}
	if _, exists := g.steps[g.end]; exists {
		return nil, fmt.Errorf("end step %s must not have a function", g.end)
	}
	return g, nil
}

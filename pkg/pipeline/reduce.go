package pipeline

// Middleware is a single pipeline step. It may mutate the context in place
// and must return the context to carry forward.
type Middleware func(*Context) *Context

// Handler is one entry in a middleware tree: either a Middleware, an
// IgnoreHalt-wrapped middleware, or a nested Chain.
type Handler interface {
	apply(*Context) *Context
	runsWhenHalted() bool
}

func (m Middleware) apply(ctx *Context) *Context { return m(ctx) }
func (m Middleware) runsWhenHalted() bool        { return false }

// Chain is an ordered middleware list. Nested chains are walked depth-first
// in declared order, which is equivalent to flattening them first.
type Chain []Handler

func (c Chain) apply(ctx *Context) *Context { return Reduce(ctx, c...) }

// chains are always entered so that IgnoreHalt entries inside them still
// run after a halt.
func (c Chain) runsWhenHalted() bool { return true }

type relaxed struct{ m Middleware }

func (r relaxed) apply(ctx *Context) *Context { return r.m(ctx) }
func (r relaxed) runsWhenHalted() bool        { return true }

// IgnoreHalt marks a middleware to run even when the context is halted.
func IgnoreHalt(m Middleware) Handler { return relaxed{m: m} }

// Reduce folds the context through the handlers in order. A handler is
// skipped once Halt is set unless it opts in via IgnoreHalt. A middleware
// that panics propagates; translating that into a 500 is the host
// boundary's job, never the reducer's.
func Reduce(ctx *Context, handlers ...Handler) *Context {
	for _, h := range handlers {
		if ctx.Halt && !h.runsWhenHalted() {
			continue
		}
		ctx = h.apply(ctx)
	}
	return ctx
}

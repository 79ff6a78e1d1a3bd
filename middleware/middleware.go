// Package middleware runs caller-facing request filters around the answer
// workflow. A middleware either passes the request on or answers it itself.
package middleware

import (
	"context"

	"github.com/sweetpotato0/radsafe/message"
)

// Context represents the middleware execution context
type Context struct {
	// Question as received from the caller
	Question string

	// History is the client-held chat history sent with the request
	History []message.Turn

	// Answer is filled by the final handler, or by a middleware that
	// handled the request itself
	Answer string

	// Handled is true when a middleware answered without calling next.
	// History then already contains the new turn.
	Handled bool

	// Metadata for passing data between middlewares
	Metadata map[string]interface{}

	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context, question string, history []message.Turn) *Context {
	return &Context{
		Question: question,
		History:  history,
		Metadata: make(map[string]interface{}),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// Reply answers the request without running the rest of the chain.
func (c *Context) Reply(answer string) {
	c.Answer = answer
	c.Handled = true
	c.History = message.AppendTurn(c.History, c.Question, answer)
}

// Middleware defines the interface for middleware components
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic. Returning an error or not calling
	// next stops the chain.
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// Func adapts a plain function to the Middleware interface.
type Func struct {
	name string
	fn   func(*Context, Handler) error
}

// NewFunc creates a named middleware from fn.
func NewFunc(name string, fn func(*Context, Handler) error) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the middleware name
func (f *Func) Name() string { return f.name }

// Execute calls the wrapped function
func (f *Func) Execute(ctx *Context, next Handler) error { return f.fn(ctx, next) }

// MiddlewareChain represents a sequence of middleware to be executed
type MiddlewareChain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *MiddlewareChain {
	return &MiddlewareChain{
		middlewares: middlewares,
	}
}

// Add appends a middleware to the chain
func (c *MiddlewareChain) Add(m Middleware) *MiddlewareChain {
	if m != nil {
		c.middlewares = append(c.middlewares, m)
	}
	return c
}

// Names lists the middleware names in execution order.
func (c *MiddlewareChain) Names() []string {
	names := make([]string, 0, len(c.middlewares))
	for _, m := range c.middlewares {
		names = append(names, m.Name())
	}
	return names
}

// Execute runs all middlewares in the chain
func (c *MiddlewareChain) Execute(ctx *Context, finalHandler Handler) error {
	if ctx == nil {
		return ErrInvalidContext
	}
	return c.executeMiddleware(ctx, 0, finalHandler)
}

// executeMiddleware recursively executes middlewares in sequence
func (c *MiddlewareChain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		if finalHandler == nil {
			return nil
		}
		return finalHandler(ctx)
	}

	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}

	return c.middlewares[index].Execute(ctx, nextHandler)
}

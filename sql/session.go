package sql

import (
	"context"
	"io"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
	uuid "github.com/satori/go.uuid"
)

// Session holds the state of one client of the engine.
type Session interface {
	// ID returns the unique identifier of the session.
	ID() string
}

// BaseSession is the basic session type.
type BaseSession struct {
	id string
}

// ID implements the Session interface.
func (s *BaseSession) ID() string { return s.id }

// NewBaseSession creates a new session with a random unique id.
func NewBaseSession() Session {
	return &BaseSession{id: uuid.NewV4().String()}
}

// Context of the query execution.
type Context struct {
	context.Context
	Session
	query    string
	tracer   opentracing.Tracer
	rootSpan opentracing.Span
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithSession adds the given session to the context.
func WithSession(s Session) ContextOption {
	return func(ctx *Context) {
		ctx.Session = s
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithQuery adds the query string to the context.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) {
		ctx.query = q
	}
}

// WithRootSpan sets the root span of the context.
func WithRootSpan(s opentracing.Span) ContextOption {
	return func(ctx *Context) {
		ctx.rootSpan = s
	}
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Session == nil {
		c.Session = NewBaseSession()
	}

	return c
}

// NewEmptyContext returns a context with a fresh session and no tracing,
// for programmatic and test use.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// Query returns the query string of this context.
func (c *Context) Query() string { return c.query }

// Span creates a new tracing span with the given operation name. It
// returns the span and a new context with the span set as its root, so
// spans created from the returned context are children of this one.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	if c.rootSpan != nil {
		opts = append(opts, opentracing.ChildOf(c.rootSpan.Context()))
	}

	span := c.tracer.StartSpan(opName, opts...)
	ctx := *c
	ctx.rootSpan = span
	return span, &ctx
}

// RootSpan returns the root span of the context, if any.
func (c *Context) RootSpan() opentracing.Span { return c.rootSpan }

// NewSpanIter creates a RowIter executed in the given span. The span is
// finished with iteration metrics once the iterator is exhausted or
// closed. If the span belongs to a noop tracer the iterator is returned
// unwrapped.
func NewSpanIter(span opentracing.Span, iter RowIter) RowIter {
	if _, ok := span.Tracer().(opentracing.NoopTracer); ok {
		return iter
	}

	return &spanIter{
		span: span,
		iter: iter,
	}
}

type spanIter struct {
	span  opentracing.Span
	iter  RowIter
	count int
	max   time.Duration
	min   time.Duration
	total time.Duration
	done  bool
}

func (i *spanIter) updateTimings(start time.Time) {
	elapsed := time.Since(start)
	if i.max < elapsed {
		i.max = elapsed
	}

	if i.min > elapsed || i.min == 0 {
		i.min = elapsed
	}

	i.total += elapsed
}

func (i *spanIter) Next() (Row, error) {
	start := time.Now()

	row, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, err
	}

	if err != nil {
		i.finishWithError(err)
		return nil, err
	}

	i.count++
	i.updateTimings(start)
	return row, nil
}

func (i *spanIter) finish() {
	if i.done {
		return
	}

	var avg time.Duration
	if i.count > 0 {
		avg = i.total / time.Duration(i.count)
	}

	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields: []otlog.Field{
					otlog.Int("rows", i.count),
					otlog.String("total_time", i.total.String()),
					otlog.String("max_time", i.max.String()),
					otlog.String("min_time", i.min.String()),
					otlog.String("avg_time", avg.String()),
				},
			},
		},
	})
	i.done = true
}

func (i *spanIter) finishWithError(err error) {
	if i.done {
		return
	}

	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields:    []otlog.Field{otlog.String("error", err.Error())},
			},
		},
	})
	i.done = true
}

func (i *spanIter) Close() error {
	i.finish()
	return i.iter.Close()
}

package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NodeMeta contains metadata about a node for telemetry purposes.
type NodeMeta struct {
	ID        string   // Fully qualified node ID (namespace.name or just name)
	Namespace string   // Node namespace (may be empty)
	Name      string   // Node name (required)
	Version   string   // Node version (optional)
	Tags      []string // Node tags for discovery (optional)
	Category  string   // Node category (optional)
}

// SpanName returns the deterministic span name for this node.
// Format: node.exec.<namespace>.<name> or node.exec.<name>
func (m NodeMeta) SpanName() string {
	if m.Namespace != "" {
		return "node.exec." + m.Namespace + "." + m.Name
	}
	return "node.exec." + m.Name
}

// NodeID returns the fully qualified node identifier.
// If ID field is set, returns it. Otherwise constructs from namespace and name.
func (m NodeMeta) NodeID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Validate returns ErrMissingNodeName when Name is empty.
func (m NodeMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingNodeName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with node-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan returns a context derived from ctx that carries the new span; it reports no error.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for node execution.
	StartSpan(ctx context.Context, meta NodeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with node metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta NodeMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	// Build attributes
	attrs := []attribute.KeyValue{
		attribute.String("node.id", meta.NodeID()),
		attribute.String("node.name", meta.Name),
		attribute.Bool("node.error", false), // Will be updated in EndSpan if error
	}

	// Add namespace if present
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("node.namespace", meta.Namespace))
	}

	// Add optional attributes if present
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("node.version", meta.Version))
	}
	if meta.Category != "" {
		attrs = append(attrs, attribute.String("node.category", meta.Category))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("node.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("node.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta NodeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

package database

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.GetTracerProvider().Tracer("lavajato.repository")

// startSpan abre um span de repositório com os atributos de banco
func startSpan(ctx context.Context, name, operation, table string) (context.Context, trace.Span) {
	return tracer.Start(
		ctx,
		name,
		trace.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.table", table),
		),
	)
}

// recordError marca o span com a falha, quando houver
func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, "database error")
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
}

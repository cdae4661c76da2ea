package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/devportal/internal/domain"
)

const (
	kindEmail         = "email"
	kindVendorRequest = "vendor_approval"
	kindJoinRequest   = "join_approval"
)

// TracingNotifier wraps a domain.Notifier with OpenTelemetry tracing and
// counts notifications by kind and outcome.
type TracingNotifier struct {
	next   domain.Notifier
	tracer trace.Tracer
	sent   metric.Int64Counter
}

// Compile-time check: TracingNotifier implements domain.Notifier.
var _ domain.Notifier = (*TracingNotifier)(nil)

// NewTracingNotifier creates a tracing decorator around the given notifier.
func NewTracingNotifier(next domain.Notifier) (*TracingNotifier, error) {
	sent, err := otel.Meter(tracerName).Int64Counter("devportal.notifications",
		metric.WithDescription("Notifications handed to the sender"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notifications counter: %w", err)
	}

	return &TracingNotifier{
		next:   next,
		tracer: otel.Tracer(tracerName),
		sent:   sent,
	}, nil
}

func (n *TracingNotifier) Send(ctx context.Context, email domain.Email) error {
	ctx, span := n.tracer.Start(ctx, "Notifier.Send",
		trace.WithAttributes(attribute.String("email.subject", email.Subject)),
	)

	err := n.next.Send(ctx, email)
	n.count(ctx, kindEmail, err)
	finish(span, err)
	return err
}

func (n *TracingNotifier) ApproveVendor(ctx context.Context, vendorID, name string, requester domain.Contact) error {
	ctx, span := n.tracer.Start(ctx, "Notifier.ApproveVendor",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)

	err := n.next.ApproveVendor(ctx, vendorID, name, requester)
	n.count(ctx, kindVendorRequest, err)
	finish(span, err)
	return err
}

func (n *TracingNotifier) ApproveJoinVendor(ctx context.Context, req domain.JoinRequest) error {
	ctx, span := n.tracer.Start(ctx, "Notifier.ApproveJoinVendor",
		trace.WithAttributes(attribute.String("vendor.id", req.Vendor)),
	)

	err := n.next.ApproveJoinVendor(ctx, req)
	n.count(ctx, kindJoinRequest, err)
	finish(span, err)
	return err
}

func (n *TracingNotifier) count(ctx context.Context, kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	n.sent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("notification.kind", kind),
		attribute.String("outcome", outcome),
	))
}

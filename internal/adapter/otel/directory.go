package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/devportal/internal/domain"
)

// TracingDirectory wraps a domain.UserDirectory with OpenTelemetry tracing.
// Email addresses are kept out of span attributes.
type TracingDirectory struct {
	next   domain.UserDirectory
	tracer trace.Tracer
}

// Compile-time check: TracingDirectory implements domain.UserDirectory.
var _ domain.UserDirectory = (*TracingDirectory)(nil)

// NewTracingDirectory creates a tracing decorator around the given directory.
func NewTracingDirectory(next domain.UserDirectory) *TracingDirectory {
	return &TracingDirectory{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (d *TracingDirectory) FindUser(ctx context.Context, email string) (domain.User, bool, error) {
	ctx, span := d.tracer.Start(ctx, "UserDirectory.FindUser")

	user, found, err := d.next.FindUser(ctx, email)
	span.SetAttributes(attribute.Bool("user.found", found))
	if found {
		span.SetAttributes(attribute.Int("user.vendor_count", len(user.Vendors)))
	}
	finish(span, err)
	return user, found, err
}

func (d *TracingDirectory) AddUserToVendor(ctx context.Context, email, vendorID string) error {
	ctx, span := d.tracer.Start(ctx, "UserDirectory.AddUserToVendor",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)

	err := d.next.AddUserToVendor(ctx, email, vendorID)
	finish(span, err)
	return err
}

func (d *TracingDirectory) RemoveUserFromVendor(ctx context.Context, email, vendorID string) error {
	ctx, span := d.tracer.Start(ctx, "UserDirectory.RemoveUserFromVendor",
		trace.WithAttributes(attribute.String("vendor.id", vendorID)),
	)

	err := d.next.RemoveUserFromVendor(ctx, email, vendorID)
	finish(span, err)
	return err
}

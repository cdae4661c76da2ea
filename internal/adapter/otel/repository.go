package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/devportal/internal/domain"
)

// TracingVendorRepository wraps a domain.VendorRepository with OpenTelemetry tracing.
// Each method creates a span with vendor attributes and records errors.
type TracingVendorRepository struct {
	next   domain.VendorRepository
	tracer trace.Tracer
}

// Compile-time check: TracingVendorRepository implements domain.VendorRepository.
var _ domain.VendorRepository = (*TracingVendorRepository)(nil)

// NewTracingVendorRepository creates a tracing decorator around the given repository.
func NewTracingVendorRepository(next domain.VendorRepository) *TracingVendorRepository {
	return &TracingVendorRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingVendorRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)

	vendors, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(vendors)))
	}
	finish(span, err)
	return vendors, err
}

func (r *TracingVendorRepository) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.GetByID",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)

	vendor, err := r.next.GetByID(ctx, id)
	finish(span, err)
	return vendor, err
}

func (r *TracingVendorRepository) Create(ctx context.Context, vendor domain.Vendor) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.Create",
		trace.WithAttributes(
			attribute.String("vendor.id", vendor.ID),
			attribute.Bool("vendor.approved", vendor.IsApproved),
		),
	)

	err := r.next.Create(ctx, vendor)
	finish(span, err)
	return err
}

func (r *TracingVendorRepository) Update(ctx context.Context, id string, patch domain.VendorPatch) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.Update",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)
	if patch.ID != nil {
		span.SetAttributes(attribute.String("vendor.new_id", *patch.ID))
	}
	if patch.IsApproved != nil {
		span.SetAttributes(attribute.Bool("vendor.approved", *patch.IsApproved))
	}

	err := r.next.Update(ctx, id, patch)
	finish(span, err)
	return err
}

func (r *TracingVendorRepository) CheckExists(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.CheckExists",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)

	err := r.next.CheckExists(ctx, id)
	finish(span, err)
	return err
}

func (r *TracingVendorRepository) CheckNotExists(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "VendorRepository.CheckNotExists",
		trace.WithAttributes(attribute.String("vendor.id", id)),
	)

	err := r.next.CheckNotExists(ctx, id)
	finish(span, err)
	return err
}

// TracingInvitationRepository wraps a domain.InvitationRepository with
// OpenTelemetry tracing. Codes are credentials and never become attributes.
type TracingInvitationRepository struct {
	next   domain.InvitationRepository
	tracer trace.Tracer
}

// Compile-time check: TracingInvitationRepository implements domain.InvitationRepository.
var _ domain.InvitationRepository = (*TracingInvitationRepository)(nil)

// NewTracingInvitationRepository creates a tracing decorator around the given repository.
func NewTracingInvitationRepository(next domain.InvitationRepository) *TracingInvitationRepository {
	return &TracingInvitationRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingInvitationRepository) Insert(ctx context.Context, inv domain.Invitation) error {
	ctx, span := r.tracer.Start(ctx, "InvitationRepository.Insert",
		trace.WithAttributes(attribute.String("vendor.id", inv.Vendor)),
	)

	err := r.next.Insert(ctx, inv)
	finish(span, err)
	return err
}

func (r *TracingInvitationRepository) GetByCode(ctx context.Context, code string) (domain.Invitation, error) {
	ctx, span := r.tracer.Start(ctx, "InvitationRepository.GetByCode")

	inv, err := r.next.GetByCode(ctx, code)
	if err == nil {
		span.SetAttributes(
			attribute.String("vendor.id", inv.Vendor),
			attribute.Bool("invitation.accepted", inv.AcceptedOn != nil),
		)
	}
	finish(span, err)
	return inv, err
}

func (r *TracingInvitationRepository) MarkAccepted(ctx context.Context, code string, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "InvitationRepository.MarkAccepted")

	err := r.next.MarkAccepted(ctx, code, at)
	finish(span, err)
	return err
}

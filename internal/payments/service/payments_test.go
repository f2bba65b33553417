package service

import (
	"context"
	"testing"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type mockPaymentRepository struct {
	FindByPaymentIDFunc   func(ctx context.Context, paymentID string) (*model.Booking, error)
	TransitionPaymentFunc func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error)
}

func (m *mockPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error) {
	return m.FindByPaymentIDFunc(ctx, paymentID)
}

func (m *mockPaymentRepository) TransitionPayment(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
	return m.TransitionPaymentFunc(ctx, paymentID, from, to, failureReason)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR}),
	}
}

func TestApportion(t *testing.T) {
	svc := NewPaymentService(nil, testConfig())

	tests := []struct {
		name      string
		venue     int64
		coach     int64
		discount  int64
		scope     model.PromoApplicability
		wantVenue int64
		wantCoach int64
	}{
		{
			name:      "whole booking discount from venue first",
			venue:     2000,
			coach:     1000,
			discount:  300,
			scope:     model.PromoApplyAll,
			wantVenue: 1700,
			wantCoach: 1000,
		},
		{
			name:      "whole booking discount spills to coach",
			venue:     2000,
			coach:     1000,
			discount:  2500,
			scope:     model.PromoApplyAll,
			wantVenue: 0,
			wantCoach: 500,
		},
		{
			name:      "whole booking discount never goes negative",
			venue:     2000,
			coach:     1000,
			discount:  5000,
			scope:     model.PromoApplyAll,
			wantVenue: 0,
			wantCoach: 0,
		},
		{
			name:      "venue scoped capped at venue share",
			venue:     2000,
			coach:     1000,
			discount:  2500,
			scope:     model.PromoApplyVenueOnly,
			wantVenue: 0,
			wantCoach: 1000,
		},
		{
			name:      "coach scoped capped at coach share",
			venue:     2000,
			coach:     1000,
			discount:  1500,
			scope:     model.PromoApplyCoachOnly,
			wantVenue: 2000,
			wantCoach: 0,
		},
		{
			name:      "zero discount is a no-op",
			venue:     2000,
			coach:     1000,
			discount:  0,
			scope:     model.PromoApplyAll,
			wantVenue: 2000,
			wantCoach: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotVenue, gotCoach := svc.Apportion(tt.venue, tt.coach, tt.discount, tt.scope)
			if gotVenue != tt.wantVenue || gotCoach != tt.wantCoach {
				t.Errorf("expected venue=%d coach=%d, got venue=%d coach=%d",
					tt.wantVenue, tt.wantCoach, gotVenue, gotCoach)
			}
		})
	}
}

func TestOpenRecords(t *testing.T) {
	svc := NewPaymentService(nil, testConfig())

	records := svc.OpenRecords("venue-1", "coach-1", 1700, 1000)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PayeeType != model.PayeeVenue || records[0].Amount != 1700 {
		t.Errorf("unexpected venue record: %+v", records[0])
	}
	if records[1].PayeeType != model.PayeeCoach || records[1].Amount != 1000 {
		t.Errorf("unexpected coach record: %+v", records[1])
	}
	for _, rec := range records {
		if rec.Status != model.PaymentPending {
			t.Errorf("expected PENDING record, got %s", rec.Status)
		}
		if rec.ID == "" {
			t.Error("expected record id")
		}
	}
	if records[0].ID == records[1].ID {
		t.Error("expected distinct record ids")
	}
}

func TestOpenRecords_VenueOnly(t *testing.T) {
	svc := NewPaymentService(nil, testConfig())

	records := svc.OpenRecords("venue-1", "", 2000, 0)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].PayeeType != model.PayeeVenue {
		t.Errorf("expected venue record, got %s", records[0].PayeeType)
	}
}

func TestMarkPaid_Transitions(t *testing.T) {
	var gotFrom, gotTo model.PaymentStatus
	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			gotFrom, gotTo = from, to
			return &model.Booking{ID: "bk-1"}, nil
		},
	}

	svc := NewPaymentService(repo, testConfig())

	booking, changed, err := svc.MarkPaid(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if booking.ID != "bk-1" {
		t.Errorf("expected booking bk-1, got %s", booking.ID)
	}
	if gotFrom != model.PaymentPending || gotTo != model.PaymentPaid {
		t.Errorf("expected PENDING->PAID, got %s->%s", gotFrom, gotTo)
	}
}

func TestMarkPaid_ReplayedCallbackIsIdempotent(t *testing.T) {
	booking := &model.Booking{
		ID: "bk-1",
		Payments: []model.PaymentRecord{
			{ID: "pay-1", Status: model.PaymentPaid},
		},
	}

	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			return nil, paymentserrors.ErrStateMismatch
		},
		FindByPaymentIDFunc: func(ctx context.Context, paymentID string) (*model.Booking, error) {
			return booking, nil
		},
	}

	svc := NewPaymentService(repo, testConfig())

	got, changed, err := svc.MarkPaid(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("expected replay to be absorbed, got %v", err)
	}
	if changed {
		t.Error("expected changed=false for a replayed callback")
	}
	if got.ID != "bk-1" {
		t.Errorf("expected booking bk-1, got %s", got.ID)
	}
}

func TestMarkPaid_FailedRecordIsTerminal(t *testing.T) {
	booking := &model.Booking{
		ID: "bk-1",
		Payments: []model.PaymentRecord{
			{ID: "pay-1", Status: model.PaymentFailed},
		},
	}

	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			return nil, paymentserrors.ErrStateMismatch
		},
		FindByPaymentIDFunc: func(ctx context.Context, paymentID string) (*model.Booking, error) {
			return booking, nil
		},
	}

	svc := NewPaymentService(repo, testConfig())

	_, _, err := svc.MarkPaid(context.Background(), "pay-1")
	if !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestMarkFailed_CarriesReason(t *testing.T) {
	var gotReason string
	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			gotReason = failureReason
			return &model.Booking{ID: "bk-1"}, nil
		},
	}

	svc := NewPaymentService(repo, testConfig())

	if _, _, err := svc.MarkFailed(context.Background(), "pay-1", "card declined"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotReason != "card declined" {
		t.Errorf("expected failure reason to pass through, got %q", gotReason)
	}
}

func TestMarkRefunded_RequiresPaid(t *testing.T) {
	var gotFrom model.PaymentStatus
	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			gotFrom = from
			return &model.Booking{ID: "bk-1"}, nil
		},
	}

	svc := NewPaymentService(repo, testConfig())

	if _, _, err := svc.MarkRefunded(context.Background(), "pay-1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotFrom != model.PaymentPaid {
		t.Errorf("expected refund to require PAID, got %s", gotFrom)
	}
}

func TestMarkPaid_UnknownRecord(t *testing.T) {
	repo := &mockPaymentRepository{
		TransitionPaymentFunc: func(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
			return nil, paymentserrors.ErrNotFound
		},
	}

	svc := NewPaymentService(repo, testConfig())

	_, _, err := svc.MarkPaid(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

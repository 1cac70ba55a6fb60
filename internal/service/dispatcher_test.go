package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

type fakeOutbox struct {
	due         []domain.Notification
	sent        []uuid.UUID
	failed      []uuid.UUID
	rescheduled map[uuid.UUID]time.Time
}

func newFakeOutbox(due ...domain.Notification) *fakeOutbox {
	return &fakeOutbox{due: due, rescheduled: map[uuid.UUID]time.Time{}}
}

func (f *fakeOutbox) GetDue(ctx context.Context, limit int) ([]domain.Notification, error) {
	return f.due, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id uuid.UUID) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeOutbox) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.rescheduled[id] = at
	return nil
}

type fakeMailer struct {
	err   error
	mails []Mail
}

func (f *fakeMailer) Send(ctx context.Context, mail Mail) error {
	if f.err != nil {
		return f.err
	}
	f.mails = append(f.mails, mail)
	return nil
}

func mustNotification(t *testing.T, kind domain.NotificationKind, recipient string, payload any) domain.Notification {
	t.Helper()
	n, err := domain.NewNotification(kind, recipient, payload, time.Now().UTC())
	require.NoError(t, err)
	return *n
}

func TestDispatcher_SendsAndMarksSent(t *testing.T) {
	n := mustNotification(t, domain.NotificationKindPurchaseConfirmed, "buyer@test.com",
		domain.PurchaseConfirmedPayload{BuyerName: "Buyer", ProductName: "Keyboard", Quantity: 2, Amount: "1000.00"})

	outbox := newFakeOutbox(n)
	mailer := &fakeMailer{}
	d := NewDispatcher(outbox, mailer, slog.Default(), time.Second)

	d.poll(context.Background())

	require.Len(t, mailer.mails, 1)
	assert.Equal(t, "buyer@test.com", mailer.mails[0].To)
	assert.Contains(t, mailer.mails[0].Body, "Keyboard")
	assert.Contains(t, mailer.mails[0].Body, "1000.00")
	assert.Equal(t, []uuid.UUID{n.ID}, outbox.sent)
	assert.Empty(t, outbox.failed)
}

func TestDispatcher_ReschedulesOnFailure(t *testing.T) {
	n := mustNotification(t, domain.NotificationKindShippingRequested, "seller@test.com",
		domain.ShippingRequestedPayload{SellerName: "Seller", BuyerName: "Buyer", ProductName: "Keyboard", Quantity: 1})

	outbox := newFakeOutbox(n)
	mailer := &fakeMailer{err: errors.New("gateway down")}
	d := NewDispatcher(outbox, mailer, slog.Default(), time.Second)

	before := time.Now().UTC()
	d.poll(context.Background())

	require.Contains(t, outbox.rescheduled, n.ID)
	// First retry lands 10s out.
	assert.WithinDuration(t, before.Add(10*time.Second), outbox.rescheduled[n.ID], 2*time.Second)
	assert.Empty(t, outbox.sent)
	assert.Empty(t, outbox.failed)
}

func TestDispatcher_ParksAfterMaxAttempts(t *testing.T) {
	n := mustNotification(t, domain.NotificationKindShippingInTransit, "buyer@test.com",
		domain.ShippingInTransitPayload{BuyerName: "Buyer", ProductName: "Keyboard", CourierName: "FastCourier", TrackingNumber: "TRK-001"})
	n.Attempts = maxDeliveryAttempts - 1

	outbox := newFakeOutbox(n)
	mailer := &fakeMailer{err: errors.New("gateway down")}
	d := NewDispatcher(outbox, mailer, slog.Default(), time.Second)

	d.poll(context.Background())

	assert.Equal(t, []uuid.UUID{n.ID}, outbox.failed)
	assert.Empty(t, outbox.rescheduled)
}

func TestDispatcher_ParksMalformedPayload(t *testing.T) {
	n := mustNotification(t, domain.NotificationKindPurchaseConfirmed, "buyer@test.com",
		domain.PurchaseConfirmedPayload{})
	n.Payload = []byte(`{not json`)

	outbox := newFakeOutbox(n)
	mailer := &fakeMailer{}
	d := NewDispatcher(outbox, mailer, slog.Default(), time.Second)

	d.poll(context.Background())

	assert.Equal(t, []uuid.UUID{n.ID}, outbox.failed)
	assert.Empty(t, mailer.mails)
}

func TestRenderMail_UnknownKind(t *testing.T) {
	_, _, err := renderMail(domain.Notification{Kind: "something.else", Payload: []byte(`{}`)})
	assert.Error(t, err)
}

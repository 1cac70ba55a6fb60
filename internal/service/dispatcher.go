package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
)

const maxDeliveryAttempts = 5

type dispatcherOutboxRepo interface {
	GetDue(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time) error
}

type mailSender interface {
	Send(ctx context.Context, mail Mail) error
}

// Dispatcher drains the notification outbox on a fixed interval and
// hands each row to the mail gateway. A failed delivery is retried with
// a growing delay; after maxDeliveryAttempts the row is parked as
// failed. Delivery never feeds back into the transaction that queued
// the notification.
type Dispatcher struct {
	outbox   dispatcherOutboxRepo
	mailer   mailSender
	logger   *slog.Logger
	interval time.Duration
}

func NewDispatcher(outbox dispatcherOutboxRepo, mailer mailSender, logger *slog.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		mailer:   mailer,
		logger:   logger,
		interval: interval,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("notification dispatcher started", "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

func (d *Dispatcher) poll(ctx context.Context) {
	due, err := d.outbox.GetDue(ctx, 10)
	if err != nil {
		d.logger.Error("failed to fetch due notifications", "error", err)
		return
	}

	for _, n := range due {
		if err := d.dispatch(ctx, n); err != nil {
			d.logger.Error("failed to dispatch notification",
				"notification_id", n.ID,
				"kind", n.Kind,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, n domain.Notification) error {
	subject, body, err := renderMail(n)
	if err != nil {
		// A payload that cannot render never will; park it.
		d.logger.Error("malformed notification payload", "notification_id", n.ID, "error", err)
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return d.outbox.MarkFailed(ctx, n.ID)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = d.mailer.Send(sendCtx, Mail{To: n.Recipient, Subject: subject, Body: body})
	if err == nil {
		metrics.NotificationsSent.WithLabelValues("sent").Inc()
		d.logger.Info("notification sent",
			"notification_id", n.ID,
			"kind", n.Kind,
			"recipient", n.Recipient,
		)
		return d.outbox.MarkSent(ctx, n.ID)
	}

	attempts := n.Attempts + 1
	if attempts >= maxDeliveryAttempts {
		d.logger.Error("notification delivery exhausted",
			"notification_id", n.ID,
			"kind", n.Kind,
			"attempts", attempts,
			"error", err,
		)
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return d.outbox.MarkFailed(ctx, n.ID)
	}

	delay := time.Duration(n.Attempts*10+10) * time.Second
	d.logger.Warn("notification delivery failed, rescheduling",
		"notification_id", n.ID,
		"attempt", attempts,
		"retry_in", delay,
		"error", err,
	)
	metrics.NotificationsSent.WithLabelValues("retried").Inc()
	return d.outbox.Reschedule(ctx, n.ID, time.Now().UTC().Add(delay))
}

func renderMail(n domain.Notification) (subject, body string, err error) {
	switch n.Kind {
	case domain.NotificationKindPurchaseConfirmed:
		var p domain.PurchaseConfirmedPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return "", "", fmt.Errorf("renderMail: %w", err)
		}
		subject = "Your purchase is confirmed"
		body = fmt.Sprintf("%s, your order of %d x %s for %s has been confirmed.",
			p.BuyerName, p.Quantity, p.ProductName, p.Amount)
	case domain.NotificationKindShippingRequested:
		var p domain.ShippingRequestedPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return "", "", fmt.Errorf("renderMail: %w", err)
		}
		subject = "New order awaiting shipment"
		body = fmt.Sprintf("%s, %s ordered %d x %s. Please prepare the shipment.",
			p.SellerName, p.BuyerName, p.Quantity, p.ProductName)
	case domain.NotificationKindShippingInTransit:
		var p domain.ShippingInTransitPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return "", "", fmt.Errorf("renderMail: %w", err)
		}
		subject = "Your order is on its way"
		body = fmt.Sprintf("%s, your %s shipped via %s. Tracking number: %s.",
			p.BuyerName, p.ProductName, p.CourierName, p.TrackingNumber)
	default:
		return "", "", fmt.Errorf("renderMail: unknown kind %q", n.Kind)
	}
	return subject, body, nil
}

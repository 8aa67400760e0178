// Package notify delivers operator alerts raised by the sync client.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Alert is a short operator-facing notification
type Alert struct {
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ConflictID string    `json:"conflict_id,omitempty"`
	Location   string    `json:"location,omitempty"`
	Severity   string    `json:"severity,omitempty"`
	RaisedAt   time.Time `json:"raised_at"`
}

// Notifier delivers alerts. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Nop discards every alert
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// LogNotifier writes alerts to the structured log
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.log.Warn(alert.Title,
		zap.String("body", alert.Body),
		zap.String("conflict_id", alert.ConflictID),
		zap.String("location", alert.Location),
		zap.String("severity", alert.Severity),
	)
	return nil
}

// Multi fans an alert out to every notifier and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package events publishes pricing and duplicate-detection outcomes for
// downstream consumers. Publishing is fire-and-forget: a failed publish is
// logged and counted but never fails the request that caused it.
package events

import (
	"context"
	"time"
)

// Subjects, relative to the publisher's prefix.
const (
	SubjectFilingPriced      = "filing.priced"
	SubjectDuplicateDetected = "filing.duplicate_detected"
)

// Publisher sends an event payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

// FilingPriced is emitted after a successful quote. Amounts are fixed
// two-decimal strings.
type FilingPriced struct {
	RequestID    string    `json:"requestId,omitempty"`
	FilerID      string    `json:"filerId,omitempty"`
	FilingID     string    `json:"filingId,omitempty"`
	FilingType   string    `json:"filingType"`
	TableVersion string    `json:"tableVersion"`
	VehicleCount int       `json:"vehicleCount"`
	TotalTax     string    `json:"totalTax"`
	ServiceFee   string    `json:"serviceFee"`
	SalesTax     string    `json:"salesTax"`
	GrandTotal   string    `json:"grandTotal"`
	TotalRefund  string    `json:"totalRefund"`
	PricedAt     time.Time `json:"pricedAt"`
}

// DuplicateDetected is emitted when a new filing matches one in progress.
type DuplicateDetected struct {
	RequestID  string    `json:"requestId,omitempty"`
	FilerID    string    `json:"filerId"`
	FilingID   string    `json:"filingId"`
	FilingType string    `json:"filingType"`
	Status     string    `json:"status"`
	Percentage int       `json:"percentage"`
	DetectedAt time.Time `json:"detectedAt"`
}

// NoopPublisher discards events. It is used when NATS_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// Observer is told about every publish attempt.
type Observer func(subject string, err error)

type observed struct {
	Publisher
	observe Observer
}

// Observe wraps p so that every publish outcome is reported to fn.
func Observe(p Publisher, fn Observer) Publisher {
	if fn == nil {
		return p
	}
	return &observed{Publisher: p, observe: fn}
}

func (o *observed) Publish(ctx context.Context, subject string, payload any) error {
	err := o.Publisher.Publish(ctx, subject, payload)
	o.observe(subject, err)
	return err
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs    []*nats.Msg
	err     error
	drained bool
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	pub := newNATSPublisher(conn, "haulfile", zerolog.Nop())

	ctx := domain.NewContextWithRequestID(context.Background(), "req-9")
	event := FilingPriced{
		FilingType:   "standard",
		TableVersion: "2290-cap-u",
		VehicleCount: 2,
		TotalTax:     "210.00",
		ServiceFee:   "29.99",
		SalesTax:     "0.00",
		GrandTotal:   "239.99",
		TotalRefund:  "0.00",
		PricedAt:     time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.Publish(ctx, SubjectFilingPriced, event))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "haulfile.filing.priced", msg.Subject)
	assert.Equal(t, "req-9", msg.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))

	var decoded FilingPriced
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNATSPublisher_NoPrefix(t *testing.T) {
	conn := &fakeConn{}
	pub := newNATSPublisher(conn, "", zerolog.Nop())

	require.NoError(t, pub.Publish(context.Background(), SubjectDuplicateDetected, DuplicateDetected{FilingID: "fil_1"}))
	assert.Equal(t, "filing.duplicate_detected", conn.msgs[0].Subject)
	assert.Empty(t, conn.msgs[0].Header.Get("X-Request-ID"))
}

func TestNATSPublisher_Errors(t *testing.T) {
	t.Run("cancelled context publishes nothing", func(t *testing.T) {
		conn := &fakeConn{}
		pub := newNATSPublisher(conn, "haulfile", zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, pub.Publish(ctx, SubjectFilingPriced, FilingPriced{}), context.Canceled)
		assert.Empty(t, conn.msgs)
	})

	t.Run("connection failure is wrapped", func(t *testing.T) {
		conn := &fakeConn{err: nats.ErrConnectionClosed}
		pub := newNATSPublisher(conn, "haulfile", zerolog.Nop())

		err := pub.Publish(context.Background(), SubjectFilingPriced, FilingPriced{})
		assert.ErrorIs(t, err, nats.ErrConnectionClosed)
		assert.ErrorContains(t, err, "haulfile.filing.priced")
	})

	t.Run("unencodable payload", func(t *testing.T) {
		pub := newNATSPublisher(&fakeConn{}, "", zerolog.Nop())
		assert.Error(t, pub.Publish(context.Background(), SubjectFilingPriced, make(chan int)))
	})
}

func TestNATSPublisher_CloseDrains(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, newNATSPublisher(conn, "", zerolog.Nop()).Close())
	assert.True(t, conn.drained)
}

func TestNewNATSPublisher_RequiresURL(t *testing.T) {
	_, err := NewNATSPublisher(NATSConfig{}, zerolog.Nop())
	assert.ErrorContains(t, err, "URL is required")
}

func TestObserve(t *testing.T) {
	failing := newNATSPublisher(&fakeConn{err: errors.New("down")}, "", zerolog.Nop())

	var subjects []string
	var errs []error
	pub := Observe(failing, func(subject string, err error) {
		subjects = append(subjects, subject)
		errs = append(errs, err)
	})

	assert.Error(t, pub.Publish(context.Background(), SubjectDuplicateDetected, DuplicateDetected{}))
	assert.Equal(t, []string{SubjectDuplicateDetected}, subjects)
	assert.Error(t, errs[0])

	assert.Same(t, failing, Observe(failing, nil))
	assert.NoError(t, Observe(NoopPublisher{}, nil).Publish(context.Background(), SubjectFilingPriced, nil))
}

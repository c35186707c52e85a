package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaws/internal/platform/metrics"
)

func TestBus_SyncDispatchFiltersByKind(t *testing.T) {
	b := NewBus(BusOptions{})

	var got []Kind
	b.Subscribe("reports-only", func(_ context.Context, e Event) error {
		got = append(got, e.Kind)
		return nil
	}, ReportCreated, ReportStatusChanged)

	var all int
	b.Subscribe("all", func(context.Context, Event) error {
		all++
		return nil
	})

	b.Publish(context.Background(), Event{Kind: ReportCreated, EntityID: "r1"})
	b.Publish(context.Background(), Event{Kind: AnimalCreated, EntityID: "a1"})

	assert.Equal(t, []Kind{ReportCreated}, got)
	assert.Equal(t, 2, all)
}

func TestBus_FailingSubscriberDoesNotStopOthers(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	b := NewBus(BusOptions{Metrics: m})

	b.Subscribe("broken", func(context.Context, Event) error { return errors.New("storage down") })
	b.Subscribe("panics", func(context.Context, Event) error { panic("boom") })

	called := false
	b.Subscribe("healthy", func(context.Context, Event) error {
		called = true
		return nil
	})

	b.Publish(context.Background(), Event{Kind: AdoptionSubmitted})

	assert.True(t, called)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SideEffectFailures.WithLabelValues("broken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SideEffectFailures.WithLabelValues("panics")))
}

func TestBus_StampsIDAndTime(t *testing.T) {
	b := NewBus(BusOptions{})
	b.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	var seen Event
	b.Subscribe("capture", func(_ context.Context, e Event) error {
		seen = e
		return nil
	})
	b.Publish(context.Background(), Event{Kind: AnimalDeleted})

	assert.NotEmpty(t, seen.ID)
	assert.Equal(t, b.now(), seen.OccurredAt)
}

func TestBus_AsyncRunDeliversAndDrains(t *testing.T) {
	b := NewBus(BusOptions{Async: true, Buffer: 8})

	var mu sync.Mutex
	var ids []string
	b.Subscribe("collect", func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		ids = append(ids, e.EntityID)
		return nil
	})

	// el ctx del request ya cancelado no debe afectar la entrega
	reqCtx, cancelReq := context.WithCancel(context.Background())
	b.Publish(reqCtx, Event{Kind: ReportCreated, EntityID: "r1"})
	cancelReq()
	b.Publish(context.Background(), Event{Kind: ReportCreated, EntityID: "r2"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ids) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

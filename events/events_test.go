package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"dogshouse/models"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitDispatchesToSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{}, 1)

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Emit(context.Background(), BalanceChangeEvent{
		AccountID:       42,
		OldBalance:      10,
		NewBalance:      20,
		TransactionType: models.TransactionTypeBetWin,
		ChangeAmount:    10,
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	change := received[0].(BalanceChangeEvent)
	assert.Equal(t, int64(42), change.AccountID)
	assert.Equal(t, int64(20), change.NewBalance)
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	done := make(chan Event, 2)
	bus.Subscribe(EventTypeBetSettled, func(ctx context.Context, e Event) {
		done <- e
	})

	txBus.Publish(BetSettledEvent{AccountID: 1, Variant: "dice", Won: true})

	// Nothing should reach the real bus before Flush
	select {
	case <-done:
		t.Fatal("event emitted before flush")
	case <-time.After(50 * time.Millisecond):
	}

	txBus.Flush(context.Background())

	select {
	case e := <-done:
		assert.Equal(t, EventTypeBetSettled, e.Type())
	case <-time.After(time.Second):
		t.Fatal("event not emitted after flush")
	}
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	done := make(chan Event, 1)
	bus.Subscribe(EventTypeBetSettled, func(ctx context.Context, e Event) {
		done <- e
	})

	txBus.Publish(BetSettledEvent{AccountID: 1, Variant: "dice"})
	txBus.Discard()
	txBus.Flush(context.Background())

	select {
	case <-done:
		t.Fatal("discarded event was emitted")
	case <-time.After(50 * time.Millisecond):
	}
}

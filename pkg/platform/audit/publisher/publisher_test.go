package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "scp-gateway/pkg/platform/audit"
	"scp-gateway/pkg/platform/audit/store/memory"
	"scp-gateway/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		CustomerID: "cust_001",
		Action:     string(audit.EventAuthorizationConfirmed),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "cust_001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventAuthorizationConfirmed), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			CustomerID: "cust_001",
			Action:     string(audit.EventTokenRefreshed),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByCustomer(context.Background(), "cust_001")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()
}

func TestPublisher_BufferFull(t *testing.T) {
	blocking := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(blocking, WithAsyncBuffer(1))

	// First event is picked up by the worker and blocks it; the second fills the buffer.
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: "a"}))
	require.Eventually(t, func() bool { return blocking.started() }, time.Second, 5*time.Millisecond)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: "b"}))

	err := pub.Emit(context.Background(), audit.Event{Action: "c"})
	assert.ErrorIs(t, err, ErrBufferFull)

	close(blocking.release)
	pub.Close()
}

func TestPublisher_FillsMetadataFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "agent/1.0")

	require.NoError(t, pub.Emit(ctx, audit.Event{CustomerID: "cust_002", Action: string(audit.EventTokenRevoked)}))

	events, err := pub.List(context.Background(), "cust_002")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-123", events[0].RequestID)
	assert.Equal(t, "203.0.113.7", events[0].IP)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		CustomerID: "cust_003",
		Action:     string(audit.EventCodeExchanged),
		Timestamp:  customTime,
	}))

	events, err := pub.List(context.Background(), "cust_003")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(&blockingStore{release: closedChan()})
	_, err := pub.List(context.Background(), "cust_001")
	assert.ErrorIs(t, err, audit.ErrListUnsupported)
}

type blockingStore struct {
	mu      sync.Mutex
	began   bool
	release chan struct{}
}

func (b *blockingStore) Append(_ context.Context, _ audit.Event) error {
	b.mu.Lock()
	b.began = true
	b.mu.Unlock()
	<-b.release
	return nil
}

func (b *blockingStore) started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.began
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custos/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	pending []postgres.OutboxRow
	sent    []uuid.UUID
}

func (f *fakeOutbox) PendingBatch(_ context.Context, limit int) ([]postgres.OutboxRow, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, ids []uuid.UUID) error {
	f.sent = append(f.sent, ids...)
	return nil
}

type fakeProducer struct {
	published []string
	failKeys  map[string]bool
}

func (f *fakeProducer) Publish(_ context.Context, key string, _ []byte) error {
	if f.failKeys[key] {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, key)
	return nil
}

func row(key string) postgres.OutboxRow {
	return postgres.OutboxRow{ID: uuid.New(), Key: key, Payload: []byte(`{}`)}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDrainOnce_MarksPublishedRowsSent(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.OutboxRow{row("a"), row("b")}}
	producer := &fakeProducer{}
	w := New(outbox, producer, discard())

	require.NoError(t, w.DrainOnce(context.Background()))

	assert.Equal(t, []string{"a", "b"}, producer.published)
	assert.Len(t, outbox.sent, 2)
}

func TestDrainOnce_FailedPublishStaysPending(t *testing.T) {
	rows := []postgres.OutboxRow{row("ok"), row("bad"), row("ok2")}
	outbox := &fakeOutbox{pending: rows}
	producer := &fakeProducer{failKeys: map[string]bool{"bad": true}}
	w := New(outbox, producer, discard())

	require.NoError(t, w.DrainOnce(context.Background()))

	// Two succeeded; the failed row is not marked sent and will retry.
	assert.Len(t, outbox.sent, 2)
	assert.NotContains(t, outbox.sent, rows[1].ID)
}

func TestDrainOnce_EmptyOutboxIsNoop(t *testing.T) {
	outbox := &fakeOutbox{}
	producer := &fakeProducer{}
	w := New(outbox, producer, discard())

	require.NoError(t, w.DrainOnce(context.Background()))
	assert.Empty(t, producer.published)
	assert.Empty(t, outbox.sent)
}

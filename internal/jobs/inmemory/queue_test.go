package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.IngestTextJob {
	t.Helper()
	var job *jobs.IngestTextJob
	require.Eventually(t, func() bool {
		var err error
		job, err = store.GetJob(context.Background(), jobID)
		return err == nil && job.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestQueueProcessesJobs(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, q.Start(ctx, func(_ context.Context, job *jobs.IngestTextJob) (int64, error) {
		assert.Equal(t, "paid rent", job.Description)
		return 42, nil
	}))
	defer q.Stop(ctx)

	job := &jobs.IngestTextJob{Description: "paid rent"}
	require.NoError(t, q.PublishIngestText(ctx, job))
	require.NotEmpty(t, job.JobID)
	assert.Equal(t, jobs.JobStatusPending, job.Status)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	require.NotNil(t, done.TransactionID)
	assert.Equal(t, int64(42), *done.TransactionID)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
}

func TestQueueRecordsFailureKindWithoutRetry(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store, zerolog.Nop())
	ctx := context.Background()

	calls := make(chan struct{}, 10)
	require.NoError(t, q.Start(ctx, func(context.Context, *jobs.IngestTextJob) (int64, error) {
		calls <- struct{}{}
		return 0, &domain.UnstructuredError{Raw: "no idea"}
	}))
	defer q.Stop(ctx)

	job := &jobs.IngestTextJob{Description: "???"}
	require.NoError(t, q.PublishIngestText(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, string(domain.KindUnstructured), failed.ErrorKind)
	assert.Equal(t, "no idea", failed.RawResponse)
	assert.Nil(t, failed.TransactionID)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, calls, 1)
}

func TestQueuePublishAfterStop(t *testing.T) {
	q := NewQueue(1, 1, NewStore(), zerolog.Nop())
	require.NoError(t, q.Stop(context.Background()))

	err := q.PublishIngestText(context.Background(), &jobs.IngestTextJob{Description: "x"})
	assert.True(t, errors.Is(err, jobs.ErrQueueClosed))
	assert.ErrorIs(t, q.Start(context.Background(), nil), jobs.ErrQueueClosed)
}

func TestQueueStopWaitsForInFlight(t *testing.T) {
	store := NewStore()
	q := NewQueue(1, 1, store, zerolog.Nop())
	ctx := context.Background()

	started := make(chan struct{})
	require.NoError(t, q.Start(ctx, func(context.Context, *jobs.IngestTextJob) (int64, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return 1, nil
	}))

	job := &jobs.IngestTextJob{Description: "x"}
	require.NoError(t, q.PublishIngestText(ctx, job))
	<-started

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, q.Stop(stopCtx))

	got, err := store.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusCompleted, got.Status)
}

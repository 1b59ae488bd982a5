package jobs

import (
	"context"
	"errors"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the posting was committed.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are never retried automatically.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned by JobStore lookups for unknown ids.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// IngestTextJob is a free-text ingestion accepted for asynchronous processing.
type IngestTextJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Description is the free text to extract a posting from.
	Description string `json:"description"`

	Status JobStatus `json:"status"`

	// TransactionID is set once the posting is committed.
	TransactionID *int64 `json:"transaction_id,omitempty"`

	// RawResponse holds the provider reply when it could not be parsed.
	RawResponse string `json:"raw_response,omitempty"`

	// ErrorKind classifies the failure (client, not_found, provider, unstructured, infrastructure).
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishIngestText enqueues a job. It assigns JobID, Status and CreatedAt when unset.
	PublishIngestText(ctx context.Context, job *IngestTextJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job and returns the committed transaction id.
type JobHandler func(ctx context.Context, job *IngestTextJob) (int64, error)

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *IngestTextJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*IngestTextJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*IngestTextJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

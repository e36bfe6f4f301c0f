package upload

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/orefield/minedocs/internal/objectstore"
	"github.com/orefield/minedocs/internal/registry"
)

// Registrar registers document metadata (phase 2). The registry client
// provides the real implementation.
type Registrar interface {
	CreateDocument(ctx context.Context, req registry.CreateDocumentRequest) (*registry.DocumentMetadata, error)
}

// AttemptRecorder receives the terminal state of every coordinator run.
// Optional; the SQLite ledger provides the real implementation. Recording is
// best-effort and never changes the outcome of an upload.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, key, mineID, state, detail string) error
}

// Coordinator drives the two-phase upload protocol. One Run call performs
// one attempt; the phases are strictly sequential and there are no automatic
// retries at any point.
type Coordinator struct {
	store     objectstore.Store
	registrar Registrar
	bucket    string
	audit     AttemptRecorder // nil disables attempt recording
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator writing blobs to the given bucket.
// audit may be nil.
func NewCoordinator(store objectstore.Store, registrar Registrar, bucket string, audit AttemptRecorder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		store:     store,
		registrar: registrar,
		bucket:    bucket,
		audit:     audit,
		logger:    logger,
	}
}

// Run executes the full protocol for one task and blocks until a terminal
// state is reached. On success the returned DocumentMetadata references the
// exact key written in phase 1. The error is a *ValidationError,
// *StorageError or *RegistrationError; the task's State method tells the
// caller where it ended.
func (c *Coordinator) Run(ctx context.Context, task *Task) (*registry.DocumentMetadata, error) {
	if err := validate(task); err != nil {
		// Fails fast before any network effect; the task never leaves
		// StatePending.
		return nil, err
	}

	task.DestinationKey = objectstore.BuildKey(task.MineID, task.File.Name)

	c.logger.Info("upload starting",
		slog.String("mine_id", task.MineID),
		slog.String("key", task.DestinationKey),
		slog.Int64("size", task.File.Size),
	)

	// Phase 1: write the blob. The key is fresh per attempt, so a retried
	// upload can never overwrite an earlier object.
	path, err := c.store.Put(ctx, c.bucket, task.DestinationKey, bytes.NewReader(task.File.Content), task.File.Size, task.File.MimeType)
	if err != nil {
		task.state = StateFailedStore
		storeErr := &StorageError{Key: task.DestinationKey, Err: err}
		c.record(ctx, task, storeErr.Error())

		c.logger.Error("upload failed in store phase",
			slog.String("key", task.DestinationKey),
			slog.String("error", err.Error()),
		)

		return nil, storeErr
	}

	task.state = StateStored

	// Phase 2: register metadata referencing the exact stored path.
	doc, err := c.registrar.CreateDocument(ctx, registry.CreateDocumentRequest{
		DocumentName:     task.File.Name,
		StoragePath:      path,
		MineID:           task.MineID,
		CategoryID:       task.CategoryID,
		AuthorityID:      task.AuthorityID,
		IssueDate:        task.IssueDate,
		ExpiryDate:       task.ExpiryDate,
		OriginalFilename: task.File.Name,
		FileType:         task.File.MimeType,
		FileSizeBytes:    task.File.Size,
	})
	if err != nil {
		task.state = StateFailedRegister
		regErr := &RegistrationError{Key: task.DestinationKey, Err: err}
		c.record(ctx, task, regErr.Error())

		// The stored object is now an orphan. Surfaced loudly, never
		// cleaned up here — reconciliation is out-of-band.
		c.logger.Error("upload failed in register phase, stored object orphaned",
			slog.String("key", task.DestinationKey),
			slog.String("error", err.Error()),
		)

		return nil, regErr
	}

	task.state = StateRegistered
	c.record(ctx, task, "")

	c.logger.Info("upload registered",
		slog.String("key", task.DestinationKey),
		slog.String("document_id", doc.ID),
	)

	return doc, nil
}

// record writes the terminal state to the attempt ledger, if configured.
func (c *Coordinator) record(ctx context.Context, task *Task, detail string) {
	if c.audit == nil {
		return
	}

	if err := c.audit.RecordAttempt(ctx, task.DestinationKey, task.MineID, task.state.String(), detail); err != nil {
		c.logger.Warn("recording upload attempt failed",
			slog.String("key", task.DestinationKey),
			slog.String("error", err.Error()),
		)
	}
}

// validate checks the required fields before any network effect.
func validate(task *Task) error {
	var missing []string

	if len(task.File.Content) == 0 || task.File.Name == "" {
		missing = append(missing, "file")
	}

	if task.MineID == "" {
		missing = append(missing, "mine id")
	}

	if task.CategoryID == 0 {
		missing = append(missing, "category")
	}

	if task.AuthorityID == 0 {
		missing = append(missing, "authority")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	return nil
}

package importer

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultMaxRetries is the default number of attempts per write.
	DefaultMaxRetries = 5
	// DefaultRetryDelay is the default delay before the first retry.
	DefaultRetryDelay = 10 * time.Millisecond
)

// ImportReport summarizes an import run.
type ImportReport struct {
	Conversations int // Conversations written
	Messages      int // Messages written
	Skipped       int // Conversations already present
	Failed        int // Conversations that could not be written
}

// Importer writes transcripts into a conversation repository.
type Importer struct {
	repository storage.ConversationRepository
	pool       *ants.Pool
	maxRetries int
	retryDelay time.Duration
	progress   ProgressReporter
	logger     *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if i.pool != nil {
			i.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		i.pool = pool
		return nil
	}
}

// WithMaxRetries sets how many times a conflicting write is attempted.
// Default is DefaultMaxRetries.
func WithMaxRetries(attempts int) Option {
	return func(i *Importer) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		i.maxRetries = attempts
		return nil
	}
}

// WithRetryDelay sets the delay before the first retry; it doubles on each retry.
// Default is DefaultRetryDelay.
func WithRetryDelay(delay time.Duration) Option {
	return func(i *Importer) error {
		if delay < 0 {
			delay = 0
		}
		i.retryDelay = delay
		return nil
	}
}

// WithProgress sets a reporter notified as conversations finish.
func WithProgress(progress ProgressReporter) Option {
	return func(i *Importer) error {
		if progress == nil {
			progress = noopProgress{}
		}
		i.progress = progress
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewImporter creates a new importer writing to repository.
func NewImporter(repository storage.ConversationRepository, opts ...Option) (*Importer, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	i := &Importer{
		repository: repository,
		pool:       pool,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		progress:   noopProgress{},
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(i); optErr != nil {
			i.Release()
			return nil, optErr
		}
	}

	return i, nil
}

// ImportFile loads a transcript file and imports it.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	transcript, err := LoadTranscript(path)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, transcript)
}

// Import writes every conversation of transcript and waits for completion.
// Per-conversation failures are logged and counted, not returned.
// An error is returned only if the context ends or the pool rejects work.
func (i *Importer) Import(ctx context.Context, transcript *Transcript) (*ImportReport, error) {
	report := &ImportReport{}
	if transcript == nil {
		return report, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(fn func(r *ImportReport)) {
		mu.Lock()
		fn(report)
		mu.Unlock()
		i.progress.Increment()
	}

	i.progress.Start(len(transcript.Conversations))
	defer i.progress.Finish()

	// Duplicates inside one transcript would race on the fingerprint check.
	seen := make(map[core.ID]bool, len(transcript.Conversations))

	for index := range transcript.Conversations {
		tc := &transcript.Conversations[index]

		conversation, messages, err := tc.toCore()
		if err != nil {
			i.logger.Warn("skipping invalid conversation", "index", index, "title", tc.Title, "err", err)
			record(func(r *ImportReport) { r.Failed++ })
			continue
		}

		fingerprint := conversation.Fingerprint()
		if seen[fingerprint] {
			i.logger.Debug("duplicate conversation in transcript", "title", tc.Title)
			record(func(r *ImportReport) { r.Skipped++ })
			continue
		}
		seen[fingerprint] = true

		wg.Add(1)
		submitErr := i.pool.Submit(func() {
			defer wg.Done()
			outcome := i.importConversation(ctx, conversation, messages)
			record(func(r *ImportReport) {
				switch outcome {
				case outcomeImported:
					r.Conversations++
					r.Messages += len(messages)
				case outcomeSkipped:
					r.Skipped++
				default:
					r.Failed++
				}
			})
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return report, submitErr
		}
	}

	wg.Wait()

	i.logger.Info("import finished",
		"conversations", report.Conversations,
		"messages", report.Messages,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report, ctx.Err()
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeImported
	outcomeSkipped
)

// importConversation writes one conversation and its messages.
func (i *Importer) importConversation(ctx context.Context, conversation *core.Conversation, messages []*core.Message) outcome {
	logger := i.logger.With("title", conversation.Title)

	existing, err := i.repository.FindConversationByFingerprint(ctx, conversation.Fingerprint())
	switch {
	case err == nil && !existing.Deleted:
		logger.Debug("conversation already imported", "conversationID", existing.Id)
		return outcomeSkipped
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		logger.Error("error checking fingerprint", "err", err)
		return outcomeFailed
	}

	err = RetryWithBackoff(ctx, i.logger, i.maxRetries, i.retryDelay, func() error {
		_, err := i.repository.AddConversations(ctx, conversation)
		return err
	})
	if err != nil {
		logger.Error("error adding conversation", "err", err)
		return outcomeFailed
	}

	if len(messages) == 0 {
		return outcomeImported
	}

	for _, message := range messages {
		message.ConversationId = conversation.Id
	}
	err = RetryWithBackoff(ctx, i.logger, i.maxRetries, i.retryDelay, func() error {
		_, err := i.repository.AddMessages(ctx, messages...)
		return err
	})
	if err != nil {
		logger.Error("error adding messages, hiding conversation", "conversationID", conversation.Id, "err", err)
		if delErr := i.repository.DeleteConversations(ctx, conversation.Id); delErr != nil {
			logger.Error("error hiding partial conversation", "conversationID", conversation.Id, "err", delErr)
		}
		return outcomeFailed
	}

	return outcomeImported
}

// Release releases resources including the worker pool.
// The importer should not be used after calling Release.
func (i *Importer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

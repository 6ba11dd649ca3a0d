package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

// PageWriter persists pages into a link graph store.
type PageWriter interface {
	UpsertPage(ctx context.Context, page domain.Article) error
}

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor writes large page datasets using a worker pool.
type BulkIngestor struct {
	writer  PageWriter
	workers int
	written atomic.Int64
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(writer PageWriter, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		writer:  writer,
		workers: workers,
	}
}

// IngestPages upserts the provided pages concurrently.
func (bi *BulkIngestor) IngestPages(ctx context.Context, pages []domain.Article) error {
	return bi.run(ctx, len(pages), func(idx int) error {
		if err := bi.writer.UpsertPage(ctx, pages[idx]); err != nil {
			return err
		}
		bi.written.Add(1)
		return nil
	})
}

// Written reports how many pages were stored successfully so far.
func (bi *BulkIngestor) Written() int64 {
	return bi.written.Load()
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pagetree/internal/config"
	"github.com/dgallion1/pagetree/internal/llm"
	"github.com/dgallion1/pagetree/internal/pagestore"
	"github.com/dgallion1/pagetree/internal/source"
)

// Orchestrator manages the document indexing queue.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	oracle  llm.Oracle
	counter *pagestore.TokenCounter
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the indexing pipeline. Start must be called
// before jobs are submitted.
func NewOrchestrator(cfg config.Config, oracle llm.Oracle, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		oracle:  oracle,
		counter: pagestore.NewTokenCounter(),
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// process runs one job end to end: page extraction, then the indexing
// pipeline over the resulting page store.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting pages")
	extractor, err := source.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("extracting", err)
		return
	}

	texts, err := extractor.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("page extraction failed", "error", err)
		job.Fail("extracting", err)
		return
	}
	if len(texts) == 0 {
		log.Error("no extractable content")
		job.Fail("extracting", fmt.Errorf("no extractable content"))
		return
	}
	store := pagestore.New(texts, o.counter)
	job.SetPages(store.Len())
	log.Info("pages extracted", "pages", store.Len(), "tokens", store.TokenSum(1, store.LastIndex()))

	job.SetStatus(StatusIndexing, "building section tree")
	p := New(o.oracle, store, ConfigFromApp(o.cfg), o.log)
	result, err := p.Run(ctx, job.DocName)
	if err != nil {
		log.Error("indexing failed", "error", err)
		job.Fail("indexing", err)
		return
	}

	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
	log.Info("indexing complete", "roots", len(result.Nodes))
}

// ConfigFromApp maps the application configuration onto one pipeline
// run's tuning surface.
func ConfigFromApp(cfg config.Config) Config {
	return Config{
		TOCCheckPages:     cfg.TOCCheckPages,
		MaxPagesPerNode:   cfg.MaxPagesPerNode,
		MaxTokensPerNode:  cfg.MaxTokensPerNode,
		FixAttempts:       cfg.FixAttempts,
		VerifySample:      cfg.VerifySample,
		GroupMaxTokens:    cfg.GroupMaxTokens,
		GroupOverlap:      cfg.GroupOverlap,
		WorkerLimit:       cfg.WorkerLimit,
		AddNodeText:       cfg.AddNodeText,
		AddNodeSummary:    cfg.AddNodeSummary,
		AddDocDescription: cfg.AddDocDescription,
		AddNodeID:         cfg.AddNodeID,
	}
}

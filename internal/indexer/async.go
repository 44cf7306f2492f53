package indexer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/metrics"
)

// Async queues changes for a single background worker.
//
// Before every write the worker probes the backend. While the backend is down
// it sleeps with backoff; a failed write goes onto a bounded recovery stack
// which is drained before new work, and the next probe decides when it is
// retried. Enqueue never blocks: a full queue drops
// the change and returns domain.ErrQueueFull.
type Async struct {
	backend string
	w       Writer
	cfg     Config
	logger  *zap.Logger

	queue    chan op
	recovery *stack
	backoff  *backoff
	// pause waits between probes; returns false once the indexer is closed.
	pause func(time.Duration) bool

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool
	closed  atomic.Bool
	once    sync.Once
}

// NewAsync creates an asynchronous indexer. Call Start to launch the worker.
func NewAsync(backend string, w Writer, cfg Config, logger *zap.Logger) *Async {
	cfg.ApplyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	a := &Async{
		backend:  backend,
		w:        w,
		cfg:      cfg,
		logger:   logger.With(zap.String("backend", backend)),
		queue:    make(chan op, cfg.QueueSize),
		recovery: newStack(cfg.RecoverySize),
		backoff:  newBackoff(cfg.ShortInterval, cfg.LongInterval, cfg.FailureThreshold),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	a.pause = a.sleep
	return a
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (a *Async) Start() {
	if a.closed.Load() || !a.started.CompareAndSwap(false, true) {
		return
	}
	go a.run()
}

// Upsert queues a document write.
func (a *Async) Upsert(_ context.Context, doc document.Document) error {
	return a.enqueue(newUpsert(doc))
}

// Delete queues a document removal.
func (a *Async) Delete(_ context.Context, id string) error {
	return a.enqueue(newDelete(id))
}

// Close stops the worker and waits for it to exit. Queued operations that
// were not written yet are discarded.
func (a *Async) Close() error {
	a.once.Do(func() {
		a.closed.Store(true)
		a.cancel()
		if a.started.Load() {
			<-a.done
		}
		if pending := len(a.queue) + a.recovery.len(); pending > 0 {
			a.logger.Warn("Indexer stopped with pending operations", zap.Int("pending", pending))
		}
	})
	return nil
}

func (a *Async) enqueue(o op) error {
	if a.closed.Load() {
		return fmt.Errorf("%s: %w", a.backend, ErrClosed)
	}
	select {
	case a.queue <- o:
		metrics.IndexerQueueDepth.WithLabelValues(a.backend).Inc()
		return nil
	default:
		metrics.IndexerDroppedTotal.WithLabelValues(a.backend, "work").Inc()
		a.logger.Error("Queue is full, dropping operation",
			zap.String("op_id", o.id),
			zap.Stringer("op", o.kind),
			zap.String("doc_id", o.docID),
		)
		return fmt.Errorf("%s: %w", a.backend, domain.ErrQueueFull)
	}
}

func (a *Async) run() {
	defer close(a.done)
	for {
		o, ok := a.next()
		if !ok {
			return
		}
		if !a.waitAvailable() {
			a.recover(o)
			return
		}
		a.write(o)
	}
}

// next returns the next operation: failed ones first, newest first.
func (a *Async) next() (op, bool) {
	if o, ok := a.recovery.pop(); ok {
		metrics.IndexerRecoveryDepth.WithLabelValues(a.backend).Set(float64(a.recovery.len()))
		return o, true
	}
	select {
	case <-a.ctx.Done():
		return op{}, false
	case o := <-a.queue:
		metrics.IndexerQueueDepth.WithLabelValues(a.backend).Dec()
		return o, true
	}
}

// waitAvailable probes the backend until it answers or the indexer is closed.
func (a *Async) waitAvailable() bool {
	for {
		err := a.w.Ping(a.ctx)
		if err == nil {
			metrics.IndexerBackendUp.WithLabelValues(a.backend).Set(1)
			a.backoff.Reset()
			return true
		}
		metrics.IndexerBackendUp.WithLabelValues(a.backend).Set(0)

		wait := a.backoff.Next()
		a.logger.Warn("Backend unavailable, waiting",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if !a.pause(wait) {
			return false
		}
	}
}

func (a *Async) write(o op) {
	o.attempts++
	err := o.apply(a.ctx, a.w)
	if err == nil {
		metrics.IndexerWritesTotal.WithLabelValues(a.backend, o.kind.String(), "ok").Inc()
		a.logger.Debug("Indexed",
			zap.String("op_id", o.id),
			zap.Stringer("op", o.kind),
			zap.String("doc_id", o.docID),
		)
		if a.cfg.OnApplied != nil {
			a.cfg.OnApplied()
		}
		return
	}

	metrics.IndexerWritesTotal.WithLabelValues(a.backend, o.kind.String(), "error").Inc()
	a.logger.Error("Index write failed",
		zap.String("op_id", o.id),
		zap.Stringer("op", o.kind),
		zap.String("doc_id", o.docID),
		zap.Int("attempt", o.attempts),
		zap.Error(err),
	)
	if o.attempts >= a.cfg.MaxAttempts {
		metrics.IndexerDroppedTotal.WithLabelValues(a.backend, "attempts").Inc()
		a.logger.Error("Giving up on operation",
			zap.String("op_id", o.id),
			zap.String("doc_id", o.docID),
		)
		return
	}
	a.recover(o)
}

func (a *Async) recover(o op) {
	if !a.recovery.push(o) {
		metrics.IndexerDroppedTotal.WithLabelValues(a.backend, "recovery").Inc()
		a.logger.Error("Recovery queue is full, dropping operation",
			zap.String("op_id", o.id),
			zap.String("doc_id", o.docID),
		)
		return
	}
	metrics.IndexerRecoveryDepth.WithLabelValues(a.backend).Set(float64(a.recovery.len()))
}

// sleep waits for d or until the indexer is closed. Returns false on close.
func (a *Async) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-a.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

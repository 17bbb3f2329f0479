package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
	"github.com/employee-portal/employee-api/internal/infrastructure/metrics"
)

const (
	defaultWorkers      = 4
	channelBuffer       = 256
	defaultDrainTimeout = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the employee id, so events for one record are written in order.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup

	// drainTimeout bounds how long stopping workers keep writing buffered events.
	drainTimeout time.Duration
}

var _ ports.AuditRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:      make([]chan domain.AuditEvent, numWorkers),
		repo:         repo,
		log:          log,
		drainTimeout: defaultDrainTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// drains its buffer before exiting; use Wait to block until they are done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every started worker has drained and exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record hands the event to the worker responsible for its employee. It never
// blocks: when that worker's buffer is full the event is dropped.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.EmployeeID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("employee_id", event.EmployeeID).
			Str("action", string(event.Action)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an employee id deterministically to a worker index.
func (d *Dispatcher) shardIndex(employeeID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(employeeID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		if ctx.Err() != nil {
			d.drain(ctx, id, ch)
			depth.Set(0)
			return
		}
		select {
		case <-ctx.Done():
			continue
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.write(ctx, id, event)
		}
	}
}

// drain writes the events still buffered at shutdown. Events left once
// drainTimeout has passed are counted as dropped.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.drainTimeout)
	defer cancel()

	var flushed, dropped int
	for {
		select {
		case event := <-ch:
			if drainCtx.Err() != nil {
				dropped++
				metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
				continue
			}
			flushed++
			d.write(drainCtx, id, event)
		default:
			if flushed+dropped > 0 {
				evt := d.log.Info()
				if dropped > 0 {
					evt = d.log.Warn()
				}
				evt.Int("worker_id", id).
					Int("flushed", flushed).
					Int("dropped", dropped).
					Msg("audit queue drained on shutdown")
			}
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.AuditEvent) {
	start := time.Now()
	err := d.repo.InsertEvent(ctx, &event)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("employee_id", event.EmployeeID).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("audit event write failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("written").Inc()
}

package fanout

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256

	deliverTimeout = 5 * time.Second
)

// Sink receives events from the dispatcher workers. Hub and Relay both
// satisfy it.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
}

// Dispatcher decouples request paths from delivery. Events for the same
// channel always land on the same worker, so their relative order is kept.
type Dispatcher struct {
	sink   Sink
	logger aqm.Logger
	queues []chan Event

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewDispatcher(sink Sink, workers, queueSize int, logger aqm.Logger) *Dispatcher {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	queues := make([]chan Event, workers)
	for i := range queues {
		queues[i] = make(chan Event, queueSize)
	}

	return &Dispatcher{
		sink:   sink,
		logger: logger,
		queues: queues,
	}
}

// Notify enqueues evt and returns immediately. When the channel's queue is
// full the event is dropped.
func (d *Dispatcher) Notify(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	q := d.queues[d.shard(evt.Channel)]
	select {
	case q <- evt:
	default:
		d.logger.Info("fanout queue full, dropping event", "channel", evt.Channel, "event_type", evt.Type)
	}
}

func (d *Dispatcher) shard(channel string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(channel))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}
	d.running = true
	d.stop = make(chan struct{})

	for i, q := range d.queues {
		d.wg.Add(1)
		go d.loop(i, q, d.stop)
	}
	d.logger.Info("fanout dispatcher started", "workers", len(d.queues))
	return nil
}

// Stop signals the workers, lets them flush what is already queued, and
// waits for them or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stop)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("fanout dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop(worker int, q chan Event, stop <-chan struct{}) {
	defer d.wg.Done()

	for {
		select {
		case evt := <-q:
			d.deliver(worker, evt)
		case <-stop:
			for {
				select {
				case evt := <-q:
					d.deliver(worker, evt)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(worker int, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := d.sink.Publish(ctx, evt); err != nil {
		d.logger.Error("fanout delivery failed",
			"worker", worker,
			"channel", evt.Channel,
			"event_type", evt.Type,
			"error", err,
		)
	}
}

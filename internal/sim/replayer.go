package sim

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/ethpandaops/dtn-window-stats/internal/config"
	"github.com/ethpandaops/dtn-window-stats/internal/core"
)

// Node is one simulated host: its buffer and its observer.
type Node struct {
	ID       string
	Store    *Store
	Observer *core.Observer
}

// Replayer feeds a trace into one observer per node. Simulated time is kept
// on a clock.Mock and every node is ticked every tick interval.
type Replayer struct {
	config   config.Config
	mock     *clock.Mock
	clock    *core.WallClock
	proto    *core.Observer
	capacity int64
	logger   logrus.FieldLogger

	nodes    map[string]*Node
	nextTick float64
	ticks    int
}

// NewReplayer creates a replayer whose nodes have buffers of capacity bytes
// (buffer.Unbounded for no limit). opts are applied to every observer.
func NewReplayer(cfg config.Config, capacity int64, logger logrus.FieldLogger, opts ...core.Option) (*Replayer, error) {
	mock := clock.NewMock()
	wall := core.NewWallClock(mock, mock.Now())

	proto, err := core.NewObserver(cfg, wall, nil, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create observer: %w", err)
	}

	return &Replayer{
		config:   cfg,
		mock:     mock,
		clock:    wall,
		proto:    proto,
		capacity: capacity,
		logger:   logger.WithField("component", "replayer"),
		nodes:    make(map[string]*Node),
		nextTick: cfg.GetTickInterval(),
	}, nil
}

// Now returns the current simulated time in seconds.
func (r *Replayer) Now() float64 {
	return r.clock.Now()
}

// Node returns the node with the given id, if it was initialized.
func (r *Replayer) Node(id string) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Nodes returns the initialized node ids in sorted order.
func (r *Replayer) Nodes() []string {
	return sortedKeys(r.nodes)
}

// Ticks returns the number of tick rounds delivered so far.
func (r *Replayer) Ticks() int {
	return r.ticks
}

// Run initializes every node named in events at the current time, applies the
// events in order and ticks all nodes up to until, or up to the last event
// when until is earlier.
func (r *Replayer) Run(ctx context.Context, events []TraceEvent, until float64) error {
	for _, event := range events {
		for _, id := range event.Nodes() {
			if _, err := r.ensureNode(id); err != nil {
				return err
			}
		}
	}

	r.logger.WithFields(logrus.Fields{
		"events": len(events),
		"nodes":  len(r.nodes),
	}).Info("Replaying trace")

	for _, event := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.AdvanceTo(event.Time); err != nil {
			return err
		}
		if err := r.Apply(event); err != nil {
			return err
		}
	}

	if len(events) > 0 && until < events[len(events)-1].Time {
		until = events[len(events)-1].Time
	}

	return r.AdvanceTo(until)
}

// AdvanceTo ticks every node at each tick instant up to and including t, then
// moves the clock to t.
func (r *Replayer) AdvanceTo(t float64) error {
	for r.nextTick <= t {
		r.setClock(r.nextTick)
		if err := r.tickAll(); err != nil {
			return err
		}
		r.nextTick += r.config.GetTickInterval()
	}

	if t > r.clock.Now() {
		r.setClock(t)
	}

	return nil
}

// Apply delivers one trace record to the affected observers at the current time.
func (r *Replayer) Apply(event TraceEvent) error {
	from, err := r.ensureNode(event.From)
	if err != nil {
		return err
	}

	switch event.Kind {
	case KindConn:
		to, err := r.ensureNode(event.To)
		if err != nil {
			return err
		}
		from.Observer.OnLinkChanged(to.ID, event.Up)
		to.Observer.OnLinkChanged(from.ID, event.Up)
	case KindCreate:
		r.store(from, event.Message, event.Size)
	case KindStart:
		from.Observer.OnTransferStart(event.To, event.Message)
	case KindDone:
		to, err := r.ensureNode(event.To)
		if err != nil {
			return err
		}
		from.Observer.OnTransferComplete(to.ID, event.Message)
		if r.store(to, event.Message, from.Store.Size(event.Message)) {
			to.Observer.OnMessageReceived(event.Message, from.ID)
		}
	case KindAbort:
		from.Observer.OnTransferAbort(event.To, event.Message)
	case KindDrop, KindDelete:
		if !from.Store.Remove(event.Message) {
			r.logger.WithFields(logrus.Fields{
				"node":    from.ID,
				"message": event.Message,
			}).Debug("Removing message the node does not hold")
		}
		from.Observer.OnMessageDeleted(event.Message, event.Kind == KindDrop)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedTrace, event.Kind)
	}

	return nil
}

// store adds a message to n's buffer, reporting every eviction as a drop.
func (r *Replayer) store(n *Node, id string, size int64) bool {
	evicted, stored := n.Store.Add(id, size)
	for _, old := range evicted {
		n.Observer.OnMessageDeleted(old, true)
	}

	if !stored {
		r.logger.WithFields(logrus.Fields{
			"node":    n.ID,
			"message": id,
			"size":    size,
		}).Warn("Message larger than buffer, not stored")
	}

	return stored
}

func (r *Replayer) ensureNode(id string) (*Node, error) {
	if n, ok := r.nodes[id]; ok {
		return n, nil
	}

	store := NewStore(r.capacity)
	obs, err := r.proto.Replicate(store)
	if err != nil {
		return nil, fmt.Errorf("failed to replicate observer for %s: %w", id, err)
	}
	if err := obs.OnInit(id); err != nil {
		return nil, fmt.Errorf("failed to initialize node %s: %w", id, err)
	}

	n := &Node{ID: id, Store: store, Observer: obs}
	r.nodes[id] = n

	return n, nil
}

func (r *Replayer) tickAll() error {
	r.ticks++
	for _, id := range r.Nodes() {
		if err := r.nodes[id].Observer.OnTick(); err != nil {
			return fmt.Errorf("tick failed on node %s: %w", id, err)
		}
	}
	return nil
}

func (r *Replayer) setClock(t float64) {
	r.mock.Set(r.clock.At(t))
}

// Close closes every node's log and returns all close errors combined.
func (r *Replayer) Close() error {
	var err error
	for _, id := range r.Nodes() {
		err = multierr.Append(err, r.nodes[id].Observer.Close())
	}
	return err
}

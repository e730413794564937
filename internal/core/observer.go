package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ethpandaops/dtn-window-stats/constants"
	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
	"github.com/ethpandaops/dtn-window-stats/internal/common"
	"github.com/ethpandaops/dtn-window-stats/internal/events"
	"github.com/ethpandaops/dtn-window-stats/internal/metrics"
	"github.com/ethpandaops/dtn-window-stats/internal/peer"
	"github.com/ethpandaops/dtn-window-stats/internal/reports"
	"github.com/ethpandaops/dtn-window-stats/internal/window"
)

// ErrNotInitialized is returned by OnTick before OnInit succeeded.
var ErrNotInitialized = errors.New(constants.ErrNotInitialized)

var (
	_ Hooks                    = (*Observer)(nil)
	_ common.ObserverInterface = (*Observer)(nil)
)

// Option configures an Observer.
type Option func(*Observer)

// WithFs sets the filesystem holding the log directory. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(o *Observer) { o.fs = fs }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *Observer) { o.metrics = rec }
}

// Observer aggregates the observations of one node into windows and appends
// them to the node's log. It is driven from a single goroutine.
type Observer struct {
	config  Config
	clock   Clock
	store   Store
	fs      afero.Fs
	metrics *metrics.Recorder
	logger  logrus.FieldLogger
	base    logrus.FieldLogger

	// Per-node state, never shared with a replica
	nodeID   string
	repo     *peer.InMemoryRepository
	contacts *peer.DefaultContactTracker
	sampler  *buffer.Sampler
	drops    *buffer.DropCounters
	windows  *window.Manager
	writer   reports.WindowWriter
	eventMgr *events.DefaultManager

	// First flush error. The log stream ends there.
	fatal error
}

// NewObserver creates an observer. OnInit must be called before the first tick.
func NewObserver(cfg Config, clk Clock, store Store, logger logrus.FieldLogger, opts ...Option) (*Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &Observer{
		config: cfg,
		clock:  clk,
		store:  store,
		fs:     afero.NewOsFs(),
		base:   logger,
		logger: logger.WithField("component", "observer"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.initializeComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return o, nil
}

// initializeComponents sets up the per-node state containers.
func (o *Observer) initializeComponents() error {
	o.repo = peer.NewInMemoryRepository(o.base)
	o.contacts = peer.NewContactTracker(o.repo, o.base)
	o.sampler = buffer.NewSampler()
	o.drops = &buffer.DropCounters{}

	o.eventMgr = events.NewManager(o, o.base)

	return o.eventMgr.RegisterDefaultHandlers()
}

// OnInit binds the observer to nodeID, creates the log directory, opens the
// node's log and opens the first window at the current time.
func (o *Observer) OnInit(nodeID string) error {
	if o.writer != nil {
		if err := o.writer.Close(); err != nil {
			o.logger.WithError(err).Warn("Error closing previous log")
		}
		o.writer = nil
	}

	o.nodeID = nodeID
	o.logger = o.base.WithFields(logrus.Fields{
		"component": "observer",
		"node":      common.FormatShortNodeID(nodeID),
	})

	files := reports.NewDefaultFileManager(o.fs, o.base)
	dir := o.config.GetLogDir()
	if err := files.EnsureDir(dir); err != nil {
		return err
	}

	writer, err := reports.NewCSVWriter(o.fs, files.LogPath(dir, nodeID), nodeID, o.base)
	if err != nil {
		o.metrics.WriteFailed(nodeID)
		return err
	}
	o.writer = writer

	start := o.clock.Now()
	state := window.State{
		Neighbors: o.repo,
		Contacts:  o.contacts,
		Buffer:    o.sampler,
		Drops:     o.drops,
	}
	o.windows = window.NewManager(start, o.config.GetWindowSize(), state, window.EmitterFunc(o.emit), o.base)

	o.logger.WithFields(logrus.Fields{
		"log":          writer.Path(),
		"window_size":  o.config.GetWindowSize(),
		"window_start": start,
	}).Info("Observer initialized")

	return nil
}

// OnLinkChanged records a link to neighbor going up or down.
func (o *Observer) OnLinkChanged(neighbor string, up bool) {
	o.dispatch(common.Event{Type: common.EventLinkChanged, Neighbor: neighbor, Up: up})
}

// OnTransferStart records a transfer of messageID offered to neighbor.
func (o *Observer) OnTransferStart(neighbor, messageID string) {
	o.dispatch(common.Event{Type: common.EventTransferStart, Neighbor: neighbor, MessageID: messageID})
}

// OnTransferComplete records a transfer to neighbor that completed. An empty
// messageID means the transfer's message is unknown and is ignored.
func (o *Observer) OnTransferComplete(neighbor, messageID string) {
	o.dispatch(common.Event{Type: common.EventTransferDone, Neighbor: neighbor, MessageID: messageID})
}

// OnTransferAbort records a transfer to neighbor that was aborted.
func (o *Observer) OnTransferAbort(neighbor, messageID string) {
	o.dispatch(common.Event{Type: common.EventTransferAbort, Neighbor: neighbor, MessageID: messageID})
}

// OnMessageReceived records messageID arriving from neighbor from.
func (o *Observer) OnMessageReceived(messageID, from string) {
	o.dispatch(common.Event{Type: common.EventMessageReceived, Neighbor: from, MessageID: messageID})
}

// OnMessageDeleted records messageID leaving the buffer. Only drops are counted.
func (o *Observer) OnMessageDeleted(messageID string, wasDrop bool) {
	o.dispatch(common.Event{Type: common.EventMessageDeleted, MessageID: messageID, Drop: wasDrop})
}

// OnTick samples buffer occupancy and closes every elapsed window.
func (o *Observer) OnTick() error {
	event := common.Event{Type: common.EventTick, Time: o.clock.Now()}
	return o.eventMgr.HandleEvent(context.Background(), &event)
}

// dispatch routes a non-failing hook through the event manager.
func (o *Observer) dispatch(event common.Event) {
	event.Time = o.clock.Now()
	if err := o.eventMgr.HandleEvent(context.Background(), &event); err != nil {
		o.logger.WithError(err).WithField("event_type", event.Type).Warn("Event handling failed")
	}
}

// LinkChanged implements common.ObserverInterface.
func (o *Observer) LinkChanged(neighbor string, up bool, now float64) {
	if up {
		o.repo.RecordContactStart(neighbor)
		o.contacts.OnLinkUp(neighbor, now)
		return
	}
	o.contacts.OnLinkDown(neighbor, now)
}

// TransferStarted implements common.ObserverInterface.
func (o *Observer) TransferStarted(neighbor string, class common.MessageClass) {
	o.repo.RecordOffer(neighbor, class)
}

// TransferCompleted implements common.ObserverInterface.
func (o *Observer) TransferCompleted(neighbor string, class common.MessageClass) {
	o.repo.RecordSuccess(neighbor, class)
}

// TransferAborted implements common.ObserverInterface.
func (o *Observer) TransferAborted(neighbor string, class common.MessageClass) {
	o.repo.RecordAbort(neighbor, class)
}

// MessageReceived implements common.ObserverInterface.
func (o *Observer) MessageReceived(from string, class common.MessageClass) {
	o.repo.RecordReceive(from, class)
}

// MessageDropped implements common.ObserverInterface.
func (o *Observer) MessageDropped(class common.MessageClass) {
	o.drops.Record(class)
}

// Tick implements common.ObserverInterface. After a failed flush every later
// tick returns the same error without sampling or flushing again.
func (o *Observer) Tick(now float64) error {
	if o.fatal != nil {
		return o.fatal
	}
	if o.windows == nil {
		return ErrNotInitialized
	}

	if o.store != nil {
		o.sampler.Sample(buffer.Occupancy(o.store))
	}

	if _, err := o.windows.Advance(now); err != nil {
		o.fatal = err
		o.logger.WithError(err).Error("Window flush failed, log stream ended")
		return err
	}

	o.metrics.ActiveContacts(o.nodeID, o.contacts.ActiveCount())
	return nil
}

func (o *Observer) emit(snapshot window.Snapshot) error {
	if err := o.writer.Emit(snapshot); err != nil {
		o.metrics.WriteFailed(o.nodeID)
		return err
	}

	o.metrics.WindowFlushed(o.nodeID, len(snapshot.Neighbors))
	return nil
}

// Replicate returns a fresh observer with the same configuration, clock,
// filesystem, metrics and logger, bound to store. Its statistics are empty and
// it shares no state or log handle with o.
func (o *Observer) Replicate(store Store) (*Observer, error) {
	return NewObserver(o.config, o.clock, store, o.base, WithFs(o.fs), WithMetrics(o.metrics))
}

// NodeID returns the node the observer was initialized for.
func (o *Observer) NodeID() string {
	return o.nodeID
}

// CurrentWindow returns the open window. The zero Window before OnInit.
func (o *Observer) CurrentWindow() window.Window {
	if o.windows == nil {
		return window.Window{}
	}
	return o.windows.Current()
}

// Neighbors returns a snapshot of the current window's neighbor records.
func (o *Observer) Neighbors() []peer.Stats {
	return o.repo.Snapshot()
}

// Close closes the node's log.
func (o *Observer) Close() error {
	if o.writer == nil {
		return nil
	}

	err := o.writer.Close()
	o.writer = nil
	o.windows = nil

	return err
}

package core

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/dtn-window-stats/constants"
	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
	"github.com/ethpandaops/dtn-window-stats/internal/config"
	"github.com/ethpandaops/dtn-window-stats/internal/metrics"
)

type simClock struct{ now float64 }

func (c *simClock) Now() float64 { return c.now }

type fakeStore struct {
	capacity int64
	free     int64
	held     []buffer.Message
}

func (f *fakeStore) Capacity() int64                { return f.capacity }
func (f *fakeStore) FreeCapacity() int64            { return f.free }
func (f *fakeStore) HeldMessages() []buffer.Message { return f.held }

type fixture struct {
	clock    *simClock
	store    *fakeStore
	fs       afero.Fs
	observer *Observer
}

func newFixture(t *testing.T, windowSize float64, opts ...Option) *fixture {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.SetWindowSize(windowSize)
	cfg.SetLogDir("out/logs")

	f := &fixture{
		clock: &simClock{},
		store: &fakeStore{capacity: 1000, free: 1000},
		fs:    afero.NewMemMapFs(),
	}

	logger, _ := test.NewNullLogger()
	obs, err := NewObserver(cfg, f.clock, f.store, logger, append([]Option{WithFs(f.fs)}, opts...)...)
	require.NoError(t, err)
	f.observer = obs

	return f
}

func (f *fixture) tickAt(t *testing.T, now float64) {
	t.Helper()
	f.clock.now = now
	require.NoError(t, f.observer.OnTick())
}

func (f *fixture) lines(t *testing.T, node string) []string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, "out/logs/node_"+node+".csv")
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestNewObserverRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SetWindowSize(0)
	logger, _ := test.NewNullLogger()

	_, err := NewObserver(cfg, &simClock{}, nil, logger)
	require.Error(t, err)
}

func TestTickBeforeInit(t *testing.T) {
	f := newFixture(t, 300)
	err := f.observer.OnTick()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestObserverEndToEnd(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))
	assert.Equal(t, 0.0, f.observer.CurrentWindow().Start)

	f.clock.now = 10
	f.observer.OnLinkChanged("2", true)
	f.observer.OnTransferStart("2", "M1")
	f.observer.OnTransferStart("2", "F1")
	f.observer.OnTransferStart("2", "X1")
	f.observer.OnTransferComplete("2", "M1")
	f.observer.OnTransferAbort("2", "F1")
	f.observer.OnTransferComplete("2", "")
	f.observer.OnMessageReceived("F7", "3")
	f.observer.OnMessageDeleted("M1", true)
	f.observer.OnMessageDeleted("F7", false)

	f.store.free = 990
	f.tickAt(t, 100)
	f.store.free = 980
	f.tickAt(t, 200)
	f.store.free = 970
	f.tickAt(t, 250)

	f.clock.now = 260
	f.observer.OnLinkChanged("2", false)

	f.tickAt(t, 300)
	require.NoError(t, f.observer.Close())

	lines := f.lines(t, "1")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(constants.LogColumns, ","), lines[0])
	// Occupancy samples: 10, 20, 30 and 30 at the closing tick
	assert.Equal(t, "1,2,0,300,1,250,1,1,0,0,1,0,1,0,22.50,30,1,0", lines[1])
	assert.Equal(t, "1,3,0,300,0,0,0,0,0,0,0,0,0,1,22.50,30,1,0", lines[2])
}

func TestObserverCatchUpAfterClockJump(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))

	f.observer.OnLinkChanged("2", true)
	f.tickAt(t, 1000)

	lines := f.lines(t, "1")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "1,2,0,300,1,300,"))
	assert.True(t, strings.HasPrefix(lines[2], "1,2,300,600,0,300,"))
	assert.True(t, strings.HasPrefix(lines[3], "1,2,600,900,0,300,"))
	assert.Equal(t, 900.0, f.observer.CurrentWindow().Start)
}

func TestObserverQuietWindowsProduceNoRows(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))

	f.tickAt(t, 100)
	f.tickAt(t, 700)

	assert.Len(t, f.lines(t, "1"), 1)
	assert.Equal(t, 600.0, f.observer.CurrentWindow().Start)
}

func TestObserverLinkUpDownSameInstant(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))

	f.clock.now = 42
	f.observer.OnLinkChanged("5", true)
	f.observer.OnLinkChanged("5", false)
	f.observer.OnLinkChanged("6", false)

	neighbors := f.observer.Neighbors()
	require.Len(t, neighbors, 1)
	assert.Equal(t, "5", neighbors[0].Neighbor)
	assert.Equal(t, uint64(1), neighbors[0].Contacts)
	assert.Equal(t, 0.0, neighbors[0].ContactTime)
}

func TestObserverReinitDoesNotDuplicateHeader(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))
	f.observer.OnLinkChanged("2", true)
	f.tickAt(t, 300)

	require.NoError(t, f.observer.OnInit("1"))
	f.observer.OnLinkChanged("2", false)
	f.tickAt(t, 600)
	require.NoError(t, f.observer.Close())

	lines := f.lines(t, "1")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(constants.LogColumns, ","), lines[0])
	assert.NotEqual(t, lines[0], lines[2])
}

var errSyncFailed = errors.New("sync failed")

// syncFailFs hands out files whose Sync fails while fail is set.
type syncFailFs struct {
	afero.Fs
	fail *bool
}

type syncFailFile struct {
	afero.File
	fail *bool
}

func (f syncFailFile) Sync() error {
	if *f.fail {
		return errSyncFailed
	}
	return f.File.Sync()
}

func (fs syncFailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return syncFailFile{File: f, fail: fs.fail}, nil
}

func TestObserverFlushFailureEndsLogStream(t *testing.T) {
	f := newFixture(t, 300)
	fail := false
	f.observer.fs = syncFailFs{Fs: f.fs, fail: &fail}
	require.NoError(t, f.observer.OnInit("1"))

	f.observer.OnLinkChanged("2", true)
	f.observer.OnTransferStart("2", "M1")

	fail = true
	f.clock.now = 300
	err := f.observer.OnTick()
	require.Error(t, err)
	assert.ErrorIs(t, err, errSyncFailed)

	fail = false
	f.clock.now = 301
	assert.ErrorIs(t, f.observer.OnTick(), errSyncFailed)
	f.clock.now = 900
	assert.ErrorIs(t, f.observer.OnTick(), errSyncFailed)

	// The sample taken by the failing tick is the only one
	assert.Equal(t, int64(1), f.observer.sampler.Count())

	lines := f.lines(t, "1")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1,2,0,300,1,300,1,"), lines[1])
}

func TestObserverInitFailsOnReadOnlyFs(t *testing.T) {
	cfg := config.NewDefaultConfig()
	logger, _ := test.NewNullLogger()

	obs, err := NewObserver(cfg, &simClock{}, nil, logger, WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
	require.NoError(t, err)
	assert.Error(t, obs.OnInit("1"))
}

func TestReplicateHasIndependentState(t *testing.T) {
	f := newFixture(t, 300)
	require.NoError(t, f.observer.OnInit("1"))
	f.observer.OnLinkChanged("2", true)

	replica, err := f.observer.Replicate(&fakeStore{capacity: buffer.Unbounded})
	require.NoError(t, err)
	assert.Empty(t, replica.Neighbors())
	assert.Error(t, replica.OnTick())

	require.NoError(t, replica.OnInit("9"))
	replica.OnLinkChanged("3", true)

	assert.Len(t, f.observer.Neighbors(), 1)
	assert.Len(t, replica.Neighbors(), 1)
	assert.Equal(t, "3", replica.Neighbors()[0].Neighbor)
	assert.Equal(t, "9", replica.NodeID())
	assert.Equal(t, "1", f.observer.NodeID())
	assert.NotSame(t, f.observer.repo, replica.repo)
	assert.NotSame(t, f.observer.contacts, replica.contacts)

	require.NoError(t, f.observer.Close())
	require.NoError(t, replica.Close())
}

func TestObserverMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	f := newFixture(t, 300, WithMetrics(rec))
	require.NoError(t, f.observer.OnInit("1"))
	f.observer.OnLinkChanged("2", true)
	f.tickAt(t, 650)

	count, err := testutil.GatherAndCount(reg, "dtn_window_windows_flushed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "dtn_window_active_contacts")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWallClock(t *testing.T) {
	epoch := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	mock := clock.NewMock()
	wall := NewWallClock(mock, epoch)

	mock.Set(wall.At(12.5))
	assert.InDelta(t, 12.5, wall.Now(), 1e-9)

	var c Clock = ClockFunc(func() float64 { return 7 })
	assert.Equal(t, 7.0, c.Now())
}

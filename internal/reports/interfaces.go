package reports

import (
	"github.com/ethpandaops/dtn-window-stats/internal/peer"
	"github.com/ethpandaops/dtn-window-stats/internal/window"
)

// WindowWriter defines the interface for persisting closed windows
type WindowWriter interface {
	window.Emitter
	Path() string
	Close() error
}

// FileManager defines the interface for log file operations
type FileManager interface {
	EnsureDir(dir string) error
	LogPath(dir, nodeID string) string
	GetFileSize(filename string) (int64, error)
	ListLogs(dir string) ([]string, error)
}

// Summary holds the cumulative totals of one (observer, neighbor) pair across
// every logged window
type Summary struct {
	Observer   string     `json:"observer"`
	Neighbor   string     `json:"neighbor"`
	Windows    int        `json:"windows"`
	FirstStart float64    `json:"first_window_start"`
	LastEnd    float64    `json:"last_window_end"`
	Totals     peer.Stats `json:"totals"`
}

// ObserverSummary holds the per-window fields of one observer, counted once
// per window rather than once per row
type ObserverSummary struct {
	Observer    string `json:"observer"`
	Windows     int    `json:"windows"`
	Rows        int    `json:"rows"`
	PeakBuffer  int64  `json:"buf_bytes_max"`
	DropsNormal uint64 `json:"drop_buf_normal"`
	DropsFlood  uint64 `json:"drop_buf_flood"`
}

// Report is the cumulative view of a log directory
type Report struct {
	Observers []ObserverSummary `json:"observers"`
	Neighbors []Summary         `json:"neighbors"`
}

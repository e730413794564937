package reports

import (
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ethpandaops/dtn-window-stats/constants"
	"github.com/ethpandaops/dtn-window-stats/internal/peer"
	"github.com/ethpandaops/dtn-window-stats/internal/window"
)

// CSVWriter appends closed windows to a per-node comma-separated log.
type CSVWriter struct {
	path     string
	observer string
	file     afero.File
	w        *csv.Writer
	logger   logrus.FieldLogger
}

// NewCSVWriter opens path for appending and writes the header row unless the
// file already holds data, so re-initializing against an existing log never
// duplicates it.
func NewCSVWriter(fs afero.Fs, path, observer string, logger logrus.FieldLogger) (*CSVWriter, error) {
	files := NewDefaultFileManager(fs, logger)
	size, err := files.GetFileSize(path)
	needsHeader := err != nil || size == 0

	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", path, err)
	}

	cw := &CSVWriter{
		path:     path,
		observer: observer,
		file:     f,
		w:        csv.NewWriter(f),
		logger: logger.WithFields(logrus.Fields{
			"component": "window_writer",
			"path":      path,
		}),
	}

	if needsHeader {
		if err := cw.write([][]string{constants.LogColumns}); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("could not write header to log file %s: %w", path, err)
		}
		cw.logger.Debug("Wrote log header")
	}

	return cw, nil
}

// Path returns the log file path.
func (c *CSVWriter) Path() string {
	return c.path
}

// Emit appends one row per neighbor of the snapshot. Windows without neighbor
// activity produce no rows.
func (c *CSVWriter) Emit(snapshot window.Snapshot) error {
	if len(snapshot.Neighbors) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(snapshot.Neighbors))
	for _, n := range snapshot.Neighbors {
		rows = append(rows, FormatRow(c.observer, snapshot, n))
	}

	if err := c.write(rows); err != nil {
		return fmt.Errorf("could not write log file %s: %w", c.path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"window_start": snapshot.Window.Start,
		"rows":         len(rows),
	}).Debug("Wrote window")

	return nil
}

// Close flushes and closes the log file.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

func (c *CSVWriter) write(rows [][]string) error {
	if err := c.w.WriteAll(rows); err != nil {
		return err
	}
	return c.file.Sync()
}

// FormatRow renders one log row. The window, buffer and drop fields are shared
// by every neighbor row of the window.
func FormatRow(observer string, snapshot window.Snapshot, n peer.Stats) []string {
	return []string{
		observer,
		n.Neighbor,
		seconds(snapshot.Window.Start),
		seconds(snapshot.Window.End),
		u(n.Contacts),
		seconds(n.ContactTime),
		u(n.Normal.TxOffer),
		u(n.Normal.TxOk),
		u(n.Normal.TxAbort),
		u(n.Normal.Rx),
		u(n.Flood.TxOffer),
		u(n.Flood.TxOk),
		u(n.Flood.TxAbort),
		u(n.Flood.Rx),
		fixed(snapshot.Buffer.Average(), 2),
		strconv.FormatInt(snapshot.Buffer.Max, 10),
		u(snapshot.Drops.Normal),
		u(snapshot.Drops.Flood),
	}
}

func seconds(v float64) string { return fixed(v, 0) }

// fixed formats v with decimals digits after the point. Halves of the shortest
// decimal form of v round away from zero, so 2.5 gives "3" and 20.125 gives
// "20.13".
func fixed(v float64, decimals int) string {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
	if !ok {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
	return r.FloatString(decimals)
}

func u(v uint64) string { return strconv.FormatUint(v, 10) }

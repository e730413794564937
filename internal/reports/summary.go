package reports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ethpandaops/dtn-window-stats/constants"
	"github.com/ethpandaops/dtn-window-stats/internal/peer"
)

// ErrMalformedRow is returned when a log row cannot be parsed.
var ErrMalformedRow = errors.New("malformed log row")

// Summarizer builds cumulative totals from the per-node logs of a directory.
type Summarizer struct {
	fs     afero.Fs
	files  FileManager
	logger logrus.FieldLogger
}

// NewSummarizer creates a summarizer over fs.
func NewSummarizer(fs afero.Fs, logger logrus.FieldLogger) *Summarizer {
	return &Summarizer{
		fs:     fs,
		files:  NewDefaultFileManager(fs, logger),
		logger: logger.WithField("component", "summarizer"),
	}
}

type windowKey struct {
	observer string
	start    float64
}

// Summarize reads every log under dir.
func (s *Summarizer) Summarize(dir string) (*Report, error) {
	logs, err := s.files.ListLogs(dir)
	if err != nil {
		return nil, err
	}

	neighbors := make(map[[2]string]*Summary)
	observers := make(map[string]*ObserverSummary)
	seen := make(map[windowKey]bool)

	for _, path := range logs {
		rows, err := s.readRows(path)
		if err != nil {
			return nil, err
		}

		for _, r := range rows {
			key := [2]string{r.observer, r.stats.Neighbor}
			sum, ok := neighbors[key]
			if !ok {
				sum = &Summary{
					Observer:   r.observer,
					Neighbor:   r.stats.Neighbor,
					FirstStart: r.start,
					Totals:     peer.Stats{Neighbor: r.stats.Neighbor},
				}
				neighbors[key] = sum
			}
			sum.Windows++
			sum.Totals.Add(r.stats)
			if r.start < sum.FirstStart {
				sum.FirstStart = r.start
			}
			if r.end > sum.LastEnd {
				sum.LastEnd = r.end
			}

			obs, ok := observers[r.observer]
			if !ok {
				obs = &ObserverSummary{Observer: r.observer}
				observers[r.observer] = obs
			}
			obs.Rows++

			wk := windowKey{observer: r.observer, start: r.start}
			if seen[wk] {
				continue
			}
			seen[wk] = true
			obs.Windows++
			obs.DropsNormal += r.dropNormal
			obs.DropsFlood += r.dropFlood
			if r.bufMax > obs.PeakBuffer {
				obs.PeakBuffer = r.bufMax
			}
		}

		s.logger.WithFields(logrus.Fields{
			"path": path,
			"rows": len(rows),
		}).Debug("Read log")
	}

	report := &Report{}
	for _, obs := range observers {
		report.Observers = append(report.Observers, *obs)
	}
	for _, sum := range neighbors {
		report.Neighbors = append(report.Neighbors, *sum)
	}

	sort.Slice(report.Observers, func(i, j int) bool {
		return report.Observers[i].Observer < report.Observers[j].Observer
	})
	sort.Slice(report.Neighbors, func(i, j int) bool {
		a, b := report.Neighbors[i], report.Neighbors[j]
		if a.Observer != b.Observer {
			return a.Observer < b.Observer
		}
		return a.Neighbor < b.Neighbor
	})

	return report, nil
}

type logRow struct {
	observer   string
	start      float64
	end        float64
	stats      peer.Stats
	bufMax     int64
	dropNormal uint64
	dropFlood  uint64
}

func (s *Summarizer) readRows(path string) ([]logRow, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(constants.LogColumns)

	var rows []logRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log %s: %w", path, err)
		}
		line++
		if line == 1 && record[0] == constants.LogColumns[0] {
			continue
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string) (logRow, error) {
	p := rowParser{record: record}

	row := logRow{
		observer: record[0],
		start:    p.float(2),
		end:      p.float(3),
		stats: peer.Stats{
			Neighbor:    record[1],
			Contacts:    p.uint(4),
			ContactTime: p.float(5),
			Normal: peer.ClassCounters{
				TxOffer: p.uint(6),
				TxOk:    p.uint(7),
				TxAbort: p.uint(8),
				Rx:      p.uint(9),
			},
			Flood: peer.ClassCounters{
				TxOffer: p.uint(10),
				TxOk:    p.uint(11),
				TxAbort: p.uint(12),
				Rx:      p.uint(13),
			},
		},
		bufMax:     int64(p.uint(15)),
		dropNormal: p.uint(16),
		dropFlood:  p.uint(17),
	}
	p.float(14)

	if p.err != nil {
		return logRow{}, fmt.Errorf("%w: %v", ErrMalformedRow, p.err)
	}

	return row, nil
}

// rowParser keeps the first conversion error so a row is parsed in one pass
type rowParser struct {
	record []string
	err    error
}

func (p *rowParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.record[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", constants.LogColumns[i], err)
	}
	return v
}

func (p *rowParser) uint(i int) uint64 {
	v, err := strconv.ParseUint(p.record[i], 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", constants.LogColumns[i], err)
	}
	return v
}

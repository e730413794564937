package reports

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ethpandaops/dtn-window-stats/constants"
)

// DefaultFileManager implements the FileManager interface.
type DefaultFileManager struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// NewDefaultFileManager creates a new file manager over fs.
func NewDefaultFileManager(fs afero.Fs, logger logrus.FieldLogger) *DefaultFileManager {
	return &DefaultFileManager{
		fs:     fs,
		logger: logger.WithField("component", "file_manager"),
	}
}

// EnsureDir creates dir and its parents if missing.
func (fm *DefaultFileManager) EnsureDir(dir string) error {
	if err := fm.fs.MkdirAll(dir, constants.DefaultDirPermissions); err != nil {
		return fmt.Errorf("could not create log directory %s: %w", dir, err)
	}

	fm.logger.WithField("dir", dir).Debug("Log directory ready")

	return nil
}

// LogPath returns the log file of nodeID under dir.
func (fm *DefaultFileManager) LogPath(dir, nodeID string) string {
	return filepath.Join(dir, fmt.Sprintf(constants.LogFilePattern, nodeID))
}

// GetFileSize returns the size of a file in bytes.
func (fm *DefaultFileManager) GetFileSize(filename string) (int64, error) {
	info, err := fm.fs.Stat(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	return info.Size(), nil
}

// ListLogs returns every per-node log under dir, sorted by name.
func (fm *DefaultFileManager) ListLogs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(fm.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory %s: %w", dir, err)
	}

	var logs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), constants.LogFileExtension) {
			continue
		}
		logs = append(logs, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(logs)

	return logs, nil
}

package constants

// Default configuration values
const (
	// Window-related constants, in simulated seconds
	DefaultWindowSize   = 300.0
	MinWindowSize       = 0.001
	DefaultTickInterval = 1.0

	// File and data constants
	DefaultLogDir          = "logs"
	DefaultFilePermissions = 0644
	DefaultDirPermissions  = 0755
	LogFilePattern         = "node_%s.csv"
	LogFileExtension       = ".csv"
	ShortNodeIDLength      = 12

	// Metrics endpoint
	DefaultMetricsAddr = "localhost:2112"
	MetricsNamespace   = "dtn_window"
)

// Reserved message identifier markers used to classify traffic.
const (
	NormalPrefix = "M"
	FloodPrefix  = "F"
)

// Default filenames
const (
	DefaultConfigFile = "dtnstats.yaml"
)

// Error messages
const (
	ErrInvalidWindowSize = "window size must be a finite number of seconds, at least %v, got %v"
	ErrLogDirRequired    = "log directory must not be empty"
	ErrNotInitialized    = "observer has not been initialized"
)

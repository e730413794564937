package config

// Config defines the interface for observer configuration.
type Config interface {
	GetWindowSize() float64
	GetLogDir() string
	GetTickInterval() float64
	IsMetricsEnabled() bool
	GetMetricsAddr() string
	Validate() error
}

// fileConfig is the YAML document accepted by LoadFile. Absent keys keep the
// current value.
type fileConfig struct {
	WindowSize   *float64 `yaml:"windowSize"`
	LogDir       *string  `yaml:"logDir"`
	TickInterval *float64 `yaml:"tickInterval"`
	Metrics      *struct {
		Enabled *bool   `yaml:"enabled"`
		Addr    *string `yaml:"addr"`
	} `yaml:"metrics"`
}

package logging

import "time"

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Categories       map[string]bool
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	Memory           MemoryConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

type MemoryConfig struct {
	Capacity int
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
		Console: ConsoleConfig{UseColor: true},
		Memory:  MemoryConfig{Capacity: 1024},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// Allows reports whether an event of the given category and severity passes
// the router's filter. An empty Categories map admits every category.
func (c Config) Allows(category string, severity Severity) bool {
	if severity < c.MinimumSeverity {
		return false
	}
	if len(c.Categories) == 0 {
		return true
	}
	enabled, known := c.Categories[category]
	if !known {
		return true
	}
	return enabled
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}

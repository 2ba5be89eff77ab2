package config

// Default values used when neither the config file nor a flag sets them
const (
	DEFAULT_MAX_METHODS      = 20
	DEFAULT_MAX_REPORT_BYTES = 60000
	DEFAULT_CONFIG_FILE      = "jitdiff.yaml"
)

// JitDiffConfig represents the jitdiff.yaml configuration file
type JitDiffConfig struct {
	// Extra known-noise substrings added to the built-in table
	KnownNoise []string `yaml:"knownNoise"`

	// Maximum number of methods shown per section
	MaxMethods int `yaml:"maxMethods"`
	// Byte budget for the whole report
	MaxReportBytes int `yaml:"maxReportBytes"`
	// Worker limit, 0 means one worker per CPU
	Concurrency int `yaml:"concurrency"`

	IncludeKnownNoise     bool `yaml:"includeKnownNoise"`
	IncludeRemovedMethods bool `yaml:"includeRemovedMethods"`
	IncludeNewMethods     bool `yaml:"includeNewMethods"`

	// Context lines around each change, 0 means the whole method
	DiffContextLines int `yaml:"diffContextLines"`

	// Optional path to a method annotations file
	Annotations string `yaml:"annotations,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *JitDiffConfig {
	return &JitDiffConfig{
		MaxMethods:     DEFAULT_MAX_METHODS,
		MaxReportBytes: DEFAULT_MAX_REPORT_BYTES,
	}
}

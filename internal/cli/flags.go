package cli

// Flags holds all command-line flag values
type Flags struct {
	CfgFile string

	// Input
	Sources   []string
	MinLength int
	ListWords bool

	// Run control
	StartWord    string
	MaxWords     int
	ForceRefresh bool

	// Cache
	CacheBackend string
	DataDir      string
	Archive      bool

	// Other modes and outputs
	MCPMode     bool
	MetricsFile string
	LogLevel    string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		MinLength:    2,
		CacheBackend: "files",
		DataDir:      "data",
		LogLevel:     "info",
	}
}

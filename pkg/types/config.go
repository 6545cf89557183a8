package types

import "errors"

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	FileName string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
}

// Supported backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Default document names per backend.
const (
	DefaultJSONFile   = "file.json"
	DefaultSQLiteFile = "file.db"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSON:   true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// DocumentName returns the file name of the on-disk document, falling back to
// the backend's default when FileName is empty.
func (c Config) DocumentName() string {
	if c.FileName != "" {
		return c.FileName
	}
	if c.Backend == BackendSQLite {
		return DefaultSQLiteFile
	}
	return DefaultJSONFile
}

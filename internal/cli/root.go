// Package cli implements the hbnb command-line interface: a bare invocation
// starts the interactive console, subcommands run a single console command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/hbnb"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	envFile   string
	jsonMode  bool
	verbose   bool
}

// app carries the state shared by one command invocation.
type app struct {
	flags  rootFlags
	config *viper.Viper
	logger *zap.Logger
}

// exitError carries the process exit code for a failed command. A nil err
// means the message was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// NewRootCmd creates the top-level "hbnb" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "hbnb",
		Short: "A command console for typed records",
		Long: `hbnb creates, shows, updates and destroys typed records (User, Place,
City, ...) kept in a JSON document.

Run without arguments to start the interactive console.`,
		Version:       hbnb.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/hbnb)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory holding the store document (default: current directory)")
	pf.StringVar(&a.flags.backend, "backend", "", "store backend: json or sqlite (default from config.yaml)")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "print show and all results as JSON")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	for _, cmd := range newRecordCmds(a) {
		root.AddCommand(cmd)
	}

	return root
}

// Execute runs the root command against the process streams and exits with
// the resulting code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, err)
	return exitUserError
}

// setup loads the dotenv file, the configuration and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.flags.envFile != "" {
		if err := godotenv.Load(a.flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &exitError{code: exitSysError, err: fmt.Errorf("load env file: %w", err)}
		}
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("resolve config dir: %w", err)}
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("load config: %w", err)}
	}
	if a.flags.backend != "" {
		cfg.Set(cfgKeyBackend, a.flags.backend)
	}
	a.config = cfg

	logger, err := newLogger(a.flags.verbose)
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("initialize logger: %w", err)}
	}
	a.logger = logger
	return nil
}

// newLogger builds a production zap logger writing JSON to stderr. Only
// warnings and errors are emitted unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// storeConfig resolves the store configuration from flags and config.yaml.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{
		Backend:  a.config.GetString(cfgKeyBackend),
		DataDir:  dataDir,
		FileName: a.config.GetString(cfgKeyFileName),
	}, nil
}

// openStore opens the configured store. The caller must Close it.
func (a *app) openStore() (*storage.Engine, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, &exitError{code: exitSysError, err: err}
	}
	store, err := storage.Open(cfg, a.logger)
	if err != nil {
		code := exitSysError
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) {
			code = exitUserError
		}
		return nil, &exitError{code: code, err: fmt.Errorf("open store: %w", err)}
	}
	return store, nil
}

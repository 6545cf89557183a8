package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the record store",
		Long:  "Write a default config.yaml if none exists, then create the store document in the data directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("resolve config dir: %w", err)}
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return &exitError{code: exitSysError, err: err}
	}

	configPath := filepath.Join(configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, configFile{
		Backend:  cfg.Backend,
		DataDir:  a.config.GetString(cfgKeyDataDir),
		FileName: cfg.FileName,
	})
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("write config: %w", err)}
	}
	if written {
		a.logger.Info("wrote default config", zap.String("path", configPath))
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Flushing an empty store creates the document on disk.
	if err := store.Save(); err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("initialize store: %w", err)}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "hbnb initialized successfully")
	fmt.Fprintln(out, "  config:", configPath)
	fmt.Fprintln(out, "  store: ", store.Path())
	return nil
}

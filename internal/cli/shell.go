package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/console"
)

// runShell starts the interactive console. A terminal on stdin gets line
// editing and history; any other input is read line by line without a prompt.
func (a *app) runShell(cmd *cobra.Command) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sh := console.New(store, cmd.OutOrStdout(), a.logger)
	sh.JSON = a.flags.jsonMode
	sh.Prompt = a.config.GetString(cfgKeyPrompt)

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && console.IsTerminal(int(f.Fd())) {
		a.logger.Debug("starting interactive console", zap.String("store", store.Path()))
		if err := sh.RunTerminal(int(f.Fd()), f, cmd.OutOrStdout()); err != nil {
			return &exitError{code: exitSysError, err: err}
		}
		return nil
	}

	if err := sh.Loop(console.NewLineReader(in)); err != nil {
		return &exitError{code: exitSysError, err: err}
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/console"
)

// recordCmdDefs describes the one-shot subcommands. Each runs the console
// command of the same name, so argument checks and messages match the
// interactive shell. Commands with positionalOnly stop flag parsing at the
// first argument, so values such as -5 reach the command intact.
var recordCmdDefs = []struct {
	use            string
	short          string
	example        string
	positionalOnly bool
}{
	{"create <class>", "Create a record and print its id", "  hbnb create User", false},
	{"show <class> <id>", "Print a record", "  hbnb show User 246c227a-d5c1-403d-9bc7-6a47bb9f0f68", false},
	{"destroy <class> <id>", "Delete a record", "  hbnb destroy User 246c227a-d5c1-403d-9bc7-6a47bb9f0f68", false},
	{"all [class]", "Print every record, or every record of a class", "  hbnb all\n  hbnb all Place --json", false},
	{"count <class>", "Print the number of records of a class", "  hbnb count Review", false},
	{"update <class> <id> <attribute> <value>", "Set one attribute of a record", "  hbnb update User 246c227a-d5c1-403d-9bc7-6a47bb9f0f68 first_name \"Betty\"\n  hbnb update Place 7a1cf0d2-4b8e-4c55-9d2a-0e6f3b1c8a90 latitude -37.8", true},
}

func newRecordCmds(a *app) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(recordCmdDefs))
	for _, def := range recordCmdDefs {
		cmd := &cobra.Command{
			Use:     def.use,
			Short:   def.short,
			Example: def.example,
			Args:    cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runRecordCmd(cmd, args)
			},
		}
		if def.positionalOnly {
			cmd.Flags().SetInterspersed(false)
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// runRecordCmd opens the store and executes one console command.
func (a *app) runRecordCmd(cmd *cobra.Command, args []string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sh := console.New(store, cmd.OutOrStdout(), a.logger)
	sh.JSON = a.flags.jsonMode

	err = sh.Execute(cmd.Name(), args)
	if err == nil {
		return nil
	}
	var msg console.Message
	if errors.As(err, &msg) {
		fmt.Fprintln(cmd.OutOrStdout(), msg.Error())
		return &exitError{code: exitUserError}
	}
	return &exitError{code: exitSysError, err: fmt.Errorf("%s: %w", cmd.Name(), err)}
}

package console

import (
	"strings"
)

const helpHeader = "Documented commands (type help <topic>):"

// runHelp lists the commands in columns, or prints one command's help text.
func runHelp(c *Console, args []string) error {
	if len(args) > 0 {
		cmd, ok := c.commands[args[0]]
		if !ok {
			c.println("*** No help on " + args[0])
			return nil
		}
		c.println(cmd.help)
		return nil
	}

	c.println("")
	c.println(helpHeader)
	c.println(strings.Repeat("=", len(helpHeader)))
	c.println(strings.Join(c.Commands(), "  "))
	c.println("")
	return nil
}

// Help returns the help text of a command and whether it exists.
func (c *Console) Help(name string) (string, bool) {
	cmd, ok := c.commands[name]
	return cmd.help, ok
}

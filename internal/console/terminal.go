package console

import (
	"fmt"
	"io"

	"golang.org/x/term"
)

// IsTerminal reports whether fd is an interactive terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// RunTerminal switches fd to raw mode and runs the loop with line editing
// and history, restoring the terminal on return. Output is routed through the
// terminal so newlines are translated while raw mode is active.
func (c *Console) RunTerminal(fd int, in io.Reader, out io.Writer) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, c.Prompt)

	prev := c.out
	c.SetOutput(t)
	defer c.SetOutput(prev)

	return c.Loop(t)
}

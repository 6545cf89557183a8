// Package console implements the hbnb command interpreter: it reads a line,
// tokenizes it, dispatches on the leading keyword, and prints results or
// "** ... **" error strings.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// DefaultPrompt is shown before each interactive line.
const DefaultPrompt = "(hbnb) "

// commandFunc runs one command. It writes normal output through c and
// returns a Message for user errors, ErrQuit to stop, or a system error.
type commandFunc func(c *Console, args []string) error

// command pairs a handler with its help text.
type command struct {
	run  commandFunc
	help string
}

// Console dispatches line-oriented commands against a Store.
type Console struct {
	// Prompt is shown by interactive loops.
	Prompt string
	// JSON prints show and all results as indented JSON documents.
	JSON bool

	store    types.Store
	out      io.Writer
	logger   *zap.Logger
	commands map[string]command
}

// New returns a Console writing to out. A nil logger disables logging.
func New(store types.Store, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		Prompt:   DefaultPrompt,
		store:    store,
		out:      out,
		logger:   logger,
		commands: commandTable(),
	}
}

// SetOutput redirects command output.
func (c *Console) SetOutput(w io.Writer) {
	c.out = w
}

// Commands returns the dispatchable command names in sorted order.
func (c *Console) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command with pre-split arguments.
// Returns nil, ErrQuit, a Message, or a system error; nothing is printed for
// the returned error.
func (c *Console) Execute(name string, args []string) error {
	cmd, ok := c.commands[name]
	if !ok {
		return unknownSyntax(strings.TrimSpace(name + " " + strings.Join(args, " ")))
	}
	c.logger.Debug("dispatch", zap.String("command", name), zap.Strings("args", args))
	return cmd.run(c, args)
}

// Onecmd interprets one input line, printing results and error strings.
// It reports whether the loop should stop.
func (c *Console) Onecmd(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	var err error
	if call, ok := parseDotCall(line); ok {
		err = c.executeDot(line, call)
	} else {
		tokens, splitErr := shlex.Split(line)
		if splitErr != nil || len(tokens) == 0 {
			err = unknownSyntax(line)
		} else {
			err = c.Execute(tokens[0], tokens[1:])
		}
	}
	return c.report(err)
}

// report prints err and reports whether the loop should stop.
func (c *Console) report(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuit) {
		return true
	}
	var msg Message
	if errors.As(err, &msg) {
		c.println(msg.Error())
		return false
	}
	c.logger.Error("command failed", zap.Error(err))
	c.println("** " + err.Error() + " **")
	return false
}

// LineReader yields input one line at a time. io.EOF ends the loop.
type LineReader interface {
	ReadLine() (string, error)
}

// Loop reads lines until EOF or a quitting command.
func (c *Console) Loop(lr LineReader) error {
	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		if c.Onecmd(line) {
			return nil
		}
	}
}

// scannerReader adapts a bufio.Scanner to LineReader.
type scannerReader struct {
	scanner *bufio.Scanner
}

// NewLineReader returns a LineReader over r without prompting or editing.
func NewLineReader(r io.Reader) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r)}
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// Package cmdline holds the argument-vector form of an external tool
// invocation and its single-line text form.
package cmdline

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyCommand is returned by Parse for a line that holds no tokens.
var ErrEmptyCommand = errors.New("empty command line")

// CommandLine is an ordered invocation of an external tool. Program is the
// bare tool name; the Tool Locator turns it into an executable path.
type CommandLine struct {
	Program string
	Args    []string

	// paths are the argument values rendered with double quotes by String.
	paths map[string]bool
}

// New returns a command line for program. Arguments listed in paths are
// quoted when the line is flattened.
func New(program string, args []string, paths ...string) CommandLine {
	cl := CommandLine{Program: program, Args: args}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if cl.paths == nil {
			cl.paths = make(map[string]bool, len(paths))
		}
		cl.paths[p] = true
	}
	return cl
}

// Argv returns the program followed by its arguments.
func (c CommandLine) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// IsZero reports whether c names no program.
func (c CommandLine) IsZero() bool {
	return c.Program == ""
}

// String flattens c into the single-line form shown to and edited by the
// user. Path arguments and any argument holding a space or quote are quoted
// so that Tokenize gives back Argv. Double quotes are used unless the argument
// contains one; an argument holding both quote characters cannot round-trip.
func (c CommandLine) String() string {
	var sb strings.Builder
	sb.WriteString(c.Program)
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		if !c.paths[arg] && !strings.ContainsAny(arg, ` "'`) {
			sb.WriteString(arg)
			continue
		}
		quote := byte('"')
		if strings.Contains(arg, `"`) {
			quote = '\''
		}
		sb.WriteByte(quote)
		sb.WriteString(arg)
		sb.WriteByte(quote)
	}
	return sb.String()
}

// Parse tokenizes a free-text line. The first token is the program.
func Parse(line string) (CommandLine, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return CommandLine{}, ErrEmptyCommand
	}
	return CommandLine{Program: tokens[0], Args: tokens[1:]}, nil
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"buildplan/internal/plan"
)

// Process exit codes.
const (
	ExitSuccess        = 0
	ExitInvalidSpec    = 1
	ExitMalformedInput = 2
	ExitInternalError  = 3
	ExitDrift          = 4
)

// Command names.
const (
	CommandResolve = "resolve"
	CommandFmt     = "fmt"
)

// Format selects how results are printed on stdout.
type Format string

const (
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
	FormatDockerfile Format = "dockerfile"
	FormatDump       Format = "dump"
	FormatText       Format = "text"
)

const usage = `usage:
  buildplan resolve --spec <path> [--compare <otherPath>] [flags]
  buildplan fmt --spec <path> [-w]

resolve turns a build spec (or a saved JSON plan) into canonical build plans.
fmt prints the spec document in canonical form.
`

// Invocation is the parsed command line.
type Invocation struct {
	Command      string
	SpecPath     string
	ComparePath  string
	Variant      string
	Format       Format
	Allow        []string
	CheckDrift   bool
	Strict       bool
	SortRuntime  bool
	OutputDir    string
	Repository   string
	Distribution string
	Write        bool
	Verbose      bool
}

// InvocationError carries the exit code for a command line that cannot run.
type InvocationError struct {
	ExitCode int
	Message  string
	Help     bool
}

func (e *InvocationError) Error() string {
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses args (without the program name) into an Invocation.
func ParseInvocation(args []string, stderr io.Writer) (Invocation, error) {
	if len(args) == 0 {
		return Invocation{}, invalidInvocationf("expected a command, run 'buildplan help' for usage")
	}

	switch args[0] {
	case CommandResolve:
		return parseResolve(args[1:], stderr)
	case CommandFmt:
		return parseFmt(args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nresolve flags:")
		newResolveFlags(&Invocation{}, new(string), new(string), stderr).PrintDefaults()

		return Invocation{}, &InvocationError{ExitCode: ExitSuccess, Help: true}
	default:
		return Invocation{}, invalidInvocationf("unknown command %q, run 'buildplan help' for usage", args[0])
	}
}

func newResolveFlags(inv *Invocation, format, allow *string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(CommandResolve, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	def := plan.DefaultConfig()

	fs.StringVar(&inv.SpecPath, "spec", "", "Build spec YAML file, or a saved JSON plan. Required.")
	fs.StringVar(&inv.ComparePath, "compare", "", "Second spec file or saved JSON plan to diff against.")
	fs.StringVar(&inv.Variant, "variant", "", "Resolve only the named variant.")
	fs.StringVar(format, "format", "", "Output format: yaml|json|dockerfile|dump, plus text with --compare.")
	fs.StringVar(allow, "allow", "", "Comma-separated plan paths variants may differ along; enables drift checks.")
	fs.BoolVar(&inv.Strict, "strict", false, "Exit 4 when the drift check reports drift. Implies --allow default if unset.")
	fs.BoolVar(&inv.SortRuntime, "sort", false, "Order variants by runtime version, then name.")
	fs.StringVar(&inv.OutputDir, "out", "", "Write one Dockerfile per variant into this directory.")
	fs.StringVar(&inv.Repository, "repository", def.Repository, "Base image repository.")
	fs.StringVar(&inv.Distribution, "distribution", def.Distribution, "Fixed distribution tag appended to the runtime version.")
	fs.BoolVar(&inv.Verbose, "v", false, "Verbose logging on stderr.")

	return fs
}

func parseResolve(args []string, stderr io.Writer) (Invocation, error) {
	inv := Invocation{Command: CommandResolve}

	var format, allow string

	fs := newResolveFlags(&inv, &format, &allow, stderr)

	if err := parseFlags(fs, args); err != nil {
		return Invocation{}, err
	}

	if inv.SpecPath == "" {
		return Invocation{}, invalidInvocationf("--spec is required")
	}

	f, err := parseFormat(format, inv.ComparePath != "")
	if err != nil {
		return Invocation{}, err
	}

	inv.Format = f

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "allow" {
			inv.CheckDrift = true
		}
	})

	for _, p := range strings.Split(allow, ",") {
		if p = strings.TrimSpace(p); p != "" {
			inv.Allow = append(inv.Allow, p)
		}
	}

	if inv.Strict && !inv.CheckDrift {
		inv.CheckDrift = true
		inv.Allow = []string{axisDefault}
	}

	return inv, nil
}

func parseFmt(args []string, stderr io.Writer) (Invocation, error) {
	inv := Invocation{Command: CommandFmt}

	fs := flag.NewFlagSet(CommandFmt, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&inv.SpecPath, "spec", "", "Build spec YAML file. Required.")
	fs.BoolVar(&inv.Write, "w", false, "Rewrite the file in place instead of printing it.")
	fs.BoolVar(&inv.Verbose, "v", false, "Verbose logging on stderr.")

	if err := parseFlags(fs, args); err != nil {
		return Invocation{}, err
	}

	if inv.SpecPath == "" {
		return Invocation{}, invalidInvocationf("--spec is required")
	}

	return inv, nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &InvocationError{ExitCode: ExitSuccess, Help: true}
		}

		return invalidInvocationf("%v", err)
	}

	if fs.NArg() != 0 {
		return invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	return nil
}

func parseFormat(s string, comparing bool) (Format, error) {
	if s == "" {
		if comparing {
			return FormatText, nil
		}

		return FormatYAML, nil
	}

	switch f := Format(s); f {
	case FormatYAML, FormatJSON, FormatDockerfile, FormatDump:
		return f, nil
	case FormatText:
		if comparing {
			return f, nil
		}

		return "", invalidInvocationf("--format text requires --compare")
	default:
		return "", invalidInvocationf("unknown --format %q", s)
	}
}

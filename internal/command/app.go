// Where: cli/internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/poruru/bsam-cli/internal/infra/artifacts"
	"github.com/poruru/bsam-cli/internal/infra/config"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	"github.com/poruru/bsam-cli/internal/infra/docker"
	"github.com/poruru/bsam-cli/internal/infra/interaction"
	"github.com/poruru/bsam-cli/internal/infra/logging"
	"github.com/poruru/bsam-cli/internal/infra/platform"
	"github.com/poruru/bsam-cli/internal/meta"
	"github.com/poruru/bsam-cli/internal/usecase/deploy"
	"github.com/poruru/bsam-cli/internal/usecase/invoke"
	"github.com/poruru/bsam-cli/internal/usecase/packaging"
)

// Dependencies holds the collaborators injected into command handlers.
// Nil process accessors fall back to the os package; nil factories make the
// commands that need them fail with a configuration error.
type Dependencies struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
	// Prompter is nil when stdin/stdout are not a terminal.
	Prompter interaction.Prompter

	Getwd      func() (string, error)
	HomeDir    func() (string, error)
	Environ    func() []string
	LoadConfig func() (config.GlobalConfig, error)

	NewExecutor func(docker.Options) (invoke.Executor, io.Closer, error)
	NewPlatform func(context.Context, platform.Factory) (deploy.Platform, error)
	NewUploader func(context.Context, credentials.Source, artifacts.Settings) (packaging.Uploader, error)
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Template string     `short:"t" default:"${template}" help:"Path to the SAM template"`
	EnvFile  string     `name:"env-file" help:"Path to .env file"`
	Debug    bool       `help:"Enable debug logging"`
	NoEmoji  bool       `name:"no-emoji" help:"Disable emoji output"`
	Local    LocalCmd   `cmd:"" help:"Run functions locally"`
	Package  PackageCmd `cmd:"" help:"Zip every function's code"`
	Deploy   DeployCmd  `cmd:"" help:"Create or update functions on the platform"`
	Init     InitCmd    `cmd:"" help:"Create a new project from the hello-world scaffold"`
	Version  VersionCmd `cmd:"" help:"Show version information"`
}

type (
	// LocalCmd groups local execution subcommands.
	LocalCmd struct {
		Invoke InvokeCmd `cmd:"" help:"Invoke a function once in a local container"`
	}

	// InvokeCmd defines the local invoke flags.
	InvokeCmd struct {
		Function      string `arg:"" help:"Function name or logical ID"`
		Event         string `short:"e" help:"JSON event file ('-' reads stdin)"`
		EnvVars       string `short:"n" name:"env-vars" help:"JSON file with environment variable overrides"`
		DebugPort     int    `short:"d" name:"debug-port" help:"Expose a debugger on this port"`
		DebuggerArgs  string `name:"debugger-args" help:"Extra arguments passed to the debugger"`
		DockerNetwork string `name:"docker-network" help:"Docker network to attach the container to"`
		SkipPullImage bool   `name:"skip-pull-image" help:"Do not pull the runtime image"`
	}

	// PackageCmd defines the package flags.
	PackageCmd struct {
		OutputDir string `name:"output-dir" help:"Directory receiving the archives (default: template directory)"`
		S3Bucket  string `name:"s3-bucket" help:"Upload archives to this bucket"`
		S3Prefix  string `name:"s3-prefix" help:"Object key prefix for uploads"`
		Verbose   bool   `short:"v" help:"List archived files"`
	}

	// DeployCmd defines the deploy flags.
	DeployCmd struct {
		Function           string `arg:"" optional:"" help:"Deploy only this function"`
		Package            bool   `help:"Package code before deploying"`
		Parallel           int    `default:"1" help:"Number of functions reconciled concurrently"`
		CreateOnProbeError bool   `name:"create-on-probe-error" help:"Create functions whose remote state cannot be determined"`
		ProbeAttempts      int    `name:"probe-attempts" default:"3" help:"Attempts to determine the remote state"`
		ArtifactDir        string `name:"artifact-dir" help:"Directory holding the archives (default: template directory)"`
		Endpoint           string `help:"Platform endpoint URL"`
		Role               string `help:"Execution role for created functions"`
		Region             string `help:"Region for created functions"`
	}

	// InitCmd defines the init flags.
	InitCmd struct {
		Name      string `help:"Project name"`
		Runtime   string `help:"Runtime (python2.7, nodejs6.11)"`
		OutputDir string `name:"output-dir" help:"Directory to create the project in"`
		Force     bool   `help:"Overwrite a non-empty project directory"`
	}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	deps = withDefaults(deps)
	out := deps.Out

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name(cliName()),
		kong.Description("Develop, package, and deploy serverless functions."),
		kong.Writers(out, deps.ErrOut),
		kong.Vars{"template": meta.DefaultTemplate},
	)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(err, deps.ErrOut)
	}

	logging.Setup(deps.ErrOut, cli.Debug)
	loadEnvFile(cli.EnvFile, newUI(deps.ErrOut, cli))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := commandKey(kctx.Command())
	if exitCode, handled := dispatchCommand(ctx, command, cli, deps); handled {
		return exitCode
	}

	newUI(deps.ErrOut, cli).Warn("unknown command")
	return 1
}

type commandHandler func(context.Context, CLI, Dependencies) int

func dispatchCommand(ctx context.Context, command string, cli CLI, deps Dependencies) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"local invoke": runLocalInvoke,
		"package":      runPackage,
		"deploy":       runDeploy,
		"init":         runInit,
		"version":      runVersion,
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(ctx, cli, deps), true
	}

	return 1, false
}

// commandKey drops positional placeholders ("local invoke <function>").
func commandKey(command string) string {
	fields := strings.Fields(command)
	kept := fields[:0]
	for _, field := range fields {
		if strings.HasPrefix(field, "<") {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// loadEnvFile loads --env-file, or ./.env when present. Variables already set
// in the shell win, and loaded ones join the shell environment layer.
func loadEnvFile(path string, console interface{ Warn(string) }) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			console.Warn(fmt.Sprintf("failed to load env file %s: %v", path, err))
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			console.Warn(fmt.Sprintf("failed to load .env: %v", err))
		}
	}
}

// runNoArgs prints a short usage summary.
func runNoArgs(out io.Writer) int {
	ui := newUI(out, CLI{NoEmoji: true})
	cmd := cliName()
	ui.Info("Usage:")
	ui.Info(fmt.Sprintf("  %s local invoke <function> [--event <file>] [--env-vars <file>]", cmd))
	ui.Info(fmt.Sprintf("  %s package [--s3-bucket <bucket>] [--output-dir <dir>]", cmd))
	ui.Info(fmt.Sprintf("  %s deploy [<function>] [--package] [--parallel <n>]", cmd))
	ui.Info(fmt.Sprintf("  %s init [--name <name>] [--runtime <runtime>]", cmd))
	ui.Info("")
	ui.Info(fmt.Sprintf("Try: %s --help", cmd))
	return 0
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(err error, out io.Writer) int {
	msg := err.Error()
	ui := newUI(out, CLI{NoEmoji: true})
	cmd := cliName()
	switch {
	case strings.Contains(msg, "expected \"<function>\""):
		ui.Warn("`local invoke` expects a function name.")
		ui.Info(fmt.Sprintf("Example: %s local invoke HelloWorldFunction --event events/event.json", cmd))
		return 1
	case strings.Contains(msg, "--template") && strings.Contains(msg, "expected string value"):
		ui.Warn("`-t/--template` expects a path to a SAM template.")
		ui.Info(fmt.Sprintf("Example: %s deploy -t ./template.yaml", cmd))
		return 1
	}
	return exitWithError(out, err)
}

func withDefaults(deps Dependencies) Dependencies {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.HomeDir == nil {
		deps.HomeDir = os.UserHomeDir
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.LoadConfig == nil {
		deps.LoadConfig = loadGlobalConfig
	}
	return deps
}

func loadGlobalConfig() (config.GlobalConfig, error) {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return config.GlobalConfig{}, err
	}
	return config.LoadOrDefault(path)
}

// Where: cli/internal/command/init.go
// What: init command handler.
// Why: Write the hello-world scaffold, prompting for missing inputs on a terminal.
package command

import (
	"context"
	"fmt"

	"github.com/poruru/bsam-cli/internal/infra/ui"
	"github.com/poruru/bsam-cli/internal/usecase/scaffold"
)

func runInit(_ context.Context, cli CLI, deps Dependencies) int {
	cmd := cli.Init
	console := newUI(deps.Out, cli)

	wd, err := deps.Getwd()
	if err != nil {
		return reportError(console, err)
	}
	outputDir := cmd.OutputDir
	if outputDir == "" {
		outputDir = wd
	}
	result, err := scaffold.Workflow{Prompter: deps.Prompter}.Run(scaffold.Request{
		Name:      cmd.Name,
		Runtime:   cmd.Runtime,
		OutputDir: absPath(wd, outputDir),
		Force:     cmd.Force,
	})
	if err != nil {
		return reportError(console, err)
	}
	console.Block("✨", "Project created", []ui.KeyValue{
		{Key: "Directory", Value: result.Dir},
		{Key: "Runtime", Value: result.Runtime},
		{Key: "Files", Value: len(result.Files)},
	})
	console.Success(fmt.Sprintf("Next: cd %s && %s local invoke HelloWorldFunction --event events/event.json", result.Dir, cliName()))
	return 0
}

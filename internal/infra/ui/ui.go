// Where: cli/internal/infra/ui/ui.go
// What: User-facing output surface for commands.
// Why: Keep user messages separate from diagnostic logging.
package ui

import (
	"fmt"
	"io"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by commands.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Error(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// New returns a UserInterface writing to out.
func New(out io.Writer, emoji bool) UserInterface {
	return consoleUI{out: out, console: NewConsole(out, emoji)}
}

type consoleUI struct {
	out     io.Writer
	console *Console
}

func (c consoleUI) Info(msg string) {
	fmt.Fprintln(c.out, msg)
}

func (c consoleUI) Warn(msg string) {
	c.console.Warn(msg)
}

func (c consoleUI) Success(msg string) {
	c.console.Success(msg)
}

func (c consoleUI) Error(msg string) {
	c.console.Error(msg)
}

func (c consoleUI) Block(emoji, title string, rows []KeyValue) {
	c.console.BlockStart(emoji, title)
	for _, kv := range rows {
		if s, ok := kv.Value.(string); ok && s == "" {
			continue
		}
		c.console.Item(kv.Key, kv.Value)
	}
	c.console.BlockEnd()
}

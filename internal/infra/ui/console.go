// Where: cli/internal/infra/ui/console.go
// What: Console output helpers for consistent CLI UX.
// Why: Standardize emojis, indentation, and block layout across commands.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Console provides helper methods for formatted output.
type Console struct {
	Out          io.Writer
	EmojiEnabled bool
}

// NewConsole creates a Console with explicit emoji settings.
func NewConsole(out io.Writer, emoji bool) *Console {
	return &Console{Out: out, EmojiEnabled: emoji}
}

// Header prints a section header.
// Example: 🚀 Deployed hello.
func (c *Console) Header(emoji, title string) {
	fmt.Fprintf(c.Out, "%s%s\n", c.emojiPrefix(emoji), title)
}

// BlockStart separates a block from preceding output and prints its header.
func (c *Console) BlockStart(emoji, title string) {
	fmt.Fprintln(c.Out)
	c.Header(emoji, title)
}

// BlockEnd ends a logical block.
func (c *Console) BlockEnd() {
	fmt.Fprintln(c.Out)
}

// Item prints an indented key-value line.
func (c *Console) Item(key string, value any) {
	fmt.Fprintf(c.Out, "   %-16s %v\n", key+":", value)
}

// Success prints a message with a checkmark, or "[ok]" without emoji.
func (c *Console) Success(msg string) {
	c.prefixed("✅", "[ok] ", msg)
}

// Warn prints a message with a warning sign, or "[warn]" without emoji.
func (c *Console) Warn(msg string) {
	c.prefixed("⚠️", "[warn] ", msg)
}

// Error prints a message with a cross, or "[error]" without emoji.
func (c *Console) Error(msg string) {
	c.prefixed("❌", "[error] ", msg)
}

func (c *Console) prefixed(emoji, fallback, msg string) {
	prefix := c.emojiPrefix(emoji)
	if prefix == "" {
		prefix = fallback
	}
	fmt.Fprintf(c.Out, "%s%s\n", prefix, msg)
}

func (c *Console) emojiPrefix(emoji string) string {
	if !c.EmojiEnabled || strings.TrimSpace(emoji) == "" {
		return ""
	}
	return emoji + " "
}

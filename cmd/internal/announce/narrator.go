package announce

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandNarrator speaks through a local text-to-speech program such as
// espeak or say, passing the text as the last argument.
type CommandNarrator struct {
	command string
	args    []string
}

func NewCommandNarrator(command string, args ...string) *CommandNarrator {
	return &CommandNarrator{command: command, args: args}
}

func (c *CommandNarrator) Speak(ctx context.Context, text string) error {
	if c.command == "" {
		return ErrCapabilityUnavailable
	}
	path, err := exec.LookPath(c.command)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrCapabilityUnavailable, c.command)
	}

	args := append(append([]string{}, c.args...), text)
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("narrator %s: %w: %s", c.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Package speech abstracts voice-to-text behind a narrow interface. The
// core never touches audio; any provider that yields a transcript works.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotConfigured is returned when no transcriber command is set up.
var ErrNotConfigured = errors.New("speech: no transcribe command configured")

// Transcriber produces a text transcript of spoken input.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// Command runs an external program (argv form) and reads the transcript
// from its stdout. The program owns microphone capture and recognition.
type Command struct {
	Argv []string
}

// NewCommand builds a Command transcriber, or ErrNotConfigured for an
// empty argv.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 {
		return nil, ErrNotConfigured
	}
	return &Command{Argv: argv}, nil
}

func (c *Command) Transcribe(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("speech: %s: %w (%s)", c.Argv[0], err, msg)
		}
		return "", fmt.Errorf("speech: %s: %w", c.Argv[0], err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errors.New("speech: transcriber produced no text")
	}
	return text, nil
}

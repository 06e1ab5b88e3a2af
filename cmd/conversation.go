package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// stdioConversation talks to the logging-in user through the pam_exec
// streams: messages go to stdout, answers come back on stdin.
type stdioConversation struct {
	reader *bufio.Reader
	writer io.Writer
}

func newConversation(stdin io.Reader, stdout io.Writer) *stdioConversation {
	return &stdioConversation{
		reader: bufio.NewReader(stdin),
		writer: stdout,
	}
}

func (c *stdioConversation) Display(message string) error {
	if _, err := fmt.Fprintf(c.writer, "\n%s\n", message); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}

	return nil
}

func (c *stdioConversation) Ask(prompt string) (bool, error) {
	if _, err := fmt.Fprint(c.writer, prompt); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes", nil
}

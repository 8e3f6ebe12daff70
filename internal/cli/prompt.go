package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var answers = map[string]bool{"y": true, "yes": true, "n": false, "no": false}

// confirmer asks yes/no questions over an interactive stream.
type confirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newConfirmer(in io.Reader, out io.Writer) *confirmer {
	return &confirmer{in: bufio.NewReader(in), out: out}
}

// ask prints question and reads answers until one parses. A blank answer
// takes def; unparseable input at end of stream is an error.
func (c *confirmer) ask(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(c.out, "%s [%s]: ", question, hint)
		raw, readErr := c.in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return false, readErr
		}
		answer := strings.ToLower(strings.TrimSpace(raw))
		if answer == "" {
			return def, nil
		}
		if yes, ok := answers[answer]; ok {
			return yes, nil
		}
		if readErr != nil {
			return false, fmt.Errorf("unrecognized answer %q", answer)
		}
		fmt.Fprintln(c.out, "Answer y or n.")
	}
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads one line without echo when stdin is a terminal and
// falls back to a plain line read for pipes.
func readPassword(stdin io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprintf(prompt, "%s: ", label)
	defer fmt.Fprintln(prompt)

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

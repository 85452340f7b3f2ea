package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Static errors for err113 compliance.
var (
	ErrUsernameRequired = errors.New("username is required")
)

// StaticCredentials returns fixed credentials, for automated contexts.
type StaticCredentials doli.Credentials

// Credentials implements doli.CredentialProvider.
func (s StaticCredentials) Credentials(ctx context.Context) (doli.Credentials, error) {
	return doli.Credentials(s), nil
}

// Prompter asks the operator for a username and a masked password.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading from in and writing prompts to out.
// The password is read without echo when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// NewTerminalPrompter prompts on stdin, writing prompts to stderr.
func NewTerminalPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// Credentials implements doli.CredentialProvider.
func (p *Prompter) Credentials(ctx context.Context) (doli.Credentials, error) {
	err := ctx.Err()
	if err != nil {
		return doli.Credentials{}, fmt.Errorf("prompting for credentials: %w", err)
	}

	reader := bufio.NewReader(p.in)

	_, _ = fmt.Fprint(p.out, "Username: ")

	username, err := readLine(reader)
	if err != nil {
		return doli.Credentials{}, fmt.Errorf("failed to read username: %w", err)
	}

	if username == "" {
		return doli.Credentials{}, ErrUsernameRequired
	}

	_, _ = fmt.Fprint(p.out, "Password: ")

	password, err := p.readPassword(reader)
	if err != nil {
		return doli.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}

	return doli.Credentials{Login: username, Password: password}, nil
}

func (p *Prompter) readPassword(reader *bufio.Reader) (string, error) {
	if file, ok := p.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		bytePassword, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(p.out)

		if err != nil {
			return "", fmt.Errorf("reading terminal: %w", err)
		}

		return string(bytePassword), nil
	}

	return readLine(reader)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

var (
	_ doli.CredentialProvider = StaticCredentials{}
	_ doli.CredentialProvider = (*Prompter)(nil)
)

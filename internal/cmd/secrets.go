package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/jobmail/internal/secrets"
)

type SecretsCmd struct {
	Set    SecretsSetCmd    `cmd:"" help:"Store the SMTP password or LLM API key in the keyring."`
	Delete SecretsDeleteCmd `cmd:"" help:"Remove a stored secret from the keyring."`
}

type SecretsSetCmd struct {
	Kind  string `arg:"" enum:"smtp,llm" help:"Which secret: smtp or llm."`
	Value string `help:"Secret value. Read from stdin when omitted."`
}

type SecretsDeleteCmd struct {
	Kind string `arg:"" enum:"smtp,llm" help:"Which secret: smtp or llm."`
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func (s *SecretsSetCmd) Run(ctx *Context) error {
	kind, err := secrets.ParseKind(s.Kind)
	if err != nil {
		return err
	}
	value := s.Value
	if value == "" {
		fmt.Fprintf(ctx.Err, "Enter %s secret: ", kind)
		value, err = readSecretLine(stdin)
		if err != nil {
			return err
		}
	}

	account := secrets.Account(kind, ctx.Config)
	if err := secrets.Set(account, value); err != nil {
		return fmt.Errorf("store %s secret: %w", kind, err)
	}
	ctx.UI.Successf("Stored %s secret as %s", kind, account)
	return nil
}

func (s *SecretsDeleteCmd) Run(ctx *Context) error {
	kind, err := secrets.ParseKind(s.Kind)
	if err != nil {
		return err
	}
	account := secrets.Account(kind, ctx.Config)
	if err := secrets.Delete(account); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			ctx.UI.Warnf("No %s secret stored for %s", kind, account)
			return nil
		}
		return fmt.Errorf("delete %s secret: %w", kind, err)
	}
	ctx.UI.Successf("Deleted %s secret %s", kind, account)
	return nil
}

func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("secret is empty")
	}
	return line, nil
}

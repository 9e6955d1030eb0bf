// Command splitledger_admin prints operator credentials for a splitledger deployment.
//
//	splitledger_admin hash-token [token]       bcrypt hash for ADMIN_TOKEN_HASH (token read from stdin when omitted)
//	splitledger_admin dev-token --user 7       JWT signed with JWT_SECRET and JWT_ISSUER, refused when IS_PRODUCTION is set
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/SscSPs/splitledger/internal/platform/config"
	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/spf13/pflag"
)

const usage = `usage:
  splitledger_admin hash-token [token]
  splitledger_admin dev-token --user <id> [--ttl 1h]`

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, config.LoadConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, loadConfig func() (*config.Config, error)) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "hash-token":
		return hashToken(args[1:], stdin, stdout)
	case "dev-token":
		return devToken(args[1:], stdout, loadConfig)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func hashToken(args []string, stdin io.Reader, stdout io.Writer) error {
	var token string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(line)
	case 1:
		token = args[0]
	default:
		return errUsage
	}
	if token == "" {
		return errors.New("token must not be empty")
	}

	hash, err := utils.HashSecret(token)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func devToken(args []string, stdout io.Writer, loadConfig func() (*config.Config, error)) error {
	fs := pflag.NewFlagSet("dev-token", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.Int64("user", 0, "user id to put in the token subject")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%w", err, errUsage)
	}
	if *userID <= 0 {
		return errors.New("--user must be a positive user id")
	}
	if *ttl <= 0 {
		return errors.New("--ttl must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.IsProduction {
		return errors.New("dev-token is disabled when IS_PRODUCTION is set")
	}

	token, err := utils.GenerateJWT(*userID, cfg.JWTSecret, *ttl, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

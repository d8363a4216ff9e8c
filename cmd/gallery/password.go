package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const (
	defaultCost       = 12
	minPasswordLength = 8
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// passwordReader reads a secret line after showing prompt.
type passwordReader func(prompt string) ([]byte, error)

func runHashPassword(_ context.Context, cmd *cli.Command) error {
	cost := int(cmd.Int("cost"))

	var read passwordReader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		read = terminalReader(os.Stdin, os.Stderr)
	} else {
		read = lineReader(os.Stdin)
	}

	hash, err := hashPassword(read, cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, string(hash))
	return nil
}

// hashPassword reads the password twice and returns its bcrypt hash.
func hashPassword(read passwordReader, cost int) ([]byte, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	password, err := read("Admin password: ")
	if err != nil {
		return nil, fmt.Errorf("error reading password: %w", err)
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return nil, fmt.Errorf("error reading password: %w", err)
	}

	if !bytes.Equal(password, confirm) {
		return nil, errPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return nil, errPasswordTooShort
	}

	return bcrypt.GenerateFromPassword(password, cost)
}

func terminalReader(in *os.File, prompt io.Writer) passwordReader {
	return func(label string) ([]byte, error) {
		fmt.Fprint(prompt, label)
		password, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(prompt)
		return password, err
	}
}

// lineReader reads one password per line, for piped input.
func lineReader(in io.Reader) passwordReader {
	scanner := bufio.NewScanner(in)
	return func(string) ([]byte, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}
		return []byte(strings.TrimRight(scanner.Text(), "\r")), nil
	}
}

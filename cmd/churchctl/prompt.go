package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

// readPassword returns the --password flag value or prompts for it without echo
func readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt for a password; use --password")
	}
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "error reading password")
	}
	password := strings.TrimSpace(string(passwordBytes))
	if password == "" {
		return "", errors.New("a password is required")
	}
	return password, nil
}

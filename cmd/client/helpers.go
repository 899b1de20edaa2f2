package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var validCategories = []string{"personal", "legal", "digital", "wishes"}

func checkCategory(c string) error {
	for _, v := range validCategories {
		if c == v {
			return nil
		}
	}
	return fmt.Errorf("invalid category %q (valid: %s)", c, strings.Join(validCategories, ", "))
}

// readPassword is swappable in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

// promptPassword reads a password without echoing it. Falls back to the
// flag value when one was given.
func promptPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

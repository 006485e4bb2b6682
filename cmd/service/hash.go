package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/2beens/workoutfines/pkg"
)

// hashAdminToken reads the token from the first line of r and writes its
// bcrypt hash to w.
func hashAdminToken(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		return errors.New("no token on stdin")
	}
	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return errors.New("empty token")
	}

	hash, err := pkg.HashPassword(token)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

// Command hashpw generates ADMIN_PASSWORD_HASH and SESSION_SECRET values
// for the wishwall API server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wishwall/wishwall/internal/auth"
)

func main() {
	var (
		password = flag.String("password", "", "Admin password (read from stdin when empty)")
		format   = flag.String("format", "env", "Output format: env or json")
	)
	flag.Parse()

	pw := *password
	if pw == "" {
		var err error
		pw, err = readPassword(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read password:", err)
			os.Exit(1)
		}
	}

	creds, err := auth.GenerateAdminCredentials(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := write(os.Stdout, creds, *format); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func write(w io.Writer, creds *auth.AdminCredentials, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"ADMIN_PASSWORD_HASH": creds.PasswordHash,
			"SESSION_SECRET":      creds.SessionSecret,
		})
	case "env":
		// Single quotes keep the $ separators of the PHC hash intact.
		_, err := fmt.Fprintf(w, "ADMIN_PASSWORD_HASH='%s'\nSESSION_SECRET=%s\n", creds.PasswordHash, creds.SessionSecret)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Command rndpasswd generates a random password. It prefers the pwgen
// utility when installed and otherwise generates one itself from
// crypto/rand.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/infothrill/go-clitools/internal/execx"
	"github.com/infothrill/go-clitools/internal/version"
)

// Lowercase omits l and uppercase omits O to avoid confusion with digits.
const (
	lowerCase = "abcdefghijkmnopqrstuvwxyz"
	upperCase = "ABCDEFGHIJKLMNPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!#$%&()*+,-./:;<=>?@[]_}{~^"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "rndpasswd")
		return 0
	}

	fs := flag.NewFlagSet("rndpasswd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var removeChars string
	fs.StringVar(&removeChars, "r", "", "characters to exclude")
	fs.StringVar(&removeChars, "remove-chars", "", "characters to exclude")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}

	length := 32
	if fs.NArg() > 0 {
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil || n <= 0 {
			fmt.Fprintf(stderr, "error: invalid length %q\n", fs.Arg(0))
			return 2
		}
		length = n
	}

	password, err := generate(length, removeChars, execx.Available("pwgen"))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, password)
	return 0
}

// generate produces a password of the requested length, shelling out to
// pwgen when usePwgen is set and falling back to randString otherwise.
func generate(length int, removeChars string, usePwgen bool) (string, error) {
	if usePwgen {
		return pwgen(length, removeChars)
	}
	return randString(length, removeChars)
}

// pwgen runs `pwgen -sBy -r <excluded> <length> 1`. Backquote, quote and
// double quote are always excluded on top of the user set.
func pwgen(length int, removeChars string) (string, error) {
	exclude := "\\`'\"" + removeChars
	res, err := execx.Run(context.Background(), execx.Cmd{
		Argv:    []string{"pwgen", "-sBy", "-r", exclude, strconv.Itoa(length), "1"},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return "", fmt.Errorf("pwgen: %w", err)
	}
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		return "", fmt.Errorf("pwgen produced no output")
	}
	return out, nil
}

// randString draws characters uniformly from the allowed alphabet minus the
// excluded set, using crypto/rand.
func randString(length int, removeChars string) (string, error) {
	excluded := map[rune]bool{}
	for _, r := range removeChars {
		excluded[r] = true
	}
	var allowed []rune
	for _, r := range lowerCase + upperCase + digits + symbols {
		if !excluded[r] {
			allowed = append(allowed, r)
		}
	}
	if len(allowed) == 0 {
		return "", fmt.Errorf("no characters left after exclusion")
	}

	max := big.NewInt(int64(len(allowed)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rand: %w", err)
		}
		b.WriteRune(allowed[n.Int64()])
	}
	return b.String(), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  rndpasswd [-r CHARS] [LENGTH]\n\nGenerates a secure password (default length 32). Uses pwgen when installed,\notherwise crypto/rand. -r removes the given characters from the alphabet.")
}

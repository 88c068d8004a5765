// Command rot13 is a bidirectional rot13 filter: stdin to stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/infothrill/go-clitools/internal/version"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func cliMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		fmt.Fprintln(stdout, "Usage:\n  rot13 < input > output\n\nRotates ASCII letters by 13 places; all other bytes pass through.")
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "rot13")
		return 0
	}
	if err := run(stdin, stdout); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}

func run(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			buf[i] = rotate(buf[i])
		}
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}
	return w.Flush()
}

// rotate shifts a single ASCII letter by 13 places, preserving case via the
// 0x20 case bit; every other byte is returned unchanged.
func rotate(b byte) byte {
	cap := b & 32
	b &^= cap
	if b >= 'A' && b <= 'Z' {
		b = (b-'A'+13)%26 + 'A'
	}
	return b | cap
}

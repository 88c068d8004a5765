// Command gitlab-runners switches a GitLab group between shared CI
// runners and its own private runners, a cost saving lever for the free
// tier: enable the private runners when the shared minutes run out and
// switch back once the quota resets.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/infothrill/go-clitools/internal/glrunners"
	"github.com/infothrill/go-clitools/internal/version"
)

// replaceable for tests
var newAPI = func(baseURL, token string) (glrunners.API, error) {
	return glrunners.NewClient(baseURL, token)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cliMain(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "gitlab-runners")
		return 0
	}

	fs := flag.NewFlagSet("gitlab-runners", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var enable, disable bool
	fs.BoolVar(&enable, "enable", false, "enable shared runners, pause private ones")
	fs.BoolVar(&disable, "disable", false, "disable shared runners, unpause private ones")
	token := fs.String("gitlab-token", os.Getenv("GITLAB_TOKEN"), "API token (defaults to GITLAB_TOKEN)")
	url := fs.String("gitlab-url", defaultString(os.Getenv("GITLAB_URL"), "https://gitlab.com"), "GitLab instance (defaults to GITLAB_URL)")
	group := fs.String("group", "", "name of the group to switch")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}

	switch {
	case fs.NArg() != 0:
		fmt.Fprintln(stderr, "error: unexpected arguments")
	case enable == disable:
		fmt.Fprintln(stderr, "error: exactly one of --enable or --disable is required")
	case *token == "":
		fmt.Fprintln(stderr, "error: an API token is required (--gitlab-token or GITLAB_TOKEN)")
	case *group == "":
		fmt.Fprintln(stderr, "error: --group is required")
	default:
		api, err := newAPI(*url, *token)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		if err := glrunners.NewSwitcher(api, stdout).Apply(ctx, *group, enable); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}
	printUsage(stderr)
	return 2
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  gitlab-runners --enable|--disable --group NAME [--gitlab-url URL] [--gitlab-token TOKEN]\n\nWith --disable, shared runners are turned off for the group and all of\nits projects and the group's private runners are unpaused. --enable\ndoes the reverse.")
}

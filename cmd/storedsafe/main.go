package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/hengadev/storedsafe"
)

var errUsage = errors.New("usage")

// cli holds the collaborators of the command-line client. Tests replace them.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	// clientOptions are applied last to every client the CLI builds.
	clientOptions []storedsafe.ClientOption

	credentials  func(ctx context.Context) (credentialStore, error)
	s3FileSystem func(ctx context.Context) (storedsafe.FileSystem, error)
}

func newCLI() *cli {
	return &cli{
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		credentials:  defaultCredentialStore,
		s3FileSystem: defaultS3FileSystem,
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newCLI()
	if err := c.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = []command{
	{"login", "Log in and save the session token", (*cli).loginCommand},
	{"logout", "End the current session", (*cli).logoutCommand},
	{"check", "Check that the session token is still valid", (*cli).checkCommand},
	{"vaults", "List vaults", (*cli).vaultsCommand},
	{"vault", "List the objects of a vault", (*cli).vaultCommand},
	{"members", "List the members of a vault", (*cli).membersCommand},
	{"object", "Show an object", (*cli).objectCommand},
	{"find", "Search objects", (*cli).findCommand},
	{"templates", "List templates", (*cli).templatesCommand},
	{"template", "Show a template", (*cli).templateCommand},
	{"users", "List or search users", (*cli).usersCommand},
	{"user", "Show a user", (*cli).userCommand},
	{"upload", "Upload a file as a new object", (*cli).uploadCommand},
	{"get-file", "Download the decrypted content of a file object", (*cli).getFileCommand},
	{"mime", "Ask the server for the mime type of a file", (*cli).mimeCommand},
	{"policies", "List password policies", (*cli).policiesCommand},
	{"status-values", "List vault member status values", (*cli).statusValuesCommand},
	{"pwgen", "Generate a password", (*cli).pwgenCommand},
	{"health", "Check that the server and the session are usable", (*cli).healthCommand},
	{"version", "Show version information", (*cli).versionCommand},
	{"init", "Create a profile file", (*cli).initCommand},
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		c.printUsage()
		return errUsage
	}

	name := args[0]
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(c, ctx, args[1:])
		}
	}

	fmt.Fprintf(c.stderr, "Unknown command: %s\n", name)
	c.printUsage()
	return errUsage
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, "Usage: storedsafe <command> [options]\n")
	fmt.Fprintf(c.stderr, "\nCommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(c.stderr, "  %-14s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(c.stderr, "\nRun 'storedsafe <command> -h' for help on a specific command.\n")
}

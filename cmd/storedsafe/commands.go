package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/hengadev/errsx"

	"github.com/hengadev/storedsafe"
	"github.com/hengadev/storedsafe/internal/health"
)

const (
	methodTOTP      = "totp"
	methodYubikey   = "yubikey"
	methodSmartcard = "smartcard"
)

// EnvPassphrase is read by login when -p is not given.
const EnvPassphrase = "STOREDSAFE_PASSPHRASE"

type globalFlags struct {
	config string
	output string
}

func (c *cli) flagSet(name, usage string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	g := &globalFlags{}
	fs.StringVar(&g.config, "config", DefaultProfilePath, "Path to profile file")
	fs.StringVar(&g.output, "o", "", "Output format: json or yaml (default from profile)")

	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: storedsafe %s [options] %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs, g
}

// parse parses args and checks the number of positional arguments. A negative
// nargs accepts any number.
func parse(fs *flag.FlagSet, args []string, nargs int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if nargs >= 0 && fs.NArg() != nargs {
		fs.Usage()
		return errUsage
	}
	return nil
}

func (c *cli) profile(g *globalFlags) (*Profile, error) {
	profile, err := LoadProfileOrDefault(g.config)
	if err != nil {
		return nil, err
	}
	if g.output != "" {
		profile.Output = g.output
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", g.config, err)
	}
	return profile, nil
}

type apiCall func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error)

// simple runs a command that takes nargs positional arguments, calls the API
// once and prints the response.
func (c *cli) simple(ctx context.Context, name, usage string, args []string, nargs int, call apiCall) error {
	fs, g := c.flagSet(name, usage)
	if err := parse(fs, args, nargs); err != nil {
		return err
	}
	return c.call(ctx, g, fs.Args(), nil, call)
}

func (c *cli) call(ctx context.Context, g *globalFlags, args []string, extra []storedsafe.ClientOption, call apiCall) error {
	profile, err := c.profile(g)
	if err != nil {
		return err
	}
	s, err := c.openSession(ctx, profile, extra...)
	if err != nil {
		return err
	}
	resp, err := call(ctx, s.client, args)
	if err != nil {
		return err
	}
	return writeResponse(c.stdout, resp, profile.Output)
}

func (c *cli) loginCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("login", "")
	username := fs.String("u", "", "User name")
	passphrase := fs.String("p", "", "Passphrase (default $"+EnvPassphrase+")")
	otp := fs.String("otp", "", "One-time password (totp and yubikey)")
	method := fs.String("method", methodTOTP, "Login method: totp, yubikey or smartcard")
	certPath := fs.String("cert", "", "Client certificate file (smartcard)")
	keyPath := fs.String("key", "", "Client key file (smartcard)")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	if *passphrase == "" {
		*passphrase = os.Getenv(EnvPassphrase)
	}

	var errs errsx.Map
	if *username == "" {
		errs.Set("u", "is required")
	}
	if *passphrase == "" {
		errs.Set("p", "is required")
	}
	switch *method {
	case methodTOTP, methodYubikey:
		if *otp == "" {
			errs.Set("otp", "is required for "+*method)
		}
	case methodSmartcard:
		if *certPath == "" || *keyPath == "" {
			errs.Set("cert", "cert and key are required for smartcard")
		}
	default:
		errs.Set("method", "must be one of: totp, yubikey, smartcard")
	}
	if !errs.IsEmpty() {
		return fmt.Errorf("invalid login flags: %w", errs.AsError())
	}

	profile, err := c.profile(g)
	if err != nil {
		return err
	}
	s, err := c.openSession(ctx, profile)
	if err != nil {
		return err
	}

	var resp *storedsafe.Response
	switch *method {
	case methodYubikey:
		resp, err = s.client.LoginYubikey(ctx, *username, *passphrase, *otp)
	case methodSmartcard:
		resp, err = s.client.LoginSmartcard(ctx, *username, *passphrase, *certPath, *keyPath)
	default:
		resp, err = s.client.LoginTOTP(ctx, *username, *passphrase, *otp)
	}
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusOK {
		if err := s.persist(ctx, s.client.Token()); err != nil {
			return fmt.Errorf("logged in but failed to save token: %w", err)
		}
	}
	return writeResponse(c.stdout, resp, profile.Output)
}

func (c *cli) logoutCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "logout", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.Logout(ctx)
	})
}

func (c *cli) checkCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "check", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.Check(ctx)
	})
}

func (c *cli) vaultsCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "vaults", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.ListVaults(ctx)
	})
}

func (c *cli) vaultCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "vault", "<vault-id>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.VaultObjects(ctx, args[0])
	})
}

func (c *cli) membersCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "members", "<vault-id>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.VaultMembers(ctx, args[0])
	})
}

func (c *cli) objectCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("object", "<object-id>")
	children := fs.Bool("children", false, "Include child objects")
	decrypt := fs.Bool("decrypt", false, "Decrypt the object")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	return c.call(ctx, g, fs.Args(), nil, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		if *decrypt {
			return client.DecryptObject(ctx, args[0])
		}
		return client.GetObject(ctx, args[0], *children)
	})
}

func (c *cli) findCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "find", "<needle>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.Find(ctx, args[0])
	})
}

func (c *cli) templatesCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "templates", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.ListTemplates(ctx)
	})
}

func (c *cli) templateCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "template", "<template-id>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.GetTemplate(ctx, args[0])
	})
}

func (c *cli) usersCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("users", "[search]")
	if err := parse(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return errUsage
	}

	return c.call(ctx, g, fs.Args(), nil, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		search := ""
		if len(args) == 1 {
			search = args[0]
		}
		return client.ListUsers(ctx, search)
	})
}

func (c *cli) userCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "user", "<user-id>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.GetUser(ctx, args[0])
	})
}

func (c *cli) uploadCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("upload", "<path|s3://bucket/key>")
	params := newParamsFlag()
	fs.Var(params, "param", "Object field as key=value (repeatable), e.g. -param parentid=0")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	extra, err := c.fileSystemFor(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return c.call(ctx, g, fs.Args(), extra, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.UploadFile(ctx, args[0], params.params)
	})
}

func (c *cli) getFileCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "get-file", "<object-id>", args, 1, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.GetFile(ctx, args[0])
	})
}

func (c *cli) mimeCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("mime", "<path|s3://bucket/key>")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	extra, err := c.fileSystemFor(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return c.call(ctx, g, fs.Args(), extra, func(ctx context.Context, client *storedsafe.Client, args []string) (*storedsafe.Response, error) {
		return client.GetMimeType(ctx, args[0], nil)
	})
}

func (c *cli) policiesCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "policies", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.PasswordPolicies(ctx)
	})
}

func (c *cli) statusValuesCommand(ctx context.Context, args []string) error {
	return c.simple(ctx, "status-values", "", args, 0, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.StatusValues(ctx)
	})
}

func (c *cli) pwgenCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("pwgen", "")
	params := newParamsFlag()
	fs.Var(params, "param", "Generator setting as key=value (repeatable), e.g. -param length=24")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	return c.call(ctx, g, nil, nil, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
		return client.GeneratePassword(ctx, params.params)
	})
}

func (c *cli) healthCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("health", "")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	profile, err := c.profile(g)
	if err != nil {
		return err
	}
	s, err := c.openSession(ctx, profile)
	if err != nil {
		return err
	}

	report := health.NewClientChecker(s.client).CheckHealth(ctx)
	if err := writeValue(c.stdout, report, profile.Output); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("%s is %s", report.Host, report.Status)
	}
	return nil
}

func (c *cli) versionCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("version", "")
	server := fs.Bool("server", false, "Show the server version instead")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	if *server {
		return c.call(ctx, g, nil, nil, func(ctx context.Context, client *storedsafe.Client, _ []string) (*storedsafe.Response, error) {
			return client.Version(ctx)
		})
	}

	fmt.Fprintln(c.stdout, storedsafe.VersionInfo())
	fmt.Fprintln(c.stdout, "Command-line client for the StoredSafe REST API")
	return nil
}

func (c *cli) initCommand(ctx context.Context, args []string) error {
	fs, g := c.flagSet("init", "")
	force := fs.Bool("force", false, "Overwrite existing files")
	source := fs.String("source", SourceRC, "Credential source: rc, env or vault")
	rcFile := fs.String("rc-file", "", "rc file path (default $HOME/"+storedsafe.DefaultRCFilename+")")
	vaultName := fs.String("vault-name", "", "Credential set name in HashiCorp Vault")
	host := fs.String("host", "", "StoredSafe host; with -apikey also writes the rc file")
	apiKey := fs.String("apikey", "", "StoredSafe API key")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	profile := DefaultProfile()
	profile.Source = *source
	profile.RCFile = *rcFile
	profile.VaultName = *vaultName
	if g.output != "" {
		profile.Output = g.output
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	if err := c.create(g.config, *force, func(path string) error {
		return SaveProfile(profile, path)
	}); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Profile created at %s\n", g.config)

	if *host == "" || *apiKey == "" || profile.Source != SourceRC {
		return nil
	}

	rcPath := profile.RCFile
	if rcPath == "" {
		p, err := storedsafe.DefaultRCPath()
		if err != nil {
			return err
		}
		rcPath = p
	}
	cfg := storedsafe.Config{Host: *host, APIKey: *apiKey}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid rc settings: %w", err)
	}
	if err := c.create(rcPath, *force, func(path string) error {
		return storedsafe.SaveRC(path, cfg)
	}); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "rc file created at %s\n", rcPath)
	return nil
}

// create writes path unless it exists and force is false.
func (c *cli) create(path string, force bool, write func(path string) error) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use -force to overwrite", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return write(path)
}

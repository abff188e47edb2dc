// Package cli is the hrpulse command: setup writes a .env file, run starts
// the reference backend, the web client, or both.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/hrpulse/internal/config"
	"github.com/phillip-england/hrpulse/internal/devapi"
	"github.com/phillip-england/hrpulse/internal/envutil"
	"github.com/phillip-england/hrpulse/internal/logging"
	"github.com/phillip-england/hrpulse/internal/security"
	"github.com/phillip-england/hrpulse/internal/webapp"
)

var ErrUsage = errors.New("usage")

const title = "hrpulse · turnover analytics"

type runners struct {
	api    func(context.Context, devapi.Config, *slog.Logger) error
	client func(context.Context, webapp.Config, *slog.Logger) error
}

var defaultRunners = runners{api: devapi.Run, client: webapp.Run}

func Execute(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return execute(ctx, args, os.Stdout, defaultRunners)
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: hrpulse setup --admin-password <password> [--admin-username admin] [--seed roster.yaml] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       hrpulse run [--env-file .env] api|client|all")
}

func execute(ctx context.Context, args []string, out io.Writer, r runners) error {
	if len(args) < 1 {
		return usageError()
	}
	switch args[0] {
	case "setup":
		return runSetup(args[1:], out)
	case "run":
		return runCommand(ctx, args[1:], out, r)
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: hrpulse <setup|run> [...]", ErrUsage)
}

func runSetup(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(out)
	adminUser := fs.String("admin-username", "admin", "reference backend admin username")
	adminPass := fs.String("admin-password", "", "reference backend admin password (min 12 chars)")
	seedPath := fs.String("seed", "", "optional YAML roster loaded into an empty database")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *adminPass == "" {
		return errors.New("--admin-password is required")
	}
	if _, err := security.HashPassword(*adminPass); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}
	secret, err := security.NewSecret(32)
	if err != nil {
		return err
	}

	defaults := config.New()
	values := map[string]string{
		config.EnvPrefix + "ADMIN_USERNAME": *adminUser,
		config.EnvPrefix + "ADMIN_PASSWORD": *adminPass,
		config.EnvPrefix + "JWT_SECRET":     secret,
		config.EnvPrefix + "DB_PATH":        defaults.DBPath,
		config.EnvPrefix + "API_ADDR":       defaults.APIAddr,
		config.EnvPrefix + "CLIENT_ADDR":    defaults.ClientAddr,
		config.EnvPrefix + "API_BASE_URL":   defaults.APIBaseURL,
	}
	if *seedPath != "" {
		values[config.EnvPrefix+"SEED_PATH"] = *seedPath
	}

	if err := ensureParentDirs(*envPath); err != nil {
		return err
	}
	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *envPath)
	return nil
}

func runCommand(ctx context.Context, args []string, out io.Writer, r runners) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(out)
	envPath := fs.String("env-file", ".env", "path to .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("missing run target: api | client | all")
	}
	target := fs.Arg(0)
	switch target {
	case "api", "client", "all":
	default:
		return fmt.Errorf("unknown run target %q", target)
	}

	if err := envutil.LoadDotEnv(*envPath); err != nil {
		return fmt.Errorf("load %s: %w", *envPath, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := logging.Setup(out, level, cfg.LogFormat)
	printBanner(out, target, cfg)

	switch target {
	case "api":
		return ignoreCanceled(r.api(ctx, devapi.ConfigFrom(cfg), logger))
	case "client":
		return ignoreCanceled(r.client(ctx, webapp.ConfigFrom(cfg), logger))
	default:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return ignoreCanceled(r.api(gctx, devapi.ConfigFrom(cfg), logger)) })
		g.Go(func() error { return ignoreCanceled(r.client(gctx, webapp.ConfigFrom(cfg), logger)) })
		return g.Wait()
	}
}

func printBanner(out io.Writer, target string, cfg *config.Config) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  "+title)
	fmt.Fprintln(out)
	if target == "api" || target == "all" {
		green.Fprint(out, "    ▶ ")
		fmt.Fprintf(out, "API:     %s (db %s)\n", cfg.APIAddr, cfg.DBPath)
	}
	if target == "client" || target == "all" {
		green.Fprint(out, "    ▶ ")
		fmt.Fprintf(out, "Client:  %s -> %s\n", cfg.ClientAddr, cfg.APIBaseURL)
	}
	fmt.Fprintln(out)
}

func ignoreCanceled(err error) error {
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func ensureParentDirs(paths ...string) error {
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

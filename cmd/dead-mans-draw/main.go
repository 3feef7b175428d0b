// dead-mans-draw serves the match API over HTTP, backed by a bbolt store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/briwylde08/dead-mans-draw/auth"
	"github.com/briwylde08/dead-mans-draw/events"
	"github.com/briwylde08/dead-mans-draw/groth16"
	"github.com/briwylde08/dead-mans-draw/lifecycle"
	"github.com/briwylde08/dead-mans-draw/logger"
	"github.com/briwylde08/dead-mans-draw/match"
	"github.com/briwylde08/dead-mans-draw/server"
	"github.com/briwylde08/dead-mans-draw/store"
)

func newStore(i do.Injector) (*store.Bolt, error) {
	return store.OpenBolt(do.MustInvokeNamed[string](i, "db"), store.BoltOptions{
		TTL: do.MustInvokeNamed[time.Duration](i, "ttl"),
	})
}

func newEngine(i do.Injector) (*match.Engine, error) {
	// identities are taken at face value at this boundary
	return match.New(match.Config{
		Admin:  match.Player(do.MustInvokeNamed[string](i, "admin")),
		Ref:    do.MustInvokeNamed[string](i, "ref"),
		Store:  do.MustInvoke[*store.Bolt](i),
		Auth:   auth.AllowAll{},
		Notify: lifecycle.NewLogNotifier(),
		Events: events.NewLog(),
	})
}

func newServer(i do.Injector) (*server.Server, error) {
	return server.New(do.MustInvoke[*match.Engine](i)), nil
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	i := do.New()

	do.ProvideNamedValue(i, "port", int(cmd.Int("port")))
	do.ProvideNamedValue(i, "db", cmd.String("db"))
	do.ProvideNamedValue(i, "admin", cmd.String("admin"))
	do.ProvideNamedValue(i, "ref", cmd.String("ref"))
	do.ProvideNamedValue(i, "ttl", cmd.Duration("ttl"))

	do.Provide(i, newStore)
	do.Provide(i, newEngine)
	do.Provide(i, newServer)
	do.Provide(i, server.NewService)

	svc, err := do.Invoke[*server.Service](i)
	if err != nil {
		return fmt.Errorf("failed to assemble service: %w", err)
	}
	st := do.MustInvoke[*store.Bolt](i)
	defer st.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Logger()
	log.Info().
		Int("port", int(cmd.Int("port"))).
		Str("db", cmd.String("db")).
		Msg("listening")

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runVerify checks a snarkjs proof offline, without touching the store or
// the engine.
func runVerify(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("expects exactly one argument, the proof file")
	}

	vk, err := openParse(cmd.String("vk"), groth16.ParseSnarkJSVerifyingKey)
	if err != nil {
		return fmt.Errorf("load verification key: %w", err)
	}
	proof, err := openParse(cmd.Args().First(), groth16.ParseSnarkJSProof)
	if err != nil {
		return fmt.Errorf("load proof: %w", err)
	}
	inputs, err := openParse(cmd.String("input"), groth16.ParseSnarkJSPublicInputs)
	if err != nil {
		return fmt.Errorf("load public inputs: %w", err)
	}

	start := time.Now()
	valid, err := groth16.Verify(vk, proof, inputs)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	log := logger.Logger()
	if !valid {
		log.Error().Dur("took", time.Since(start)).Msg("proof is invalid")
		return cli.Exit("proof is invalid", 1)
	}
	log.Info().
		Dur("took", time.Since(start)).
		Int("inputs", len(inputs)).
		Msg("proof is valid")
	return nil
}

func openParse[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return parse(f)
}

func main() {
	cmd := &cli.Command{
		Name:  "dead-mans-draw",
		Usage: "two-player card game settled by Groth16 proofs",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "serve the match API over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   8080,
						Sources: cli.EnvVars("DMD_PORT"),
					},
					&cli.StringFlag{
						Name:    "db",
						Value:   "./dead-mans-draw.db",
						Sources: cli.EnvVars("DMD_DB"),
					},
					&cli.StringFlag{
						Name:    "admin",
						Value:   "admin",
						Sources: cli.EnvVars("DMD_ADMIN"),
					},
					&cli.StringFlag{
						Name:    "ref",
						Value:   "dead-mans-draw",
						Sources: cli.EnvVars("DMD_REF"),
					},
					&cli.DurationFlag{
						Name:    "ttl",
						Value:   store.DefaultTTL,
						Sources: cli.EnvVars("DMD_TTL"),
					},
				},
				Action: runServer,
			},
			{
				Name:      "verify",
				Usage:     "verify a snarkjs proof against a verification key and public inputs",
				ArgsUsage: "proof.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vk",
						Usage:    "path to verification_key.json",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Usage:    "path to public.json",
						Required: true,
					},
				},
				Action: runVerify,
			},
		},
		DefaultCommand: "server",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log := logger.Logger()
		log.Fatal().Err(err).Msg("exit")
	}
}

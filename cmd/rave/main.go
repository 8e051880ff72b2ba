// Command rave is the engine's entry point: it bootstraps the engine
// session with the chosen bootstrapper, then bootstraps a game session atop
// it from the GAME argument.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rave-engine/rave/internal/bootstrap"
	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/session"
)

var logger = log.Get("rave")

var (
	engineBootstrapper string
	gameBootstrapper   string
	debug              bool
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rave GAME",
		Short:        "Run a rave game",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&engineBootstrapper, "bootstrapper", "b", "filesystem", "engine bootstrapper to use")
	flags.StringVarP(&gameBootstrapper, "game-bootstrapper", "B", "filesystem", "game bootstrapper to use")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	return cmd
}

func run(game string) error {
	if debug {
		log.SetDebug(true)
	}

	// Only the "filesystem" bootstrapper is implemented; any other name is
	// rejected.
	if engineBootstrapper != "filesystem" {
		return fmt.Errorf("rave: unknown engine bootstrapper %q", engineBootstrapper)
	}
	if gameBootstrapper != "filesystem" {
		return fmt.Errorf("rave: unknown game bootstrapper %q", gameBootstrapper)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("rave: could not determine install location: %w", err)
	}
	root := filepath.Dir(exe)

	ctx := context.Background()
	paths := bootstrap.EnginePaths{
		Engine: filepath.Join(root, "rave"),
		Module: filepath.Join(root, "modules"),
		Common: filepath.Join(root, "common"),
	}

	logger.Infof("bootstrapping engine from %s", root)
	engine, err := bootstrap.Engine(ctx, paths)
	if err != nil {
		logger.Exceptionf(err, "engine bootstrap failed")
		return err
	}

	logger.Infof("bootstrapping game %s", game)
	gameSession, err := bootstrap.Game(ctx, engine, game)
	if err != nil {
		logger.Exceptionf(err, "game bootstrap failed")
		return err
	}

	session.Enter(engine, func() {
		session.Enter(gameSession, func() {
			logger.Infof("running %s", gameSession.Name)
		})
	})
	return nil
}

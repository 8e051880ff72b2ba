// Package bootstrap wires up the engine and game sessions at startup: mount
// the well-known engine roots, install import hooks for each package, then
// let the modularity engine load whatever registered itself.
package bootstrap

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/modularity"
	"github.com/rave-engine/rave/internal/providers/native"
	"github.com/rave-engine/rave/internal/session"
	"github.com/rave-engine/rave/internal/vfs"
)

var logger = log.Get("bootstrap")

// Well-known mount points and package roots.
const (
	EngineMount   = "/.rave"
	EnginePackage = "rave"
	ModuleMount   = "/.modules"
	ModulePackage = "rave.modules"
	GameMount     = "/"
	GamePackage   = "rave.game"
	CommonMount   = "/.common"
)

// EnginePaths gives the native directories the filesystem bootstrapper
// mounts at EngineMount, ModuleMount and CommonMount.
type EnginePaths struct {
	Engine string
	Module string
	Common string
}

// Engine bootstraps the engine session: clears its file system, mounts the
// three engine roots from disk, installs the rave/rave.modules import
// hooks, and runs the modularity engine over whatever registered itself.
func Engine(ctx context.Context, paths EnginePaths) (*session.Session, error) {
	engine := session.New(session.Engine, "engine", "", nil)
	engine.FS.Clear()

	logger.Debug("bootstrapping file system...")
	if err := mountNative(ctx, engine, EngineMount, paths.Engine); err != nil {
		return nil, err
	}
	if err := mountNative(ctx, engine, ModuleMount, paths.Module); err != nil {
		return nil, err
	}
	if err := mountNative(ctx, engine, CommonMount, paths.Common); err != nil {
		return nil, err
	}

	logger.Debug("installing import hooks...")
	InstallHook(EnginePackage, []string{EngineMount})
	InstallHook(ModulePackage, []string{ModuleMount})

	logger.Debug("loading engine modules...")
	modularity.LoadAll()

	session.SetEngineSession(engine)

	logger.Info("engine bootstrapped")
	return engine, nil
}

// Game bootstraps a game session under engine: derives the game's name from
// base, mounts base/game at GameMount and base/modules at ModuleMount, and
// installs the rave.game import hook.
func Game(ctx context.Context, engine *session.Session, base string) (*session.Session, error) {
	name := filepath.Base(strings.TrimRight(base, "/\\"))
	game := session.New(session.Game, name, base, engine)

	InstallHook(GamePackage, []string{GameMount})

	// Overlay the engine's own VFS underneath the game's root, so the game
	// can see engine-provided files it hasn't shadowed with its own. Mounted
	// before the game's native directories so those, mounted later, win on
	// any name collision.
	game.FS.Mount(ctx, GameMount, vfs.NewOverlay(engine.FS))

	if base != "" {
		gameDir := filepath.Join(base, "game")
		moduleDir := filepath.Join(base, "modules")

		if err := mountNative(ctx, game, GameMount, gameDir); err != nil {
			logger.Warnf("could not mount game directory %s: %v", gameDir, err)
		}
		if err := mountNative(ctx, game, ModuleMount, moduleDir); err != nil {
			logger.Warnf("could not mount game module directory %s: %v", moduleDir, err)
		}
	}

	logger.Infof("game bootstrapped: %s", game.Name)
	return game, nil
}

func mountNative(ctx context.Context, sess *session.Session, mount, path string) error {
	if path == "" {
		return nil
	}
	src, err := native.New(path)
	if err != nil {
		return err
	}
	sess.FS.Mount(ctx, mount, src)
	return nil
}

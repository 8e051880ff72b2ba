package modularity

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rave-engine/rave/internal/log"
)

var logger = log.Get("modularity")

// LoadAll attempts to load every registered module in registration order,
// logging (rather than failing on) individual errors.
func LoadAll() {
	mu.Lock()
	snapshot := append([]Module(nil), order...)
	mu.Unlock()

	for _, m := range snapshot {
		if err := load(m); err != nil {
			logger.Exceptionf(err, "could not load module %s", m.Name())
		}
	}
}

// Load resolves and initializes the named module and everything it
// transitively requires.
func Load(name string) error {
	mu.Lock()
	m, ok := byName[name]
	mu.Unlock()
	if !ok {
		return fmt.Errorf("modularity: no such module %q", name)
	}
	return load(m)
}

// Unload tears down the named module if it is currently loaded.
func Unload(name string) error {
	mu.Lock()
	m, ok := byName[name]
	mu.Unlock()
	if !ok {
		return fmt.Errorf("modularity: no such module %q", name)
	}
	exitModule(m)
	return nil
}

func load(module Module) error {
	if isLoaded(module) {
		return nil
	}

	logger.Debugf("loading module: %s", module.Name())

	blacklist := map[Module]string{}
	var attempted []Module
	var provided map[string]Module

	for {
		resolving := map[string]bool{}
		provided = map[string]Module{}

		deps, err := resolve(module, resolving, provided, cloneBlacklist(blacklist))
		if err != nil {
			return err
		}

		attempted = nil
		restart := false
		for i := len(deps) - 1; i >= 0; i-- {
			dep := deps[i]
			if isLoaded(dep) {
				continue
			}

			logger.Debugf("loading module: %s (dependency)", dep.Name())
			if err := initModule(dep, provided); err != nil {
				blacklist[dep] = fmt.Sprintf("initialization failed: %v", err)
				logger.Warn("loading dependency failed, unloading and re-generating dependencies...")

				for j := len(attempted) - 1; j >= 0; j-- {
					logger.Tracef("unloading module: %s (dependency)", attempted[j].Name())
					exitModule(attempted[j])
				}
				restart = true
				break
			}
			attempted = append(attempted, dep)
		}

		if !restart {
			break
		}
	}

	logger.Debugf("loading module: %s (main)", module.Name())
	if err := initModule(module, provided); err != nil {
		logger.Err("loading failed, unloading dependencies...")
		for i := len(attempted) - 1; i >= 0; i-- {
			logger.Tracef("unloading module: %s (dependency)", attempted[i].Name())
			exitModule(attempted[i])
		}
		return errors.Wrapf(err, "loading module %s failed", module.Name())
	}

	return nil
}

func initModule(m Module, provided map[string]Module) error {
	if isLoaded(m) {
		return nil
	}

	filtered := map[string]Module{}
	for _, req := range m.Requires() {
		if v, ok := provided[req]; ok {
			filtered[req] = v
		}
	}

	if err := m.Load(filtered); err != nil {
		return err
	}
	markLoaded(m)
	return nil
}

func exitModule(m Module) {
	if !isLoaded(m) {
		return
	}
	m.Unload()
	unmarkLoaded(m)
}

// resolve computes the ordered dependency list for module: resolving guards
// against cycles within this call, provided records the capability ->
// chosen-module mapping built up so far, and blacklist excludes modules a
// previous attempt already ruled out.
func resolve(module Module, resolving map[string]bool, provided map[string]Module, blacklist map[Module]string) ([]Module, error) {
	var dependencies []Module

	for _, requirement := range module.Requires() {
		if resolving[requirement] {
			continue
		}
		if _, ok := provided[requirement]; ok {
			continue
		}
		resolving[requirement] = true

		var attemptErrors []string
		resolvedOK := false

		for _, candidate := range candidatesFor(requirement) {
			if reason, bad := blacklist[candidate]; bad {
				attemptErrors = append(attemptErrors, fmt.Sprintf("%q candidate %q is blacklisted (%s)", requirement, candidate.Name(), reason))
				continue
			}

			resolvingSnapshot := cloneResolving(resolving)
			providedSnapshot := cloneProvided(provided)

			subdeps, err := resolve(candidate, resolving, provided, blacklist)
			if err != nil {
				blacklist[candidate] = fmt.Sprintf("import failed: %v", err)
				attemptErrors = append(attemptErrors, err.Error())
				restoreResolving(resolving, resolvingSnapshot)
				restoreProvided(provided, providedSnapshot)
				continue
			}

			dependencies = appendPromoting(dependencies, candidate)
			for _, dep := range subdeps {
				dependencies = appendPromoting(dependencies, dep)
			}

			provided[requirement] = candidate
			resolvedOK = true
			break
		}

		if !resolvedOK {
			msg := fmt.Sprintf("could not resolve dependency %q for module %q: no viable candidates.", requirement, module.Name())
			for _, e := range attemptErrors {
				for _, line := range strings.Split(e, "\n") {
					msg += "\n   " + line
				}
			}
			return nil, errors.New(msg)
		}
	}

	return dependencies, nil
}

func appendPromoting(dependencies []Module, dep Module) []Module {
	for i, d := range dependencies {
		if d == dep {
			dependencies = append(dependencies[:i], dependencies[i+1:]...)
			break
		}
	}
	return append(dependencies, dep)
}

func cloneBlacklist(m map[Module]string) map[Module]string {
	out := make(map[Module]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneResolving(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneProvided(m map[string]Module) map[string]Module {
	out := make(map[string]Module, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func restoreResolving(m, snapshot map[string]bool) {
	for k := range m {
		if _, ok := snapshot[k]; !ok {
			delete(m, k)
		}
	}
	for k, v := range snapshot {
		m[k] = v
	}
}

func restoreProvided(m, snapshot map[string]Module) {
	for k := range m {
		if _, ok := snapshot[k]; !ok {
			delete(m, k)
		}
	}
	for k, v := range snapshot {
		m[k] = v
	}
}

package importer

import "fmt"

// errNotOwned is returned when a requested module name doesn't belong to
// this importer's package root at all; callers normally treat this the same
// as Python's find_spec returning None (try the next importer).
var errNotOwned = fmt.Errorf("importer: name not owned by this package root")

// errNotFound is returned when every search path and candidate extension
// was exhausted without a match.
var errNotFound = fmt.Errorf("importer: no candidate file found")

func errUnknownFactory(name string) error {
	return fmt.Errorf("importer: descriptor names unknown factory %q", name)
}

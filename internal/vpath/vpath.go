// Package vpath implements the canonical path algebra used throughout the
// virtual file system: a single forward-slash separator, no empty segments,
// no "." segments, and ".." resolved left-to-right.
package vpath

import "strings"

// Separator is the sole path separator recognised by the virtual file system.
const Separator = "/"

// Root is the canonical root path.
const Root = "/"

// Normalize rewrites p into canonical form: it begins with "/", contains no
// "//", no "/./" and no "/../", and has no trailing slash (except the root
// itself).
func Normalize(p string) string {
	if !strings.HasPrefix(p, Separator) {
		p = Separator + p
	}

	segments := splitSegments(p)
	stack := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}

	if len(stack) == 0 {
		return Root
	}
	return Root + strings.Join(stack, Separator)
}

func splitSegments(p string) []string {
	return strings.Split(p, Separator)
}

// Join concatenates the given path components with Separator and normalizes
// the result.
func Join(parts ...string) string {
	return Normalize(strings.Join(parts, Separator))
}

// Split splits path on the separator, same semantics as strings.Split.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Dirname returns the directory portion of p, or Root if p is already Root.
func Dirname(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	idx := strings.LastIndex(p, Separator)
	if idx <= 0 {
		return Root
	}
	return p[:idx]
}

// Basename returns the final path component of p, or the empty string if p
// is Root.
func Basename(p string) string {
	if p == Root {
		return ""
	}
	p = Normalize(p)
	idx := strings.LastIndex(p, Separator)
	return p[idx+1:]
}

// IsRoot reports whether p, once normalized, is the root path.
func IsRoot(p string) bool {
	return Normalize(p) == Root
}

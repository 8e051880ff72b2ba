// Package resources implements rave's resource manager: loaders register
// for a (possibly nil) path pattern, and Load walks the matching loaders in
// registration order until one claims the file, dispatching the decoded
// result to whichever video/audio backend is currently selected.
package resources

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/rave-engine/rave/internal/backends"
	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/vfs"
)

var logger = log.Get("resources")

// PixelFormat names how ImageData's pixels are laid out.
type PixelFormat string

// FormatRGBA8888 is the default pixel format new ImageData carries.
const FormatRGBA8888 PixelFormat = "RGBA8888"

// ImageData is the decoded-but-not-yet-uploaded form of an image resource,
// handed off to the selected video backend's CreateDrawable.
type ImageData struct {
	Width, Height int
	PixelFormat   PixelFormat
	Data           []byte
}

// AudioData is the decoded-but-not-yet-uploaded form of an audio resource,
// handed off to the selected audio backend's CreateSoundable.
type AudioData struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Streaming  bool
	Data       []byte
}

// VideoBackend is implemented by whatever backend wins the "video" category,
// if it wants to handle decoded images.
type VideoBackend interface {
	CreateDrawable(ImageData) (interface{}, error)
}

// AudioBackend is implemented by whatever backend wins the "audio" category,
// if it wants to handle decoded audio.
type AudioBackend interface {
	CreateSoundable(AudioData) (interface{}, error)
}

// Loader decodes resources out of file handles it recognizes.
type Loader interface {
	// CanLoad inspects path/f (seeking/reading allowed) and reports whether
	// this loader can decode it.
	CanLoad(path string, f vfs.File) bool
	// Load decodes f, returning an ImageData, AudioData, or any other value
	// meaningful to the caller.
	Load(path string, f vfs.File) (interface{}, error)
}

// LoadFailure reports that every matching loader was tried and none
// succeeded.
type LoadFailure struct {
	Path   string
	Errors []error
}

func (e *LoadFailure) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("resources: failed to load %s: no loaders found", e.Path)
	}
	msg := fmt.Sprintf("resources: failed to load %s:", e.Path)
	for _, err := range e.Errors {
		msg += "\n" + err.Error()
	}
	return msg
}

// LastError returns the last error recorded, or nil if none were.
func (e *LoadFailure) LastError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

type registration struct {
	pattern *regexp.Regexp
	loader  Loader
}

// Manager owns one game's set of registered loaders and performs resource
// loading against a file system.
type Manager struct {
	mu       sync.Mutex
	loaders  []registration
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// RegisterLoader adds loader as a candidate for paths matching pattern. A
// nil pattern matches every path.
func (m *Manager) RegisterLoader(loader Loader, pattern *regexp.Regexp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders = append(m.loaders, registration{pattern: pattern, loader: loader})
}

// DeregisterLoader removes the first registration of loader under pattern.
// Returns an error if no such registration exists.
func (m *Manager) DeregisterLoader(loader Loader, pattern *regexp.Regexp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.loaders {
		if r.loader == loader && samePattern(r.pattern, pattern) {
			m.loaders = append(m.loaders[:i], m.loaders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("resources: loader not registered for that pattern")
}

func samePattern(a, b *regexp.Regexp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

func (m *Manager) candidatesFor(path string) []Loader {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Loader
	for _, r := range m.loaders {
		if r.pattern != nil && !r.pattern.MatchString(path) {
			continue
		}
		out = append(out, r.loader)
	}
	return out
}

// Load opens path on fs, tries every matching loader in registration order,
// and dispatches the decoded result to the appropriate backend if it's
// ImageData or AudioData. Anything else is returned as-is.
func (m *Manager) Load(ctx context.Context, fs *vfs.FileSystem, path string) (interface{}, error) {
	candidates := m.candidatesFor(path)

	f, err := fs.Open(ctx, path, vfs.OpenRead)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, errs := m.tryLoad(path, f, candidates)
	if res == nil {
		return nil, &LoadFailure{Path: path, Errors: errs}
	}

	switch v := res.(type) {
	case ImageData:
		backend := backends.Select("video")
		vb, ok := backend.(VideoBackend)
		if !ok {
			return nil, fmt.Errorf("resources: no video backend available to create drawable for %s", path)
		}
		return vb.CreateDrawable(v)
	case AudioData:
		backend := backends.Select("audio")
		ab, ok := backend.(AudioBackend)
		if !ok {
			return nil, fmt.Errorf("resources: no audio backend available to create soundable for %s", path)
		}
		return ab.CreateSoundable(v)
	default:
		return res, nil
	}
}

func (m *Manager) tryLoad(path string, f vfs.File, loaders []Loader) (interface{}, []error) {
	var errs []error

	for _, loader := range loaders {
		if f.Seekable() {
			if _, err := f.Seek(0, vfs.SeekSet); err != nil {
				logger.Debugf("could not rewind %s before trying loader: %v", path, err)
			}
		}

		if !loader.CanLoad(path, f) {
			continue
		}

		res, err := loader.Load(path, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return res, nil
	}

	return nil, errs
}

// Package shader loads GLSL programs through a gpu.Device. Sources come
// from an optional directory on disk and fall back to the copies embedded
// in the binary.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/logger"
)

//go:embed glsl/*.vert glsl/*.frag
var embedded embed.FS

// Built-in program names.
const (
	Shadow = "shadow"
	Opaque = "shape"
	Light  = "light"
	Sky    = "sky"
	Smoke  = "smoke"
	BBox   = "bbox"
	Debug  = "debug"
)

// Builtins lists every program the renderer loads at startup.
var Builtins = []string{Shadow, Opaque, Light, Sky, Smoke, BBox, Debug}

// Program is a loaded (or failed) shader program. A program whose sources
// are missing or do not compile has a zero Handle and a non-nil Err; passes
// drawing with it are skipped.
type Program struct {
	Name         string
	VertexPath   string
	FragmentPath string
	Handle       gpu.Program
	Err          error

	dirty bool
}

// Valid reports whether the program can be used.
func (p *Program) Valid() bool {
	return p != nil && p.Handle.Valid()
}

// Library owns every program compiled on one device.
type Library struct {
	dev gpu.Device
	dir string
	log *zap.Logger

	mu       sync.Mutex
	programs map[string]*Program
}

// NewLibrary creates a library. When dir is not empty, files in it take
// precedence over the embedded sources.
func NewLibrary(dev gpu.Device, dir string) *Library {
	return &Library{
		dev:      dev,
		dir:      dir,
		log:      logger.Named("shader"),
		programs: make(map[string]*Program),
	}
}

// Dir returns the override directory, empty when only embedded sources are used.
func (l *Library) Dir() string { return l.dir }

func (l *Library) read(path string) (string, error) {
	if filepath.IsAbs(path) {
		data, err := os.ReadFile(path)
		return string(data), err
	}
	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, path))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	data, err := embedded.ReadFile("glsl/" + filepath.ToSlash(path))
	return string(data), err
}

func (l *Library) compile(p *Program) (gpu.Program, error) {
	vs, err := l.read(p.VertexPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", p.VertexPath, err)
	}
	fsrc, err := l.read(p.FragmentPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", p.FragmentPath, err)
	}
	return l.dev.CompileProgram(gpu.ProgramSource{Name: p.Name, Vertex: vs, Fragment: fsrc})
}

// Load compiles a program from the given source paths and registers it
// under name, replacing any earlier program of that name. Failures are
// logged and recorded on the returned Program, never returned.
func (l *Library) Load(name, vertexPath, fragmentPath string) *Program {
	p := &Program{Name: name, VertexPath: vertexPath, FragmentPath: fragmentPath}
	p.Handle, p.Err = l.compile(p)
	if p.Err != nil {
		l.log.Error("shader program unavailable",
			zap.String("program", name),
			zap.String("vertex", vertexPath),
			zap.String("fragment", fragmentPath),
			zap.Error(p.Err))
	} else {
		l.log.Debug("shader program loaded", zap.String("program", name))
	}

	l.mu.Lock()
	old := l.programs[name]
	l.programs[name] = p
	l.mu.Unlock()

	if old.Valid() {
		l.dev.DeleteProgram(old.Handle)
	}
	return p
}

// LoadBuiltins loads every name in Builtins from <name>.vert and <name>.frag.
func (l *Library) LoadBuiltins() {
	for _, name := range Builtins {
		l.Load(name, name+".vert", name+".frag")
	}
}

// Get returns the named program or nil.
func (l *Library) Get(name string) *Program {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.programs[name]
}

// Names returns registered program names, sorted.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.programs))
	for name := range l.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkDirty flags every program that reads the file at path. It is safe to
// call from any goroutine. Returns whether any program matched.
func (l *Library) MarkDirty(path string) bool {
	base := filepath.Base(path)
	l.mu.Lock()
	defer l.mu.Unlock()
	matched := false
	for _, p := range l.programs {
		if filepath.Base(p.VertexPath) == base || filepath.Base(p.FragmentPath) == base {
			p.dirty = true
			matched = true
		}
	}
	return matched
}

// Reload recompiles dirty programs. It must run on the goroutine that owns
// the device. A program that fails to recompile keeps its previous handle.
// Returns the number of programs reloaded and the combined errors.
func (l *Library) Reload() (int, error) {
	l.mu.Lock()
	var dirty []*Program
	for _, p := range l.programs {
		if p.dirty {
			p.dirty = false
			dirty = append(dirty, p)
		}
	}
	l.mu.Unlock()

	var errs error
	reloaded := 0
	for _, p := range dirty {
		handle, err := l.compile(p)
		if err != nil {
			l.log.Warn("shader reload failed, keeping previous program",
				zap.String("program", p.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
			if !p.Valid() {
				p.Err = err
			}
			continue
		}
		if p.Valid() {
			l.dev.DeleteProgram(p.Handle)
		}
		p.Handle, p.Err = handle, nil
		reloaded++
		l.log.Info("shader reloaded", zap.String("program", p.Name))
	}
	return reloaded, errs
}

// Release deletes every program.
func (l *Library) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.programs {
		if p.Valid() {
			l.dev.DeleteProgram(p.Handle)
			p.Handle = 0
		}
	}
}

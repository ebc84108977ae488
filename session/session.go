// Package session owns the persistent evaluation state of a lume project:
// the interner, the top-level scopes, and the cache of loaded modules. It
// loads modules from disk, resolves their dependencies depth-first, and
// evaluates REPL statements against the persistent scopes.
package session

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lumelang/lume"
	"github.com/lumelang/lume/eval"
)

// FailureKind classifies a session failure.
type FailureKind uint8

// Session failure categories.
const (
	// FailureRuntime is an evaluation error.
	FailureRuntime FailureKind = iota
	// FailureSyntax is a lex or parse error.
	FailureSyntax
	// FailureIO is a filesystem error.
	FailureIO
)

// Classify assigns an error to a failure category.
func Classify(err error) FailureKind {
	var syntaxErr *lume.SyntaxError
	if errors.As(err, &syntaxErr) {
		return FailureSyntax
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, fs.ErrNotExist) {
		return FailureIO
	}

	return FailureRuntime
}

// ErrDependencyCycle reports a module that depends on itself, directly or
// through its dependency chain.
var ErrDependencyCycle = errors.New("dependency cycle")

// LoadError wraps a failure to load a module.
type LoadError struct {
	// Path is the module path the load was asked for.
	Path string

	// ImportedFrom is the module whose dependency triggered the load, empty
	// for direct loads.
	ImportedFrom string

	// Cause is the underlying error.
	Cause error
}

func (e *LoadError) Error() string {
	if e.ImportedFrom != "" {
		return "load " + e.Path + " (imported from " + e.ImportedFrom + "): " + e.Cause.Error()
	}

	return "load " + e.Path + ": " + e.Cause.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Session holds everything that survives between source events: the symbol
// interner, the persistent lexical and context scopes, and the module cache
// keyed by normalised module path. A session is single-threaded; only the
// event drain loop may touch it.
type Session struct {
	interner *lume.Interner
	scope    *eval.Scope
	ctx      *eval.Scope
	modules  map[string]*eval.Module
	// loading marks modules whose load is in progress, so a dependency
	// chain that re-enters one of them fails instead of recursing forever.
	loading map[string]bool
	root    string
	log     *zap.Logger
}

// New creates a session rooted at the given source directory.
func New(root string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		interner: lume.NewInterner(),
		scope:    eval.NewScope(nil),
		ctx:      eval.NewScope(nil),
		modules:  make(map[string]*eval.Module),
		loading:  make(map[string]bool),
		root:     root,
		log:      log,
	}
}

// Interner exposes the session's interner, e.g. for rendering values.
func (s *Session) Interner() *lume.Interner {
	return s.interner
}

// ModulePathFor converts a source file path relative to the project root
// into a module path, or reports that the file is not a lume source file.
func (s *Session) ModulePathFor(file string) (string, bool) {
	if filepath.Ext(file) != lume.SourceExt {
		return "", false
	}

	p := filepath.ToSlash(strings.TrimSuffix(file, lume.SourceExt))

	return path.Clean(p), true
}

// Load reads, parses, and evaluates the module at the given slash-separated
// path (relative to the session root, no extension). A cached module is left
// alone unless reload is set. Dependencies load depth-first; reload is not
// transitive, so cached dependencies stay cached.
//
// Definitions of directly loaded modules are also published to the
// persistent top-level scope, which is what makes hot reload and the REPL
// see them.
func (s *Session) Load(modPath string, reload bool) error {
	module, err := s.load(modPath, "", reload)
	if err != nil {
		return err
	}

	module.Scope.Each(func(name lume.Sym, value eval.Value) {
		s.scope.Bind(name, value)
	})

	s.log.Info("module loaded",
		zap.String("module", modPath),
		zap.Bool("reload", reload))

	return nil
}

func (s *Session) load(modPath, importedFrom string, reload bool) (*eval.Module, error) {
	key := path.Clean(filepath.ToSlash(modPath))

	if module, ok := s.modules[key]; ok && !reload {
		return module, nil
	}

	// A module re-entered while its own load is still running means the
	// use graph is cyclic; the cache cannot break the recursion because a
	// module is only cached once fully evaluated.
	if s.loading[key] {
		return nil, &LoadError{Path: key, ImportedFrom: importedFrom, Cause: ErrDependencyCycle}
	}

	s.loading[key] = true
	defer delete(s.loading, key)

	file := filepath.Join(s.root, filepath.FromSlash(key)+lume.SourceExt)

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &LoadError{Path: key, ImportedFrom: importedFrom, Cause: err}
	}

	mod, err := lume.ParseModule(string(data), s.interner)
	if err != nil {
		return nil, &LoadError{Path: key, ImportedFrom: importedFrom, Cause: err}
	}

	scope := eval.NewScope(s.scope)

	for _, dep := range mod.Deps {
		depPath := s.depPath(key, dep.Path)

		depModule, err := s.load(depPath, key, false)
		if err != nil {
			return nil, err
		}

		for _, binding := range dep.Bindings {
			value, ok := depModule.Scope.Lookup(binding.Source)
			if !ok {
				return nil, &LoadError{Path: depPath, ImportedFrom: key, Cause: eval.ErrUnbound}
			}

			scope.Bind(binding.Dest, value)
		}
	}

	module, err := eval.EvalModule(mod, scope, s.ctx)
	if err != nil {
		return nil, &LoadError{Path: key, ImportedFrom: importedFrom, Cause: err}
	}

	s.modules[key] = module

	return module, nil
}

// depPath converts a dependency's module path into a loadable path. Local
// paths (leading dot) resolve relative to the importing module's directory;
// package paths resolve from the session root.
func (s *Session) depPath(from string, modPath lume.ModPath) string {
	segments := make([]string, 0, len(modPath.Segments))
	for _, segment := range modPath.Segments {
		segments = append(segments, s.interner.Lookup(segment))
	}

	joined := path.Join(segments...)

	if modPath.Local {
		return path.Join(path.Dir(from), joined)
	}

	return joined
}

// EvalStmt parses source as a single statement and evaluates it against the
// persistent scopes. A let statement binds and returns nil; an expression
// statement returns its value.
func (s *Session) EvalStmt(source string) (eval.Value, error) {
	stmt, err := lume.ParseStmt(source, s.interner)
	if err != nil {
		return nil, err
	}

	return eval.EvalStmt(stmt, s.scope, s.ctx)
}

// Render formats a value using the session's interner.
func (s *Session) Render(value eval.Value) string {
	return eval.FormatValue(value, s.interner)
}

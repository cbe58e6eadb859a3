// Package loader resolves `import` declarations (spec.md §4.2 grammar) by
// reading the referenced .osfl files and splicing their top-level
// declarations into the importing Program's AST ahead of compilation. It
// generalizes fileinput.Input's single-queue chained-reader model (gothird's
// stdin-plus-kernel-source queue) into a recursive file resolver.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/lexer"
	"github.com/akshatnamdeo/osfl/internal/parser"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// Diagnostic is one load-time error: a missing or unreadable import, or a
// lex or parse error inside an imported file. An import of a path already
// visited is skipped without a diagnostic.
type Diagnostic struct {
	Location token.SourceLocation
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

// ReadFile reads and returns the bytes of an import target; overridable in
// tests so imports can be resolved against an in-memory fixture set instead
// of the real filesystem.
type ReadFile func(path string) ([]byte, error)

// Loader splices imported declarations into a Program AST, tracking visited
// paths so a diamond or cyclic import is only ever read once.
type Loader struct {
	baseDir  string
	readFile ReadFile
	visited  map[string]bool
	diags    []Diagnostic
	lexCfg   func(fileName string) lexer.Config
}

// New returns a Loader resolving relative import paths against baseDir
// (typically the directory containing the entry source file). lexCfg
// builds the Lexer Config used for each imported file; pass nil to fall
// back to lexer.DefaultConfig.
func New(baseDir string, lexCfg func(fileName string) lexer.Config) *Loader {
	return &Loader{
		baseDir:  baseDir,
		readFile: os.ReadFile,
		visited:  make(map[string]bool),
		lexCfg:   lexCfg,
	}
}

// WithReadFile overrides the filesystem read function, for tests.
func (l *Loader) WithReadFile(fn ReadFile) *Loader {
	l.readFile = fn
	return l
}

// Diagnostics returns every import error recorded so far.
func (l *Loader) Diagnostics() []Diagnostic { return l.diags }

// Resolve walks root's Members in place, replacing every ImportDecl node
// with the splice of its target file's own top-level declarations
// (recursively resolved in turn). A path already visited is skipped
// silently rather than re-spliced, so a diamond import is not duplicated.
func (l *Loader) Resolve(root *ast.Node) {
	if root == nil {
		return
	}
	root.Members = l.resolveMembers(root.Members)
}

func (l *Loader) resolveMembers(members []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Kind != ast.KindImportDecl {
			out = append(out, m)
			continue
		}
		spliced := l.load(m)
		out = append(out, spliced...)
	}
	return out
}

func (l *Loader) load(importNode *ast.Node) []*ast.Node {
	path := importNode.ImportPath
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.baseDir, path)
	}
	if l.visited[full] {
		return nil
	}
	l.visited[full] = true

	src, err := l.readFile(full)
	if err != nil {
		l.diags = append(l.diags, Diagnostic{
			Location: importNode.Location,
			Message:  fmt.Sprintf("cannot import %q: %v", path, err),
		})
		return nil
	}

	cfg := lexer.DefaultConfig(full)
	if l.lexCfg != nil {
		cfg = l.lexCfg(full)
	}
	lx := lexer.New(src, cfg)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF || tok.Kind == token.Error {
			break
		}
	}
	if lx.LastError().Kind != lexer.NoError {
		l.diags = append(l.diags, Diagnostic{
			Location: lx.LastError().Location,
			Message:  fmt.Sprintf("%q: %s", path, lx.LastError().Message),
		})
	}

	p := parser.New(toks)
	block := p.Parse()
	for _, d := range p.Diagnostics() {
		l.diags = append(l.diags, Diagnostic{Location: d.Location, Message: fmt.Sprintf("%q: %s", path, d.Message)})
	}

	savedDir := l.baseDir
	l.baseDir = filepath.Dir(full)
	resolved := l.resolveMembers(block.Members)
	l.baseDir = savedDir
	return resolved
}

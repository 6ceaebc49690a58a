package analyzer

import (
	"path/filepath"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/modules"
	"github.com/rapterlang/rapter/internal/pipeline"
)

// AnalyzerProcessor resolves imports and runs semantic analysis over the
// parsed program.
type AnalyzerProcessor struct {
	// SearchPaths lists extra module directories from the project manifest,
	// tried after the compiled file's own directory.
	SearchPaths []string
}

func (p *AnalyzerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil {
		return ctx
	}

	resolver := modules.NewResolver(filepath.Dir(ctx.FilePath), p.SearchPaths...)
	imported, err := resolver.ResolveImports(ctx.AstRoot)
	if err != nil {
		ctx.AddDiagnostic(err)
		return ctx
	}

	a := New(ctx.FilePath)
	if err := a.Analyze(ctx.AstRoot, imported); err != nil {
		ctx.AddDiagnostic(err)
		return ctx
	}

	ctx.SymbolTable = a.Table()
	ctx.Imports = make(map[string]*ast.Program, len(resolver.All()))
	for name, mod := range resolver.All() {
		ctx.Imports[name] = mod.Program
	}
	return ctx
}

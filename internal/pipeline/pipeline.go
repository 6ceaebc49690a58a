package pipeline

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/token"
)

// Context carries one compilation through the stages. Each processor reads
// the fields earlier stages filled in and adds its own.
type Context struct {
	FilePath string
	Source   string
	BuildID  string

	Tokens      []token.Token
	AstRoot     *ast.Program
	SymbolTable *symbols.Table

	// Imports maps module qualifier to the parsed module program, filled by
	// the resolve stage.
	Imports map[string]*ast.Program

	// Output is the generated C translation unit.
	Output string

	Diagnostics []*diag.Diagnostic
}

// Failed reports whether any stage produced a diagnostic.
func (c *Context) Failed() bool {
	return len(c.Diagnostics) > 0
}

// AddDiagnostic records a stage failure.
func (c *Context) AddDiagnostic(d *diag.Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Processor is one compilation stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. Checking is fail-fast: the first stage
// that records a diagnostic stops the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.Failed() {
			return ctx
		}
	}
	return ctx
}

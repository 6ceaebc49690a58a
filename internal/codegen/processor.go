package codegen

import (
	"github.com/rapterlang/rapter/internal/pipeline"
)

// CodegenProcessor runs lowering as the last pipeline stage and fills
// ctx.Output with the C translation unit.
type CodegenProcessor struct {
	// Includes lists extra C headers from the project manifest, emitted
	// after the standard ones for extern declarations to lean on.
	Includes []string
}

func (p *CodegenProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil {
		return ctx
	}
	gen := New(ctx.FilePath)
	gen.extraIncludes = p.Includes
	output, err := gen.Generate(ctx.AstRoot, ctx.Imports)
	if err != nil {
		ctx.AddDiagnostic(err)
		return ctx
	}
	ctx.Output = output
	return ctx
}

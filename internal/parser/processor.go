package parser

import (
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Tokens == nil {
		// Safeguard: the lexer stage always runs first.
		ctx.AddDiagnostic(diag.New(diag.InternalError, diag.Span{File: ctx.FilePath}, "parser: token stream is nil"))
		return ctx
	}

	program, err := Parse(ctx.Tokens, ctx.FilePath)
	if err != nil {
		ctx.AddDiagnostic(err)
		return ctx
	}
	ctx.AstRoot = program
	return ctx
}

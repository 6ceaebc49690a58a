package lexer

import (
	"github.com/rapterlang/rapter/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	tokens, err := Tokenize(ctx.Source, ctx.FilePath)
	if err != nil {
		ctx.AddDiagnostic(err)
		return ctx
	}
	ctx.Tokens = tokens
	return ctx
}

package ast

import "github.com/rapterlang/rapter/internal/token"

// Pattern is a match arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything: _.
type WildcardPattern struct {
	Token token.Token
}

func (p *WildcardPattern) GetToken() token.Token { return p.Token }
func (p *WildcardPattern) patternNode()          {}

// LiteralPattern matches a literal value (int, char, string, bool).
type LiteralPattern struct {
	Token   token.Token
	Literal Expression
}

func (p *LiteralPattern) GetToken() token.Token { return p.Token }
func (p *LiteralPattern) patternNode()          {}

// EnumVariantPattern matches an enum variant, optionally binding its payload:
// Option::Some(x).
type EnumVariantPattern struct {
	Token    token.Token
	EnumName string
	Variant  string
	Binding  string // empty when no payload binding
}

func (p *EnumVariantPattern) GetToken() token.Token { return p.Token }
func (p *EnumVariantPattern) patternNode()          {}

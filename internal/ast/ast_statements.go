package ast

import (
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// LetStatement declares a local variable.
// let mut x: int = 5;
type LetStatement struct {
	Token       token.Token // the 'let' token
	Name        string
	Type        typesystem.Type // nil when inferred
	Mutable     bool
	Initializer Expression // nil when only declared
}

func (s *LetStatement) GetToken() token.Token { return s.Token }
func (s *LetStatement) statementNode()        {}

// ConstStatement declares an immutable local with a mandatory annotation.
// const MAX: int = 100;
type ConstStatement struct {
	Token       token.Token
	Name        string
	Type        typesystem.Type
	Initializer Expression
}

func (s *ConstStatement) GetToken() token.Token { return s.Token }
func (s *ConstStatement) statementNode()        {}

// AssignStatement writes to an lvalue (variable, field, index or deref).
type AssignStatement struct {
	Token  token.Token
	Target Expression
	Value  Expression
}

func (s *AssignStatement) GetToken() token.Token { return s.Token }
func (s *AssignStatement) statementNode()        {}

// ReturnStatement exits the enclosing function. Value is nil for bare return.
type ReturnStatement struct {
	Token token.Token
	Value Expression
}

func (s *ReturnStatement) GetToken() token.Token { return s.Token }
func (s *ReturnStatement) statementNode()        {}

// IfStatement with optional else branch. else-if chains nest as a single
// IfStatement inside Else.
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      []Statement
	Else      []Statement // nil when absent
}

func (s *IfStatement) GetToken() token.Token { return s.Token }
func (s *IfStatement) statementNode()        {}

// WhileStatement loops while Condition holds.
type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      []Statement
}

func (s *WhileStatement) GetToken() token.Token { return s.Token }
func (s *WhileStatement) statementNode()        {}

// ForStatement iterates over an array, dynamic array, or range.
// for x: 0..10 { ... }
type ForStatement struct {
	Token    token.Token
	Variable string
	Iterable Expression
	Body     []Statement
}

func (s *ForStatement) GetToken() token.Token { return s.Token }
func (s *ForStatement) statementNode()        {}

// BreakStatement exits the innermost loop.
type BreakStatement struct {
	Token token.Token
}

func (s *BreakStatement) GetToken() token.Token { return s.Token }
func (s *BreakStatement) statementNode()        {}

// ContinueStatement skips to the next loop iteration.
type ContinueStatement struct {
	Token token.Token
}

func (s *ContinueStatement) GetToken() token.Token { return s.Token }
func (s *ContinueStatement) statementNode()        {}

// ExpressionStatement evaluates an expression for its effects.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (s *ExpressionStatement) GetToken() token.Token { return s.Token }
func (s *ExpressionStatement) statementNode()        {}

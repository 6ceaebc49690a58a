package ast

import (
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// BinaryOp is a binary operator.
type BinaryOp string

const (
	OpAdd          BinaryOp = "+"
	OpSubtract     BinaryOp = "-"
	OpMultiply     BinaryOp = "*"
	OpDivide       BinaryOp = "/"
	OpModulo       BinaryOp = "%"
	OpEqual        BinaryOp = "=="
	OpNotEqual     BinaryOp = "!="
	OpLess         BinaryOp = "<"
	OpLessEqual    BinaryOp = "<="
	OpGreater      BinaryOp = ">"
	OpGreaterEqual BinaryOp = ">="
	OpAnd          BinaryOp = "&&"
	OpOr           BinaryOp = "||"
)

// IsComparison reports whether the operator yields bool from two compatible
// operands.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// IsArithmetic reports whether the operator needs numeric operands.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo:
		return true
	}
	return false
}

// UnaryOp is a prefix operator.
type UnaryOp string

const (
	OpNegate      UnaryOp = "-"
	OpNot         UnaryOp = "!"
	OpDereference UnaryOp = "*"
	OpAddressOf   UnaryOp = "&"
)

// IntLiteral is an integer literal.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (e *IntLiteral) GetToken() token.Token { return e.Token }
func (e *IntLiteral) expressionNode()       {}

// FloatLiteral is a float literal.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (e *FloatLiteral) GetToken() token.Token { return e.Token }
func (e *FloatLiteral) expressionNode()       {}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (e *BoolLiteral) GetToken() token.Token { return e.Token }
func (e *BoolLiteral) expressionNode()       {}

// CharLiteral is a character literal, stored as its code point.
type CharLiteral struct {
	Token token.Token
	Value rune
}

func (e *CharLiteral) GetToken() token.Token { return e.Token }
func (e *CharLiteral) expressionNode()       {}

// StringLiteral is a string literal with escapes already decoded.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (e *StringLiteral) GetToken() token.Token { return e.Token }
func (e *StringLiteral) expressionNode()       {}

// Identifier is a variable or function reference.
type Identifier struct {
	Token token.Token
	Name  string
}

func (e *Identifier) GetToken() token.Token { return e.Token }
func (e *Identifier) expressionNode()       {}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Token    token.Token
	Left     Expression
	Operator BinaryOp
	Right    Expression
}

func (e *BinaryExpr) GetToken() token.Token { return e.Token }
func (e *BinaryExpr) expressionNode()       {}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	Token    token.Token
	Operator UnaryOp
	Operand  Expression
}

func (e *UnaryExpr) GetToken() token.Token { return e.Token }
func (e *UnaryExpr) expressionNode()       {}

// CallExpr calls a function. The callee may be an Identifier (free function),
// a FieldAccess (module-qualified call or method), or an EnumAccess (variant
// construction).
type CallExpr struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

func (e *CallExpr) GetToken() token.Token { return e.Token }
func (e *CallExpr) expressionNode()       {}

// ArrayLiteral is a fixed-size array literal: [1, 2, 3].
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (e *ArrayLiteral) GetToken() token.Token { return e.Token }
func (e *ArrayLiteral) expressionNode()       {}

// DynamicArrayLiteral builds a growable array with a declared element type:
// new [int]().
type DynamicArrayLiteral struct {
	Token    token.Token
	ElemType typesystem.Type
	Elements []Expression
}

func (e *DynamicArrayLiteral) GetToken() token.Token { return e.Token }
func (e *DynamicArrayLiteral) expressionNode()       {}

// IndexExpr subscripts an array, dynamic array, pointer, or string.
type IndexExpr struct {
	Token token.Token
	Array Expression
	Index Expression
}

func (e *IndexExpr) GetToken() token.Token { return e.Token }
func (e *IndexExpr) expressionNode()       {}

// FieldAccess reads a struct field or names a module member. ptr->field
// parses as FieldAccess over a dereference.
type FieldAccess struct {
	Token  token.Token
	Object Expression
	Field  string
}

func (e *FieldAccess) GetToken() token.Token { return e.Token }
func (e *FieldAccess) expressionNode()       {}

// StructLiteralField pairs a field name with its value expression.
type StructLiteralField struct {
	Name  string
	Value Expression
}

// StructLiteral constructs a struct value field by field.
type StructLiteral struct {
	Token  token.Token
	Name   string
	Fields []StructLiteralField
}

func (e *StructLiteral) GetToken() token.Token { return e.Token }
func (e *StructLiteral) expressionNode()       {}

// RangeExpr is start..end, usable only as a for-loop iterable.
type RangeExpr struct {
	Token token.Token
	Start Expression
	End   Expression
}

func (e *RangeExpr) GetToken() token.Token { return e.Token }
func (e *RangeExpr) expressionNode()       {}

// NewExpr heap-allocates the value of its operand and yields a pointer.
type NewExpr struct {
	Token   token.Token
	Operand Expression
}

func (e *NewExpr) GetToken() token.Token { return e.Token }
func (e *NewExpr) expressionNode()       {}

// DeleteExpr frees a heap allocation.
type DeleteExpr struct {
	Token   token.Token
	Operand Expression
}

func (e *DeleteExpr) GetToken() token.Token { return e.Token }
func (e *DeleteExpr) expressionNode()       {}

// CastExpr converts between whitelisted type pairs: expr as Type.
type CastExpr struct {
	Token      token.Token
	Expression Expression
	TargetType typesystem.Type
}

func (e *CastExpr) GetToken() token.Token { return e.Token }
func (e *CastExpr) expressionNode()       {}

// TernaryExpr is cond ? a : b.
type TernaryExpr struct {
	Token     token.Token
	Condition Expression
	TrueExpr  Expression
	FalseExpr Expression
}

func (e *TernaryExpr) GetToken() token.Token { return e.Token }
func (e *TernaryExpr) expressionNode()       {}

// EnumAccess names a variant: Color::Red or Option::None. For builtin
// generics the concrete instantiation comes from context.
type EnumAccess struct {
	Token    token.Token
	EnumName string
	Variant  string
}

func (e *EnumAccess) GetToken() token.Token { return e.Token }
func (e *EnumAccess) expressionNode()       {}

// MatchArm is one pattern => expression pair.
type MatchArm struct {
	Pattern    Pattern
	Expression Expression
}

// MatchExpr matches a scrutinee against patterns.
type MatchExpr struct {
	Token     token.Token
	Scrutinee Expression
	Arms      []*MatchArm
}

func (e *MatchExpr) GetToken() token.Token { return e.Token }
func (e *MatchExpr) expressionNode()       {}

// TryExpr is the ? operator: unwrap a Result/Option or early-return the
// failure through the enclosing function.
type TryExpr struct {
	Token      token.Token
	Expression Expression
}

func (e *TryExpr) GetToken() token.Token { return e.Token }
func (e *TryExpr) expressionNode()       {}

package analyzer

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func (a *Analyzer) checkStatement(stmt ast.Statement, expectedReturn typesystem.Type) *diag.Diagnostic {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return a.checkLet(s)
	case *ast.ConstStatement:
		return a.checkConst(s)
	case *ast.AssignStatement:
		return a.checkAssign(s)
	case *ast.ReturnStatement:
		return a.checkReturn(s, expectedReturn)
	case *ast.IfStatement:
		condTy, err := a.inferType(s.Condition)
		if err != nil {
			return err
		}
		if !typesystem.Equal(condTy, typesystem.Bool) {
			return diag.TypeMismatchAt("bool", typesystem.Describe(condTy), a.span(s.Token)).
				WithSuggestion("use a boolean expression in the if condition, such as a comparison or boolean variable")
		}
		a.table.EnterScope()
		for _, inner := range s.Then {
			if err := a.checkStatement(inner, expectedReturn); err != nil {
				a.table.ExitScope()
				return err
			}
		}
		a.table.ExitScope()
		if s.Else != nil {
			a.table.EnterScope()
			for _, inner := range s.Else {
				if err := a.checkStatement(inner, expectedReturn); err != nil {
					a.table.ExitScope()
					return err
				}
			}
			a.table.ExitScope()
		}
		return nil
	case *ast.WhileStatement:
		condTy, err := a.inferType(s.Condition)
		if err != nil {
			return err
		}
		if !typesystem.Equal(condTy, typesystem.Bool) {
			return diag.TypeMismatchAt("bool", typesystem.Describe(condTy), a.span(s.Token)).
				WithSuggestion("use a boolean expression in the while condition, such as a comparison or boolean variable")
		}
		a.table.EnterScope()
		defer a.table.ExitScope()
		for _, inner := range s.Body {
			if err := a.checkStatement(inner, expectedReturn); err != nil {
				return err
			}
		}
		return nil
	case *ast.ForStatement:
		return a.checkFor(s, expectedReturn)
	case *ast.BreakStatement, *ast.ContinueStatement:
		// Valid anywhere; the code generator relies on the surrounding C
		// loop construct.
		return nil
	case *ast.ExpressionStatement:
		_, err := a.inferType(s.Expression)
		return err
	}
	return a.errorAt(stmt.GetToken(), diag.InternalError, "unhandled statement %T", stmt)
}

func (a *Analyzer) checkLet(s *ast.LetStatement) *diag.Diagnostic {
	ty := s.Type
	if ty == nil {
		if s.Initializer == nil {
			return a.errorAt(s.Token, diag.InvalidSyntax,
				"variable `%s` must have a type annotation or initializer", s.Name).
				WithSuggestion("add a type annotation like `: int` or provide an initializer expression")
		}
		var err *diag.Diagnostic
		ty, err = a.inferType(s.Initializer)
		if err != nil {
			return err
		}
	} else if s.Initializer != nil {
		// An empty array literal takes its type from the annotation.
		if lit, ok := s.Initializer.(*ast.ArrayLiteral); ok && len(lit.Elements) == 0 {
			if _, isArray := ty.(typesystem.Array); isArray {
				return a.insert(symbols.Symbol{Name: s.Name, Kind: symbols.VariableSymbol, Type: ty, Mutable: s.Mutable}, s.Token)
			}
		}
		initTy, err := a.inferTypeWithHint(s.Initializer, ty)
		if err != nil {
			return err
		}
		if !typesystem.Compatible(ty, initTy) {
			return diag.TypeMismatchAt(typesystem.Describe(ty), typesystem.Describe(initTy), a.span(s.Token)).
				WithSuggestion("convert the initializer to match the declared type or change the type annotation")
		}
	}
	return a.insert(symbols.Symbol{Name: s.Name, Kind: symbols.VariableSymbol, Type: ty, Mutable: s.Mutable}, s.Token)
}

func (a *Analyzer) checkConst(s *ast.ConstStatement) *diag.Diagnostic {
	initTy, err := a.inferTypeWithHint(s.Initializer, s.Type)
	if err != nil {
		return err
	}
	if !typesystem.Compatible(s.Type, initTy) {
		return diag.TypeMismatchAt(typesystem.Describe(s.Type), typesystem.Describe(initTy), a.span(s.Token)).
			WithSuggestion("ensure the initializer expression matches the declared constant type")
	}
	return a.insert(symbols.Symbol{Name: s.Name, Kind: symbols.VariableSymbol, Type: s.Type, Mutable: false}, s.Token)
}

func (a *Analyzer) checkAssign(s *ast.AssignStatement) *diag.Diagnostic {
	if ident, ok := s.Target.(*ast.Identifier); ok {
		if sym, found := a.table.Lookup(ident.Name); found && sym.Kind == symbols.VariableSymbol && !sym.Mutable {
			return a.errorAt(s.Token, diag.ImmutableAssignment, "cannot assign to immutable variable `%s`", ident.Name).
				WithSuggestion("declare it with `let mut` if it needs to change")
		}
	}
	targetTy, err := a.inferType(s.Target)
	if err != nil {
		return err
	}
	valueTy, err := a.inferTypeWithHint(s.Value, targetTy)
	if err != nil {
		return err
	}
	if !typesystem.Compatible(targetTy, valueTy) {
		return diag.TypeMismatchAt(typesystem.Describe(targetTy), typesystem.Describe(valueTy), a.span(s.Token)).
			WithSuggestion("ensure the assigned value matches the target's type or convert it appropriately")
	}
	return nil
}

func (a *Analyzer) checkReturn(s *ast.ReturnStatement, expectedReturn typesystem.Type) *diag.Diagnostic {
	if expectedReturn == nil {
		if s.Value != nil {
			retTy, err := a.inferType(s.Value)
			if err != nil {
				return err
			}
			return a.errorAt(s.Token, diag.TypeMismatch,
				"returning a value of type `%s` from a void function", typesystem.Describe(retTy)).
				WithSuggestion("remove the return value or change the function return type")
		}
		return nil
	}
	if s.Value == nil {
		return a.errorAt(s.Token, diag.MissingReturn,
			"missing return value; function expects `%s`", typesystem.Describe(expectedReturn)).
			WithSuggestion("provide a return value")
	}
	retTy, err := a.inferTypeWithHint(s.Value, expectedReturn)
	if err != nil {
		return err
	}
	if !typesystem.Compatible(expectedReturn, retTy) {
		return diag.TypeMismatchAt(typesystem.Describe(expectedReturn), typesystem.Describe(retTy), a.span(s.Token)).
			WithSuggestion("return a value that matches the function's declared return type")
	}
	return nil
}

func (a *Analyzer) checkFor(s *ast.ForStatement, expectedReturn typesystem.Type) *diag.Diagnostic {
	a.table.EnterScope()
	defer a.table.ExitScope()

	iterableTy, err := a.inferType(s.Iterable)
	if err != nil {
		return err
	}
	var loopVarTy typesystem.Type
	switch it := iterableTy.(type) {
	case typesystem.Array:
		loopVarTy = it.Elem
	case typesystem.DynamicArray:
		loopVarTy = it.Elem
	default:
		// Range expressions have no type of their own; the loop variable
		// is an int counter.
		if _, isRange := s.Iterable.(*ast.RangeExpr); isRange {
			loopVarTy = typesystem.Int
		} else {
			return a.errorAt(s.Token, diag.InvalidOperation,
				"cannot iterate over type `%s`", typesystem.Describe(iterableTy)).
				WithSuggestion("for loops require an iterable type (range, array, or dynamic array)")
		}
	}

	sym := symbols.Symbol{Name: s.Variable, Kind: symbols.VariableSymbol, Type: loopVarTy, Mutable: true}
	if err := a.insert(sym, s.Token); err != nil {
		return err
	}
	for _, inner := range s.Body {
		if err := a.checkStatement(inner, expectedReturn); err != nil {
			return err
		}
	}
	return nil
}

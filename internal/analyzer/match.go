package analyzer

import (
	"strings"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func (a *Analyzer) inferMatch(e *ast.MatchExpr) (typesystem.Type, *diag.Diagnostic) {
	scrutineeTy, err := a.inferType(e.Scrutinee)
	if err != nil {
		return nil, err
	}
	scrutineeTy = normalizeStr(scrutineeTy)
	// Annotated enum types arrive as named struct types from the parser.
	if st, ok := scrutineeTy.(typesystem.Struct); ok && a.table.HasEnum(st.Name) {
		scrutineeTy = typesystem.Enum{Name: st.Name}
	}

	if len(e.Arms) == 0 {
		return nil, a.errorAt(e.Token, diag.InvalidSyntax, "match expression must have at least one arm").
			WithSuggestion("add at least one arm, or a wildcard arm `_ => ...`")
	}

	hasWildcard := false
	matched := make(map[string]bool)
	for _, arm := range e.Arms {
		switch pat := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			hasWildcard = true
		case *ast.LiteralPattern:
			patTy, litErr := a.inferType(pat.Literal)
			if litErr != nil {
				return nil, litErr
			}
			if !typesystem.Compatible(scrutineeTy, patTy) {
				return nil, a.errorAt(pat.Token, diag.TypeMismatch,
					"pattern type `%s` doesn't match scrutinee type `%s`",
					typesystem.Describe(patTy), typesystem.Describe(scrutineeTy))
			}
		case *ast.EnumVariantPattern:
			if markErr := a.checkVariantPattern(pat, scrutineeTy, matched); markErr != nil {
				return nil, markErr
			}
		}
	}

	if enumTy, isEnum := scrutineeTy.(typesystem.Enum); isEnum && !hasWildcard {
		if variants, ok := a.table.EnumVariants(enumTy.Name); ok {
			var missing []string
			for _, v := range variants {
				if !matched[v] {
					missing = append(missing, v)
				}
			}
			if len(missing) > 0 {
				return nil, a.errorAt(e.Token, diag.InvalidSyntax,
					"non-exhaustive match on enum `%s`, missing variants: %s",
					enumTy.Name, strings.Join(missing, ", ")).
					WithSuggestion("add a wildcard pattern `_` or match all remaining variants")
			}
		}
	}

	var firstTy typesystem.Type
	for i, arm := range e.Arms {
		armTy, armErr := a.inferArmExpression(arm, scrutineeTy)
		if armErr != nil {
			return nil, armErr
		}
		if i == 0 {
			firstTy = armTy
			continue
		}
		if !typesystem.Compatible(firstTy, armTy) {
			return nil, a.errorAt(arm.Expression.GetToken(), diag.TypeMismatch,
				"match arms must have compatible types: `%s` vs `%s`",
				typesystem.Describe(firstTy), typesystem.Describe(armTy)).
				WithSuggestion("ensure all match arms return the same type")
		}
	}
	return firstTy, nil
}

func (a *Analyzer) checkVariantPattern(pat *ast.EnumVariantPattern, scrutineeTy typesystem.Type, matched map[string]bool) *diag.Diagnostic {
	if a.registry.IsBuiltin(pat.EnumName) {
		builtin, _ := a.registry.Lookup(pat.EnumName)
		variant, ok := builtin.Variant(pat.Variant)
		if !ok {
			return a.errorAt(pat.Token, diag.UndefinedType,
				"type `%s` has no variant `%s`", pat.EnumName, pat.Variant)
		}
		if pat.Binding != "" && !variant.HasValue {
			return a.errorAt(pat.Token, diag.InvalidSyntax,
				"variant `%s::%s` does not have a value to bind", pat.EnumName, pat.Variant).
				WithSuggestion("use `" + pat.EnumName + "::" + pat.Variant + "` without a binding")
		}
		if pat.Binding == "" && variant.HasValue {
			return a.errorAt(pat.Token, diag.InvalidSyntax,
				"variant `%s::%s` has a value that should be bound", pat.EnumName, pat.Variant).
				WithSuggestion("use `" + pat.EnumName + "::" + pat.Variant + "(name)` to bind the value")
		}
		matched[pat.Variant] = true

		gen, isGeneric := scrutineeTy.(typesystem.Generic)
		if !isGeneric {
			return a.errorAt(pat.Token, diag.TypeMismatch,
				"pattern expects generic type `%s`, but scrutinee is `%s`",
				pat.EnumName, typesystem.Describe(scrutineeTy))
		}
		if gen.Name != pat.EnumName {
			return a.errorAt(pat.Token, diag.TypeMismatch,
				"pattern type `%s` doesn't match scrutinee type `%s`",
				pat.EnumName, typesystem.Describe(scrutineeTy))
		}
		return nil
	}

	sym, found := a.table.Lookup(pat.EnumName)
	if !found {
		return a.errorAt(pat.Token, diag.UndefinedType, "enum `%s` not found", pat.EnumName)
	}
	if sym.Kind != symbols.EnumSymbol {
		return a.errorAt(pat.Token, diag.TypeMismatch, "`%s` is not an enum", pat.EnumName)
	}
	if _, ok := a.table.EnumVariant(pat.EnumName, pat.Variant); !ok {
		return a.errorAt(pat.Token, diag.UndefinedType,
			"enum `%s` has no variant `%s`", pat.EnumName, pat.Variant)
	}
	matched[pat.Variant] = true
	if !typesystem.Compatible(scrutineeTy, typesystem.Enum{Name: pat.EnumName}) {
		return a.errorAt(pat.Token, diag.TypeMismatch,
			"pattern type `%s` doesn't match scrutinee type `%s`",
			pat.EnumName, typesystem.Describe(scrutineeTy))
	}
	return nil
}

// inferArmExpression types an arm body with its pattern binding, if any,
// in a fresh scope.
func (a *Analyzer) inferArmExpression(arm *ast.MatchArm, scrutineeTy typesystem.Type) (typesystem.Type, *diag.Diagnostic) {
	a.table.EnterScope()
	defer a.table.ExitScope()

	if pat, ok := arm.Pattern.(*ast.EnumVariantPattern); ok && pat.Binding != "" {
		a.table.Insert(symbols.Symbol{
			Name:    pat.Binding,
			Kind:    symbols.VariableSymbol,
			Type:    a.bindingType(pat, scrutineeTy),
			Mutable: false,
		})
	}
	return a.inferType(arm.Expression)
}

// bindingType resolves the payload type a pattern binding carries. For the
// builtin generics it is the scrutinee's first type argument; user enums
// carry no payloads so int stands in.
func (a *Analyzer) bindingType(pat *ast.EnumVariantPattern, scrutineeTy typesystem.Type) typesystem.Type {
	if a.registry.IsBuiltin(pat.EnumName) {
		if gen, ok := scrutineeTy.(typesystem.Generic); ok && len(gen.Args) > 0 {
			return gen.Args[0]
		}
	}
	return typesystem.Int
}

func (a *Analyzer) inferTry(e *ast.TryExpr) (typesystem.Type, *diag.Diagnostic) {
	exprTy, err := a.inferType(e.Expression)
	if err != nil {
		return nil, err
	}

	if !a.table.InFunction {
		return nil, a.errorAt(e.Token, diag.InvalidSyntax, "? operator can only be used inside functions")
	}

	gen, isGeneric := exprTy.(typesystem.Generic)
	if !isGeneric || (gen.Name != config.OptionTypeName && gen.Name != config.ResultTypeName) {
		return nil, a.errorAt(e.Token, diag.TypeMismatch,
			"? operator can only be used on Result<T, E> or Option<T>, found `%s`",
			typesystem.Describe(exprTy)).
			WithSuggestion("? operator is for error propagation and optional value handling")
	}

	retGen, retIsGeneric := a.table.CurrentReturnType.(typesystem.Generic)
	if !retIsGeneric || retGen.Name != gen.Name {
		return nil, a.errorAt(e.Token, diag.TypeMismatch,
			"? operator used on `%s` but function returns `%s`",
			typesystem.Describe(exprTy), typesystem.Describe(a.table.CurrentReturnType)).
			WithSuggestion("change function return type to `" + typesystem.Describe(exprTy) + "` or remove the ? operator")
	}
	if gen.Name == config.ResultTypeName && len(gen.Args) >= 2 && len(retGen.Args) >= 2 {
		if !typesystem.Compatible(gen.Args[1], retGen.Args[1]) {
			return nil, a.errorAt(e.Token, diag.TypeMismatch,
				"? operator error type mismatch: expression has error type `%s` but function returns error type `%s`",
				typesystem.Describe(gen.Args[1]), typesystem.Describe(retGen.Args[1])).
				WithSuggestion("ensure the error types match between the expression and function return type")
		}
	}
	if len(gen.Args) > 0 {
		return gen.Args[0], nil
	}
	return typesystem.Int, nil
}

package config

// SourceFileExt is the canonical rapter source extension.
const SourceFileExt = ".rapt"

// ManifestFileName is the optional per-project build manifest.
const ManifestFileName = "rapter.yaml"

// Built-in pseudo-function names handled by the checker and lowered
// type-directed by the code generator.
const (
	PrintFuncName   = "print"
	PrintlnFuncName = "println"
	LenFuncName     = "len"
)

// String method names available on string values.
const (
	StrLengthMethod    = "length"
	StrSubstringMethod = "substring"
	StrContainsMethod  = "contains"
	StrTrimMethod      = "trim"
	StrSplitMethod     = "split"
)

// Dynamic array method names.
const (
	ArrPushMethod   = "push"
	ArrPopMethod    = "pop"
	ArrLengthMethod = "length"
)

// Builtin generic family and variant names.
const (
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

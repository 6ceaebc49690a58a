package config

// cIntrinsics are C standard library functions callable without an extern
// declaration. The code generator skips emitting declarations for them; the
// headers it includes already provide prototypes.
var cIntrinsics = map[string]bool{
	// Memory allocation
	"malloc":  true,
	"free":    true,
	"realloc": true,
	"calloc":  true,
	// String operations
	"strlen":  true,
	"strcmp":  true,
	"strncmp": true,
	"strcpy":  true,
	"strncpy": true,
	"strcat":  true,
	"strncat": true,
	"strchr":  true,
	"strstr":  true,
	"strdup":  true,
	// Memory operations
	"memcpy":  true,
	"memmove": true,
	"memset":  true,
	"memcmp":  true,
	// I/O operations
	"printf":   true,
	"fprintf":  true,
	"sprintf":  true,
	"snprintf": true,
	"scanf":    true,
	"fscanf":   true,
	"sscanf":   true,
	"puts":     true,
	"fputs":    true,
	"putchar":  true,
	"getchar":  true,
	"fopen":    true,
	"fclose":   true,
	"fread":    true,
	"fwrite":   true,
	"fseek":    true,
	"ftell":    true,
	"rewind":   true,
	// Math operations
	"abs":   true,
	"labs":  true,
	"sqrt":  true,
	"pow":   true,
	"sin":   true,
	"cos":   true,
	"tan":   true,
	"floor": true,
	"ceil":  true,
	"round": true,
	// Conversion
	"atoi":   true,
	"atol":   true,
	"atof":   true,
	"strtol": true,
	"strtod": true,
}

// IsCIntrinsic reports whether name maps directly to a C stdlib function.
func IsCIntrinsic(name string) bool {
	return cIntrinsics[name]
}

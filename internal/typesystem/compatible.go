package typesystem

import "strings"

// Compatible is the single compatibility relation used by every assignment,
// argument, return and comparison check. It is reflexive and symmetric but
// intentionally not transitive: "geo.Point" matches "Point" via suffix
// matching, and spurious chains through qualified names are not closed over.
func Compatible(left, right Type) bool {
	if Equal(left, right) {
		return true
	}

	// The parser cannot tell struct names from enum names in annotations, so
	// a Struct and an Enum with the same name are the same nominal type.
	if ls, ok := left.(Struct); ok {
		if re, ok := right.(Enum); ok {
			return ls.Name == re.Name
		}
	}
	if le, ok := left.(Enum); ok {
		if rs, ok := right.(Struct); ok {
			return le.Name == rs.Name
		}
	}

	// The `str` annotation parses as Struct("str") while string literals are
	// String.
	if ls, ok := left.(Struct); ok && Equal(right, String) {
		return ls.Name == "str"
	}
	if rs, ok := right.(Struct); ok && Equal(left, String) {
		return rs.Name == "str"
	}

	// Structural descent.
	if ld, ok := left.(DynamicArray); ok {
		if rd, ok := right.(DynamicArray); ok {
			return Compatible(ld.Elem, rd.Elem)
		}
	}
	if la, ok := left.(Array); ok {
		if ra, ok := right.(Array); ok {
			return Compatible(la.Elem, ra.Elem)
		}
	}
	if lp, ok := left.(Pointer); ok {
		if rp, ok := right.(Pointer); ok {
			return Compatible(lp.Elem, rp.Elem)
		}
	}

	// Qualified vs unqualified names: "geo.Point" matches "Point".
	if ls, ok := left.(Struct); ok {
		if rs, ok := right.(Struct); ok {
			return namesMatch(ls.Name, rs.Name)
		}
	}

	// Generic instantiations of the same family, argument by argument.
	if lg, ok := left.(Generic); ok {
		if rg, ok := right.(Generic); ok {
			if lg.Name != rg.Name || len(lg.Args) != len(rg.Args) {
				return false
			}
			for i := range lg.Args {
				if !Compatible(lg.Args[i], rg.Args[i]) {
					return false
				}
			}
			return true
		}
	}

	return false
}

func namesMatch(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, ".") && !strings.Contains(b, ".") {
		return strings.HasSuffix(a, "."+b)
	}
	if !strings.Contains(a, ".") && strings.Contains(b, ".") {
		return strings.HasSuffix(b, "."+a)
	}
	return false
}

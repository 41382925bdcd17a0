package types

import (
	"fmt"
	"strings"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
)

// MonomorphKey is the cache key for a generic function instantiation:
// (fn_id, [arg_types_with_strategy]). Two keys with the same shapes but
// different strategies (e.g. Vec<i32, Stack> and Vec<i32, SmartPtr>) are
// distinct instances, since monomorphization happens on (shape, strategy)
// tuples, not shape alone.
type MonomorphKey string

// NewMonomorphKey hashes a function symbol and its concrete argument types
// into a stable string key, suitable for use as a concurrent map key keyed
// by (fn_id, arg_tuple).
func NewMonomorphKey(fnID ast.SymbolID, args []*ast.Type) MonomorphKey {
	var b strings.Builder
	fmt.Fprintf(&b, "fn#%d(", fnID)
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(keyFragment(a))
	}
	b.WriteByte(')')
	return MonomorphKey(b.String())
}

func keyFragment(t *ast.Type) string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case ast.TypePrimitive:
		return fmt.Sprintf("%s[%s]", t.Prim, t.Strategy)
	case ast.TypeArray:
		return fmt.Sprintf("[%s;%d][%s]", keyFragment(t.Elem), t.Len, t.Strategy)
	case ast.TypeSlice:
		return fmt.Sprintf("[%s][%s]", keyFragment(t.Elem), t.Strategy)
	case ast.TypeTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = keyFragment(f)
		}
		return fmt.Sprintf("(%s)[%s]", strings.Join(parts, ","), t.Strategy)
	case ast.TypeStruct:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = keyFragment(a)
		}
		region := ""
		if t.Strategy == ast.StrategyRegion {
			region = fmt.Sprintf("@%d", t.RegionID)
		}
		return fmt.Sprintf("struct#%d<%s>[%s%s]", t.DeclID, strings.Join(parts, ","), t.Strategy, region)
	case ast.TypeEnum:
		return fmt.Sprintf("enum#%d[%s]", t.DeclID, t.Strategy)
	case ast.TypeReference:
		return fmt.Sprintf("&%s", keyFragment(t.Target))
	case ast.TypePointer:
		return fmt.Sprintf("*%s", keyFragment(t.Target))
	default:
		return "var"
	}
}

// RegionKeyOf returns the interned region name used in a key fragment, for
// callers that need to cross-reference without recomputation.
func RegionKeyOf(t *ast.Type) intern.Id { return t.RegionID }

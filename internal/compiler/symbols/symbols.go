package symbols

import "sort"

const (
	// RuntimeNamespace is the import alias generated code uses for built-ins.
	RuntimeNamespace = "runtime"
	// RuntimeModule is the specifier of the runtime library, relative to the
	// generated file.
	RuntimeModule = "./runtime.mjs"
)

type SymbolInfo struct {
	Name      string
	Signature string // human readable, e.g. "sum(list) -> number"
}

// builtins is the fixed set of functions exported by the runtime library.
var builtins = map[string]SymbolInfo{
	"print":  {Name: "print", Signature: "print(...values)"},
	"len":    {Name: "len", Signature: "len(listOrString) -> number"},
	"map":    {Name: "map", Signature: "map(list, fn(item, index) -> value) -> list"},
	"filter": {Name: "filter", Signature: "filter(list, fn(item, index) -> bool) -> list"},
	"reduce": {Name: "reduce", Signature: "reduce(list, fn(acc, item, index) -> acc, initial) -> value"},
	"range":  {Name: "range", Signature: "range(start, end) -> list"},
	"sum":    {Name: "sum", Signature: "sum(list) -> number"},
}

func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// All returns every built-in, sorted by name.
func All() []SymbolInfo {
	all := make([]SymbolInfo, 0, len(builtins))
	for _, info := range builtins {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

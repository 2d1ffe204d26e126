package semantic

// Symbol is a variable or function record in a scope (spec.md §3.3).
type Symbol struct {
	Name   string
	Type   string // "int" | "float" | "string" | "bool" | "null" | "function" | "unknown"
	Line   int
	Params []string // function parameter names, when Type == "function"
}

// SymbolTable is a stack of scope frames; frame 0 is the global scope and
// always exists. Lookup walks innermost-out; declaration writes innermost.
type SymbolTable struct {
	scopes []map[string]*Symbol
}

// NewSymbolTable returns a table with just the global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []map[string]*Symbol{{}}}
}

// PushScope opens a new innermost scope.
func (t *SymbolTable) PushScope() {
	t.scopes = append(t.scopes, map[string]*Symbol{})
}

// PopScope discards the innermost scope.
func (t *SymbolTable) PopScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Declare adds or overwrites sym in the innermost scope.
func (t *SymbolTable) Declare(sym *Symbol) {
	t.scopes[len(t.scopes)-1][sym.Name] = sym
}

// Resolve walks from the innermost frame outward, returning the first match.
func (t *SymbolTable) Resolve(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

package route

// Table is an ordered, immutable list of route definitions.
type Table struct {
	defs []Definition
	root *node
}

// NewTable builds a table from defs. The definitions are copied, so later
// changes to the caller's slice do not affect the table.
func NewTable(defs ...Definition) *Table {
	t := &Table{
		defs: make([]Definition, len(defs)),
		root: newNode(""),
	}
	copy(t.defs, defs)
	for i := range t.defs {
		leaf := t.root.insert(t.defs[i].Path)
		if leaf.def == nil {
			leaf.def = &t.defs[i]
		}
	}
	return t
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.defs)
}

// Definitions returns a copy of the table's definitions in order.
func (t *Table) Definitions() []Definition {
	if t == nil {
		return nil
	}
	out := make([]Definition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Match finds the definition for path. Query strings and fragments must be
// stripped by the caller.
func (t *Table) Match(path string) (*MatchResult, bool) {
	if t.Len() == 0 {
		return nil, false
	}
	props := make(Props)
	n, ok := t.root.match(splitPath(path), props)
	if !ok {
		return nil, false
	}
	return &MatchResult{Route: n.def, Props: props}, true
}

// Match is the functional form of Table.Match.
func Match(t *Table, path string) (*MatchResult, bool) {
	return t.Match(path)
}

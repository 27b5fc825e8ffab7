package build

// Diagnostics reports non-fatal build-time observations: conflicts the
// LALR(1) table construction resolved automatically (spec.md §4.G
// "emit a build-time diagnostic noting the suppressed alternative") and the
// resulting table's size. The core library never logs these itself — only
// cmd/gofishdemo does, through gologger — so Diagnostics stays a plain data
// value callers can format however they like.
type Diagnostics struct {
	Conflicts []string
	States    int
}

// HasConflicts reports whether any conflict had to be resolved.
func (d Diagnostics) HasConflicts() bool {
	return len(d.Conflicts) > 0
}

//go:build !cgo

package hooks

// Without cgo there is no dynamic symbol table to search.
func resolve() (Hooks, Bound) {
	return Noop, Bound{}
}

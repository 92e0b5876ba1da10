package input

// Registry holds callbacks of the form (event) -> consumed. Dispatch
// iterates in reverse registration order and stops at the first
// consumer that returns true (spec §4.10).
type Registry[T any] struct {
	handlers []func(T) bool
}

// Register appends a handler; later registrations are tried first.
func (r *Registry[T]) Register(h func(T) bool) {
	r.handlers = append(r.handlers, h)
}

// Dispatch returns true if some handler consumed the event.
func (r *Registry[T]) Dispatch(v T) bool {
	for i := len(r.handlers) - 1; i >= 0; i-- {
		if r.handlers[i](v) {
			return true
		}
	}
	return false
}

// Registries bundles the four dispatch tables the decoder drives (spec
// §4.10: "three registries - keypress, paste, mouse, plus an input-text
// registry").
type Registries struct {
	Keypress  Registry[Key]
	Paste     Registry[string]
	Mouse     Registry[Mouse]
	InputText Registry[rune]
}

func NewRegistries() *Registries { return &Registries{} }

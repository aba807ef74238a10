package extraction

// strategy is one named attempt in a fallback chain
type strategy[T any] struct {
	name string
	run  func(T) (string, bool)
}

// firstSuccess runs chain in order and stops at the first strategy that
// yields a value
func firstSuccess[T any](in T, chain []strategy[T]) (value, source string) {
	for _, s := range chain {
		if v, ok := s.run(in); ok {
			return v, s.name
		}
	}
	return "", ""
}

package common

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Clone returns a copy of s that never aliases it.
// A nil input stays nil so callers can still tell "absent" from "empty".
func Clone[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}

	out := make(S, len(s))
	copy(out, s)

	return out
}

// StableDedup drops repeated elements keeping the first occurrence of each.
// The second return value lists the dropped elements in the order they were seen.
func StableDedup[S ~[]E, E comparable](s S) (S, S) {
	if s == nil {
		return nil, nil
	}

	seen := make(map[E]struct{}, len(s))
	out := make(S, 0, len(s))

	var dropped S

	for _, v := range s {
		if _, ok := seen[v]; ok {
			dropped = append(dropped, v)
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out, dropped
}

// Without returns the elements of s that are not in remove, preserving order.
func Without[S ~[]E, E comparable](s S, remove S) S {
	if len(remove) == 0 {
		return Clone(s)
	}

	drop := make(map[E]struct{}, len(remove))
	for _, v := range remove {
		drop[v] = struct{}{}
	}

	out := make(S, 0, len(s))

	for _, v := range s {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}

	return out
}

package lightschema

// Result is the outcome of a parse: either a success value or a failure
// payload, never both. The zero value is a failure holding the zero payload.
type Result[V, E any] struct {
	value V
	err   E
	ok    bool
}

// Success returns a successful Result holding v.
func Success[V, E any](v V) Result[V, E] { return Result[V, E]{value: v, ok: true} }

// Failure returns a failed Result holding e.
func Failure[V, E any](e E) Result[V, E] { return Result[V, E]{err: e} }

// IsSuccess reports whether r holds a success value.
func (r Result[V, E]) IsSuccess() bool { return r.ok }

// IsFailure reports whether r holds a failure payload.
func (r Result[V, E]) IsFailure() bool { return !r.ok }

// Get returns the success value and whether r is a success.
func (r Result[V, E]) Get() (V, bool) { return r.value, r.ok }

// ExpectSuccess returns the success value. It panics when r is a failure;
// call it only where the tag has already been established.
func (r Result[V, E]) ExpectSuccess(msg ...string) V {
	if !r.ok {
		panic(firstMessage(msg, "Expected success, but got failure."))
	}
	return r.value
}

// ExpectFailure returns the failure payload. It panics when r is a success.
func (r Result[V, E]) ExpectFailure(msg ...string) E {
	if r.ok {
		panic(firstMessage(msg, "Expected failure, but got success."))
	}
	return r.err
}

// SuccessOr returns the success value, or def when r is a failure.
func (r Result[V, E]) SuccessOr(def V) V {
	if r.ok {
		return r.value
	}
	return def
}

// FailureOr returns the failure payload, or def when r is a success.
func (r Result[V, E]) FailureOr(def E) E {
	if !r.ok {
		return r.err
	}
	return def
}

func firstMessage(msg []string, def string) string {
	for _, m := range msg {
		if m != "" {
			return m
		}
	}
	return def
}

package model

// Outcome is the result of a best-effort step: either a value or the reason
// the step degraded. A degraded outcome never aborts the pipeline; callers
// merge it explicitly.
type Outcome[T any] struct {
	Value    T
	Degraded error
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func Degrade[T any](err error) Outcome[T] {
	return Outcome[T]{Degraded: err}
}

func (o Outcome[T]) OK() bool {
	return o.Degraded == nil
}

// Get returns the value and whether the step succeeded.
func (o Outcome[T]) Get() (T, bool) {
	return o.Value, o.Degraded == nil
}

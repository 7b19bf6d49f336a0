package queues

// Queue is an append-only log of values produced during a computation and
// read in order afterwards.
type Queue[T any] []T

func NewQueue[T any]() *Queue[T] {
	q := Queue[T]{}
	return &q
}

func (q *Queue[T]) Push(x T) {
	*q = append(*q, x)
}

func (q *Queue[T]) Len() int {
	return len(*q)
}

// Filter returns the queued values matching keep, in order.
func (q *Queue[T]) Filter(keep func(T) bool) []T {
	out := []T{}
	for _, x := range *q {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}

package queues

import "testing"

func TestQueueKeepsOrder(t *testing.T) {
	q := NewQueue[int]()
	if q.Len() != 0 {
		t.Fatal("new queue not empty")
	}
	for i := 1; i <= 4; i++ {
		q.Push(i)
	}
	if q.Len() != 4 {
		t.Fatalf("Len = %d, want 4", q.Len())
	}
	evens := q.Filter(func(x int) bool { return x%2 == 0 })
	if len(evens) != 2 || evens[0] != 2 || evens[1] != 4 {
		t.Fatalf("Filter = %v", evens)
	}
	if all := q.Filter(func(int) bool { return true }); len(all) != 4 || all[0] != 1 {
		t.Fatalf("Filter did not keep push order: %v", all)
	}
}

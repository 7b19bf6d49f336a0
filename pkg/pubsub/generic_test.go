package pubsub

import "testing"

func TestPublishReachesEverySubscriber(t *testing.T) {
	ps := NewPubSub[int]()
	a := ps.Subscribe("race")
	b := ps.Subscribe("race")
	other := ps.Subscribe("other")

	ps.Publish("race", 7)

	if got := <-a; got != 7 {
		t.Fatalf("a got %d", got)
	}
	if got := <-b; got != 7 {
		t.Fatalf("b got %d", got)
	}
	select {
	case v := <-other:
		t.Fatalf("unexpected message %d on other topic", v)
	default:
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	ps := NewBufferedPubSub[string](1)
	a := ps.Subscribe("t")
	b := ps.Subscribe("t")

	ps.Unsubscribe("t", a)
	if _, ok := <-a; ok {
		t.Fatal("unsubscribed channel still open")
	}
	ps.Publish("t", "only b")
	if got := <-b; got != "only b" {
		t.Fatalf("b got %q", got)
	}

	ps.Close()
	if _, ok := <-b; ok {
		t.Fatal("channel open after Close")
	}
	ps.Publish("t", "dropped")
	if _, ok := <-ps.Subscribe("t"); ok {
		t.Fatal("subscribe after Close returned an open channel")
	}
}

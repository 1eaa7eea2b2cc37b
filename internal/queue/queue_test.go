package queue

import (
	"sync"
	"testing"
	"time"
)

func TestFIFOOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Enqueue(i)
	}
	if q.Len() != 100 {
		t.Fatalf("expected length 100, got %d", q.Len())
	}
	for i := 0; i < 100; i++ {
		if got := q.Dequeue(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got length %d", q.Len())
	}
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New[string]()
	got := make(chan string, 1)
	go func() {
		got <- q.Dequeue()
	}()

	select {
	case v := <-got:
		t.Fatalf("dequeue returned %q before anything was enqueued", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Enqueue("ready")
	select {
	case v := <-got:
		if v != "ready" {
			t.Fatalf("expected %q, got %q", "ready", v)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake up after enqueue")
	}
}

// Producers and consumers run concurrently; every enqueued value must come
// out exactly once.
func TestNoLostItems(t *testing.T) {
	const (
		producers   = 4
		consumers   = 3
		perProducer = 500
		poison      = -1
	)
	q := New[int]()

	var producerWg sync.WaitGroup
	for p := 0; p < producers; p++ {
		producerWg.Add(1)
		go func(p int) {
			defer producerWg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(p*perProducer + i)
			}
		}(p)
	}

	results := make(chan int, producers*perProducer)
	var consumerWg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for {
				v := q.Dequeue()
				if v == poison {
					return
				}
				results <- v
			}
		}()
	}

	producerWg.Wait()
	for c := 0; c < consumers; c++ {
		q.Enqueue(poison)
	}
	consumerWg.Wait()
	close(results)

	seen := make(map[int]bool, producers*perProducer)
	for v := range results {
		if seen[v] {
			t.Fatalf("value %d dequeued twice", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d items, got %d", producers*perProducer, len(seen))
	}
}

func TestSingleConsumerObservesEnqueueOrder(t *testing.T) {
	q := New[int]()
	done := make(chan struct{})
	const n = 1000

	go func() {
		defer close(done)
		prev := -1
		for i := 0; i < n; i++ {
			v := q.Dequeue()
			if v <= prev {
				t.Errorf("out of order: got %d after %d", v, prev)
				return
			}
			prev = v
		}
	}()

	for i := 0; i < n; i++ {
		q.Enqueue(i)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not finish")
	}
}

package sink_test

import (
	"sync"
	"testing"

	"github.com/quiccfor/stmmcmc/pkg/sink"
)

func TestPushPopFIFOOrder(t *testing.T) {
	s := sink.New()
	s.Push(sink.Record{Kind: sink.Posterior, Payload: "first"})
	s.Push(sink.Record{Kind: sink.DIC, Payload: "second"})

	r1, ok := s.Pop()
	if !ok || r1.Payload != "first" {
		t.Fatalf("expected first record, got %+v ok=%v", r1, ok)
	}
	r2, ok := s.Pop()
	if !ok || r2.Payload != "second" {
		t.Fatalf("expected second record, got %+v ok=%v", r2, ok)
	}
	if !s.Empty() {
		t.Fatal("expected sink to be empty after draining")
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	s := sink.New()
	done := make(chan sink.Record, 1)
	go func() {
		r, ok := s.Pop()
		if !ok {
			return
		}
		done <- r
	}()

	s.Push(sink.Record{Kind: sink.ResumeData, Payload: "checkpoint"})
	r := <-done
	if r.Payload != "checkpoint" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestCloseUnblocksPop(t *testing.T) {
	s := sink.New()
	var wg sync.WaitGroup
	wg.Add(1)
	var ok bool
	go func() {
		defer wg.Done()
		_, ok = s.Pop()
	}()

	s.Close()
	wg.Wait()
	if ok {
		t.Fatal("expected Pop to report ok=false after Close on an empty queue")
	}
}

func TestConcurrentProducers(t *testing.T) {
	s := sink.New()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Push(sink.Record{Kind: sink.Posterior, Payload: "x"})
		}(i)
	}
	wg.Wait()

	count := 0
	for !s.Empty() {
		if _, ok := s.Pop(); ok {
			count++
		}
	}
	if count != n {
		t.Fatalf("expected %d records, got %d", n, count)
	}
}

package logpipeline

import "testing"

func TestRingBufferEvictsOldest(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		rb.Push(i)
	}
	if rb.Len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.Len())
	}
	got := rb.Items()
	want := []int{3, 4, 5}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
}

func TestRingBufferUnderCapacity(t *testing.T) {
	rb := NewRingBuffer[string](10)
	rb.Push("a")
	rb.Push("b")
	if rb.Len() != 2 {
		t.Fatalf("expected len 2, got %d", rb.Len())
	}
	if got := rb.Items(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("items = %v", got)
	}
}

package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchURL(t *testing.T) {
	patterns := []string{"http://fake/forms/*.html", "https://exact.example/a?b=c"}

	tests := []struct {
		target string
		want   bool
	}{
		{"http://fake/forms/radiobutton.html", true},
		{"http://fake/forms/nested/radiobutton.html", false},
		{"https://fake/forms/radiobutton.html", false},
		{"http://other/forms/radiobutton.html", false},
		{"https://exact.example/a?b=c", true},
		{"://bad", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchURL(patterns, tt.target))
		})
	}
}

func TestQueue(t *testing.T) {
	q := NewQueue("a", "b")
	q.Enqueue("c")
	assert.Equal(t, 3, q.Size())

	item, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "a", item)

	q.Close()
	q.Enqueue("dropped")

	var got []string
	for {
		item, ok := q.DequeueBlocking()
		if !ok {
			break
		}
		got = append(got, item)
	}
	assert.Equal(t, []string{"b", "c"}, got)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestQueueWakesBlockedReaders(t *testing.T) {
	q := NewQueue[int]()

	var wg sync.WaitGroup
	results := make(chan int, 4)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, ok := q.DequeueBlocking()
				if !ok {
					return
				}
				results <- n
			}
		}()
	}

	for i := 1; i <= 4; i++ {
		q.Enqueue(i)
	}
	q.Close()
	wg.Wait()
	close(results)

	sum := 0
	for n := range results {
		sum += n
	}
	assert.Equal(t, 10, sum)
}

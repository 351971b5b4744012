package domain

// Queue is a FIFO of tracks waiting to be played.
// Tracks are appended at the tail and popped from the head; the currently
// playing track is not part of the queue. Queue is not safe for concurrent
// use: it is owned by a single player state.
type Queue struct {
	tracks []Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Append adds track(s) to the tail of the queue and returns the new length.
func (q *Queue) Append(tracks ...Track) int {
	q.tracks = append(q.tracks, tracks...)
	return q.Len()
}

// Pop removes and returns the head of the queue.
// The boolean is false if the queue was empty.
func (q *Queue) Pop() (Track, bool) {
	if q.IsEmpty() {
		return Track{}, false
	}

	head := q.tracks[0]
	q.tracks[0] = Track{}
	q.tracks = q.tracks[1:]
	return head, true
}

// Peek returns a copy of the head of the queue without removing it,
// or nil if the queue is empty.
func (q *Queue) Peek() *Track {
	if q.IsEmpty() {
		return nil
	}
	head := q.tracks[0]
	return &head
}

// List returns a copy of all queued tracks in play order.
func (q *Queue) List() []Track {
	result := make([]Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Head returns a copy of at most n tracks from the head of the queue.
func (q *Queue) Head(n int) []Track {
	n = max(0, min(n, q.Len()))
	result := make([]Track, n)
	copy(result, q.tracks[:n])
	return result
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]Track, 0)
}

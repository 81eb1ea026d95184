package spaced_repetition

// Session queue cycling: the same-sitting presentation order layered on
// top of the persisted schedule. The queue lives with the caller for one
// sitting and is never persisted or shared; ratings recorded here never
// touch a card's ease factor or interval.

// reinsertOffset is how many other cards are shown before an Again/Hard
// card comes back.
const reinsertOffset = 3

// easyStreakToRetire retires a card from the session after this many
// consecutive Easy ratings.
const easyStreakToRetire = 2

// SessionQueue cycles card ids within one study sitting
type SessionQueue struct {
	queue      []string
	easyStreak map[string]int
}

// NewSessionQueue builds a session over the ids of a fetched study queue,
// preserving their order.
func NewSessionQueue(cardIDs []string) *SessionQueue {
	q := make([]string, len(cardIDs))
	copy(q, cardIDs)
	return &SessionQueue{
		queue:      q,
		easyStreak: make(map[string]int),
	}
}

// Current returns the card to present, or "" when the session is done.
func (s *SessionQueue) Current() string {
	if len(s.queue) == 0 {
		return ""
	}
	return s.queue[0]
}

// Rate records the rating for the current card and reorders the queue:
// Again and Hard bring the card back a few positions ahead, Good sends it
// to the back for another pass, and a second consecutive Easy retires it
// from the sitting.
func (s *SessionQueue) Rate(r Rating) {
	if len(s.queue) == 0 {
		return
	}
	id := s.queue[0]
	s.queue = s.queue[1:]

	switch r {
	case Easy:
		s.easyStreak[id]++
		if s.easyStreak[id] >= easyStreakToRetire {
			delete(s.easyStreak, id)
			return
		}
		s.queue = append(s.queue, id)
	case Good:
		s.easyStreak[id] = 0
		s.queue = append(s.queue, id)
	default: // Again, Hard
		s.easyStreak[id] = 0
		s.insertAt(id, reinsertOffset)
	}
}

// insertAt puts id back into the remaining queue at the given offset,
// clamped to the end.
func (s *SessionQueue) insertAt(id string, offset int) {
	if offset > len(s.queue) {
		offset = len(s.queue)
	}
	s.queue = append(s.queue, "")
	copy(s.queue[offset+1:], s.queue[offset:])
	s.queue[offset] = id
}

// Len returns the number of cards still in the session.
func (s *SessionQueue) Len() int {
	return len(s.queue)
}

// Done reports whether every card has been retired.
func (s *SessionQueue) Done() bool {
	return len(s.queue) == 0
}

// Remaining returns a copy of the pending presentation order.
func (s *SessionQueue) Remaining() []string {
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

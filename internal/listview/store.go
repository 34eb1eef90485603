package listview

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/finoracle/backoffice/internal/shared"
)

// ErrStale marks a result whose request was superseded by a newer one.
var ErrStale = errors.New("listview: superseded by a newer request")

// Ticket identifies one list request in its (session, screen) sequence.
type Ticket struct {
	Key string
	Seq int64
}

// Store keeps list state in the session and refuses commits from stale requests.
type Store struct {
	seq Sequencer
}

// NewStore builds a Store. A nil sequencer falls back to process memory.
func NewStore(seq Sequencer) *Store {
	if seq == nil {
		seq = NewMemorySequencer()
	}
	return &Store{seq: seq}
}

func sessionKey(screen string) string {
	return "listview:" + screen
}

// Load returns the saved state for screen, or Default.
func (st *Store) Load(sess *shared.Session, screen string) State {
	if sess == nil {
		return Default()
	}
	raw := sess.Get(sessionKey(screen))
	if raw == "" {
		return Default()
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return Default()
	}
	return state.Normalize(nil)
}

// Begin issues the ticket for a new request on screen.
func (st *Store) Begin(ctx context.Context, sess *shared.Session, screen string) (Ticket, error) {
	key := screen
	if sess != nil {
		key = sess.ID + ":" + screen
	}
	n, err := st.seq.Next(ctx, key)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{Key: key, Seq: n}, nil
}

// Current reports whether no newer ticket has been issued since t.
func (st *Store) Current(ctx context.Context, t Ticket) (bool, error) {
	latest, err := st.seq.Latest(ctx, t.Key)
	if err != nil {
		return false, err
	}
	return latest <= t.Seq, nil
}

// Commit saves state when t is still the latest ticket; otherwise ErrStale.
func (st *Store) Commit(ctx context.Context, sess *shared.Session, screen string, t Ticket, state State) error {
	ok, err := st.Current(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStale
	}
	if sess == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if sess.Get(sessionKey(screen)) != string(raw) {
		sess.Set(sessionKey(screen), string(raw))
	}
	return nil
}

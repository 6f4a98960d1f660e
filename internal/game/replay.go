package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Replay records sequential state snapshots of one match for playback.
// Because the engine clones the state on every successful action, recorded
// snapshots are immutable and can be stored by reference.
type Replay struct {
	MatchID      string
	States       []*GameState
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for a match.
func NewReplay(matchID string) *Replay {
	return &Replay{MatchID: matchID}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(state *GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, state)
}

// Len returns the number of recorded snapshots.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.States)
}

// Start resets playback to the first snapshot.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Current returns the snapshot at the playback position.
func (r *Replay) Current() (*GameState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.States) {
		return nil, false
	}
	return r.States[r.CurrentIndex], true
}

// Next advances playback and returns the new snapshot.
func (r *Replay) Next() (*GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex+1 >= len(r.States) {
		return nil, false
	}
	r.CurrentIndex++
	return r.States[r.CurrentIndex], true
}

// Previous steps playback back and returns the new snapshot.
func (r *Replay) Previous() (*GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex <= 0 || len(r.States) == 0 {
		return nil, false
	}
	r.CurrentIndex--
	return r.States[r.CurrentIndex], true
}

// SaveToFile writes the replay as gzipped gob.
func (r *Replay) SaveToFile(path string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create replay directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create replay file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	defer zw.Close()

	payload := struct {
		MatchID string
		States  []*GameState
	}{MatchID: r.MatchID, States: r.States}

	if err := gob.NewEncoder(zw).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(path string) (*Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay stream: %w", err)
	}
	defer zr.Close()

	var payload struct {
		MatchID string
		States  []*GameState
	}
	if err := gob.NewDecoder(zr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}

	return &Replay{MatchID: payload.MatchID, States: payload.States}, nil
}

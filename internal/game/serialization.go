package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

func init() {
	// Metadata values travel through gob as interface{}.
	gob.Register(MatchResult{})
	gob.Register(map[string]interface{}{})
}

// StateChecksum is a deterministic fingerprint of a game state. Checksums
// guard against divergent states across replays or network transmission.
type StateChecksum struct {
	Hash      string // SHA-256 hash of the canonical representation
	Timestamp string // ISO timestamp when the checksum was computed
	Version   int    // serialization version, for forward compatibility
}

// ComputeChecksum hashes a canonical representation of the state. Maps are
// sorted so the result is independent of iteration order.
func (s *GameState) ComputeChecksum() (*StateChecksum, error) {
	canonical := s.buildCanonicalRepresentation()

	hash := sha256.New()
	if _, err := hash.Write([]byte(canonical)); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &StateChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   1,
	}, nil
}

// buildCanonicalRepresentation renders the state as a stable string. Player
// order and deck order are gameplay-significant and kept as-is; board cells
// are sorted by position.
func (s *GameState) buildCanonicalRepresentation() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("MATCH:%s|%s|%s|%d|%d|%d|%s\n",
		s.ID,
		s.Phase,
		s.TurnPhase,
		s.CurrentPlayerIndex,
		s.TurnCounter,
		s.ActionsRemaining,
		s.FinalTurnTriggeredBy,
	))
	buf.WriteString("FINAL_PENDING:")
	buf.WriteString(strings.Join(s.FinalTurnPending, ","))
	buf.WriteString("\n")

	for _, p := range s.Players {
		buf.WriteString(fmt.Sprintf("PLAYER:%s|%s|%d|%t|%d|%d\n",
			p.ID,
			p.Name,
			p.Energy,
			p.Ready,
			len(p.Deck),
			len(p.Hand),
		))
		for _, id := range p.Hand {
			buf.WriteString(fmt.Sprintf("  HAND:%d\n", id))
		}
		for _, id := range p.Deck {
			buf.WriteString(fmt.Sprintf("  DECK:%d\n", id))
		}
		for _, scored := range p.ScorePile {
			buf.WriteString(fmt.Sprintf("  SCORED:%s|%d\n", scored.InstanceID, scored.DefinitionID))
		}
	}

	positions := make([]Position, 0, len(s.Board))
	for pos := range s.Board {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})

	for _, pos := range positions {
		writeCanonicalCard(&buf, "CELL", s.Board[pos])
	}

	return buf.String()
}

func writeCanonicalCard(buf *bytes.Buffer, tag string, card *GridCard) {
	buf.WriteString(fmt.Sprintf("%s:%s|%s|%d|%s|%t|%t|%t\n",
		tag,
		card.Position,
		card.InstanceID,
		card.DefinitionID,
		card.OwnerID,
		card.Exhausted,
		card.Detritus,
		card.Home,
	))
	for _, status := range card.StatusEffects {
		buf.WriteString(fmt.Sprintf("  STATUS:%s|%d|%s\n", status.Type, status.Duration, status.SourceID))
	}
	for _, attached := range card.Attachments {
		writeCanonicalCard(buf, "  ATTACHED", attached)
	}
}

// VerifyChecksum reports whether the state still matches a stored checksum.
func (s *GameState) VerifyChecksum(expected *StateChecksum) (bool, error) {
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes encodes the state with gob for persistence of finished
// matches and for network transmission.
func (s *GameState) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a gob-encoded game state.
func DeserializeFromBytes(data []byte) (*GameState, error) {
	var state GameState
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// ValidateSerializationRoundtrip checks that serialization loses no
// checksum-relevant data.
func ValidateSerializationRoundtrip(state *GameState) error {
	original, err := state.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}

	data, err := state.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}

	restored, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}

	restoredChecksum, err := restored.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute restored checksum: %w", err)
	}

	if original.Hash != restoredChecksum.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, restored=%s",
			original.Hash, restoredChecksum.Hash)
	}
	return nil
}

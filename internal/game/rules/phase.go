package rules

import "fmt"

// GamePhase represents the broad lifecycle phases of a match.
type GamePhase int

const (
	PhaseSetup GamePhase = iota
	PhasePlaying
	PhaseFinalTurn
	PhaseEnded
)

var gamePhaseNames = map[GamePhase]string{
	PhaseSetup:     "SETUP",
	PhasePlaying:   "PLAYING",
	PhaseFinalTurn: "FINAL_TURN",
	PhaseEnded:     "ENDED",
}

func (p GamePhase) String() string {
	if name, ok := gamePhaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// InProgress reports whether actions may still be processed.
func (p GamePhase) InProgress() bool {
	return p == PhasePlaying || p == PhaseFinalTurn
}

// TurnPhase represents the substates a player's turn cycles through.
type TurnPhase int

const (
	TurnPhaseReady TurnPhase = iota
	TurnPhaseDraw
	TurnPhaseAction
)

var turnPhaseNames = map[TurnPhase]string{
	TurnPhaseReady:  "READY",
	TurnPhaseDraw:   "DRAW",
	TurnPhaseAction: "ACTION",
}

func (p TurnPhase) String() string {
	if name, ok := turnPhaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TURN_PHASE_%d", int(p))
}

package seeder

import "fmt"

// Stage identifies a step of the seeding run. A run walks the stages in
// order inside one transaction; any failure moves it to StageAborted and
// rolls the transaction back.
type Stage string

const (
	StageIdle                  Stage = "idle"
	StagePurging               Stage = "purging"
	StageStaging               Stage = "staging"
	StageExtracting            Stage = "extracting"
	StageSelecting             Stage = "selecting"
	StageInsertingFacts        Stage = "inserting_facts"
	StageInsertingAssociations Stage = "inserting_associations"
	StageSynthesizingRatings   Stage = "synthesizing_ratings"
	StageCommitted             Stage = "committed"
	StageAborted               Stage = "aborted"
)

// stageTransitions encodes the only legal forward edges
var stageTransitions = map[Stage]Stage{
	StageIdle:                  StagePurging,
	StagePurging:               StageStaging,
	StageStaging:               StageExtracting,
	StageExtracting:            StageSelecting,
	StageSelecting:             StageInsertingFacts,
	StageInsertingFacts:        StageInsertingAssociations,
	StageInsertingAssociations: StageSynthesizingRatings,
	StageSynthesizingRatings:   StageCommitted,
}

// stateMachine tracks run progress and rejects out-of-order transitions
type stateMachine struct {
	current Stage
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StageIdle}
}

// Current returns the stage the run is in
func (m *stateMachine) Current() Stage {
	return m.current
}

// advance moves to the next stage; next must be the single legal
// successor of the current stage
func (m *stateMachine) advance(next Stage) error {
	if m.current == StageCommitted || m.current == StageAborted {
		return fmt.Errorf("run already finished in stage %s", m.current)
	}
	if stageTransitions[m.current] != next {
		return fmt.Errorf("illegal stage transition %s -> %s", m.current, next)
	}
	m.current = next
	return nil
}

// abort moves the run to the aborted state from any non-terminal stage
func (m *stateMachine) abort() {
	if m.current != StageCommitted {
		m.current = StageAborted
	}
}

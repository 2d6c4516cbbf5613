// Package blocks turns split points into narrative block records and owns
// the output data model handed to the rendering stage: role-tagged blocks
// with boundary scores, play-id unions, and key-play selections.
package blocks

import "github.com/okian/storyarc/internal/domain/game"

// Role is the semantic function a block plays in the game's story arc.
// Closed set; switches over Role must enumerate all variants.
type Role int

// Role variants. RoleUnassigned is the pre-assignment zero value and never
// appears in a finished output.
const (
	RoleUnassigned Role = iota
	RoleSetup
	RoleMomentumShift
	RoleResponse
	RoleDecisionPoint
	RoleResolution
)

// String returns the role name used in logs and serialized output.
func (r Role) String() string {
	switch r {
	case RoleSetup:
		return "SETUP"
	case RoleMomentumShift:
		return "MOMENTUM_SHIFT"
	case RoleResponse:
		return "RESPONSE"
	case RoleDecisionPoint:
		return "DECISION_POINT"
	case RoleResolution:
		return "RESOLUTION"
	case RoleUnassigned:
		return "UNASSIGNED"
	default:
		return "UNASSIGNED"
	}
}

// Block is one contiguous run of moments with a single narrative role.
// MomentStart/MomentEnd are a half-open [start, end) index range into the
// input sequence; together the blocks of an output partition it exactly.
type Block struct {
	Index int  `json:"block_index"`
	Role  Role `json:"role"`

	MomentStart int `json:"moment_start"`
	MomentEnd   int `json:"moment_end"`

	PeriodStart int `json:"period_start"`
	PeriodEnd   int `json:"period_end"`

	ScoreBefore game.Score `json:"score_before"`
	ScoreAfter  game.Score `json:"score_after"`

	// PlayIDs is the order-preserving union of all member moments' play
	// ids; KeyPlayIDs is its priority-ranked 1-3 element subset.
	PlayIDs    []int `json:"play_ids"`
	KeyPlayIDs []int `json:"key_play_ids"`

	// MiniBox is an opaque statistical payload attached by an external
	// collaborator; the engine never interprets it.
	MiniBox any `json:"mini_box,omitempty"`

	// Narrative is populated downstream, never here.
	Narrative *string `json:"narrative"`
}

// MomentCount returns the number of moments in the block.
func (b Block) MomentCount() int {
	return b.MomentEnd - b.MomentStart
}

// Contains reports whether the moment index falls inside the block.
func (b Block) Contains(momentIndex int) bool {
	return momentIndex >= b.MomentStart && momentIndex < b.MomentEnd
}

// Output is the engine's result for one game.
type Output struct {
	Blocks       []Block `json:"blocks"`
	BlockCount   int     `json:"block_count"`
	TotalMoments int     `json:"total_moments"`
	LeadChanges  int     `json:"lead_changes"`
	LargestRun   int     `json:"largest_run"`
}

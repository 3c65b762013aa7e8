package run

// Thread title prefixes used when a run is finalized.
const (
	SymbolVerified = "✅"
	SymbolRejected = "❌"
	SymbolRemoved  = "🗑️"
)

// SweepAction is the decision taken for one sweep candidate.
type SweepAction int

const (
	// SweepSkip leaves the record untouched this cycle.
	SweepSkip SweepAction = iota
	// SweepFinalize renames+archives the thread with the outcome symbol.
	SweepFinalize
	// SweepRemove posts a removal notice, then finalizes with SymbolRemoved.
	SweepRemove
)

func (a SweepAction) String() string {
	switch a {
	case SweepFinalize:
		return "finalize"
	case SweepRemove:
		return "remove"
	default:
		return "skip"
	}
}

// SweepInput contains the pre-fetched source view of a sweep candidate.
type SweepInput struct {
	Status  ExternalState
	Removed bool // the source reported the submission no longer exists
}

// SweepPlan describes what the sweep should do for one candidate.
type SweepPlan struct {
	Action  SweepAction
	Outcome ExternalState
	Symbol  string
}

// PlanSweep decides the sweep action for a candidate.
// This is a pure function - the source lookup must already have happened.
func PlanSweep(in SweepInput) SweepPlan {
	if in.Removed {
		return SweepPlan{Action: SweepRemove, Outcome: ExternalRemoved, Symbol: SymbolRemoved}
	}
	switch in.Status {
	case ExternalVerified:
		return SweepPlan{Action: SweepFinalize, Outcome: ExternalVerified, Symbol: SymbolVerified}
	case ExternalRejected:
		return SweepPlan{Action: SweepFinalize, Outcome: ExternalRejected, Symbol: SymbolRejected}
	default:
		// New, or a status we could not parse.
		return SweepPlan{Action: SweepSkip}
	}
}

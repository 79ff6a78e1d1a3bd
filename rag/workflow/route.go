package workflow

import "github.com/sweetpotato0/radsafe/graph"

// next is the transition function. It only reads the state and the static
// configuration.
func (w *Workflow) next(from graph.Step, r *run) graph.Step {
	switch from {
	case StepRetrieve:
		return StepGradeSufficiency
	case StepGradeSufficiency:
		if r.WebSearch && w.cfg.WebSearchEnabled {
			return StepRetrieveMissing
		}
		return StepGenerate
	case StepRetrieveMissing:
		if r.SufficientAfterMissing {
			return StepGenerate
		}
		return StepWebSearch
	case StepWebSearch:
		return StepGenerate
	case StepGenerate:
		return w.afterGenerate(&r.State)
	case StepVerifyTrusted:
		return StepFinalize
	default:
		return StepDone
	}
}

// afterGenerate returns to web search once when the answer is not grounded
// or does not answer the question; everything else goes to verification.
func (w *Workflow) afterGenerate(s *State) graph.Step {
	if s.Grade.Grounded && s.Grade.AnswersQuestion {
		return StepVerifyTrusted
	}
	if w.cfg.WebSearchEnabled && !s.WebSearchAttempted {
		return StepWebSearch
	}
	return StepVerifyTrusted
}

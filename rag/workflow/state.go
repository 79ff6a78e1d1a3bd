package workflow

import (
	"github.com/sweetpotato0/radsafe/graph"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/generator"
	"github.com/sweetpotato0/radsafe/rag/grader"
	"github.com/sweetpotato0/radsafe/rag/rewrite"
)

// Steps of the answer workflow.
const (
	StepRetrieve         graph.Step = "retrieve"
	StepGradeSufficiency graph.Step = "grade_sufficiency"
	StepRetrieveMissing  graph.Step = "retrieve_missing"
	StepWebSearch        graph.Step = "web_search"
	StepGenerate         graph.Step = "generate"
	StepVerifyTrusted    graph.Step = "verify_trusted"
	StepFinalize         graph.Step = "finalize"
	StepDone             graph.Step = "done"
)

// State is the request-scoped data every step reads and writes. Steps run
// strictly one after another, so State needs no locking.
type State struct {
	Question string
	History  []message.Turn

	// Documents is the working context used for generation and grading.
	Documents []document.Chunk
	// TrustedDocuments only ever receives corpus chunks. Results of the
	// open web search are never added.
	TrustedDocuments []document.Chunk

	Generation string
	// Grade is the combined grading of Generation, recorded by the generate
	// step so routing stays a pure function of State.
	Grade grader.GenerationScore

	WebSearch              bool
	WebSearchAttempted     bool
	SufficientAfterMissing bool
	TrustedVerified        bool
	Warning                string
}

// Clone returns a copy of s whose slices can be kept after the run goes on.
func (s State) Clone() State {
	out := s
	out.History = append([]message.Turn(nil), s.History...)
	out.Documents = append([]document.Chunk(nil), s.Documents...)
	out.TrustedDocuments = append([]document.Chunk(nil), s.TrustedDocuments...)
	return out
}

// Input is one call of the workflow.
type Input struct {
	Question string
	History  []message.Turn
	// LLM serves every grading, rewriting and generation call of the run so
	// all of them use the model the caller selected.
	LLM llm.Client
}

// Result is what a run hands back to the caller.
type Result struct {
	Generation       string
	Documents        []document.Chunk
	TrustedDocuments []document.Chunk
	History          []message.Turn
	// Warning is localized to the question's language; empty means none.
	Warning         string
	UsedWebSearch   bool
	TrustedVerified bool
	Path            []graph.Step
}

// run bundles the state with the collaborators bound to the request's model.
type run struct {
	State
	// prior is the caller's history; State.History gains the current turn.
	prior     []message.Turn
	grader    *grader.Grader
	rewriter  *rewrite.Rewriter
	generator *generator.Generator
}

func newResult(s *State, path []graph.Step) *Result {
	return &Result{
		Generation:       s.Generation,
		Documents:        s.Documents,
		TrustedDocuments: s.TrustedDocuments,
		History:          s.History,
		Warning:          s.Warning,
		UsedWebSearch:    s.WebSearchAttempted,
		TrustedVerified:  s.TrustedVerified,
		Path:             path,
	}
}

// Package pipeline drives a question through the four-stage answering
// sequence: understand the query, retrieve evidence, generate a grounded
// answer, finalize the response. Routing between stages is a data table in
// the orchestrator; stages only report outcomes.
package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/model"
)

// Outcome is the closed set of results a stage can report. Stages are
// total: every execution maps to exactly one outcome, including internal
// failures, which are absorbed into NeedsClarification or Fatal with a
// user-safe message on the state.
type Outcome int

const (
	// OutcomeContinue hands the state to the next stage in the sequence.
	OutcomeContinue Outcome = iota
	// OutcomeNeedsClarification short-circuits to finalization with a
	// clarification message for the user.
	OutcomeNeedsClarification
	// OutcomeFatal short-circuits to finalization after an unrecoverable
	// stage failure.
	OutcomeFatal
	// OutcomeDone marks the terminal stage as finished.
	OutcomeDone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeNeedsClarification:
		return "needs_clarification"
	case OutcomeFatal:
		return "fatal"
	case OutcomeDone:
		return "done"
	default:
		return "unknown"
	}
}

// StageID identifies a pipeline stage in the transition table and in logs.
type StageID int

const (
	StageUnderstand StageID = iota
	StageRetrieve
	StageGenerate
	StageFinalize
	// stageTerminal is the sentinel target that ends the run.
	stageTerminal
)

func (s StageID) String() string {
	switch s {
	case StageUnderstand:
		return "query_understanding"
	case StageRetrieve:
		return "evidence_retrieval"
	case StageGenerate:
		return "answer_generation"
	case StageFinalize:
		return "finalization"
	case stageTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Stage is one unit of the request pipeline. Execute receives the state by
// value and returns the updated copy together with an outcome; it must
// never panic or return an error to the orchestrator.
type Stage interface {
	ID() StageID
	Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome)
}

// ================ Collaborator contracts ================

// EntityExtractor is the entity-extraction collaborator. Best effort: it
// may fail or return zero entities, and neither is fatal to the pipeline.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]model.Entity, error)
}

// Searcher is the evidence-retrieval collaborator. Results are ranked,
// best-effort top-K, already filtered by tenant and category allow-list.
type Searcher interface {
	Search(ctx context.Context, query, tenantID string, categories []string) ([]model.Document, error)
}

// AnswerGenerator is the answer-generation collaborator. The session ID
// lets implementations pull conversational context from chat history; the
// confidence level is assigned by the calling stage, not the generator.
type AnswerGenerator interface {
	Generate(ctx context.Context, sessionID, query string, docs []model.Document) (*model.AnswerDraft, error)
}

// ================ User-facing stage messages ================

const (
	msgRephrase = "I couldn't quite understand that. Could you rephrase your question?"
	msgNoEvidence = "I couldn't find anything in the agreements that matches your question. " +
		"Could you ask about a specific document, clause, or topic?"
	msgRetry        = "I ran into a problem while answering your question. Please try again in a moment."
	msgMoreSpecific = "Could you share more detail about what you're looking for so I can give a precise answer?"
	msgApology      = "Sorry, something went wrong while processing your request. Please try again."
)

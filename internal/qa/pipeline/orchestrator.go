package pipeline

import (
	"context"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
	"github.com/google/uuid"
)

// maxStageExecutions is the hard ceiling on stage runs per request. The
// transition table cannot express a cycle today, but the ceiling guards
// against a misconfigured table ever creating one.
const maxStageExecutions = 10

// Orchestrator drives the stage sequence. Routing is the transition table
// and nothing else; stages report outcomes and never choose their
// successor. Each ProcessRequest call owns its RequestState exclusively, so
// concurrent requests share no mutable state.
type Orchestrator struct {
	stages      map[StageID]Stage
	transitions map[StageID]map[Outcome]StageID
}

// NewOrchestrator wires the four concrete stages into the default
// transition table.
func NewOrchestrator(understand, retrieve, generate, finalize Stage) *Orchestrator {
	return &Orchestrator{
		stages: map[StageID]Stage{
			StageUnderstand: understand,
			StageRetrieve:   retrieve,
			StageGenerate:   generate,
			StageFinalize:   finalize,
		},
		transitions: defaultTransitions(),
	}
}

// defaultTransitions is the routing table: clarification and fatal outcomes
// always land on finalization, which is the only stage allowed to end the
// run.
func defaultTransitions() map[StageID]map[Outcome]StageID {
	return map[StageID]map[Outcome]StageID{
		StageUnderstand: {
			OutcomeContinue:           StageRetrieve,
			OutcomeNeedsClarification: StageFinalize,
			OutcomeFatal:              StageFinalize,
		},
		StageRetrieve: {
			OutcomeContinue:           StageGenerate,
			OutcomeNeedsClarification: StageFinalize,
			OutcomeFatal:              StageFinalize,
		},
		StageGenerate: {
			OutcomeContinue:           StageFinalize,
			OutcomeNeedsClarification: StageFinalize,
			OutcomeFatal:              StageFinalize,
		},
		StageFinalize: {
			OutcomeDone: stageTerminal,
		},
	}
}

// ProcessRequest is the single public entry point: it always returns a
// well-formed response, whatever the collaborators do.
func (o *Orchestrator) ProcessRequest(ctx context.Context, req model.QueryRequest) *model.QueryResponse {
	return o.process(ctx, req, nil)
}

// ProcessRequestStream behaves like ProcessRequest but additionally emits
// typed progress events to the sink: a status event per stage, a chat event
// when an answer is produced, and a terminal completion or error event. The
// sink is responsible for serialising concurrent writers.
func (o *Orchestrator) ProcessRequestStream(ctx context.Context, req model.QueryRequest, sink model.EventSink) *model.QueryResponse {
	return o.process(ctx, req, sink)
}

func (o *Orchestrator) process(ctx context.Context, req model.QueryRequest, sink model.EventSink) *model.QueryResponse {
	sessionID := req.ThreadID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state := model.RequestState{
		SessionID: sessionID,
		InputText: req.Prompt,
		TenantID:  req.TenantID,
		UserID:    req.UserID,
	}

	current := StageUnderstand
	steps := 0
	for current != stageTerminal {
		steps++
		if steps > maxStageExecutions {
			logx.Error().
				Str("session_id", sessionID).
				Int("steps", steps).
				Msg("Pipeline step ceiling exceeded")
			return o.fatalResponse(sessionID, sink)
		}

		// Cancellation is honored at stage boundaries: a cancelled request
		// still finalizes so the caller gets a well-formed response.
		if ctx.Err() != nil && current != StageFinalize {
			state = state.WithClarification(msgRetry)
			current = StageFinalize
			continue
		}

		stage, ok := o.stages[current]
		if !ok {
			logx.Error().
				Str("session_id", sessionID).
				Str("stage", current.String()).
				Msg("No stage registered for id")
			return o.fatalResponse(sessionID, sink)
		}

		emit(sink, model.NewStatusEvent(stage.ID().String()))

		var outcome Outcome
		state, outcome = o.safeExecute(ctx, stage, state)

		logx.Debug().
			Str("session_id", sessionID).
			Str("stage", stage.ID().String()).
			Str("outcome", outcome.String()).
			Msg("Stage executed")

		next, routed := o.transitions[current][outcome]
		if !routed {
			logx.Error().
				Str("session_id", sessionID).
				Str("stage", current.String()).
				Str("outcome", outcome.String()).
				Msg("Unroutable stage outcome")
			return o.fatalResponse(sessionID, sink)
		}
		current = next
	}

	if state.Response == nil {
		// Finalization guarantees a response; this is belt-and-braces for a
		// misregistered terminal stage.
		return o.fatalResponse(sessionID, sink)
	}

	if state.GeneratedAnswer != nil && !state.NeedsClarification {
		emit(sink, model.NewChatEvent(state.GeneratedAnswer.Text))
	}
	emit(sink, model.NewCompletionEvent(state.Response))
	return state.Response
}

// safeExecute shields the orchestrator from a panicking stage; a panic is
// absorbed into a fatal outcome with the generic apology.
func (o *Orchestrator) safeExecute(ctx context.Context, stage Stage, state model.RequestState) (out model.RequestState, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().
				Str("session_id", state.SessionID).
				Str("stage", stage.ID().String()).
				Interface("panic", r).
				Msg("Stage panicked")
			out = state.WithClarification(msgApology)
			outcome = OutcomeFatal
		}
	}()
	return stage.Execute(ctx, state)
}

// fatalResponse is the generic apology for the only truly fatal condition;
// it must never crash the host process.
func (o *Orchestrator) fatalResponse(sessionID string, sink model.EventSink) *model.QueryResponse {
	resp := &model.QueryResponse{
		SessionID:           sessionID,
		Response:            msgApology,
		ExtractedEntities:   []model.Entity{},
		RelevantDocuments:   []model.DocumentSummary{},
		Citations:           []model.Citation{},
		ConfidenceLevel:     model.ConfidenceLow,
		FollowUpSuggestions: []string{},
	}
	emit(sink, model.NewErrorEvent(msgApology))
	emit(sink, model.NewCompletionEvent(resp))
	return resp
}

func emit(sink model.EventSink, event model.StreamEvent) {
	if sink != nil {
		sink.Emit(event)
	}
}

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/covenant-qa/server/internal/qa/citation"
	"github.com/covenant-qa/server/internal/qa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ================ Fakes ================

type fakeExtractor struct {
	entities []model.Entity
	err      error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) ([]model.Entity, error) {
	return f.entities, f.err
}

type fakeSearcher struct {
	docs   []model.Document
	err    error
	called bool
}

func (f *fakeSearcher) Search(ctx context.Context, query, tenantID string, categories []string) ([]model.Document, error) {
	f.called = true
	return f.docs, f.err
}

type fakeGenerator struct {
	draft  *model.AnswerDraft
	err    error
	called bool
}

func (f *fakeGenerator) Generate(ctx context.Context, sessionID, query string, docs []model.Document) (*model.AnswerDraft, error) {
	f.called = true
	return f.draft, f.err
}

type panicStage struct{ id StageID }

func (p *panicStage) ID() StageID { return p.id }

func (p *panicStage) Execute(ctx context.Context, state model.RequestState) (model.RequestState, Outcome) {
	panic("boom")
}

type collectorSink struct {
	events []model.StreamEvent
}

func (c *collectorSink) Emit(event model.StreamEvent) {
	c.events = append(c.events, event)
}

// ================ Helpers ================

func evidenceDoc(id string) model.Document {
	return model.Document{
		ID:       id,
		Title:    "Partner Revenue Sharing Agreement",
		Content:  "Tier 1 (Strategic Partners): 30% of net revenue, paid monthly.",
		Category: "partnership",
		TenantID: "tenant-a",
		Score:    0.9,
	}
}

func newTestOrchestrator(extractor EntityExtractor, searcher Searcher, generator AnswerGenerator) *Orchestrator {
	engine := citation.NewEngine(citation.DefaultParams())
	return NewOrchestrator(
		NewUnderstandStage(extractor),
		NewRetrieveStage(searcher, []string{"partnership", "pricing"}),
		NewGenerateStage(generator, engine),
		NewFinalizeStage(),
	)
}

func happyRequest() model.QueryRequest {
	return model.QueryRequest{
		ThreadID: "thread-1",
		Prompt:   "What are the revenue sharing percentages?",
		UserID:   "user-1",
		TenantID: "tenant-a",
	}
}

// ================ Orchestrator ================

func TestProcessRequestHappyPath(t *testing.T) {
	gen := &fakeGenerator{draft: &model.AnswerDraft{
		Text:       "Tier 1 partners receive 30% of net revenue.",
		IsComplete: true,
		FollowUps:  []string{"Ask about Tier 2 rates"},
	}}
	o := newTestOrchestrator(
		&fakeExtractor{entities: []model.Entity{{Text: "revenue sharing", Type: "topic", Confidence: 0.9}}},
		&fakeSearcher{docs: []model.Document{evidenceDoc("doc-1"), evidenceDoc("doc-2")}},
		gen,
	)

	resp := o.ProcessRequest(context.Background(), happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, "thread-1", resp.SessionID)
	assert.Equal(t, "Tier 1 partners receive 30% of net revenue.", resp.Response)
	assert.Equal(t, model.ConfidenceHigh, resp.ConfidenceLevel)
	assert.True(t, resp.HasCompleteAnswer)
	assert.Len(t, resp.RelevantDocuments, 2)
	assert.NotEmpty(t, resp.Citations)
	assert.Equal(t, []string{"Ask about Tier 2 rates"}, resp.FollowUpSuggestions)
}

func TestProcessRequestTotalResponseWhenEverythingFails(t *testing.T) {
	o := newTestOrchestrator(
		&fakeExtractor{err: errors.New("model down")},
		&fakeSearcher{err: errors.New("index down")},
		&fakeGenerator{err: errors.New("model down")},
	)

	resp := o.ProcessRequest(context.Background(), happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, msgRephrase, resp.Response)
	assert.Empty(t, resp.RelevantDocuments)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, model.ConfidenceLow, resp.ConfidenceLevel)
}

func TestProcessRequestShortCircuitOnNoEvidence(t *testing.T) {
	gen := &fakeGenerator{draft: &model.AnswerDraft{Text: "should never run", IsComplete: true}}
	searcher := &fakeSearcher{}
	o := newTestOrchestrator(
		&fakeExtractor{entities: []model.Entity{{Text: "revenue", Type: "topic", Confidence: 0.8}}},
		searcher,
		gen,
	)

	resp := o.ProcessRequest(context.Background(), happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, msgNoEvidence, resp.Response)
	assert.Empty(t, resp.RelevantDocuments)
	assert.True(t, searcher.called)
	assert.False(t, gen.called, "answer generation must not run without evidence")
}

func TestProcessRequestConfidenceMapping(t *testing.T) {
	cases := []struct {
		name string
		docs []model.Document
		want model.ConfidenceLevel
	}{
		{"two documents", []model.Document{evidenceDoc("a"), evidenceDoc("b")}, model.ConfidenceHigh},
		{"one document", []model.Document{evidenceDoc("a")}, model.ConfidenceMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newTestOrchestrator(
				&fakeExtractor{entities: []model.Entity{{Text: "revenue", Type: "topic", Confidence: 0.8}}},
				&fakeSearcher{docs: tc.docs},
				&fakeGenerator{draft: &model.AnswerDraft{Text: "Partners receive 30% of net revenue.", IsComplete: true}},
			)

			resp := o.ProcessRequest(context.Background(), happyRequest())
			assert.Equal(t, tc.want, resp.ConfidenceLevel)
		})
	}
}

func TestProcessRequestGeneratesSessionID(t *testing.T) {
	o := newTestOrchestrator(
		&fakeExtractor{err: errors.New("down")},
		&fakeSearcher{},
		&fakeGenerator{},
	)

	resp := o.ProcessRequest(context.Background(), model.QueryRequest{Prompt: "hello"})
	assert.NotEmpty(t, resp.SessionID)
}

func TestProcessRequestStepCeiling(t *testing.T) {
	// A deliberately cyclic table: understand routes back to itself.
	o := &Orchestrator{
		stages: map[StageID]Stage{
			StageUnderstand: NewUnderstandStage(&fakeExtractor{entities: []model.Entity{{Text: "x", Type: "topic", Confidence: 0.5}}}),
			StageFinalize:   NewFinalizeStage(),
		},
		transitions: map[StageID]map[Outcome]StageID{
			StageUnderstand: {OutcomeContinue: StageUnderstand},
			StageFinalize:   {OutcomeDone: stageTerminal},
		},
	}

	resp := o.ProcessRequest(context.Background(), happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, msgApology, resp.Response)
}

func TestProcessRequestSurvivesPanickingStage(t *testing.T) {
	o := &Orchestrator{
		stages: map[StageID]Stage{
			StageUnderstand: &panicStage{id: StageUnderstand},
			StageFinalize:   NewFinalizeStage(),
		},
		transitions: defaultTransitions(),
	}

	resp := o.ProcessRequest(context.Background(), happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, msgApology, resp.Response)
}

func TestProcessRequestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(
		&fakeExtractor{entities: []model.Entity{{Text: "revenue", Type: "topic", Confidence: 0.8}}},
		&fakeSearcher{docs: []model.Document{evidenceDoc("a")}},
		&fakeGenerator{draft: &model.AnswerDraft{Text: "x", IsComplete: true}},
	)

	resp := o.ProcessRequest(ctx, happyRequest())

	require.NotNil(t, resp)
	assert.Equal(t, msgRetry, resp.Response)
}

func TestProcessRequestStreamEventOrdering(t *testing.T) {
	sink := &collectorSink{}
	o := newTestOrchestrator(
		&fakeExtractor{entities: []model.Entity{{Text: "revenue", Type: "topic", Confidence: 0.9}}},
		&fakeSearcher{docs: []model.Document{evidenceDoc("a"), evidenceDoc("b")}},
		&fakeGenerator{draft: &model.AnswerDraft{Text: "Partners receive 30% of net revenue.", IsComplete: true}},
	)

	resp := o.ProcessRequestStream(context.Background(), happyRequest(), sink)

	require.NotNil(t, resp)
	require.NotEmpty(t, sink.events)
	assert.Equal(t, model.EventStatus, sink.events[0].Type)

	completions := 0
	for _, ev := range sink.events {
		if ev.Type == model.EventCompletion {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
	assert.Equal(t, model.EventCompletion, sink.events[len(sink.events)-1].Type)
}

// ================ Stages ================

func TestUnderstandStageFallsBackToPlaceholder(t *testing.T) {
	stage := NewUnderstandStage(&fakeExtractor{entities: nil})

	state, outcome := stage.Execute(context.Background(), model.RequestState{
		SessionID: "s", InputText: "What about termination clauses?",
	})

	assert.Equal(t, OutcomeContinue, outcome)
	require.Len(t, state.ExtractedEntities, 1)
	assert.Equal(t, placeholderEntityType, state.ExtractedEntities[0].Type)
	assert.Equal(t, placeholderEntityConfidence, state.ExtractedEntities[0].Confidence)
}

func TestUnderstandStageDropsInvalidEntities(t *testing.T) {
	stage := NewUnderstandStage(&fakeExtractor{entities: []model.Entity{
		{Text: "", Type: "topic", Confidence: 0.5},
		{Text: "ok", Type: "topic", Confidence: 1.5},
		{Text: "valid", Type: "", Confidence: 0.7},
	}})

	state, outcome := stage.Execute(context.Background(), model.RequestState{InputText: "q"})

	assert.Equal(t, OutcomeContinue, outcome)
	require.Len(t, state.ExtractedEntities, 1)
	assert.Equal(t, "valid", state.ExtractedEntities[0].Text)
	assert.Equal(t, placeholderEntityType, state.ExtractedEntities[0].Type)
}

func TestGenerateStageLowConfidenceIncomplete(t *testing.T) {
	engine := citation.NewEngine(citation.DefaultParams())
	stage := NewGenerateStage(&fakeGenerator{draft: &model.AnswerDraft{
		Text:       "I am not sure about that.",
		IsComplete: false,
	}}, engine)

	// No evidence documents: confidence is low by the total rule.
	state, outcome := stage.Execute(context.Background(), model.RequestState{
		SessionID: "s", InputText: "q",
	})

	assert.Equal(t, OutcomeNeedsClarification, outcome)
	assert.True(t, state.NeedsClarification)
	assert.Contains(t, state.ClarificationText, "I am not sure about that.")
	assert.Contains(t, state.ClarificationText, msgMoreSpecific)
}

func TestClarificationIsSticky(t *testing.T) {
	state := model.RequestState{}.WithClarification("first")
	state = state.WithClarification("second")

	assert.True(t, state.NeedsClarification)
	assert.Equal(t, "first", state.ClarificationText)
}

func TestTransitionTableIsComplete(t *testing.T) {
	table := defaultTransitions()

	for _, id := range []StageID{StageUnderstand, StageRetrieve, StageGenerate} {
		for _, outcome := range []Outcome{OutcomeContinue, OutcomeNeedsClarification, OutcomeFatal} {
			_, ok := table[id][outcome]
			assert.True(t, ok, "stage %s lacks a route for %s", id, outcome)
		}
	}
	next, ok := table[StageFinalize][OutcomeDone]
	require.True(t, ok)
	assert.Equal(t, stageTerminal, next)
}

package model

// RequestState carries everything a request accumulates while it moves
// through the pipeline. It is created once per incoming request, owned by a
// single orchestrator invocation, and discarded after the response is
// produced. Stages receive it by value and return an updated copy, so no
// stage ever observes another stage's in-progress mutation.
//
// Invariant: once NeedsClarification is set it is never cleared; the
// orchestrator routes such a state directly to finalization.
type RequestState struct {
	SessionID string
	InputText string
	TenantID  string
	UserID    string

	ExtractedEntities  []Entity
	EvidenceDocuments  []Document
	GeneratedAnswer    *GeneratedAnswer
	NeedsClarification bool
	ClarificationText  string

	Response *QueryResponse
}

// WithEntities returns a copy of the state with extracted entities attached.
func (s RequestState) WithEntities(entities []Entity) RequestState {
	s.ExtractedEntities = entities
	return s
}

// WithDocuments returns a copy of the state with evidence documents attached.
func (s RequestState) WithDocuments(docs []Document) RequestState {
	s.EvidenceDocuments = docs
	return s
}

// WithAnswer returns a copy of the state with the generated answer attached.
func (s RequestState) WithAnswer(answer *GeneratedAnswer) RequestState {
	s.GeneratedAnswer = answer
	return s
}

// WithClarification returns a copy of the state flagged for clarification.
// The first clarification wins; later calls keep the original text.
func (s RequestState) WithClarification(text string) RequestState {
	if s.NeedsClarification {
		return s
	}
	s.NeedsClarification = true
	s.ClarificationText = text
	return s
}

// WithResponse returns a copy of the state with the outward response set.
func (s RequestState) WithResponse(resp *QueryResponse) RequestState {
	s.Response = resp
	return s
}

package model

// ================ Config ================

type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
}

type ExtractionModelConfig struct {
	Model       string  `envconfig:"EXTRACTION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTION_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"EXTRACTION_TEMPERATURE" default:"0.1"`
}

type GenerationModelConfig struct {
	Model       string  `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GENERATION_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GENERATION_TEMPERATURE" default:"0.2"`
}

type RetrievalConfig struct {
	TopK              int    `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	AllowedCategories string `envconfig:"RETRIEVAL_ALLOWED_CATEGORIES" default:"partnership,pricing,compliance,licensing,termination"`
	CorpusDir         string `envconfig:"CORPUS_DIR" default:"./corpus"`
	IndexPath         string `envconfig:"INDEX_PATH" default:"./data"`
	WatchCorpus       bool   `envconfig:"CORPUS_WATCH" default:"true"`
}

// CitationConfig carries the scoring constants of the citation engine.
// The weights and cutoff are inherited behaviour; they are configuration
// rather than code so deployments can tune them without a rebuild.
type CitationConfig struct {
	QueryWeight    float64 `envconfig:"CITATION_QUERY_WEIGHT" default:"0.6"`
	AnswerWeight   float64 `envconfig:"CITATION_ANSWER_WEIGHT" default:"0.4"`
	MinScore       float64 `envconfig:"CITATION_MIN_SCORE" default:"0.1"`
	MaxExcerpts    int     `envconfig:"CITATION_MAX_EXCERPTS" default:"3"`
	ExcerptLength  int     `envconfig:"CITATION_EXCERPT_LENGTH" default:"200"`
	ContextWindow  int     `envconfig:"CITATION_CONTEXT_WINDOW" default:"50"`
	MaxPerDocument int     `envconfig:"CITATION_MAX_PER_DOCUMENT" default:"3"`
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}

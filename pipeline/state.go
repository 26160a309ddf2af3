package pipeline

import "github.com/sweetpotato0/docqa/rank"

// QueryAnalysis is the structured breakdown produced by the analyze stage.
type QueryAnalysis struct {
	InformationNeeded []string `json:"information_needed"`
	TimePeriods       []string `json:"time_periods"`
	MetricsRequested  []string `json:"metrics_requested"`
	InferenceRequired bool     `json:"inference_required"`
	SearchStrategy    string   `json:"search_strategy"`
}

// EvidenceItem is either one tool step (Action/Input/Observation) or the
// agent's closing record (Type "final_output" with Content). The final-output
// record is always last.
type EvidenceItem struct {
	Type        string `json:"type,omitempty"`
	Action      string `json:"action,omitempty"`
	Input       string `json:"input,omitempty"`
	Observation string `json:"observation,omitempty"`
	Content     string `json:"content,omitempty"`
}

// State is threaded through the four stages. OriginalQuery is set once at
// entry; each stage fills exactly its own fields.
type State struct {
	OriginalQuery  string        `json:"original_query"`
	Analysis       *QueryAnalysis `json:"query_analysis,omitempty"`
	FileScores     rank.Ranking  `json:"file_scores,omitempty"`
	Evidence       []EvidenceItem `json:"evidence,omitempty"`
	ReasoningTrace string        `json:"reasoning_trace,omitempty"`
	FinalAnswer    string        `json:"final_answer,omitempty"`
}

// Result is what the caller receives on success.
type Result struct {
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

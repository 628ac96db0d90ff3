package domain

import "time"

// CRIAnalysis is the complexity/risk metric block produced by the scoring
// service.
type CRIAnalysis struct {
	CRINormalized float64 `json:"cri_normalized"`
	RiskLevel     string  `json:"risk_level"`
}

// TSMAnalysis is the skill-match metric block produced by the scoring
// service.
type TSMAnalysis struct {
	TSMScore float64 `json:"tsm_score"`
}

// Candidate is one ranked alternative assignee from the scoring service.
type Candidate struct {
	Engineer string  `json:"engineer"`
	TSMScore float64 `json:"tsm_score"`
}

// AIAnalysis is the scoring result retained on a request. It survives a
// manual override; Overridden marks that the assignment no longer follows
// the recommendation.
type AIAnalysis struct {
	AssignmentScore float64      `json:"assignmentScore"`
	CRI             *CRIAnalysis `json:"cri,omitempty"`
	TSM             *TSMAnalysis `json:"tsm,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Overridden      bool         `json:"overridden,omitempty"`
	OverriddenBy    string       `json:"overriddenBy,omitempty"`
	OverriddenAt    *time.Time   `json:"overriddenAt,omitempty"`
}

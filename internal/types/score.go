// Package types provides type definitions for structured data used throughout resumesculpt.
package types

// Weights of the four scoring components. They are part of the scoring
// contract: the overall score is always their weighted combination.
const (
	KeywordWeight    = 0.40
	SkillsWeight     = 0.30
	ExperienceWeight = 0.20
	FormattingWeight = 0.10
)

// Match levels bucketed from the overall score.
const (
	MatchExcellent = "Excellent"
	MatchGood      = "Good"
	MatchFair      = "Fair"
	MatchPoor      = "Poor"
)

// Likelihood of passing a real ATS screen.
const (
	LikelihoodHigh   = "High"
	LikelihoodMedium = "Medium"
	LikelihoodLow    = "Low"
)

// JobDescription is the structured form of a free-text job description.
// Immutable once produced by the normalizer.
type JobDescription struct {
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
}

// KeywordAnalysis is the 40%-weighted keyword component of a detailed score.
type KeywordAnalysis struct {
	Score                    float64  `json:"score"`
	MatchedKeywords          []string `json:"matched_keywords"`
	MissingCriticalKeywords  []string `json:"missing_critical_keywords"`
	MissingImportantKeywords []string `json:"missing_important_keywords"`
}

// SkillsAnalysis is the 30%-weighted skills component.
type SkillsAnalysis struct {
	Score                  float64  `json:"score"`
	MatchedTechnicalSkills []string `json:"matched_technical_skills"`
	MatchedSoftSkills      []string `json:"matched_soft_skills"`
	SkillGaps              []string `json:"skill_gaps"`
}

// ExperienceAlignment is the 20%-weighted experience component.
type ExperienceAlignment struct {
	Score         float64 `json:"score"`
	RequiredYears string  `json:"required_years"`
	RelevantYears string  `json:"relevant_years"`
	RoleAlignment string  `json:"role_alignment"` // High/Medium/Low
}

// FormattingAnalysis is the 10%-weighted structural component.
type FormattingAnalysis struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// DetailedScore is the full ATS score breakdown for one resume/JD pair.
type DetailedScore struct {
	OverallScore            float64             `json:"overall_score"`
	KeywordAnalysis         KeywordAnalysis     `json:"keyword_analysis"`
	SkillsAnalysis          SkillsAnalysis      `json:"skills_analysis"`
	ExperienceAlignment     ExperienceAlignment `json:"experience_alignment"`
	FormattingAnalysis      FormattingAnalysis  `json:"formatting_analysis"`
	Strengths               []string            `json:"strengths"`
	CriticalImprovements    []string            `json:"critical_improvements"`
	RecommendedImprovements []string            `json:"recommended_improvements"`
	MatchLevel              string              `json:"match_level"`
	Likelihood              string              `json:"likelihood"`
}

// LegacyScore is the single-number scoring variant kept for backward compatibility.
type LegacyScore struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// WeightedOverall computes the overall score from the four weighted sub-scores.
func (d *DetailedScore) WeightedOverall() float64 {
	return KeywordWeight*d.KeywordAnalysis.Score +
		SkillsWeight*d.SkillsAnalysis.Score +
		ExperienceWeight*d.ExperienceAlignment.Score +
		FormattingWeight*d.FormattingAnalysis.Score
}

// MatchLevelFor buckets an overall score into a match level.
// Thresholds: [85,100] Excellent, [70,85) Good, [55,70) Fair, [0,55) Poor.
func MatchLevelFor(overall float64) string {
	switch {
	case overall >= 85:
		return MatchExcellent
	case overall >= 70:
		return MatchGood
	case overall >= 55:
		return MatchFair
	default:
		return MatchPoor
	}
}

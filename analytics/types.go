package analytics

// LabValue is a single lab result with an optional reference range.
type LabValue struct {
	Name     string   `json:"name" validate:"required"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit"`
	RefMin   *float64 `json:"reference_range_min,omitempty"`
	RefMax   *float64 `json:"reference_range_max,omitempty"`
	Category string   `json:"category,omitempty"`
}

// category defaults to "general" when unset.
func (l LabValue) category() string {
	if l.Category == "" {
		return "general"
	}
	return l.Category
}

// hasRange reports whether both reference bounds are present.
func (l LabValue) hasRange() bool {
	return l.RefMin != nil && l.RefMax != nil
}

// abnormal reports whether the value falls outside its reference range.
func (l LabValue) abnormal() bool {
	return l.hasRange() && (l.Value < *l.RefMin || l.Value > *l.RefMax)
}

// AnalysisRequest is the shared request for lab analyses.
type AnalysisRequest struct {
	PatientID   int        `json:"patient_id,omitempty"`
	PatientName string     `json:"patient_name,omitempty"`
	LabValues   []LabValue `json:"lab_values" validate:"required,min=1,dive"`
}

// PatientInfo echoes request identity fields on every report.
type PatientInfo struct {
	PatientID    int    `json:"patient_id,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
	AnalysisDate string `json:"analysis_date"`
	TotalMarkers int    `json:"total_markers"`
}

// StatisticalSummary describes the distribution of submitted values.
type StatisticalSummary struct {
	Mean         float64 `json:"mean_values"`
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// AbnormalMarker is a lab value outside its reference range.
type AbnormalMarker struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange string  `json:"reference_range"`
	// Deviation is "low" or "high" relative to the range.
	Deviation string `json:"deviation"`
	// Severity is "moderate", or "high" when the value falls past 70% of the
	// lower bound or 130% of the upper.
	Severity string `json:"severity"`
	// PercentDeviation is the distance from the range midpoint as a
	// percentage of the half-range.
	PercentDeviation float64 `json:"percentage_deviation"`
}

// CategoryAnalysis summarizes markers sharing a category.
type CategoryAnalysis struct {
	MarkerCount   int     `json:"marker_count"`
	AverageValue  float64 `json:"average_value"`
	AbnormalCount int     `json:"abnormal_count"`
}

// RiskIndicator is a coarse triage signal derived from abnormal counts.
type RiskIndicator struct {
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// LabAnalysis is the full lab analysis report.
type LabAnalysis struct {
	PatientInfo        PatientInfo                 `json:"patient_info"`
	StatisticalSummary StatisticalSummary          `json:"statistical_summary"`
	AbnormalMarkers    []AbnormalMarker            `json:"abnormal_markers"`
	CategoriesAnalysis map[string]CategoryAnalysis `json:"categories_analysis"`
	RiskIndicators     []RiskIndicator             `json:"risk_indicators"`
}

// Outlier is a statistically unusual lab value.
type Outlier struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
	// Method names the detector that flagged it: z_score, iqr or both.
	Method string `json:"method"`
	// Severity is high for |z| > 3, moderate otherwise.
	Severity string `json:"severity"`
}

// OutlierStatistics summarizes the distribution used for detection.
type OutlierStatistics struct {
	TotalMarkers      int     `json:"total_markers"`
	OutlierCount      int     `json:"outlier_count"`
	OutlierPercentage float64 `json:"outlier_percentage"`
	Mean              float64 `json:"mean"`
	Std               float64 `json:"std"`
	Q1                float64 `json:"q1"`
	Q3                float64 `json:"q3"`
	IQR               float64 `json:"iqr"`
}

// OutlierReport is the outlier detection result.
type OutlierReport struct {
	Outliers   []Outlier          `json:"outliers"`
	Statistics *OutlierStatistics `json:"statistics,omitempty"`
	// Message is set when detection was skipped for lack of data.
	Message string `json:"message,omitempty"`
}

// ConditionRisk scores one condition's risk from its marker panel.
type ConditionRisk struct {
	RiskPercentage   float64  `json:"risk_percentage"`
	RiskLevel        string   `json:"risk_level"`
	MarkersEvaluated []string `json:"markers_evaluated"`
	AbnormalMarkers  int      `json:"abnormal_markers"`
	TotalMarkers     int      `json:"total_markers"`
}

// Recommendation is a prioritized follow-up action.
type Recommendation struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Details  string `json:"details"`
}

// RiskAssessment is the condition-level risk report.
type RiskAssessment struct {
	PatientID          int                      `json:"patient_id,omitempty"`
	OverallHealthScore float64                  `json:"overall_health_score"`
	RiskAssessments    map[string]ConditionRisk `json:"risk_assessments"`
	Recommendations    []Recommendation         `json:"recommendations"`
	AssessmentDate     string                   `json:"assessment_date"`
}

// ExecutiveSummary condenses the combined analyses into headline numbers.
type ExecutiveSummary struct {
	OverallHealthScore   float64 `json:"overall_health_score"`
	AbnormalMarkersCount int     `json:"abnormal_markers_count"`
	OutliersDetected     int     `json:"outliers_detected"`
	HighRiskAreas        int     `json:"high_risk_areas"`
}

// ActionableInsight pairs a finding with a concrete next step.
type ActionableInsight struct {
	Priority string `json:"priority"`
	Insight  string `json:"insight"`
	Action   string `json:"action"`
}

// InsightsReport combines the three analyses into a single document.
type InsightsReport struct {
	PatientInfo        PatientInfo         `json:"patient_info"`
	ExecutiveSummary   ExecutiveSummary    `json:"executive_summary"`
	LabAnalysis        *LabAnalysis        `json:"statistical_analysis"`
	OutlierDetection   *OutlierReport      `json:"outlier_detection"`
	RiskAssessment     *RiskAssessment     `json:"risk_assessment"`
	ActionableInsights []ActionableInsight `json:"actionable_insights"`
	FollowUps          []string            `json:"follow_up_recommendations"`
}

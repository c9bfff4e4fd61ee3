package analytics

import "time"

// GenerateInsights runs the three analyses and combines them into a single
// report with an executive summary and concrete follow-up actions.
func (a *Analyzer) GenerateInsights(req AnalysisRequest) *InsightsReport {
	labs := a.AnalyzeLabs(req)
	outliers := a.DetectOutliers(req)
	risk := a.AssessRisk(req)

	highRiskAreas := 0
	for _, s := range risk.RiskAssessments {
		if s.RiskLevel == "high" {
			highRiskAreas++
		}
	}

	report := &InsightsReport{
		PatientInfo: PatientInfo{
			PatientID:    req.PatientID,
			PatientName:  req.PatientName,
			AnalysisDate: a.now().Format(time.RFC3339),
			TotalMarkers: len(req.LabValues),
		},
		ExecutiveSummary: ExecutiveSummary{
			OverallHealthScore:   risk.OverallHealthScore,
			AbnormalMarkersCount: len(labs.AbnormalMarkers),
			OutliersDetected:     len(outliers.Outliers),
			HighRiskAreas:        highRiskAreas,
		},
		LabAnalysis:      labs,
		OutlierDetection: outliers,
		RiskAssessment:   risk,
		FollowUps: []string{
			"Retest abnormal markers in 4-6 weeks",
			"Consider comprehensive metabolic panel if not recently done",
			"Lifestyle modifications based on identified risk factors",
			"Regular monitoring of trending biomarkers",
		},
	}

	if highRiskAreas > 0 {
		report.ActionableInsights = append(report.ActionableInsights, ActionableInsight{
			Priority: "high",
			Insight:  "Multiple high-risk areas identified requiring immediate attention",
			Action:   "Schedule comprehensive medical evaluation within 1-2 weeks",
		})
	}
	if len(outliers.Outliers) > 2 {
		report.ActionableInsights = append(report.ActionableInsights, ActionableInsight{
			Priority: "moderate",
			Insight:  "Several biomarkers show unusual patterns",
			Action:   "Repeat testing to confirm values and investigate underlying causes",
		})
	}

	return report
}

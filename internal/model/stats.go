package model

// StatsPayload is the admin statistics view, recomputed from the store on
// every request.
type StatsPayload struct {
	TotalParticipants int       `json:"totalParticipants"`
	SkippedRows       int       `json:"skippedRows"`
	CyberStats        QuizStats `json:"cyberStats"`
	RGPDStats         QuizStats `json:"rgpdStats"`
}

// ForQuizType returns the block of qt, nil for an unknown type.
func (p *StatsPayload) ForQuizType(qt QuizType) *QuizStats {
	switch qt {
	case QuizTypeCyber:
		return &p.CyberStats
	case QuizTypeRGPD:
		return &p.RGPDStats
	}
	return nil
}

type QuizStats struct {
	QuizType     QuizType             `json:"quizType"`
	Participants int                  `json:"participants"`
	AvgScore     float64              `json:"avgScore"`
	Records      []ResultRecord       `json:"records"`
	ByDept       map[string]DeptStats `json:"byDept"`
	Questions    []QuestionStat       `json:"questions"`
	TopQuestions []QuestionStat       `json:"topQuestions"`
}

type DeptStats struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

// QuestionStat is the error rate of one bank question. Total counts answered
// attempts only.
type QuestionStat struct {
	Index     int     `json:"index"`
	Question  string  `json:"question"`
	Errors    int     `json:"errors"`
	Total     int     `json:"total"`
	ErrorRate float64 `json:"errorRate"`
}

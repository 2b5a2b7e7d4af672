package model

import (
	"strconv"
	"time"
)

// QuizType names a question bank.
type QuizType string

const (
	QuizTypeCyber QuizType = "cyber"
	QuizTypeRGPD  QuizType = "rgpd"
)

// QuizTypes lists the known banks in reporting order.
var QuizTypes = []QuizType{QuizTypeCyber, QuizTypeRGPD}

func ParseQuizType(s string) (QuizType, bool) {
	for _, qt := range QuizTypes {
		if string(qt) == s {
			return qt, true
		}
	}
	return "", false
}

// AnswerCode is the per-question outcome of a submission.
type AnswerCode int

const (
	AnswerUnanswered AnswerCode = -1
	AnswerIncorrect  AnswerCode = 0
	AnswerCorrect    AnswerCode = 1
)

func (a AnswerCode) Valid() bool {
	return a == AnswerUnanswered || a == AnswerIncorrect || a == AnswerCorrect
}

func (a AnswerCode) String() string {
	return strconv.Itoa(int(a))
}

// PadAnswers returns a copy of answers sized to n: excess entries are dropped
// and missing ones are AnswerUnanswered. The result is never nil.
func PadAnswers(answers []AnswerCode, n int) []AnswerCode {
	if n < 0 {
		n = 0
	}
	out := make([]AnswerCode, n)
	for i := range out {
		if i < len(answers) {
			out[i] = answers[i]
		} else {
			out[i] = AnswerUnanswered
		}
	}
	return out
}

// Submission is a validated, normalized quiz submission. Answers already has
// the bank length of QuizType.
type Submission struct {
	Email      string
	Department string
	QuizType   QuizType
	Score      int
	Total      int
	Answers    []AnswerCode
}

// ResultRecord is one persisted row of the results store. It never carries the
// raw email.
type ResultRecord struct {
	Date         time.Time    `json:"date"`
	QuizType     QuizType     `json:"quizType"`
	Score        int          `json:"score"`
	Total        int          `json:"total"`
	Level        Level        `json:"level"`
	Department   string       `json:"department"`
	EmailPartial string       `json:"email"`
	Answers      []AnswerCode `json:"answers"`
}

// Ratio is score/total in [0,1].
func (r ResultRecord) Ratio() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

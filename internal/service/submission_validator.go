package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
)

const maxDepartmentLength = 100

// SubmissionRequest is the raw body of POST /api/submit-quiz. Pointer and raw
// fields keep "absent" distinguishable from zero values until validation.
type SubmissionRequest struct {
	Email      *string           `json:"email"`
	Department *string           `json:"department"`
	QuizType   *string           `json:"quizType"`
	Score      json.RawMessage   `json:"score"`
	Total      json.RawMessage   `json:"total"`
	Answers    []json.RawMessage `json:"answers"`
}

// ValidationError names the first rule a submission broke. It unwraps to
// util.ErrInvalidSubmission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return util.ErrInvalidSubmission.Error() + ": " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return util.ErrInvalidSubmission
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidateSubmission applies the intake rules in order and stops at the first
// failure. On success the answers are sized to the bank of the quiz type.
func ValidateSubmission(req SubmissionRequest, allowedDomains []string, bankSizes map[model.QuizType]int) (model.Submission, error) {
	// 1. email
	if req.Email == nil {
		return model.Submission{}, invalid("email", "missing")
	}
	email := strings.TrimSpace(*req.Email)
	if err := checkEmail(email, allowedDomains); err != nil {
		return model.Submission{}, err
	}

	// 2. department
	if req.Department == nil {
		return model.Submission{}, invalid("department", "missing")
	}
	department := strings.TrimSpace(*req.Department)
	switch {
	case department == "":
		return model.Submission{}, invalid("department", "empty")
	case strings.ContainsAny(department, "\r\n"):
		return model.Submission{}, invalid("department", "contains a line break")
	case utf8.RuneCountInString(department) > maxDepartmentLength:
		return model.Submission{}, invalid("department", "too long")
	}

	// 3. quiz type
	if req.QuizType == nil {
		return model.Submission{}, invalid("quizType", "missing")
	}
	quizType, ok := model.ParseQuizType(*req.QuizType)
	if !ok {
		return model.Submission{}, invalid("quizType", "unknown quiz type")
	}
	bankSize, ok := bankSizes[quizType]
	if !ok {
		return model.Submission{}, invalid("quizType", "no question bank")
	}

	// 4. score and total
	score, ok := parseJSONInt(req.Score)
	if !ok {
		return model.Submission{}, invalid("score", "not an integer")
	}
	total, ok := parseJSONInt(req.Total)
	if !ok {
		return model.Submission{}, invalid("total", "not an integer")
	}
	switch {
	case total <= 0:
		return model.Submission{}, invalid("total", "must be positive")
	case score < 0:
		return model.Submission{}, invalid("score", "must not be negative")
	case score > total:
		return model.Submission{}, invalid("score", "greater than total")
	}

	// 5. answers
	if req.Answers == nil {
		return model.Submission{}, invalid("answers", "missing")
	}
	answers := make([]model.AnswerCode, 0, len(req.Answers))
	for _, raw := range req.Answers {
		code, ok := parseAnswerCode(raw)
		if !ok {
			return model.Submission{}, invalid("answers", "element is not -1, 0, 1 or a boolean")
		}
		answers = append(answers, code)
	}

	return model.Submission{
		Email:      email,
		Department: department,
		QuizType:   quizType,
		Score:      score,
		Total:      total,
		Answers:    model.PadAnswers(answers, bankSize),
	}, nil
}

func checkEmail(email string, allowedDomains []string) error {
	if email == "" {
		return invalid("email", "empty")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return invalid("email", "contains whitespace")
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return invalid("email", "malformed address")
	}
	if !DomainAllowed(email[at+1:], allowedDomains) {
		return invalid("email", "domain not allowed")
	}
	return nil
}

// DomainAllowed reports whether domain equals, or is a subdomain of, one of
// the allowed domains. Comparison is case-insensitive.
func DomainAllowed(domain string, allowedDomains []string) bool {
	domain = strings.ToLower(domain)
	for _, allowed := range allowedDomains {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return true
		}
	}
	return false
}

// parseJSONInt accepts only a JSON integer literal: no strings, no fractions.
func parseJSONInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil || v != int64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// parseAnswerCode reads an outcome code, also accepting the legacy boolean
// form where true is a correct answer and false an incorrect one.
func parseAnswerCode(raw json.RawMessage) (model.AnswerCode, bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return model.AnswerCorrect, true
	case "false":
		return model.AnswerIncorrect, true
	}
	v, ok := parseJSONInt(raw)
	if !ok {
		return 0, false
	}
	code := model.AnswerCode(v)
	if !code.Valid() {
		return 0, false
	}
	return code, true
}

package model

// Question is one entry of a bank. Correct indexes Options.
type Question struct {
	Question string   `yaml:"question" json:"question"`
	Options  []string `yaml:"options" json:"options"`
	Correct  int      `yaml:"correct" json:"correct"`
}

// QuestionBank is the quiz content owned by the question bank service. Every
// saved mutation bumps Version.
type QuestionBank struct {
	Version     int        `yaml:"version" json:"version"`
	Departments []string   `yaml:"departments" json:"departments"`
	Cyber       []Question `yaml:"cyber" json:"cyberQuestions"`
	RGPD        []Question `yaml:"rgpd" json:"rgpdQuestions"`
}

// Questions returns the bank for qt, nil for an unknown type.
func (b *QuestionBank) Questions(qt QuizType) []Question {
	switch qt {
	case QuizTypeCyber:
		return b.Cyber
	case QuizTypeRGPD:
		return b.RGPD
	}
	return nil
}

// SetQuestions replaces the bank for qt and reports whether qt is known.
func (b *QuestionBank) SetQuestions(qt QuizType, qs []Question) bool {
	switch qt {
	case QuizTypeCyber:
		b.Cyber = qs
	case QuizTypeRGPD:
		b.RGPD = qs
	default:
		return false
	}
	return true
}

// Sizes is the per quiz type question count used to pad answers.
func (b *QuestionBank) Sizes() map[QuizType]int {
	return map[QuizType]int{
		QuizTypeCyber: len(b.Cyber),
		QuizTypeRGPD:  len(b.RGPD),
	}
}

// Clone deep-copies the bank so a mutation never races with readers of the
// previous version.
func (b *QuestionBank) Clone() *QuestionBank {
	out := &QuestionBank{
		Version:     b.Version,
		Departments: append([]string(nil), b.Departments...),
		Cyber:       cloneQuestions(b.Cyber),
		RGPD:        cloneQuestions(b.RGPD),
	}
	return out
}

func cloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = Question{
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
			Correct:  q.Correct,
		}
	}
	return out
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		score, total int
		want         Level
	}{
		{10, 10, LevelExpert},
		{9, 10, LevelExpert},
		{8, 10, LevelAdvanced},
		{7, 10, LevelAdvanced},
		{6, 10, LevelIntermediate},
		{5, 10, LevelIntermediate},
		{4, 10, LevelBeginner},
		{0, 10, LevelBeginner},
		// 69.99% must not round up to Advanced.
		{6999, 10000, LevelIntermediate},
		{7000, 10000, LevelAdvanced},
		{0, 0, LevelBeginner},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.score, tc.total), "%d/%d", tc.score, tc.total)
	}
}

func TestPadAnswers(t *testing.T) {
	assert.Equal(t, []AnswerCode{}, PadAnswers(nil, 0))
	assert.Equal(t,
		[]AnswerCode{AnswerCorrect, AnswerUnanswered, AnswerUnanswered},
		PadAnswers([]AnswerCode{AnswerCorrect}, 3))
	assert.Equal(t,
		[]AnswerCode{AnswerCorrect, AnswerIncorrect},
		PadAnswers([]AnswerCode{AnswerCorrect, AnswerIncorrect, AnswerCorrect}, 2))
}

func TestParseQuizType(t *testing.T) {
	qt, ok := ParseQuizType("rgpd")
	assert.True(t, ok)
	assert.Equal(t, QuizTypeRGPD, qt)

	_, ok = ParseQuizType("RGPD")
	assert.False(t, ok)
	_, ok = ParseQuizType("")
	assert.False(t, ok)
}

func TestQuestionBankCloneIsDeep(t *testing.T) {
	bank := &QuestionBank{
		Version:     3,
		Departments: []string{"DSI"},
		Cyber:       []Question{{Question: "q", Options: []string{"a", "b"}, Correct: 1}},
	}

	clone := bank.Clone()
	clone.Departments[0] = "RH"
	clone.Cyber[0].Options[0] = "z"

	assert.Equal(t, "DSI", bank.Departments[0])
	assert.Equal(t, "a", bank.Cyber[0].Options[0])
	assert.Equal(t, map[QuizType]int{QuizTypeCyber: 1, QuizTypeRGPD: 0}, bank.Sizes())
}

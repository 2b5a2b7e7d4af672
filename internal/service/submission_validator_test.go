package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDomains = []string{"telecom-paris.fr", "imt.fr"}
	testSizes   = map[model.QuizType]int{model.QuizTypeCyber: 4, model.QuizTypeRGPD: 2}
)

func decodeRequest(t *testing.T, body string) SubmissionRequest {
	t.Helper()
	var req SubmissionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestValidateSubmissionAccepts(t *testing.T) {
	req := decodeRequest(t, `{"email":" Jean.Dupont@Telecom-Paris.fr ","department":" DSI ","quizType":"cyber","score":3,"total":4,"answers":[1,true,false]}`)

	sub, err := ValidateSubmission(req, testDomains, testSizes)
	require.NoError(t, err)
	assert.Equal(t, "Jean.Dupont@Telecom-Paris.fr", sub.Email)
	assert.Equal(t, "DSI", sub.Department)
	assert.Equal(t, model.QuizTypeCyber, sub.QuizType)
	assert.Equal(t, []model.AnswerCode{1, 1, 0, -1}, sub.Answers)
}

func TestValidateSubmissionTruncatesLongAnswers(t *testing.T) {
	req := decodeRequest(t, `{"email":"a@imt.fr","department":"RH","quizType":"rgpd","score":1,"total":2,"answers":[1,0,1,1]}`)

	sub, err := ValidateSubmission(req, testDomains, testSizes)
	require.NoError(t, err)
	assert.Equal(t, []model.AnswerCode{1, 0}, sub.Answers)
}

func TestValidateSubmissionAcceptsSubdomain(t *testing.T) {
	req := decodeRequest(t, `{"email":"a@etu.imt.fr","department":"RH","quizType":"rgpd","score":1,"total":2,"answers":[]}`)

	_, err := ValidateSubmission(req, testDomains, testSizes)
	assert.NoError(t, err)
}

func TestValidateSubmissionRejects(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing email", `{"department":"RH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "email"},
		{"foreign domain", `{"email":"x@gmail.com","department":"RH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "email"},
		{"lookalike domain", `{"email":"x@evilimt.fr","department":"RH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "email"},
		{"no local part", `{"email":"@imt.fr","department":"RH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "email"},
		{"whitespace", `{"email":"a b@imt.fr","department":"RH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "email"},
		{"empty department", `{"email":"a@imt.fr","department":"  ","quizType":"cyber","score":1,"total":2,"answers":[]}`, "department"},
		{"department line break", `{"email":"a@imt.fr","department":"R\nH","quizType":"cyber","score":1,"total":2,"answers":[]}`, "department"},
		{"missing quiz type", `{"email":"a@imt.fr","department":"RH","score":1,"total":2,"answers":[]}`, "quizType"},
		{"unknown quiz type", `{"email":"a@imt.fr","department":"RH","quizType":"phishing","score":1,"total":2,"answers":[]}`, "quizType"},
		{"string score", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":"1","total":2,"answers":[]}`, "score"},
		{"fractional score", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":1.5,"total":2,"answers":[]}`, "score"},
		{"zero total", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":0,"total":0,"answers":[]}`, "total"},
		{"negative score", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":-1,"total":2,"answers":[]}`, "score"},
		{"score above total", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":3,"total":2,"answers":[]}`, "score"},
		{"missing answers", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":1,"total":2}`, "answers"},
		{"bad answer code", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":1,"total":2,"answers":[2]}`, "answers"},
		{"string answer", `{"email":"a@imt.fr","department":"RH","quizType":"cyber","score":1,"total":2,"answers":["1"]}`, "answers"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateSubmission(decodeRequest(t, tc.body), testDomains, testSizes)
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrInvalidSubmission))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateSubmissionFirstFailureWins(t *testing.T) {
	req := decodeRequest(t, `{"email":"x@gmail.com","department":"","quizType":"nope","score":9,"total":1}`)

	_, err := ValidateSubmission(req, testDomains, testSizes)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestDomainAllowed(t *testing.T) {
	assert.True(t, DomainAllowed("IMT.FR", testDomains))
	assert.True(t, DomainAllowed("mines.imt.fr", testDomains))
	assert.False(t, DomainAllowed("imt.fr.evil.com", testDomains))
	assert.False(t, DomainAllowed("imt.fr", nil))
}

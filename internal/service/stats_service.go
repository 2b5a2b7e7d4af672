package service

import (
	"context"
	"math"
	"sort"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/monitoring"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const topQuestionsCount = 5

// StatsService recomputes the admin statistics from the store on every call.
type StatsService struct {
	store *repository.ResultStore
	bank  *QuestionBankService
}

func NewStatsService(store *repository.ResultStore, bank *QuestionBankService) *StatsService {
	return &StatsService{store: store, bank: bank}
}

func (s *StatsService) GetStats(ctx context.Context) (model.StatsPayload, error) {
	ctx, span := tracing.Tracer.Start(ctx, "StatsService.GetStats")
	defer span.End()

	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		span.RecordError(err)
		return model.StatsPayload{}, err
	}

	payload := ComputeStats(rows, s.store.Schema(), s.bank.Current())

	span.SetAttributes(
		attribute.Int("stats.rows", len(rows)),
		attribute.Int("stats.skipped_rows", payload.SkippedRows),
	)
	monitoring.StoredRows.Set(float64(payload.TotalParticipants))
	monitoring.MalformedRows.Set(float64(payload.SkippedRows))
	return payload, nil
}

type deptAcc struct {
	count    int
	ratioSum float64
}

type quizAcc struct {
	ratioSum float64
	records  []model.ResultRecord
	depts    map[string]*deptAcc
	errors   []int
	attempts []int
}

// ComputeStats aggregates decoded rows against the current bank. It is a pure
// function of its inputs: rows that do not decode are counted in SkippedRows
// and otherwise ignored. Percentages are rounded to one decimal.
func ComputeStats(rows []string, schema repository.Schema, bank *model.QuestionBank) model.StatsPayload {
	accs := make(map[model.QuizType]*quizAcc, len(model.QuizTypes))
	for _, qt := range model.QuizTypes {
		n := len(bank.Questions(qt))
		accs[qt] = &quizAcc{
			records:  []model.ResultRecord{},
			depts:    map[string]*deptAcc{},
			errors:   make([]int, n),
			attempts: make([]int, n),
		}
	}

	var payload model.StatsPayload
	for i, row := range rows {
		rec, err := schema.Decode(row)
		if err != nil {
			payload.SkippedRows++
			logger.Log.Debug("skipping malformed results row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		acc := accs[rec.QuizType]
		payload.TotalParticipants++

		ratio := rec.Ratio()
		acc.ratioSum += ratio

		d, ok := acc.depts[rec.Department]
		if !ok {
			d = &deptAcc{}
			acc.depts[rec.Department] = d
		}
		d.count++
		d.ratioSum += ratio

		for q := 0; q < len(acc.attempts) && q < len(rec.Answers); q++ {
			switch rec.Answers[q] {
			case model.AnswerIncorrect:
				acc.errors[q]++
				acc.attempts[q]++
			case model.AnswerCorrect:
				acc.attempts[q]++
			}
		}
		// Answer columns beyond the bank belong to no question.
		if len(rec.Answers) > len(acc.attempts) {
			rec.Answers = rec.Answers[:len(acc.attempts)]
		}
		acc.records = append(acc.records, rec)
	}

	for _, qt := range model.QuizTypes {
		*payload.ForQuizType(qt) = buildQuizStats(qt, accs[qt], bank.Questions(qt))
	}
	return payload
}

func buildQuizStats(qt model.QuizType, acc *quizAcc, questions []model.Question) model.QuizStats {
	stats := model.QuizStats{
		QuizType:     qt,
		Participants: len(acc.records),
		Records:      acc.records,
		ByDept:       make(map[string]model.DeptStats, len(acc.depts)),
		Questions:    make([]model.QuestionStat, len(questions)),
	}
	if stats.Participants > 0 {
		stats.AvgScore = round1(acc.ratioSum / float64(stats.Participants) * 100)
	}

	for name, d := range acc.depts {
		stats.ByDept[name] = model.DeptStats{
			Count:    d.count,
			AvgScore: round1(d.ratioSum / float64(d.count) * 100),
		}
	}

	for i, q := range questions {
		qs := model.QuestionStat{
			Index:    i,
			Question: q.Question,
			Errors:   acc.errors[i],
			Total:    acc.attempts[i],
		}
		if qs.Total > 0 {
			qs.ErrorRate = round1(float64(qs.Errors) / float64(qs.Total) * 100)
		}
		stats.Questions[i] = qs
	}

	top := append([]model.QuestionStat(nil), stats.Questions...)
	// Stable: equal rates keep bank order.
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].ErrorRate > top[j].ErrorRate
	})
	if len(top) > topQuestionsCount {
		top = top[:topQuestionsCount]
	}
	if top == nil {
		top = []model.QuestionStat{}
	}
	stats.TopQuestions = top
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

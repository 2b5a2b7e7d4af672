package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/monitoring"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// QuizService is the write side of the results store.
type QuizService struct {
	store          *repository.ResultStore
	bank           *QuestionBankService
	archive        *ArchiveService
	allowedDomains []string
	now            func() time.Time
}

func NewQuizService(store *repository.ResultStore, bank *QuestionBankService, archive *ArchiveService, allowedDomains []string) *QuizService {
	return &QuizService{
		store:          store,
		bank:           bank,
		archive:        archive,
		allowedDomains: allowedDomains,
		now:            time.Now,
	}
}

// SubmitQuiz validates req, stores one anonymized row and returns the level.
// Nothing is written when validation fails.
func (s *QuizService) SubmitQuiz(ctx context.Context, req SubmissionRequest) (model.Level, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.SubmitQuiz")
	defer span.End()

	sub, err := ValidateSubmission(req, s.allowedDomains, s.bank.Current().Sizes())
	if err != nil {
		monitoring.Submissions.WithLabelValues(quizTypeLabel(req.QuizType), monitoring.OutcomeRejected).Inc()
		var verr *ValidationError
		if errors.As(err, &verr) {
			logger.Log.Info("Submission rejected", zap.String("field", verr.Field), zap.String("reason", verr.Reason))
		}
		return "", err
	}

	level := model.LevelFor(sub.Score, sub.Total)
	rec := model.ResultRecord{
		Date:         s.now().UTC(),
		QuizType:     sub.QuizType,
		Score:        sub.Score,
		Total:        sub.Total,
		Level:        level,
		Department:   sub.Department,
		EmailPartial: util.AnonymizeEmail(sub.Email),
		Answers:      sub.Answers,
	}

	line, err := s.store.Schema().Encode(rec)
	if err != nil {
		monitoring.Submissions.WithLabelValues(string(sub.QuizType), monitoring.OutcomeRejected).Inc()
		return "", err
	}
	if err := s.store.Append(ctx, line); err != nil {
		monitoring.Submissions.WithLabelValues(string(sub.QuizType), monitoring.OutcomeFailed).Inc()
		span.RecordError(err)
		logger.Log.Error("Failed to store submission", zap.Error(err))
		return "", err
	}

	monitoring.Submissions.WithLabelValues(string(sub.QuizType), monitoring.OutcomeAccepted).Inc()
	span.SetAttributes(attribute.String("quiz.type", string(sub.QuizType)), attribute.String("quiz.level", string(level)))
	logger.Log.Info("Submission stored",
		zap.String("quiz_type", string(sub.QuizType)),
		zap.String("department", sub.Department),
		zap.String("level", string(level)))
	return level, nil
}

// ExportRaw returns the store as CSV, header included. With a quiz type only
// the rows of that quiz are kept; rows that cannot be decoded are left out of
// a filtered export.
func (s *QuizService) ExportRaw(ctx context.Context, quizType string) ([]byte, error) {
	if quizType == "" {
		return s.store.Raw(ctx)
	}
	qt, ok := model.ParseQuizType(quizType)
	if !ok {
		return nil, util.ErrUnknownQuizType
	}

	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	schema := s.store.Schema()

	var buf bytes.Buffer
	buf.Write(schema.HeaderLine())
	for _, row := range rows {
		rec, err := schema.Decode(row)
		if err != nil || rec.QuizType != qt {
			continue
		}
		buf.WriteString(row)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ResetStore archives the current rows, when archiving is enabled, and then
// truncates the store to its header. A failed archive leaves the store as is.
func (s *QuizService) ResetStore(ctx context.Context) (string, error) {
	var location string
	var archive func([]byte) error
	if s.archive.Enabled() {
		archive = func(snapshot []byte) error {
			var err error
			location, err = s.archive.Archive(ctx, snapshot)
			if err != nil {
				return fmt.Errorf("%w: %w", util.ErrStorageUnavailable, err)
			}
			return nil
		}
	}

	if err := s.store.ResetKeepingHeader(ctx, archive); err != nil {
		logger.Log.Error("Results store reset failed", zap.Error(err))
		return "", err
	}
	logger.Log.Warn("Results store reset", zap.String("archive", location))
	return location, nil
}

func quizTypeLabel(qt *string) string {
	if qt == nil {
		return "unknown"
	}
	if parsed, ok := model.ParseQuizType(*qt); ok {
		return string(parsed)
	}
	return "unknown"
}

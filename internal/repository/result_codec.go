package repository

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
)

// Fixed leading columns of the results file, in order.
var fixedColumns = []string{"date", "quiz_type", "score", "total", "level", "department", "email_partial"}

const (
	colDate = iota
	colQuizType
	colScore
	colTotal
	colLevel
	colDepartment
	colEmailPartial
)

// Schema is the column layout of the results file: the fixed columns followed
// by AnswerColumns answer columns q0..q{AnswerColumns-1}.
type Schema struct {
	AnswerColumns int
}

func NewSchema(answerColumns int) Schema {
	return Schema{AnswerColumns: answerColumns}
}

func (s Schema) Header() []string {
	header := make([]string, 0, len(fixedColumns)+s.AnswerColumns)
	header = append(header, fixedColumns...)
	for i := 0; i < s.AnswerColumns; i++ {
		header = append(header, "q"+strconv.Itoa(i))
	}
	return header
}

// HeaderLine is the header row including the trailing newline.
func (s Schema) HeaderLine() []byte {
	return []byte(strings.Join(s.Header(), ",") + "\n")
}

// Columns is the number of columns every data row must have.
func (s Schema) Columns() int {
	return len(fixedColumns) + s.AnswerColumns
}

// SchemaFromHeader recognizes a canonical header and returns its schema.
// Historical header variants without quiz_type or answer columns are rejected.
func SchemaFromHeader(header []string) (Schema, error) {
	if len(header) < len(fixedColumns) {
		return Schema{}, fmt.Errorf("%w: %d columns", util.ErrSchemaMismatch, len(header))
	}
	for i, name := range fixedColumns {
		if strings.TrimSpace(header[i]) != name {
			return Schema{}, fmt.Errorf("%w: column %d is %q, want %q", util.ErrSchemaMismatch, i, header[i], name)
		}
	}
	answers := header[len(fixedColumns):]
	for i, name := range answers {
		if strings.TrimSpace(name) != "q"+strconv.Itoa(i) {
			return Schema{}, fmt.Errorf("%w: answer column %d is %q", util.ErrSchemaMismatch, i, name)
		}
	}
	return NewSchema(len(answers)), nil
}

// Encode renders a record as one newline-terminated row. Fields that contain
// the delimiter or quotes are quoted, so free text cannot shift columns.
func (s Schema) Encode(rec model.ResultRecord) ([]byte, error) {
	if len(rec.Answers) > s.AnswerColumns {
		return nil, fmt.Errorf("%w: %d answers for %d columns", util.ErrSchemaMismatch, len(rec.Answers), s.AnswerColumns)
	}
	if strings.ContainsAny(rec.Department, "\r\n") || strings.ContainsAny(rec.EmailPartial, "\r\n") {
		return nil, fmt.Errorf("%w: line break in free text field", util.ErrInvalidSubmission)
	}

	fields := make([]string, 0, s.Columns())
	fields = append(fields,
		rec.Date.UTC().Format(util.TimestampFormat),
		string(rec.QuizType),
		strconv.Itoa(rec.Score),
		strconv.Itoa(rec.Total),
		string(rec.Level),
		rec.Department,
		rec.EmailPartial,
	)
	for _, a := range model.PadAnswers(rec.Answers, s.AnswerColumns) {
		if !a.Valid() {
			return nil, fmt.Errorf("%w: answer code %d", util.ErrInvalidSubmission, a)
		}
		fields = append(fields, a.String())
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses one data row. Any failure is reported as ErrMalformedRecord so
// the caller can skip the row and keep scanning.
func (s Schema) Decode(line string) (model.ResultRecord, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("%w: %v", util.ErrMalformedRecord, err)
	}
	return s.DecodeFields(fields)
}

func (s Schema) DecodeFields(fields []string) (model.ResultRecord, error) {
	if len(fields) < s.Columns() {
		return model.ResultRecord{}, fmt.Errorf("%w: %d columns, want %d", util.ErrMalformedRecord, len(fields), s.Columns())
	}

	date, err := time.Parse(time.RFC3339Nano, fields[colDate])
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("%w: date %q", util.ErrMalformedRecord, fields[colDate])
	}
	quizType, ok := model.ParseQuizType(fields[colQuizType])
	if !ok {
		return model.ResultRecord{}, fmt.Errorf("%w: quiz type %q", util.ErrMalformedRecord, fields[colQuizType])
	}
	score, err := strconv.Atoi(fields[colScore])
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("%w: score %q", util.ErrMalformedRecord, fields[colScore])
	}
	total, err := strconv.Atoi(fields[colTotal])
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("%w: total %q", util.ErrMalformedRecord, fields[colTotal])
	}
	if total <= 0 || score < 0 || score > total {
		return model.ResultRecord{}, fmt.Errorf("%w: score %d/%d out of range", util.ErrMalformedRecord, score, total)
	}

	answers := make([]model.AnswerCode, s.AnswerColumns)
	for i := range answers {
		raw := fields[len(fixedColumns)+i]
		v, err := strconv.Atoi(raw)
		if err != nil || !model.AnswerCode(v).Valid() {
			return model.ResultRecord{}, fmt.Errorf("%w: q%d %q", util.ErrMalformedRecord, i, raw)
		}
		answers[i] = model.AnswerCode(v)
	}

	return model.ResultRecord{
		Date:         date.UTC(),
		QuizType:     quizType,
		Score:        score,
		Total:        total,
		Level:        model.Level(fields[colLevel]),
		Department:   fields[colDepartment],
		EmailPartial: fields[colEmailPartial],
		Answers:      answers,
	}, nil
}

// Manual consistency check of the results file.
//
// Decodes every row with the same rules as the statistics endpoint and prints
// the rows that would be skipped, followed by a per quiz summary. Useful after
// editing results.csv by hand or restoring an archive.
//
// Usage: go run scripts/check_results.go [-config configs]

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"

	"github.com/spf13/pflag"
)

type summary struct {
	File         string         `json:"file"`
	AnswerCols   int            `json:"answerColumns"`
	Rows         int            `json:"rows"`
	Skipped      int            `json:"skipped"`
	Participants map[string]int `json:"participants"`
	AvgScore     map[string]any `json:"avgScore"`
}

func main() {
	configDir := pflag.String("config", "configs", "directory containing config.yaml")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store := repository.NewResultStore(cfg.Store.ResultsFile, repository.NewSchema(cfg.Store.AnswerColumns))
	if _, err := os.Stat(cfg.Store.ResultsFile); err != nil {
		log.Fatalf("Results file: %v", err)
	}
	if err := store.EnsureInitialized(); err != nil {
		log.Fatalf("Results file header: %v", err)
	}

	bank, err := repository.NewQuestionBankFile(cfg.Quiz.BankFile).Load()
	if err != nil {
		log.Printf("Question bank unavailable, question statistics skipped: %v", err)
		bank = &model.QuestionBank{}
	}

	rows, err := store.ReadAll(context.Background())
	if err != nil {
		log.Fatalf("Read results: %v", err)
	}

	schema := store.Schema()
	for i, row := range rows {
		if _, err := schema.Decode(row); err != nil {
			// +2: one-based, after the header.
			fmt.Fprintf(os.Stderr, "line %d: %v\n", i+2, err)
		}
	}

	stats := service.ComputeStats(rows, schema, bank)
	out := summary{
		File:         store.Path(),
		AnswerCols:   schema.AnswerColumns,
		Rows:         len(rows),
		Skipped:      stats.SkippedRows,
		Participants: map[string]int{},
		AvgScore:     map[string]any{},
	}
	for _, qt := range model.QuizTypes {
		qs := stats.ForQuizType(qt)
		out.Participants[string(qt)] = qs.Participants
		out.AvgScore[string(qt)] = qs.AvgScore
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
	if stats.SkippedRows > 0 {
		os.Exit(1)
	}
}

package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"

	"gopkg.in/yaml.v3"
)

// QuestionBankFile persists the quiz content as YAML.
type QuestionBankFile struct {
	path string
}

func NewQuestionBankFile(path string) *QuestionBankFile {
	return &QuestionBankFile{path: path}
}

func (r *QuestionBankFile) Path() string {
	return r.path
}

// Load reads the bank. A missing file is reported with os.ErrNotExist in the
// chain so callers can seed a default.
func (r *QuestionBankFile) Load() (*model.QuestionBank, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", r.path, err)
	}

	var bank model.QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", r.path, err)
	}
	return &bank, nil
}

// Save writes the bank through a temp file and rename.
func (r *QuestionBankFile) Save(bank *model.QuestionBank) error {
	data, err := yaml.Marshal(bank)
	if err != nil {
		return fmt.Errorf("encode question bank: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, r.path)
}

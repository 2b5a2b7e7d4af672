package service

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"

	"go.uber.org/zap"
)

// QuestionBankService owns the quiz content. Readers get an immutable
// snapshot; every change builds a new version, saves it and only then
// publishes it.
type QuestionBankService struct {
	file         *repository.QuestionBankFile
	maxQuestions int

	mu      sync.Mutex
	current atomic.Pointer[model.QuestionBank]
}

// NewQuestionBankService caps every bank at maxQuestions, the number of answer
// columns of the results store.
func NewQuestionBankService(file *repository.QuestionBankFile, maxQuestions int) *QuestionBankService {
	s := &QuestionBankService{file: file, maxQuestions: maxQuestions}
	s.current.Store(normalizeBank(&model.QuestionBank{}))
	return s
}

// Load reads the bank file, seeding it with the default content when it does
// not exist yet.
func (s *QuestionBankService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.file.Load()
	if errors.Is(err, os.ErrNotExist) {
		bank = DefaultQuestionBank()
		if err := s.file.Save(bank); err != nil {
			return fmt.Errorf("seed question bank: %w", err)
		}
		logger.Log.Info("Seeded default question bank", zap.String("path", s.file.Path()))
	} else if err != nil {
		return err
	}

	bank = normalizeBank(bank)
	if err := s.validateBank(bank); err != nil {
		return fmt.Errorf("question bank %s: %w", s.file.Path(), err)
	}
	s.current.Store(bank)
	return nil
}

// Reload re-reads the file after an edit on disk. An invalid file is ignored
// and the current bank kept. It reports whether the bank changed.
func (s *QuestionBankService) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.file.Load()
	if err != nil {
		return false, err
	}
	bank = normalizeBank(bank)
	if err := s.validateBank(bank); err != nil {
		return false, err
	}
	if reflect.DeepEqual(bank, s.current.Load()) {
		return false, nil
	}
	s.current.Store(bank)
	logger.Log.Info("Question bank reloaded", zap.Int("version", bank.Version))
	return true, nil
}

// Current is the published bank. It must not be modified.
func (s *QuestionBankService) Current() *model.QuestionBank {
	return s.current.Load()
}

func (s *QuestionBankService) MaxQuestions() int {
	return s.maxQuestions
}

func (s *QuestionBankService) AddQuestion(quizType string, q model.Question) (*model.QuestionBank, error) {
	qt, ok := model.ParseQuizType(quizType)
	if !ok {
		return nil, util.ErrUnknownQuizType
	}
	q.Question = strings.TrimSpace(q.Question)
	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	return s.mutate(func(b *model.QuestionBank) error {
		qs := b.Questions(qt)
		if len(qs) >= s.maxQuestions {
			return fmt.Errorf("%w: %d questions", util.ErrBankFull, s.maxQuestions)
		}
		b.SetQuestions(qt, append(qs, q))
		return nil
	})
}

// RemoveQuestion deletes the question at index. Later questions shift down,
// so stored answers for them are reported against the new labels.
func (s *QuestionBankService) RemoveQuestion(quizType string, index int) (*model.QuestionBank, error) {
	qt, ok := model.ParseQuizType(quizType)
	if !ok {
		return nil, util.ErrUnknownQuizType
	}

	return s.mutate(func(b *model.QuestionBank) error {
		qs := b.Questions(qt)
		if index < 0 || index >= len(qs) {
			return util.ErrQuestionNotFound
		}
		b.SetQuestions(qt, append(qs[:index], qs[index+1:]...))
		return nil
	})
}

func (s *QuestionBankService) AddDepartment(name string) (*model.QuestionBank, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: empty name", util.ErrInvalidDepartment)
	case strings.ContainsAny(name, "\r\n"):
		return nil, fmt.Errorf("%w: line break", util.ErrInvalidDepartment)
	case utf8.RuneCountInString(name) > maxDepartmentLength:
		return nil, fmt.Errorf("%w: too long", util.ErrInvalidDepartment)
	}

	return s.mutate(func(b *model.QuestionBank) error {
		for _, d := range b.Departments {
			if strings.EqualFold(d, name) {
				return fmt.Errorf("%w: %q already exists", util.ErrInvalidDepartment, d)
			}
		}
		b.Departments = append(b.Departments, name)
		return nil
	})
}

func (s *QuestionBankService) RemoveDepartment(name string) (*model.QuestionBank, error) {
	name = strings.TrimSpace(name)
	return s.mutate(func(b *model.QuestionBank) error {
		for i, d := range b.Departments {
			if d == name {
				b.Departments = append(b.Departments[:i], b.Departments[i+1:]...)
				return nil
			}
		}
		return util.ErrDepartmentNotFound
	})
}

func (s *QuestionBankService) mutate(fn func(b *model.QuestionBank) error) (*model.QuestionBank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version++
	next = normalizeBank(next)

	if err := s.file.Save(next); err != nil {
		return nil, fmt.Errorf("%w: save question bank: %w", util.ErrStorageUnavailable, err)
	}
	s.current.Store(next)
	logger.Log.Info("Question bank updated", zap.Int("version", next.Version))
	return next, nil
}

func (s *QuestionBankService) validateBank(b *model.QuestionBank) error {
	for _, qt := range model.QuizTypes {
		qs := b.Questions(qt)
		if len(qs) > s.maxQuestions {
			return fmt.Errorf("%w: %s has %d questions, store allows %d", util.ErrBankFull, qt, len(qs), s.maxQuestions)
		}
		for i, q := range qs {
			if err := validateQuestion(q); err != nil {
				return fmt.Errorf("%s question %d: %w", qt, i, err)
			}
		}
	}
	return nil
}

func validateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty text", util.ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: at least two options required", util.ErrInvalidQuestion)
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: empty option", util.ErrInvalidQuestion)
		}
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d out of range", util.ErrInvalidQuestion, q.Correct)
	}
	return nil
}

// normalizeBank replaces nil lists with empty ones so the JSON view never
// carries null.
func normalizeBank(b *model.QuestionBank) *model.QuestionBank {
	if b.Departments == nil {
		b.Departments = []string{}
	}
	if b.Cyber == nil {
		b.Cyber = []model.Question{}
	}
	if b.RGPD == nil {
		b.RGPD = []model.Question{}
	}
	for _, qs := range [][]model.Question{b.Cyber, b.RGPD} {
		for i := range qs {
			if qs[i].Options == nil {
				qs[i].Options = []string{}
			}
		}
	}
	return b
}

// DefaultQuestionBank is written to bank_file on first start.
func DefaultQuestionBank() *model.QuestionBank {
	return &model.QuestionBank{
		Version: 1,
		Departments: []string{
			"Direction",
			"Enseignement",
			"Recherche",
			"DSI",
			"Ressources humaines",
			"Scolarité",
			"Communication",
			"Autre",
		},
		Cyber: []model.Question{
			{
				Question: "Vous recevez un email urgent de la DSI vous demandant votre mot de passe. Que faites-vous ?",
				Options:  []string{"Je réponds avec mon mot de passe", "Je clique sur le lien pour vérifier", "Je signale l'email comme hameçonnage", "Je le transfère à mes collègues"},
				Correct:  2,
			},
			{
				Question: "Quel mot de passe est le plus robuste ?",
				Options:  []string{"Paris2024", "azerty123", "Cheval-Lampe-Orage-47!", "MonPrenom"},
				Correct:  2,
			},
			{
				Question: "À quoi sert l'authentification multifacteur ?",
				Options:  []string{"À accélérer la connexion", "À ajouter une preuve d'identité en plus du mot de passe", "À remplacer l'antivirus", "À chiffrer les emails"},
				Correct:  1,
			},
			{
				Question: "Vous trouvez une clé USB sur le parking. Que faites-vous ?",
				Options:  []string{"Je la branche pour trouver son propriétaire", "Je la remets à la DSI sans la brancher", "Je la garde", "Je la formate"},
				Correct:  1,
			},
			{
				Question: "Quand faut-il installer les mises à jour de sécurité ?",
				Options:  []string{"Dès qu'elles sont proposées", "Une fois par an", "Jamais, cela ralentit le poste", "Seulement en cas de panne"},
				Correct:  0,
			},
			{
				Question: "Sur un réseau Wi-Fi public, quelle pratique est recommandée ?",
				Options:  []string{"Consulter ses comptes bancaires", "Utiliser le VPN de l'établissement", "Désactiver le pare-feu", "Partager ses fichiers"},
				Correct:  1,
			},
			{
				Question: "Que faire en quittant son poste de travail, même quelques minutes ?",
				Options:  []string{"Rien", "Éteindre l'écran", "Verrouiller la session", "Fermer le navigateur"},
				Correct:  2,
			},
			{
				Question: "Un rançongiciel a chiffré vos fichiers. Quelle est la première action ?",
				Options:  []string{"Payer la rançon", "Déconnecter le poste du réseau et prévenir la DSI", "Redémarrer plusieurs fois", "Supprimer les fichiers chiffrés"},
				Correct:  1,
			},
			{
				Question: "Comment reconnaître un site web sécurisé pour saisir des identifiants ?",
				Options:  []string{"Il contient beaucoup d'images", "L'adresse commence par https et le domaine est le bon", "Il s'affiche rapidement", "Il est en français"},
				Correct:  1,
			},
			{
				Question: "Peut-on réutiliser le même mot de passe sur plusieurs services ?",
				Options:  []string{"Oui, c'est plus simple", "Oui, s'il est long", "Non, chaque service doit avoir le sien", "Oui, sauf pour la banque"},
				Correct:  2,
			},
		},
		RGPD: []model.Question{
			{
				Question: "Qu'est-ce qu'une donnée à caractère personnel ?",
				Options:  []string{"Une donnée stockée sur un ordinateur personnel", "Toute information se rapportant à une personne identifiée ou identifiable", "Uniquement le nom et le prénom", "Une donnée confidentielle de l'établissement"},
				Correct:  1,
			},
			{
				Question: "Qui est le DPO ?",
				Options:  []string{"Le directeur du personnel", "Le délégué à la protection des données", "Le responsable informatique", "Un prestataire externe obligatoire"},
				Correct:  1,
			},
			{
				Question: "Combien de temps peut-on conserver des données personnelles ?",
				Options:  []string{"Indéfiniment", "Dix ans", "Pas plus longtemps que nécessaire à la finalité du traitement", "Jusqu'à la fin de l'année civile"},
				Correct:  2,
			},
			{
				Question: "En cas de violation de données, sous quel délai la CNIL doit-elle être notifiée ?",
				Options:  []string{"24 heures", "72 heures", "Un mois", "Aucune notification n'est requise"},
				Correct:  1,
			},
			{
				Question: "Un étudiant demande l'accès à ses données. Que faire ?",
				Options:  []string{"Refuser", "Transmettre la demande au DPO pour y répondre", "Lui envoyer tout le fichier des étudiants", "Lui demander de payer des frais"},
				Correct:  1,
			},
			{
				Question: "Quelle donnée est considérée comme sensible ?",
				Options:  []string{"L'adresse email professionnelle", "Le numéro de bureau", "L'état de santé", "Le département d'affectation"},
				Correct:  2,
			},
			{
				Question: "Peut-on envoyer un fichier de notes par email non chiffré à une adresse personnelle ?",
				Options:  []string{"Oui", "Non", "Oui si le fichier est compressé", "Oui le week-end"},
				Correct:  1,
			},
			{
				Question: "Quel principe impose de ne collecter que les données nécessaires ?",
				Options:  []string{"La minimisation", "La portabilité", "La pseudonymisation", "L'exactitude"},
				Correct:  0,
			},
		},
	}
}

package controller

import (
	"encoding/json"
	"net/http"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/gin-gonic/gin"
)

const maxSubmissionBytes = 64 << 10

type QuizController struct {
	QuizService *service.QuizService
	BankService *service.QuestionBankService
}

func NewQuizController(quizService *service.QuizService, bankService *service.QuestionBankService) *QuizController {
	return &QuizController{QuizService: quizService, BankService: bankService}
}

type SubmitQuizResponse struct {
	Success bool        `json:"success"`
	Level   model.Level `json:"level"`
}

// @Summary Submit a quiz result
// @Tags quiz
// @Accept json
// @Produce json
// @Param submission body service.SubmissionRequest true "Quiz submission"
// @Success 200 {object} SubmitQuizResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 503 {object} util.ErrorResponse
// @Router /api/submit-quiz [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxSubmissionBytes)

	var req service.SubmissionRequest
	if err := json.NewDecoder(ctx.Request.Body).Decode(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidSubmission.Error())
		return
	}

	level, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, SubmitQuizResponse{Success: true, Level: level})
}

// @Summary Question banks
// @Tags quiz
// @Produce json
// @Success 200 {object} model.QuestionBank
// @Router /api/questions [get]
func (c *QuizController) GetQuestionBank(ctx *gin.Context) {
	bank := c.BankService.Current()
	util.Success(ctx, gin.H{
		"version":        bank.Version,
		"cyberQuestions": bank.Cyber,
		"rgpdQuestions":  bank.RGPD,
	})
}

// @Summary Department list
// @Tags quiz
// @Produce json
// @Success 200 {array} string
// @Router /api/departments [get]
func (c *QuizController) ListDepartments(ctx *gin.Context) {
	util.Success(ctx, c.BankService.Current().Departments)
}

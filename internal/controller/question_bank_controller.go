package controller

import (
	"strconv"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionBankController struct {
	BankService *service.QuestionBankService
}

func NewQuestionBankController(bankService *service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{BankService: bankService}
}

type DepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary Append a question
// @Tags question-bank
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param quizType path string true "cyber or rgpd"
// @Param question body model.Question true "Question"
// @Success 201 {object} model.QuestionBank
// @Failure 409 {object} util.ErrorResponse
// @Router /api/admin/questions/{quizType} [post]
func (c *QuestionBankController) AddQuestion(ctx *gin.Context) {
	var q model.Question
	if err := ctx.ShouldBindJSON(&q); err != nil {
		util.BadRequest(ctx, util.ErrInvalidQuestion.Error())
		return
	}

	bank, err := c.BankService.AddQuestion(ctx.Param("quizType"), q)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, bank)
}

// @Summary Remove a question
// @Tags question-bank
// @Security BearerAuth
// @Produce json
// @Param quizType path string true "cyber or rgpd"
// @Param index path int true "Question index"
// @Success 200 {object} model.QuestionBank
// @Router /api/admin/questions/{quizType}/{index} [delete]
func (c *QuestionBankController) RemoveQuestion(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "index must be an integer")
		return
	}

	bank, err := c.BankService.RemoveQuestion(ctx.Param("quizType"), index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, bank)
}

// @Summary Add a department
// @Tags question-bank
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param department body DepartmentRequest true "Department"
// @Router /api/admin/departments [post]
func (c *QuestionBankController) AddDepartment(ctx *gin.Context) {
	var req DepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidDepartment.Error())
		return
	}

	bank, err := c.BankService.AddDepartment(req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, bank.Departments)
}

// @Summary Remove a department
// @Tags question-bank
// @Security BearerAuth
// @Produce json
// @Param name path string true "Department name"
// @Router /api/admin/departments/{name} [delete]
func (c *QuestionBankController) RemoveDepartment(ctx *gin.Context) {
	bank, err := c.BankService.RemoveDepartment(ctx.Param("name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, bank.Departments)
}

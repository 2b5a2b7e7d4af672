package controller

import (
	"errors"
	"net/http"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to status codes. Validation details stay
// in the logs; clients only see the category.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidSubmission):
		util.BadRequest(ctx, util.ErrInvalidSubmission.Error())
	case errors.Is(err, util.ErrStorageUnavailable):
		ctx.Error(err)
		util.ServiceUnavailable(ctx)
	case errors.Is(err, util.ErrUnknownQuizType):
		util.Error(ctx, http.StatusNotFound, util.ErrUnknownQuizType.Error())
	case errors.Is(err, util.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, util.ErrQuestionNotFound.Error())
	case errors.Is(err, util.ErrDepartmentNotFound):
		util.Error(ctx, http.StatusNotFound, util.ErrDepartmentNotFound.Error())
	case errors.Is(err, util.ErrInvalidQuestion), errors.Is(err, util.ErrInvalidDepartment):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrBankFull):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, util.ErrInvalidCredentials.Error())
	case errors.Is(err, util.ErrAdminNotConfigured):
		util.Error(ctx, http.StatusInternalServerError, util.ErrAdminNotConfigured.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

package util

import "errors"

var (
	ErrInvalidSubmission  = errors.New("invalid submission")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrSchemaMismatch     = errors.New("store header does not match schema")
	ErrUnknownQuizType    = errors.New("unknown quiz type")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrBankFull           = errors.New("question bank exceeds answer columns")
	ErrInvalidDepartment  = errors.New("invalid department")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin not configured")
)

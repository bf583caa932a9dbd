package balanceerrors

import (
	"net/http"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found for this employee",
		http.StatusNotFound,
	)
	ErrBalanceExists = apperror.New(
		apperror.CodeConflict,
		"a leave balance already exists for this employee",
		http.StatusConflict,
	)
	ErrUpdateFailed = apperror.New(
		apperror.CodeBusinessRule,
		"update failed, employee may not exist",
		http.StatusBadRequest,
	)
	ErrDeleteFailed = apperror.New(
		apperror.CodeBusinessRule,
		"delete failed, employee may not exist",
		http.StatusBadRequest,
	)
)

package responses

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string `json:"code"` // UUID from PlatformError
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses.
// Known infrastructure errors are classified first; their message is used
// when none is given.
func HandleError(reqCtx *gin.Context, err error, message string) {
	domainErr := Classify(reqCtx.Request.Context(), err)
	if domainErr != nil {
		if message == "" {
			message = domainErr.Message
		}
		if serverSide(domainErr) {
			platformerrors.LogError(*zerolog.Ctx(reqCtx.Request.Context()), domainErr)
		}
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errResp := ErrorResponse{
			Code:          domainErr.GetUUID(),
			Error:         message,
			Message:       message,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
		}

		_ = reqCtx.Error(domainErr)
		reqCtx.AbortWithStatusJSON(statusCode, errResp)
		return
	}
	// Non-platform errors
	errResp := ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)

	statusCode := platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType())

	errResp := ErrorResponse{
		Code:          err.GetUUID(),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	}

	reqCtx.AbortWithStatusJSON(statusCode, errResp)
}

// Classify maps errors of the git, GitHub and credential layers onto a
// PlatformError. It returns nil for a nil error.
func Classify(ctx context.Context, err error) *platformerrors.PlatformError {
	if err == nil {
		return nil
	}
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}

	errorType := platformerrors.ErrorTypeInternal
	var apiErr *github.APIError
	switch {
	case errors.Is(err, credentials.ErrMissingCredentials):
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, credentials.MissingMessage, err, "")
	case errors.As(err, &apiErr):
		errorType = githubErrorType(apiErr.StatusCode)
	case errors.Is(err, gitcli.ErrBranchExists), errors.Is(err, gitcli.ErrPathExists):
		errorType = platformerrors.ErrorTypeConflict
	case errors.Is(err, gitcli.ErrPathEscapesRepo), errors.Is(err, gitcli.ErrEmptyPath):
		errorType = platformerrors.ErrorTypeValidation
	case errors.Is(err, os.ErrNotExist):
		errorType = platformerrors.ErrorTypeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		errorType = platformerrors.ErrorTypeTimeout
	}
	if errorType == platformerrors.ErrorTypeInternal {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, err.Error())
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errorType, err.Error(), err, "")
}

// serverSide reports errors worth a log line of their own; client errors are
// covered by the request log.
func serverSide(err error) bool {
	return platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal) ||
		platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) ||
		platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout)
}

func githubErrorType(status int) platformerrors.ErrorType {
	switch status {
	case http.StatusUnauthorized:
		return platformerrors.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return platformerrors.ErrorTypeForbidden
	case http.StatusNotFound:
		return platformerrors.ErrorTypeNotFound
	case http.StatusUnprocessableEntity:
		return platformerrors.ErrorTypeValidation
	case http.StatusTooManyRequests:
		return platformerrors.ErrorTypeRateLimited
	default:
		return platformerrors.ErrorTypeExternal
	}
}

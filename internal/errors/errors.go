package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ServiceError struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
	Time    time.Time  `json:"time"`
}

func NewServiceError(code codes.Code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Time:    time.Now(),
	}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("code: %s, message: %s, time: %s",
		e.Code.String(), e.Message, e.Time.Format(time.RFC3339))
}

// Is matches service errors by code and message so wrapped sentinels compare
// equal regardless of their construction time.
func (e *ServiceError) Is(target error) bool {
	var other *ServiceError
	if !stderrors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

func (e *ServiceError) ToGRPCStatus() error {
	return status.Error(e.Code, e.Message)
}

var (
	ErrUnknownDependency = NewServiceError(codes.NotFound, "unknown dependency")
	ErrInternalError     = NewServiceError(codes.Internal, "internal server error")
)

// CheckTimeoutError reports a dependency check that outlived its deadline.
type CheckTimeoutError struct {
	Timeout time.Duration
}

func (e *CheckTimeoutError) Error() string {
	return fmt.Sprintf("check timed out after %s", e.Timeout)
}

// CheckPanicError reports a dependency check that panicked.
type CheckPanicError struct {
	Value any
}

func (e *CheckPanicError) Error() string {
	return fmt.Sprintf("check panicked: %v", e.Value)
}

// ToServiceError maps any error to a ServiceError, keeping service errors as they are.
func ToServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}

	return NewServiceError(codes.Internal, err.Error())
}

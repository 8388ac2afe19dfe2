package services

import (
	"github.com/maxaizer/jobmatch/internal/identity"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrJobNotFound              = errors.New("job not found")
	ErrJobClosed                = errors.New("this job is no longer accepting applications")
	ErrAlreadyApplied           = errors.New("you have already applied for this job")
	ErrApplicationNotFound      = errors.New("application not found")
	ErrMissingUserID            = errors.New("user ID is undefined")
	ErrProfileNotFound          = errors.New("user document not found and could not create default")
	ErrInvalidJobStatus         = errors.New("job status must be open or closed")
	ErrInvalidApplicationStatus = errors.New("application status must be pending, viewed, contacted or rejected")
	ErrInvalidSection           = errors.New("invalid profile section")
	ErrInvalidApplication       = errors.New("invalid application")
)

var businessErrors = []error{
	ErrJobNotFound, ErrJobClosed, ErrAlreadyApplied, ErrApplicationNotFound, ErrMissingUserID,
	ErrProfileNotFound, ErrInvalidJobStatus, ErrInvalidApplicationStatus, ErrInvalidSection,
	ErrInvalidApplication, identity.ErrEmailInUse, identity.ErrInvalidEmail, identity.ErrWeakPassword,
}

// OperationError is an infrastructure failure with a message that can be shown to the user as is.
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func IsBusinessError(err error) bool {
	return lo.ContainsBy(businessErrors, func(target error) bool {
		return errors.Is(err, target)
	})
}

// failed keeps business errors intact and hides everything else behind the message.
func failed(message string, err error) error {
	if err == nil || IsBusinessError(err) {
		return err
	}
	return &OperationError{Message: message, Err: err}
}

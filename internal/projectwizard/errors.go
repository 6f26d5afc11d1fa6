package projectwizard

import (
	"fmt"

	apperrors "clientkit/pkg/errors"
)

var (
	ErrStepInvalid     = fmt.Errorf("%w: current step is not valid", apperrors.ErrInvalidState)
	ErrNotPublishStep  = fmt.Errorf("%w: project can only be published from the last step", apperrors.ErrInvalidState)
	ErrUnknownQuestion = fmt.Errorf("%w: unknown question", apperrors.ErrNotFound)
	ErrUnknownOption   = fmt.Errorf("%w: unknown option", apperrors.ErrNotFound)
	ErrNoOptions       = fmt.Errorf("%w: question type has no options", apperrors.ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	ErrInvalidValue    = fmt.Errorf("%w: invalid value", apperrors.ErrValidation)
)

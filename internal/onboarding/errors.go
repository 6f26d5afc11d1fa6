package onboarding

import (
	"fmt"

	apperrors "clientkit/pkg/errors"
)

var (
	ErrStepIncomplete   = fmt.Errorf("%w: current step is incomplete", apperrors.ErrInvalidState)
	ErrWizardComplete   = fmt.Errorf("%w: onboarding already completed", apperrors.ErrInvalidState)
	ErrNotComplete      = fmt.Errorf("%w: onboarding not completed yet", apperrors.ErrInvalidState)
	ErrSessionClosed    = fmt.Errorf("%w: onboarding session closed", apperrors.ErrInvalidState)
	ErrNoContract       = fmt.Errorf("%w: project has no contract", apperrors.ErrInvalidState)
	ErrNoPayment        = fmt.Errorf("%w: project does not collect payment", apperrors.ErrInvalidState)
	ErrPaymentPending   = fmt.Errorf("%w: payment already in progress", apperrors.ErrInvalidState)
	ErrAlreadyPaid      = fmt.Errorf("%w: payment already completed", apperrors.ErrInvalidState)
	ErrUploadInProgress = fmt.Errorf("%w: wait for uploads to finish", apperrors.ErrInvalidState)
	ErrSessionNotFound  = fmt.Errorf("%w: onboarding session not found", apperrors.ErrNotFound)
	ErrUnknownQuestion  = fmt.Errorf("%w: unknown question", apperrors.ErrNotFound)
	ErrUnknownFile      = fmt.Errorf("%w: unknown file", apperrors.ErrNotFound)
	ErrInvalidAnswer    = fmt.Errorf("%w: answer does not fit the question", apperrors.ErrValidation)
	ErrSignatureMissing = fmt.Errorf("%w: name and email are required to sign", apperrors.ErrValidation)
	ErrNotPublished     = fmt.Errorf("%w: project is not accepting clients", apperrors.ErrNotFound)
)

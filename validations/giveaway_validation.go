package validations

import (
	domainGiveaway "github.com/AzielCF/az-giveaway/domains/giveaway"
	pkgError "github.com/AzielCF/az-giveaway/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidateDraft guards the persistence boundary. Normalization already caps
// lengths, so a violation here means a caller bypassed it.
func ValidateDraft(draft *domainGiveaway.Draft) error {
	if draft == nil {
		return pkgError.ValidationError("draft is required")
	}

	err := validation.ValidateStruct(draft,
		validation.Field(&draft.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&draft.Organizer, validation.Length(0, 100)),
		validation.Field(&draft.Prize, validation.Length(0, 200)),
		validation.Field(&draft.Requirements, validation.Length(0, 500)),
		validation.Field(&draft.Notes, validation.Length(0, 300)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

// ValidateResult checks the won/lost value coming from the dashboard.
func ValidateResult(result string) error {
	err := validation.Validate(result,
		validation.Required,
		validation.In(domainGiveaway.ResultWon, domainGiveaway.ResultLost, domainGiveaway.ResultPending),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

// ValidateStatus checks the lifecycle value coming from the dashboard.
func ValidateStatus(status string) error {
	err := validation.Validate(status,
		validation.Required,
		validation.In(domainGiveaway.StatusActive, domainGiveaway.StatusCompleted),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

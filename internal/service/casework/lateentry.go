package casework

import (
	models "casedocs/internal/domain/models/casework"
)

// collectingStatuses lists, per stage, the appeal statuses during which
// that stage is still collecting documents. A document received under any
// other status is a late entry. Stages absent from this table are never
// late entries.
var collectingStatuses = map[string][]string{
	models.StageAppellantCase: {
		models.StatusAssignCaseOfficer,
		models.StatusValidation,
		models.StatusReadyToStart,
	},
	models.StageLPAQuestionnaire: {
		models.StatusAssignCaseOfficer,
		models.StatusValidation,
		models.StatusReadyToStart,
		models.StatusLPAQuestionnaireDue,
	},
}

// IsLateEntry classifies a document received for the given stage while
// the appeal held the given status. It must be evaluated once, at
// version-creation time, with the status captured at that instant; the
// result is stored immutably on the version.
func IsLateEntry(stage, appealStatusAtReceipt string) bool {
	statuses, ok := collectingStatuses[stage]
	if !ok {
		return false
	}
	for _, s := range statuses {
		if s == appealStatusAtReceipt {
			return false
		}
	}
	return true
}

package casework

// Appeal process stages documents are filed under. These double as the
// leading segment of folder paths.
const (
	StageAppellantCase    = "appellantCase"
	StageLPAQuestionnaire = "lpaQuestionnaire"
	StageRepresentations  = "representations"
	StageCosts            = "costs"
	StageInternal         = "internal"
	StageAppealDecision   = "appealDecision"
)

// Appeal statuses relevant to late-entry classification. The full status
// machine lives with the case service; the document engine only needs the
// "still collecting" statuses per stage.
const (
	StatusAssignCaseOfficer   = "assign_case_officer"
	StatusValidation          = "validation"
	StatusReadyToStart        = "ready_to_start"
	StatusLPAQuestionnaireDue = "lpa_questionnaire_due"
)

package constants

const (
	// Procedure name recorded in the moderation log.
	ModerationProcedure = "post_report_operations"

	// Field limits for filing a report.
	MaxReasonLength      = 100
	MaxDescriptionLength = 500
	MaxNotesLength       = 500
)

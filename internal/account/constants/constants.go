package constants

const (
	// Procedure name recorded in the moderation log.
	ModerationProcedure = "user_moderation"

	// Field limits for registration.
	MaxUserNameLength = 50
	MaxMobileLength   = 20
)

package constants

const (
	// Featured strip shown above the public feed.
	FeaturedStripSize = 12

	// Procedure name recorded in the moderation log.
	ModerationProcedure = "post_moderation"
)

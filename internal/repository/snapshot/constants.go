package snapshot

const (
	msgStorageRead  = "failed to read from storage"
	msgStorageWrite = "failed to write to storage"

	errUserNotFound        = "user not found"
	errProjectNotFound     = "project not found"
	errProjectExists       = "project with this id already exists"
	errSubmissionNotFound  = "submission not found"
	errRoomNotFound        = "chat room not found"
	errEmptyMessage        = "message content cannot be empty"
	errTestimonialExists   = "testimonial already submitted"
	errRatingRangeFmt      = "rating must be between %d and %d"
	errPublicLinkExhausted = "could not allocate a unique public link"

	maxPublicLinkAttempts = 8
	onboardPath           = "/onboard/"
)

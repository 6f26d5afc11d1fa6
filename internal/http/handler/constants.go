package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"
	jsonKeyCount   = "count"
	jsonKeyURL     = "url"

	paramID           = "id"
	paramSubmissionID = "submission_id"
	paramPublicID     = "public_id"
	paramSessionID    = "session_id"
	paramQuestionID   = "question_id"
	paramFileID       = "file_id"

	formFieldFile = "file"
)

const (
	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgGenerateTokenFail       = "failed to generate token"
	msgLoggedOut               = "logged out"
	msgProjectDeleted          = "project deleted"
	msgProjectNotFound         = "project not found"
	msgRoomNotFound            = "chat room not found"
	msgMarkedRead              = "messages marked read"
	msgSessionClosed           = "session closed"
	msgFileRequired            = "file field is required"
	msgFileOpenFail            = "failed to read uploaded file"
	msgRenderDescriptionFail   = "failed to render project description"
	msgInvalidQuestionFmt      = "brief_questions[%d]: %s"
	msgFileURLRequired         = "file_url is required for file messages"
	msgDescriptionRequired     = "description is required"
	msgQuestionsRequired       = "at least one brief question is required"
	msgSubmissionNotFound      = "submission not found"
	msgFileNotFound            = "file not found"
	msgFileNotStored           = "file has no stored copy"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead int64 = 1 << 20

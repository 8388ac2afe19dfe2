package events

var (
	ProfileCreatedTopic       = "ProfileCreatedEvent"
	JobCreatedTopic           = "JobCreatedEvent"
	ApplicationSubmittedTopic = "ApplicationSubmittedEvent"
	JobSaveToggledTopic       = "JobSaveToggledEvent"
)

type ProfileCreated struct {
	UserID   string
	Role     string
	Location string
}

type JobCreated struct {
	JobID    string
	PostedBy string
}

type ApplicationSubmitted struct {
	ApplicationID string
	StudentID     string
	JobID         string
}

type JobSaveToggled struct {
	StudentID string
	JobID     string
	Saved     bool
}

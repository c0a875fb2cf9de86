package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectTitle string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}

package constants

// Session and gin context keys
const (
	SessionCookieName  = "project_session"
	ContextKeyUserID   = "user_id"
	ContextKeyCaller   = "caller"
	ContextKeyProject  = "project"
	ContextKeyTask     = "task"
	ContextKeyAssignee = "task_assignee"
)

// Validation limits
const (
	MinPasswordLength     = 8
	MaxProjectTitleLength = 200
	MaxTaskTitleLength    = 200
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Dashboard
const (
	DefaultDueInDays     = 7
	MaxUpcomingDeadlines = 5
)

// DateLayout is the wire format of task start and end dates.
const DateLayout = "2006-01-02"

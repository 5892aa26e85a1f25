package reporting

// Overview is the dashboard landing payload.
type Overview struct {
	KPI            KPI             `json:"kpi"`
	UsageByDay     []UsagePoint    `json:"usageByDay"`
	RecentSessions []RecentSession `json:"recentSessions"`
}

type KPI struct {
	TotalClients    int  `json:"totalClients"`
	ActiveAgents    int  `json:"activeAgents"`
	TotalMinutes    int  `json:"totalMinutes"`
	SystemLatencyMs int  `json:"systemLatencyMs"`
	Healthy         bool `json:"healthy"`
}

// UsagePoint is call minutes for one UTC day. Day is the short weekday name.
type UsagePoint struct {
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
}

type RecentSession struct {
	Client    string        `json:"client"`
	Plan      string        `json:"plan"`
	AgentID   string        `json:"agentId"`
	StartTime string        `json:"startTime"`
	Duration  string        `json:"duration"`
	Status    SessionStatus `json:"status"`
}

type SessionStatus string

const (
	SessionCompleted SessionStatus = "Completed"
	SessionFailed    SessionStatus = "Failed"
	SessionActive    SessionStatus = "Active"
)

const (
	usageDays      = 7
	recentSessions = 5
	unknownPlan    = "Unknown"
)

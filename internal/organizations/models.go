package organizations

import (
	"errors"
	"strings"
)

// Organization is a customer account. Read-only through the API.
type Organization struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	ActiveAgents       int                `json:"activeAgents"`
	MonthlyMinutes     int                `json:"monthlyMinutes"`
}

type SubscriptionStatus string

const (
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionPastDue SubscriptionStatus = "past_due"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionPastDue:
		return true
	default:
		return false
	}
}

// Label is the human form used on the dashboard.
func (s SubscriptionStatus) Label() string {
	switch s {
	case SubscriptionTrial:
		return "Trial"
	case SubscriptionActive:
		return "Active"
	case SubscriptionPastDue:
		return "Past Due"
	default:
		return strings.TrimSpace(string(s))
	}
}

var ErrInvalidArgument = errors.New("invalid argument")

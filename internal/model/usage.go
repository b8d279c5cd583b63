package model

import "time"

// Service names an upstream API whose usage is tracked.
type Service string

const (
	ServiceApollo    Service = "apollo"
	ServiceInstantly Service = "instantly"
)

// UsagePeriod is the aggregation window for usage stats.
type UsagePeriod string

const (
	PeriodDay   UsagePeriod = "day"
	PeriodWeek  UsagePeriod = "week"
	PeriodMonth UsagePeriod = "month"
)

// UsageRecord is a single upstream API call.
type UsageRecord struct {
	ID         string    `json:"id"`
	Service    Service   `json:"service"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	Credits    int       `json:"credits"`
	Timestamp  time.Time `json:"timestamp"`
}

// DailyUsage is one day of aggregated usage.
type DailyUsage struct {
	Date     string `json:"date"`
	Requests int    `json:"requests"`
	Credits  int    `json:"credits"`
}

// UsageStats summarizes usage of one service over a period. TotalCredits
// is only set for Apollo.
type UsageStats struct {
	Service        Service      `json:"service"`
	Period         UsagePeriod  `json:"period"`
	TotalRequests  int          `json:"total_requests"`
	TotalCredits   *int         `json:"total_credits,omitempty"`
	DailyBreakdown []DailyUsage `json:"daily_breakdown"`
}

package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}

// AttendeeExport is served by the signed export link.
type AttendeeExport struct {
	EventKey    string          `json:"event_key"`
	Date        string          `json:"date"`
	Weekday     string          `json:"weekday"`
	Time        string          `json:"time"`
	Lodge       string          `json:"lodge"`
	MealPolicy  string          `json:"meal_policy"`
	Headcount   Headcount       `json:"headcount"`
	Attendees   []AttendeeEntry `json:"attendees"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type AttendeeEntry struct {
	Name         string    `json:"name"`
	Grade        string    `json:"grade"`
	Lodge        string    `json:"lodge"`
	Origin       string    `json:"origin"`
	Jurisdiction string    `json:"jurisdiction"`
	MealTier     string    `json:"meal_tier"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// Headcount aggregates confirmations for catering.
type Headcount struct {
	Total    int `json:"total" db:"total"`
	WithMeal int `json:"with_meal" db:"with_meal"`
	NoMeal   int `json:"no_meal" db:"no_meal"`
}

package domain

import "time"

// Booking is a committed reservation of a resource over [Start, End).
type Booking struct {
	ID         string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Resource   string
	ClubName   string
	Purpose    string
	NumGuests  int
	Color      string
	Recurrence *Recurrence
	CreatedAt  time.Time
}

// Recurrence is carried as metadata only; it is never expanded.
type Recurrence struct {
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	StartRecur string `json:"startRecur,omitempty"`
	EndRecur   string `json:"endRecur,omitempty"`
}

type Room struct {
	Key      string
	Name     string
	Capacity int
}

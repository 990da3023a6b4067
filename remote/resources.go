package remote

import (
	"context"
	"net/http"
)

// DailyGuidance is one entry of a student's daily guidance list.
type DailyGuidance struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// WellnessScore is one point of a wellness score history.
type WellnessScore struct {
	Date      string `json:"date"`
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
}

// BookingRequest is a request for a psychologist consultation.
type BookingRequest struct {
	ID             int    `json:"id"`
	StudentID      int    `json:"studentId"`
	PsychologistID int    `json:"psychologistId"`
	Slot           string `json:"slot"`
	Status         string `json:"status"`
	Notes          string `json:"notes,omitempty"`
}

// NewBookingRequest is the creation payload for a booking.
type NewBookingRequest struct {
	PsychologistID int    `json:"psychologistId"`
	Slot           string `json:"slot"`
	Notes          string `json:"notes,omitempty"`
}

// SessionRequest schedules a counseling session.
type SessionRequest struct {
	BookingID int    `json:"bookingId"`
	Slot      string `json:"slot"`
	Location  string `json:"location,omitempty"`
}

// ScheduledSession is a confirmed counseling session.
type ScheduledSession struct {
	ID        int    `json:"id"`
	BookingID int    `json:"bookingId"`
	Slot      string `json:"slot"`
	Location  string `json:"location,omitempty"`
	Status    string `json:"status"`
}

// DailyGuidance fetches the signed-in user's guidance list for today.
func (c *Client) DailyGuidance(ctx context.Context) ([]DailyGuidance, error) {
	var out []DailyGuidance
	if err := c.do(ctx, http.MethodGet, "/api/guidance/daily", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// WellnessScores fetches the signed-in user's wellness score history.
func (c *Client) WellnessScores(ctx context.Context) ([]WellnessScore, error) {
	var out []WellnessScore
	if err := c.do(ctx, http.MethodGet, "/api/wellness/scores", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// BookingRequests lists the signed-in user's booking requests.
func (c *Client) BookingRequests(ctx context.Context) ([]BookingRequest, error) {
	var out []BookingRequest
	if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBookingRequest submits a new booking request.
func (c *Client) CreateBookingRequest(ctx context.Context, in NewBookingRequest) (*BookingRequest, error) {
	var out BookingRequest
	if err := c.do(ctx, http.MethodPost, "/api/bookings", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScheduleSession confirms a counseling session slot for a booking.
func (c *Client) ScheduleSession(ctx context.Context, in SessionRequest) (*ScheduledSession, error) {
	var out ScheduledSession
	if err := c.do(ctx, http.MethodPost, "/api/sessions", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MirrorClient keeps the provider's own bookkeeping system in sync with the
// core's ticketing actions. The mirror is the authoritative counter for
// remaining inventory per performance.
type MirrorClient struct {
	baseURL    string
	httpClient *http.Client
}

type MirrorConfig struct {
	BaseURL string
	Timeout time.Duration
}

type recordEventRequest struct {
	EventID     int64  `json:"event_id"`
	Title       string `json:"title"`
	TicketCount int    `json:"ticket_count"`
}

type recordPerformanceRequest struct {
	PerformanceID int64 `json:"performance_id"`
	Start         int64 `json:"start"`
	End           int64 `json:"end"`
}

type recordBookingRequest struct {
	EventID       int64  `json:"event_id"`
	PerformanceID int64  `json:"performance_id"`
	BookingID     int64  `json:"booking_id"`
	BookerName    string `json:"booker_name"`
	BookerEmail   string `json:"booker_email"`
	Quantity      int    `json:"quantity"`
}

type cancelEventRequest struct {
	Message string `json:"message"`
}

type sponsorshipAcceptRequest struct {
	Percent int `json:"percent"`
}

type remainingTicketsResponse struct {
	Remaining int `json:"remaining"`
}

func NewMirrorClient(cfg MirrorConfig) *MirrorClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &MirrorClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (mc *MirrorClient) postJSON(path string, body any, wantStatus int) error {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	resp, err := mc.httpClient.Post(mc.baseURL+path, "application/json", buf)
	if err != nil {
		return fmt.Errorf("mirror call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func (mc *MirrorClient) patch(path string, body any) error {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest("PATCH", mc.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := mc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mirror call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// RecordNewEvent registers a new event and its total ticket count (0 for
// non-ticketed events).
func (mc *MirrorClient) RecordNewEvent(eventID int64, title string, ticketCount int) error {
	return mc.postJSON("/api/mirror/v1/events", recordEventRequest{
		EventID:     eventID,
		Title:       title,
		TicketCount: ticketCount,
	}, http.StatusCreated)
}

// RecordNewPerformance registers a performance's schedule.
func (mc *MirrorClient) RecordNewPerformance(eventID, performanceID int64, start, end time.Time) error {
	path := fmt.Sprintf("/api/mirror/v1/events/%d/performances", eventID)
	return mc.postJSON(path, recordPerformanceRequest{
		PerformanceID: performanceID,
		Start:         start.Unix(),
		End:           end.Unix(),
	}, http.StatusCreated)
}

// RecordNewBooking registers a booking with booker identity and quantity.
func (mc *MirrorClient) RecordNewBooking(eventID, performanceID, bookingID int64, bookerName, bookerEmail string, quantity int) error {
	return mc.postJSON("/api/mirror/v1/bookings", recordBookingRequest{
		EventID:       eventID,
		PerformanceID: performanceID,
		BookingID:     bookingID,
		BookerName:    bookerName,
		BookerEmail:   bookerEmail,
		Quantity:      quantity,
	}, http.StatusCreated)
}

// CancelBooking marks a booking cancelled on the mirror.
func (mc *MirrorClient) CancelBooking(bookingID int64) error {
	return mc.patch(fmt.Sprintf("/api/mirror/v1/bookings/%d/cancel", bookingID), nil)
}

// CancelEvent marks an event cancelled, carrying the organiser's message.
func (mc *MirrorClient) CancelEvent(eventID int64, message string) error {
	return mc.patch(fmt.Sprintf("/api/mirror/v1/events/%d/cancel", eventID), cancelEventRequest{Message: message})
}

// RecordSponsorshipAcceptance records the accepted discount percent.
func (mc *MirrorClient) RecordSponsorshipAcceptance(eventID int64, percent int) error {
	return mc.patch(fmt.Sprintf("/api/mirror/v1/events/%d/sponsorship/accept", eventID), sponsorshipAcceptRequest{Percent: percent})
}

// RecordSponsorshipRejection records a rejected sponsorship request.
func (mc *MirrorClient) RecordSponsorshipRejection(eventID int64) error {
	return mc.patch(fmt.Sprintf("/api/mirror/v1/events/%d/sponsorship/reject", eventID), nil)
}

// GetRemainingTickets queries the mirror's remaining inventory for one
// performance. The mirror's answer is authoritative.
func (mc *MirrorClient) GetRemainingTickets(eventID, performanceID int64) (int, error) {
	url := fmt.Sprintf("%s/api/mirror/v1/events/%d/performances/%d/remaining", mc.baseURL, eventID, performanceID)
	resp, err := mc.httpClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to query remaining tickets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result remainingTicketsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Remaining, nil
}

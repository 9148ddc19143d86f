package domain

import "time"

type Reservation struct {
	ID         int64     `json:"id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	PropertyID int64     `json:"property_id"`
	GuestID    int64     `json:"guest_id"`
}

// ReservationRow is a guest's reservation joined with the reserved property.
type ReservationRow struct {
	Reservation
	Property PropertyRow `json:"property"`
}

type Review struct {
	ID            int64  `json:"id"`
	GuestID       int64  `json:"guest_id"`
	PropertyID    int64  `json:"property_id"`
	ReservationID int64  `json:"reservation_id"`
	Rating        int    `json:"rating"` // 1..5
	Message       string `json:"message"`
}

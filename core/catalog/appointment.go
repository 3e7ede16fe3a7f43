package catalog

import (
	"time"

	"github.com/trezcool/safari/core"
)

// Appointment statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const DateLayout = "2006-01-02"

var AppointmentStatuses = []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// Appointment is a counselling session booked by a prospective student.
type Appointment struct {
	Base
	FullName           string `json:"full_name" validate:"notblank,max=200"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"omitempty,e164"`
	PreferredDate      string `json:"preferred_date" validate:"required,datetime=2006-01-02"`
	TimeSlot           string `json:"time_slot" validate:"required,timeslot"`
	DestinationCountry string `json:"destination_country"`
	StudyLevel         string `json:"study_level" validate:"omitempty,oneof=foundation diploma bachelor master phd"`
	Message            string `json:"message" validate:"max=2000"`
	Status             string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

func (a *Appointment) Clean() {
	cleanStrings(&a.FullName, &a.Phone, &a.PreferredDate, &a.TimeSlot, &a.DestinationCountry, &a.Message)
	a.Email = core.CleanString(a.Email, true /* lower */)
	a.StudyLevel = core.CleanString(a.StudyLevel, true /* lower */)
	a.Status = core.CleanString(a.Status, true /* lower */)
	if a.Status == "" {
		a.Status = StatusPending
	}
}

// Date parses PreferredDate; the zero time is returned for malformed dates.
func (a *Appointment) Date() time.Time {
	d, _ := time.Parse(DateLayout, a.PreferredDate)
	return d
}

func (a *Appointment) Cancellable() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

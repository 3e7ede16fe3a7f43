package catalog

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
)

const cancelTokenSalt = "safari.core.catalog.appointments"

var (
	errPastDate      = "must be today or a later date"
	errUnknownSlot   = "this time slot is not available"
	errNotCancelable = errors.New("this appointment can no longer be cancelled")
	errInvalidLink   = errors.New("invalid or expired cancellation link")
)

// AppointmentService books counselling sessions and lets visitors cancel them from their confirmation email.
type AppointmentService struct {
	*Service[Appointment, *Appointment]

	conf     *core.Config
	mailSvc  core.EmailService
	tokenGen *core.TokenGenerator
}

func NewAppointmentService(
	conf *core.Config,
	repo Repository[Appointment],
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *AppointmentService {
	return &AppointmentService{
		Service:  NewService[Appointment](repo, validate, translator, logger),
		conf:     conf,
		mailSvc:  mailSvc,
		tokenGen: core.NewTokenGenerator(cancelTokenSalt, conf.SecretKey, conf.CancellationTimeoutDelta),
	}
}

// Book stores a pending appointment and emails the visitor and the counselling team.
func (svc *AppointmentService) Book(ctx context.Context, appt Appointment) (Appointment, error) {
	appt.Status = StatusPending
	if err := svc.Clean(&appt); err != nil {
		return Appointment{}, err
	}

	var flds []core.FieldError
	today := svc.NowFunc().UTC().Truncate(24 * time.Hour)
	if appt.Date().Before(today) {
		flds = append(flds, core.FieldError{Field: "preferred_date", Error: errPastDate})
	}
	if !svc.knownSlot(appt.TimeSlot) {
		flds = append(flds, core.FieldError{Field: "time_slot", Error: errUnknownSlot})
	}
	if len(flds) > 0 {
		return Appointment{}, core.NewValidationError(nil, flds...)
	}

	appt, err := svc.Save(ctx, "", appt)
	if err != nil {
		return Appointment{}, err
	}
	msgs := []*core.EmailMessage{svc.confirmationMail(appt)}
	if svc.conf.AppointmentNotifyAddress != "" {
		msgs = append(msgs, svc.notificationMail(appt))
	}
	svc.mailSvc.SendMessages(msgs...)
	return appt, nil
}

// Cancel checks the signed link of a confirmation email and cancels the appointment.
func (svc *AppointmentService) Cancel(ctx context.Context, uid, token string) (Appointment, error) {
	invalidLink := core.NewValidationError(errInvalidLink)

	id, err := core.DecodeUID(uid)
	if err != nil {
		return Appointment{}, invalidLink
	}
	appt, err := svc.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Appointment{}, invalidLink
		}
		return Appointment{}, errors.Wrap(err, "finding appointment")
	}
	if err = svc.tokenGen.Verify(cancelHashValue(appt), token); err != nil {
		return Appointment{}, invalidLink
	}
	if !appt.Cancellable() {
		return Appointment{}, core.NewValidationError(errNotCancelable)
	}

	appt.Status = StatusCancelled
	return svc.Save(ctx, appt.ID, appt)
}

// CancelToken returns the token of the cancellation link sent to the visitor.
func (svc *AppointmentService) CancelToken(appt Appointment) string {
	return svc.tokenGen.Make(cancelHashValue(appt))
}

// Slots returns the bookable times of day.
func (svc *AppointmentService) Slots() []string {
	return append([]string(nil), svc.conf.AppointmentSlots...)
}

func (svc *AppointmentService) knownSlot(slot string) bool {
	for _, s := range svc.conf.AppointmentSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// The token stops verifying once the status changes.
func cancelHashValue(appt Appointment) []byte {
	return []byte(appt.ID + appt.Status + appt.CreatedAt.UTC().Format(time.RFC3339))
}

func (svc *AppointmentService) confirmationMail(appt Appointment) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: appt.FullName, Address: appt.Email}},
		Subject:      "Your consultation request",
		TemplateName: "appointment_confirmation",
		TemplateData: map[string]interface{}{
			"Name":     appt.FullName,
			"Date":     appt.PreferredDate,
			"TimeSlot": appt.TimeSlot,
			"UID":      core.EncodeUID(appt.ID),
			"Token":    svc.CancelToken(appt),
		},
	}
}

func (svc *AppointmentService) notificationMail(appt Appointment) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Address: svc.conf.AppointmentNotifyAddress}},
		Subject:      fmt.Sprintf("New appointment: %s on %s", appt.FullName, appt.PreferredDate),
		TemplateName: "appointment_notification",
		TemplateData: map[string]interface{}{
			"Name":        appt.FullName,
			"Email":       appt.Email,
			"Phone":       appt.Phone,
			"Date":        appt.PreferredDate,
			"TimeSlot":    appt.TimeSlot,
			"Destination": appt.DestinationCountry,
			"Message":     appt.Message,
		},
	}
}

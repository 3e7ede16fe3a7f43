package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

type appointmentApi struct {
	svc      *catalog.AppointmentService
	validate *validator.Validate
}

// registerAppointmentAPI mounts the public booking endpoints and, for counsellors,
// the generic back-office endpoints of the collection.
func registerAppointmentAPI(
	g *echo.Group,
	auth *Auth,
	conf *core.Config,
	svc *catalog.AppointmentService,
	validate *validator.Validate,
) {
	api := appointmentApi{svc: svc, validate: validate}
	resource := &resourceApi[catalog.Appointment, *catalog.Appointment]{
		collection: catalog.Appointments,
		spec:       catalog.AppointmentSpec,
		svc:        svc.Service,
		conf:       conf,
	}
	staff := []echo.MiddlewareFunc{auth.required(), staffMiddleware(user.RoleStaff, user.RoleStaffCounsellor)}

	ag := g.Group("/" + catalog.Appointments)

	// un-authed endpoints
	ag.POST("", api.book)
	ag.POST("/cancel", api.cancel)
	ag.GET("/slots", api.slots)

	ag.GET("", resource.list, staff...)
	ag.GET("/:id", resource.retrieve, staff...)
	ag.PUT("/:id", resource.update, staff...)
	ag.DELETE("/:id", resource.destroy, staff...)
}

// Handlers

func (api *appointmentApi) book(ctx echo.Context) error {
	var data catalog.Appointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Appointment")
	}
	appt, err := api.svc.Book(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "booking appointment")
	}
	return ctx.JSON(http.StatusCreated, appt)
}

func (api *appointmentApi) cancel(ctx echo.Context) error {
	var data CancelAppointmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CancelAppointmentRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	appt, err := api.svc.Cancel(ctx.Request().Context(), data.UID, data.Token)
	if err != nil {
		return errors.Wrap(err, "cancelling appointment")
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *appointmentApi) slots(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Slots())
}

type CancelAppointmentRequest struct {
	UID   string `json:"uid" validate:"required"`
	Token string `json:"token" validate:"required"`
}

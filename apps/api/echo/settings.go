package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

type settingsApi struct {
	svc   *catalog.Service[catalog.SiteSettings, *catalog.SiteSettings]
	setup *catalog.SetupService
}

// registerSettingsAPI mounts the site settings singleton and the one-time setup.
func registerSettingsAPI(
	g *echo.Group,
	auth *Auth,
	svc *catalog.Service[catalog.SiteSettings, *catalog.SiteSettings],
	setup *catalog.SetupService,
) {
	api := settingsApi{svc: svc, setup: setup}

	sg := g.Group("/" + catalog.Settings)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update, auth.required(), adminMiddleware())

	stg := g.Group("/" + catalog.Setup)
	stg.GET("", api.setupStatus)
	stg.POST("", api.runSetup)
}

// Handlers

func (api *settingsApi) retrieve(ctx echo.Context) error {
	settings, err := api.svc.Get(ctx.Request().Context(), catalog.SettingsID)
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data catalog.SiteSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SiteSettings")
	}
	settings, err := api.svc.Save(ctx.Request().Context(), catalog.SettingsID, data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *settingsApi) setupStatus(ctx echo.Context) error {
	done, err := api.setup.IsSetUp(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "checking setup")
	}
	return ctx.JSON(http.StatusOK, SetupStatusResponse{IsSetUp: done})
}

func (api *settingsApi) runSetup(ctx echo.Context) error {
	var data catalog.SetupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetupRequest")
	}
	settings, owner, err := api.setup.Run(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "running setup")
	}
	return ctx.JSON(http.StatusCreated, SetupResponse{Settings: settings, Owner: owner})
}

type (
	SetupStatusResponse struct {
		IsSetUp bool `json:"is_set_up"`
	}

	SetupResponse struct {
		Settings catalog.SiteSettings `json:"settings"`
		Owner    user.User            `json:"owner"`
	}
)

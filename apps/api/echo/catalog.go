package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
)

// access tells which read endpoints of a collection anonymous visitors may call.
type access struct {
	publicList   bool
	publicDetail bool
}

type resourceApi[T any, PT catalog.EntityPtr[T]] struct {
	collection string
	spec       core.ListSpec
	svc        *catalog.Service[T, PT]
	conf       *core.Config
}

// registerResource mounts list, detail, create, update and delete endpoints of a catalog collection.
// Writes are for back-office users holding one of writeRoles (admins always pass).
func registerResource[T any, PT catalog.EntityPtr[T]](
	g *echo.Group,
	auth *Auth,
	conf *core.Config,
	collection string,
	spec core.ListSpec,
	svc *catalog.Service[T, PT],
	acc access,
	writeRoles ...string,
) {
	api := &resourceApi[T, PT]{collection: collection, spec: spec, svc: svc, conf: conf}
	staff := []echo.MiddlewareFunc{auth.required(), staffMiddleware(writeRoles...)}

	rg := g.Group("/" + collection)
	if acc.publicList {
		rg.GET("", api.list, auth.optional())
	} else {
		rg.GET("", api.list, staff...)
	}
	if acc.publicDetail {
		rg.GET("/:id", api.retrieve, auth.optional())
	} else {
		rg.GET("/:id", api.retrieve, staff...)
	}
	rg.POST("", api.create, staff...)
	rg.PUT("/:id", api.update, staff...)
	rg.DELETE("/:id", api.destroy, staff...)
}

func (api *resourceApi[T, PT]) listParams() *ListParams {
	return &ListParams{
		DefaultPerPage: api.conf.Server.DefaultPageSize,
		MaxPerPage:     api.conf.Server.MaxPageSize,
	}
}

func (api *resourceApi[T, PT]) list(ctx echo.Context) error {
	params := api.listParams()
	if err := params.Bind(ctx, api.spec); err != nil {
		return err
	}
	// visitors only ever see published records
	if flag, ok := catalog.PublicFlags[api.collection]; ok && !isStaffRequest(ctx) {
		params.Query.Flags[flag] = true
	}

	page, err := api.svc.List(ctx.Request().Context(), params.Query)
	if err != nil {
		return errors.Wrapf(err, "listing %s", api.collection)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *resourceApi[T, PT]) retrieve(ctx echo.Context) error {
	ent, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "finding %s", api.collection)
	}
	if p, ok := any(PT(&ent)).(catalog.Publishable); ok && !p.IsPublic() && !isStaffRequest(ctx) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, ent)
}

func (api *resourceApi[T, PT]) create(ctx echo.Context) error {
	var data T
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s", api.collection)
	}
	ent, err := api.svc.Save(ctx.Request().Context(), "", data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.collection)
	}
	return ctx.JSON(http.StatusCreated, ent)
}

func (api *resourceApi[T, PT]) update(ctx echo.Context) error {
	var data T
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s", api.collection)
	}
	ent, err := api.svc.Save(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.collection)
	}
	return ctx.JSON(http.StatusOK, ent)
}

func (api *resourceApi[T, PT]) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.collection)
	}
	return ctx.NoContent(http.StatusNoContent)
}

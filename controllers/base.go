package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/middleware"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// parseID reads the :id path parameter. An invalid id answers 404.
func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}

// optionalUint parses a query parameter, returning nil when absent or malformed.
func optionalUint(ctx *gin.Context, key string) *uint {
	v, err := strconv.ParseUint(strings.TrimSpace(ctx.Query(key)), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

// pageRequest builds the listing request for the current URL, keeping every query parameter but page.
func pageRequest(ctx *gin.Context) services.PageRequest {
	page, _ := strconv.Atoi(ctx.Query("page"))
	perPage, _ := strconv.Atoi(ctx.Query("per_page"))
	query := ctx.Request.URL.Query()
	query.Del("page")
	return services.PageRequest{
		Page:    page,
		PerPage: perPage,
		BaseURL: strings.TrimRight(config.Get().AppURL, "/") + ctx.Request.URL.Path,
		Query:   query,
	}
}

func actor(ctx *gin.Context) services.Actor {
	return services.Actor{UserID: middleware.UserID(ctx)}
}

// respondError maps service errors onto HTTP responses. Unexpected errors are logged and hidden.
func respondError(ctx *gin.Context, op string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationFailed(ctx, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, "forbidden")
	default:
		utils.Logger.Error(op+" failed", zap.Error(err), zap.String("path", ctx.Request.URL.Path))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "something went wrong")
	}
}

// bindForm binds a form, multipart or JSON body into dst; malformed bodies answer 400.
func bindForm(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBind(dst); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return false
	}
	return true
}

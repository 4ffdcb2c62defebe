package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// PageObject is the payload consumed by the frontend page resolver.
type PageObject struct {
	Component string      `json:"component"`
	Props     interface{} `json:"props"`
	URL       string      `json:"url"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ValidationFailed returns 422 with field keyed messages.
func ValidationFailed(ctx *gin.Context, fields map[string]string) {
	ctx.JSON(http.StatusUnprocessableEntity, JSONResponse{
		Code:    42200,
		Message: "the given data was invalid",
		Errors:  fields,
	})
}

// Page renders a page object for component with props.
func Page(ctx *gin.Context, component string, props interface{}) {
	ctx.JSON(http.StatusOK, PageObject{
		Component: component,
		Props:     props,
		URL:       ctx.Request.URL.RequestURI(),
	})
}

package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/handlers"
	"github.com/RankoXXX/exidvpn-server/internal/api/httperrors"
	"github.com/RankoXXX/exidvpn-server/internal/api/middleware"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// Init builds the echo instance for the given server: middleware chain,
// central error handler, management endpoints, the API route tree and the
// static single-page fallback.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.HTTPErrorHandler = errorHandler(s)

	s.Echo.Pre(echomiddleware.RemoveTrailingSlash())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(middleware.Logger())

	s.Router = &api.Router{
		Routes:     nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),
		API:        s.Echo.Group("/api"),
	}

	s.Router.Management.GET("/healthy", func(c echo.Context) error {
		if !s.Ready() {
			return c.String(http.StatusServiceUnavailable, "Not ready.")
		}
		return c.String(http.StatusOK, "Ready.")
	})
	s.Router.Management.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// serve the frontend bundle for anything that is not an API or
	// management route, falling back to index.html for client-side routing
	s.Echo.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root:  s.Config.Frontend.DistDir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/-")
		},
	}))

	handlers.AttachAllRoutes(s)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Error   string `json:"error"`
}

func errorHandler(s *api.Server) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorType := httperrors.HTTPErrorTypeGeneric
		title := http.StatusText(code)

		switch e := err.(type) {
		case *httperrors.HTTPError:
			code = e.Code
			errorType = e.Type
			title = e.Title
		case *echo.HTTPError:
			code = e.Code
			if msg, ok := e.Message.(string); ok {
				title = msg
			} else {
				title = http.StatusText(code)
			}
		default:
			if !s.Config.Echo.HideInternalServerErrorDetails {
				title = err.Error()
			}
		}

		if code >= http.StatusInternalServerError {
			util.LogFromContext(c.Request().Context()).Error().Err(err).Int("status", code).Msg("Request failed")
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(code); err != nil {
				util.LogFromContext(c.Request().Context()).Error().Err(err).Msg("Failed to write error response")
			}
			return
		}

		if err := c.JSON(code, errorResponse{Success: false, Type: errorType, Error: title}); err != nil {
			util.LogFromContext(c.Request().Context()).Error().Err(err).Msg("Failed to write error response")
		}
	}
}

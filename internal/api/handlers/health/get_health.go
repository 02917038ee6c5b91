package health

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/types"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

func GetHealthRoute(s *api.Server) *echo.Route {
	return s.Router.API.GET("/health", getHealthHandler(s))
}

func getHealthHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := &types.GetHealthResponse{
			Success: true,
			Status:  "ok",
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

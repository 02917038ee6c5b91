package payments

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/httperrors"
	"github.com/RankoXXX/exidvpn-server/internal/types"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

func GetBlockhashRoute(s *api.Server) *echo.Route {
	return s.Router.API.GET("/blockhash", getBlockhashHandler(s))
}

func getBlockhashHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		blockhash, err := s.Ledger.LatestBlockhash(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to fetch latest blockhash")
			return httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.HTTPErrorTypeGeneric, "Failed to fetch latest blockhash")
		}

		response := &types.GetBlockhashResponse{
			Success:              true,
			Blockhash:            swag.String(blockhash.Blockhash),
			LastValidBlockHeight: blockhash.LastValidBlockHeight,
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

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

func PostSendTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.API.POST("/send-transaction", postSendTransactionHandler(s))
}

func postSendTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSendTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		signature, err := s.Payment.SendTransaction(ctx, body.SignedTransaction)
		if err != nil {
			log.Error().Err(err).Msg("Failed to relay signed transaction")
			return httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.HTTPErrorTypeGeneric, "Failed to relay signed transaction")
		}

		log.Info().Str("signature", signature).Msg("Signed transaction relayed")

		response := &types.PostSendTransactionResponse{
			Success:   true,
			Signature: swag.String(signature),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

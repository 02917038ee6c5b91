package payments

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/httperrors"
	"github.com/RankoXXX/exidvpn-server/internal/types"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

func PostCreateSessionRoute(s *api.Server) *echo.Route {
	return s.Router.API.POST("/create-session", postCreateSessionHandler(s))
}

func postCreateSessionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess, err := s.Sessions.Create(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create payment session")
			return httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.HTTPErrorTypeGeneric, "Failed to create payment session")
		}

		s.Metrics.IncSessionCreated()

		log.Info().
			Str("session_id", sess.ID).
			Str("deposit_address", sess.DepositAddress).
			Msg("Payment session created")

		response := &types.PostCreateSessionResponse{
			Success:        true,
			SessionID:      swag.String(sess.ID),
			BurnerAddress:  swag.String(sess.Burner.Address()),
			DepositAddress: swag.String(sess.DepositAddress),
			AmountMinor:    s.Config.Payment.AmountMinor,
			Amount:         toHumanUnits(s.Config.Payment.AmountMinor, s.Config.Ledger.TokenDecimals),
			TokenSymbol:    s.Config.Ledger.TokenSymbol,
			MintAddress:    s.Config.Ledger.TokenMint,
			CreatedAt:      strfmt.DateTime(sess.CreatedAt),
			ExpiresAt:      strfmt.DateTime(sess.ExpiresAt),
		}

		return util.ValidateAndReturn(c, http.StatusCreated, response)
	}
}

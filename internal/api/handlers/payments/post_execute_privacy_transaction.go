package payments

import (
	"errors"
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/httperrors"
	"github.com/RankoXXX/exidvpn-server/internal/payment"
	"github.com/RankoXXX/exidvpn-server/internal/types"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

func PostExecutePrivacyTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.API.POST("/execute-privacy-transaction", postExecutePrivacyTransactionHandler(s))
}

func postExecutePrivacyTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostExecutePrivacyTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		result, err := s.Payment.Execute(ctx, payment.ExecuteRequest{
			SessionID:        swag.StringValue(body.SessionID),
			FundingSignature: body.FundingTxSignature,
		})
		if err != nil {
			return executeError(err)
		}

		log.Info().
			Str("session_id", swag.StringValue(body.SessionID)).
			Str("device_id", result.DeviceID).
			Msg("Privacy transaction executed")

		response := &types.PostExecutePrivacyTransactionResponse{
			Success:           true,
			DeviceID:          swag.String(result.DeviceID),
			DeviceToken:       swag.String(result.DeviceToken),
			ActivationRef:     swag.String(result.ActivationRef),
			DepositSignature:  result.DepositSignature,
			WithdrawSignature: swag.String(result.WithdrawSignature),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

// executeError maps pipeline failures onto the public error surface: bad
// input gets a 400, a duplicate concurrent run a 409, everything else a 500
// carrying the failure detail.
func executeError(err error) error {
	switch {
	case errors.Is(err, payment.ErrSessionNotFound):
		return httperrors.NewHTTPError(http.StatusBadRequest, httperrors.HTTPErrorTypeGeneric, "Invalid or expired session")
	case errors.Is(err, payment.ErrRunInFlight):
		return httperrors.NewHTTPError(http.StatusConflict, httperrors.HTTPErrorTypeGeneric, "A transaction for this session is already in progress")
	default:
		return httperrors.NewHTTPError(http.StatusInternalServerError, httperrors.HTTPErrorTypeGeneric, err.Error())
	}
}

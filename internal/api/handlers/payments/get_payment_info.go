package payments

import (
	"math"
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/types"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

func GetPaymentInfoRoute(s *api.Server) *echo.Route {
	return s.Router.API.GET("/payment-info", getPaymentInfoHandler(s))
}

func getPaymentInfoHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg := s.Config

		response := &types.GetPaymentInfoResponse{
			Success:           true,
			DestinationWallet: swag.String(cfg.Payment.DestinationWallet),
			AmountMinor:       cfg.Payment.AmountMinor,
			Amount:            toHumanUnits(cfg.Payment.AmountMinor, cfg.Ledger.TokenDecimals),
			TokenSymbol:       cfg.Ledger.TokenSymbol,
			MintAddress:       swag.String(cfg.Ledger.TokenMint),
			NativeFeeMinor:    cfg.Payment.NativeFeeMinor,
			NativeFee:         toHumanUnits(cfg.Payment.NativeFeeMinor, cfg.Payment.NativeDecimals),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}

func toHumanUnits(minor uint64, decimals int) float64 {
	return float64(minor) / math.Pow10(decimals)
}

package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/handlers/health"
	"github.com/RankoXXX/exidvpn-server/internal/api/handlers/payments"
)

// AttachAllRoutes registers every route of the service on the server's
// router and records them for introspection.
func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		health.GetHealthRoute(s),
		payments.GetPaymentInfoRoute(s),
		payments.GetBlockhashRoute(s),
		payments.PostCreateSessionRoute(s),
		payments.PostExecutePrivacyTransactionRoute(s),
		payments.PostSendTransactionRoute(s),
	}
}

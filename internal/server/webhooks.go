package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
)

// CreemWebhook ingests provider deliveries. Deliveries that cannot succeed
// on a retry (replays, unknown users, malformed-but-signed payloads) are
// acknowledged with 200 so the provider stops resending them; a bad
// signature stays 401 and a store failure stays 5xx so those DO retry.
func (s *Server) CreemWebhook(c *gin.Context) {
	if s.limiter.Enabled() && !s.limiter.AllowWebhook(c.Request.Context(), c.ClientIP()) {
		s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "webhook")
		AbortWithError(c, ErrTooManyRequest)
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.paymentSvc.IngestWebhook(c.Request.Context(), payload, c.Request.Header)
	switch {
	case err == nil,
		errors.Is(err, paymentdomain.ErrEventAlreadyProcessed),
		errors.Is(err, paymentdomain.ErrEventIgnored),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrUnknownUser):
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		AbortWithError(c, err)
	}
}

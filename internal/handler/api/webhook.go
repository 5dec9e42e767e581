package api

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/handler/httperr"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const signatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	webhookCommands commands.WebhookCommands
}

func NewWebhookHandler(webhookCommands commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{webhookCommands: webhookCommands}
}

// @Summary Payment provider webhook
// @Description Receive a signed payment event and reconcile order state
// @Tags webhooks
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param X-Webhook-Signature header string true "Hex HMAC-SHA256 of the raw body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /webhooks/payments/{tenantId} [post]
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid tenant ID format", nil)
		return
	}

	// Signature verification needs the exact bytes the provider signed.
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Unreadable request body", nil)
		return
	}

	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing signature header"),
			httperr.CodeUnauthorized, "Missing "+signatureHeader+" header", nil)
		return
	}

	if err := h.webhookCommands.HandleEvent(c.Request.Context(), tenantID, payload, signature); err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidWebhookSignature):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, httperr.CodeUnauthorized, "Invalid webhook signature", nil)
		case errors.Is(err, commands.ErrMalformedWebhookEvent):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Malformed webhook event", nil)
		default:
			// Non-2xx makes the provider retry, so only genuine processing
			// failures land here.
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

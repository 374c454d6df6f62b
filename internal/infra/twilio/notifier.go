// Package twilio delivers alert messages over WhatsApp via the Twilio
// Messages REST API.
package twilio

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Notifier struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
	logger     *zap.Logger
}

func NewNotifier(baseURL, accountSID, authToken, fromNumber string, timeout time.Duration, logger *zap.Logger) *Notifier {
	return &Notifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send delivers one message to the destination WhatsApp number. The
// destination is a plain phone number; the whatsapp: channel prefix is
// applied here.
func (n *Notifier) Send(destination, message string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", n.baseURL, url.PathEscape(n.accountSID))

	form := url.Values{}
	form.Set("To", "whatsapp:"+destination)
	form.Set("From", n.fromNumber)
	form.Set("Body", message)

	request, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	request.SetBasicAuth(n.accountSID, n.authToken)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	n.logger.Info("whatsapp notify send", zap.String("to", destination))
	response, err := n.client.Do(request)
	if err != nil {
		n.logger.Warn("whatsapp notify failed", zap.String("to", destination), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		n.logger.Warn("whatsapp notify rejected",
			zap.String("to", destination),
			zap.Int("status", response.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("twilio error: status %d", response.StatusCode)
	}

	return nil
}

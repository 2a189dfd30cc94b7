package infrastructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wabiz/internal/interfaces"
)

// CloudAPIClient sends outbound messages through the hosted WhatsApp
// Business Cloud API. Used when a tenant is served by the webhook
// transport instead of a linked device.
type CloudAPIClient struct {
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
}

func NewCloudAPIClient(accessToken, phoneNumberID string) interfaces.Messenger {
	return &CloudAPIClient{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *CloudAPIClient) SendMessage(to, content string) error {
	url := fmt.Sprintf("https://graph.facebook.com/v18.0/%s/messages", w.phoneNumberID)
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": content,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("cloud api send failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API client: just the two calls the
// notification worker needs.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SendMessage(ctx context.Context, chatID, text string) (int64, error) {
	var resp sendMessageResponse
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.MessageID, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int64, text string) error {
	return c.call(ctx, "editMessageText", editMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload any, out apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if out == nil {
		out = &baseResponse{}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("telegram %s: bad response: %w", method, err)
	}
	if !out.OK() {
		return fmt.Errorf("telegram %s: %s", method, out.ErrorText())
	}
	return nil
}

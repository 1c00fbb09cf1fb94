// https://platform.openai.com/docs/api-reference/chat/create
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"quotescout/m/v2/app/models"
)

// ChatComplete runs one chat completion and returns the assistant message.
func (a *API) ChatComplete(ctx context.Context, completion models.ChatCompletion) (string, error) {
	timeNow := time.Now()
	if completion.Model == "" {
		completion.Model = string(models.ChatGpt4o)
	}

	body, err := json.Marshal(completion)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.authToken)

	status := fmt.Sprintf("status:%d", 0)
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	defer func() {
		a.statsd.Timing("openai.chat_complete.latency", time.Since(timeNow), []string{status, "model:" + completion.Model}, 1)
	}()
	status = fmt.Sprintf("status:%d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("ChatComplete: " + resp.Status)
	}

	var response models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		if err == io.EOF {
			return "", errors.New("ChatComplete: empty response")
		}
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("ChatComplete: empty choices")
	}
	a.statsd.Distribution("openai.chat_complete.total_tokens", float64(response.Usage.TotalTokens), []string{"model:" + completion.Model}, 1)
	return response.Choices[0].Message.Content, nil
}

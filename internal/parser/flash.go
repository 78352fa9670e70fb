package parser

import (
	"encoding/json"
	"fmt"

	"pocketbank-cli/internal/domain"
)

type WireFlash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type FlashResult struct {
	Success  bool        `json:"success"`
	Messages []WireFlash `json:"messages"`
}

// ParseFlash decodes a /api/flash response. An empty or missing message list
// yields an empty, non-nil slice.
func ParseFlash(body []byte) ([]domain.NotificationMessage, error) {
	var result FlashResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse flash JSON: %w", err)
	}

	messages := make([]domain.NotificationMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		messages = append(messages, domain.NotificationMessage{
			Severity: domain.ParseSeverity(m.Type),
			Text:     m.Message,
		})
	}
	return messages, nil
}

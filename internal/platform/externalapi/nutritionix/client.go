package nutritionix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"calories_tracker/internal/feature/meals/usecase"
	"calories_tracker/internal/platform/externalapi/nutritionix/dto"
	"calories_tracker/internal/shared/ratelimiter"
)

const nutrientsPath = "/v2/natural/nutrients"

// Client はNutritionix APIから食事の説明文のカロリーを推定するNutritionLookup実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// ClientがNutritionLookupを実装していることをコンパイル時に検証します。
var _ usecase.NutritionLookup = (*Client)(nil)

// NewClient は指定された設定、HTTPクライアント、レートリミッターでClientを生成します。
// limiterがnilの場合は制限しません。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Calories は自然言語の説明文をNutritionixに送り、認識された食品のカロリー合計を返します。
func (c *Client) Calories(ctx context.Context, text string) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("nutritionix rate limit: %w", err)
		}
	}

	payload, err := json.Marshal(dto.NutrientsRequest{Query: text})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+nutrientsPath, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.cfg.AppID)
	req.Header.Set("x-app-key", c.cfg.AppKey)

	res, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return 0, fmt.Errorf("nutritionix http %d", res.StatusCode)
	}

	var body dto.NutrientsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode nutritionix response: %w", err)
	}
	return body.TotalCalories(), nil
}

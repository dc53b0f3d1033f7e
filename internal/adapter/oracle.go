package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// oracleClient forwards consultation prompts to the hosted text-generation
// service.
type oracleClient struct {
	client *resty.Client
	model  string
	log    *logger.Logger
}

// NewOracle builds the text-generation collaborator.
func NewOracle(cfg config.Oracle, log *logger.Logger) Oracle {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &oracleClient{client: cli, model: cfg.Model, log: log}
}

func (o *oracleClient) GenerateReading(ctx context.Context, req ReadingRequest) (string, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{Model: o.model, Prompt: buildPrompt(req)}).
		Post("/v1/generate")
	if err != nil {
		return "", fmt.Errorf("%w: generate reading: %v", ErrGatewayUnavailable, err)
	}
	if resp.IsError() {
		o.log.Error().
			Int("status", resp.StatusCode()).
			Str("topic", req.Topic).
			Msg("oracle refused the generation request")
		return "", fmt.Errorf("%w: http %d", ErrGatewayRejected, resp.StatusCode())
	}

	var body generateResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if strings.TrimSpace(body.Text) == "" {
		return "", fmt.Errorf("%w: empty reading", ErrGatewayRejected)
	}

	return body.Text, nil
}

func buildPrompt(req ReadingRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a gentle fortune teller. The seeker goes by %q", req.Nickname)
	if req.GuardianName != "" {
		fmt.Fprintf(&b, " and is watched over by the guardian %q", req.GuardianName)
	}
	fmt.Fprintf(&b, ". Topic: %s.", req.Topic)
	if req.Question != "" {
		fmt.Fprintf(&b, " Their question: %s", req.Question)
	}
	b.WriteString(" Offer a warm, specific reading in a few short paragraphs.")
	return b.String()
}

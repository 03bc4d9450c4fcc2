// Package advisor produces AI-assisted care strategy suggestions from
// free-text health records and environmental conditions.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

var (
	// ErrAdvisorDisabled is returned when no model provider is configured.
	ErrAdvisorDisabled = errors.New("care strategy advisor is not configured")
	// ErrInvalidRequest is returned when either input is blank.
	ErrInvalidRequest = errors.New("invalid care strategy request")
	// ErrSuggestionFailed wraps any provider or decoding failure.
	ErrSuggestionFailed = errors.New("care strategy suggestion failed")
)

const defaultTimeout = 45 * time.Second

const systemPrompt = `You are an AI assistant specializing in livestock health and care. Analyze the provided health records and environmental conditions to suggest optimized care strategies.

Consider all factors and provide a comprehensive list of care strategies, along with a clear explanation of why these strategies are recommended.

Respond ONLY with a JSON object of the form:
{"careStrategies": "<the strategies>", "reasoning": "<why they are recommended>"}`

// Provider completes a prompt with a language model and returns the raw text.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Service turns care strategy requests into model prompts.
type Service struct {
	provider Provider
	logger   *zap.Logger
	timeout  time.Duration
}

// NewService creates an advisor. A nil provider yields a disabled advisor.
func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger,
		timeout:  defaultTimeout,
	}
}

// Enabled reports whether a provider is wired.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// SuggestCareStrategies asks the model for care strategies.
func (s *Service) SuggestCareStrategies(ctx context.Context, req models.CareStrategyRequest) (models.CareStrategySuggestion, error) {
	if !s.Enabled() {
		return models.CareStrategySuggestion{}, ErrAdvisorDisabled
	}

	healthRecords := strings.TrimSpace(req.HealthRecords)
	conditions := strings.TrimSpace(req.EnvironmentalConditions)
	if healthRecords == "" || conditions == "" {
		return models.CareStrategySuggestion{}, fmt.Errorf("%w: health records and environmental conditions are required", ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Health Records: %s\n\nEnvironmental Conditions: %s", healthRecords, conditions)
	raw, err := s.provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Error("care strategy completion failed", zap.Error(err))
		return models.CareStrategySuggestion{}, fmt.Errorf("%w: %v", ErrSuggestionFailed, err)
	}

	var suggestion models.CareStrategySuggestion
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &suggestion); err != nil {
		s.logger.Warn("care strategy response was not valid JSON", zap.String("response", raw), zap.Error(err))
		return models.CareStrategySuggestion{}, fmt.Errorf("%w: decode response: %v", ErrSuggestionFailed, err)
	}
	if strings.TrimSpace(suggestion.CareStrategies) == "" || strings.TrimSpace(suggestion.Reasoning) == "" {
		return models.CareStrategySuggestion{}, fmt.Errorf("%w: response is missing fields", ErrSuggestionFailed)
	}

	s.logger.Info("care strategies suggested", zap.Int("length", len(suggestion.CareStrategies)))
	return suggestion, nil
}

// cleanJSONResponse strips markdown code fences from a model response.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

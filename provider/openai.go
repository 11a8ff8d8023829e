package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaguanLabs/bearchat"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	temperature = 0.3
	maxTokens   = 1000
)

var errEmptyCompletion = errors.New("empty completion")

// OpenAIConfig holds the settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string // Bearer token; an empty key fails every translation with a ConfigError
	BaseURL string // Endpoint root, e.g. https://api.openai.com/v1
	Model   string // Chat model name
}

// OpenAITranslator implements RemoteTranslator using the chat completions API.
type OpenAITranslator struct {
	client *openai.Client
	apiKey string
	model  string
	retry  bearchat.RetryConfig
	logger *zap.Logger
}

// Option configures an OpenAITranslator.
type Option func(*options)

type options struct {
	retry      bearchat.RetryConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// WithRetryConfig overrides the retry policy (default: 2 retries, 1s apart).
func WithRetryConfig(cfg bearchat.RetryConfig) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOpenAITranslator creates a translator for cfg. A malformed BaseURL or
// an empty Model is rejected with a *bearchat.ConfigError. An empty BaseURL
// selects DefaultBaseURL.
func NewOpenAITranslator(cfg OpenAIConfig, opts ...Option) (*OpenAITranslator, error) {
	o := &options{
		retry:  bearchat.DefaultRetryConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &bearchat.ConfigError{Field: "modelName", Message: "model name is required"}
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		c := *o.httpClient
		httpClient = &c
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = userAgentTransport{base: base}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = httpClient

	return &OpenAITranslator{
		client: openai.NewClientWithConfig(config),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		retry:  o.retry,
		logger: o.logger,
	}, nil
}

// ValidateBaseURL reports a *bearchat.ConfigError unless raw is an absolute
// http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &bearchat.ConfigError{Field: "baseUrl", Message: "invalid base URL", Cause: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &bearchat.ConfigError{Field: "baseUrl", Message: fmt.Sprintf("base URL %q must be an absolute http(s) URL", raw)}
	}
	return nil
}

// Translate translates req.Text in a single chat completion, retrying any
// failure within the retry budget.
func (t *OpenAITranslator) Translate(ctx context.Context, req TranslationRequest) TranslationResult {
	if t.apiKey == "" {
		return TranslationResult{Err: &bearchat.ConfigError{Field: "apiKey", Message: "configure API settings first"}}
	}
	if req.IsEmpty() {
		return TranslationResult{}
	}

	chatReq := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	text, attempts, err := bearchat.WithRetry(ctx, t.retry, func() (string, error) {
		resp, err := t.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			t.logger.Debug("chat completion failed", zap.String("model", t.model), zap.Error(err))
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errEmptyCompletion
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", errEmptyCompletion
		}
		return content, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return TranslationResult{Err: ctxErr}
		}
		t.logger.Warn("translation failed",
			zap.String("model", t.model),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return TranslationResult{Err: &bearchat.NetworkError{
			Message:  "translation request failed",
			Attempts: attempts,
			Cause:    err,
		}}
	}

	return TranslationResult{Text: text}
}

// ModelName implements RemoteTranslator.
func (t *OpenAITranslator) ModelName() string {
	return t.model
}

// userAgentTransport identifies bearchat on outgoing requests.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", bearchat.UserAgent())
	return t.base.RoundTrip(req)
}

func buildSystemPrompt(req TranslationRequest) string {
	return fmt.Sprintf(
		"You are a professional translator. Translate the user's text from %s to %s. "+
			"Only return the translated text, without explanations, notes or quotation marks.",
		req.From.Name(), req.To.Name(),
	)
}

// Verify OpenAITranslator implements RemoteTranslator
var _ RemoteTranslator = (*OpenAITranslator)(nil)

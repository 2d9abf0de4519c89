package ai

import (
	"context"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const defaultDeployment = "gpt-35-turbo"

// Client wraps the Azure OpenAI chat endpoint. A Client built without credentials is disabled
// and every report falls back to raw data.
type Client struct {
	client     *openai.Client
	deployment string
	logger     *zap.Logger
}

// NewClientFromEnv reads AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT_NAME
func NewClientFromEnv(logger *zap.Logger) *Client {
	return NewClient(
		global.GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
		global.GetEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
		global.GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", defaultDeployment),
		logger,
	)
}

func NewClient(endpoint, apiKey, deployment string, logger *zap.Logger, opts ...option.RequestOption) *Client {
	logger = global.LoggerOrNop(logger)
	if deployment == "" {
		deployment = defaultDeployment
	}

	if endpoint == "" || apiKey == "" {
		logger.Info("AI service disabled, Azure OpenAI credentials not provided",
			zap.Strings("required", []string{"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY"}))
		return &Client{deployment: deployment, logger: logger}
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(endpoint),
		option.WithAPIKey(apiKey),
	}, opts...)
	client := openai.NewClient(opts...)

	logger.Info("AI service initialized with Azure OpenAI", zap.String("deployment", deployment))
	return &Client{client: &client, deployment: deployment, logger: logger}
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}

func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !c.IsEnabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(800),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		c.logger.Warn("AI completion failed", zap.Error(err))
		return "", &AIError{Message: "failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

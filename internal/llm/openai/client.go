package openai

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/TonnyWong1052/shellgen/internal/llm"
	"github.com/TonnyWong1052/shellgen/internal/logging"
	goopenai "github.com/sashabaranov/go-openai"
)

// ProviderName is the registry key for OpenAI-compatible endpoints.
const ProviderName = "openai"

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// OpenAIProvider streams chat completions from any OpenAI-compatible API.
type OpenAIProvider struct {
	client *goopenai.Client
	logger *logging.Logger
}

// NewProvider creates a new OpenAIProvider.
func NewProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, llm.NewLLMError(llm.ConfigError, "API key is required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, llm.NewLLMError(llm.ConfigError, "base URL is required", nil)
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = llm.NewHTTPClient(cfg.Headers)
	}

	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(clientConfig),
		logger: logging.WithComponent("openai"),
	}, nil
}

// Name implements llm.Provider.
func (p *OpenAIProvider) Name() string {
	return ProviderName
}

// StreamCompletion implements llm.Provider.
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (llm.Stream, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: temperature(req.Temperature),
		Stream:      true,
	}

	p.logger.WithFields(map[string]interface{}{
		"model":       req.Model,
		"user_length": len(req.User),
	}).Debug("opening completion stream")

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return &chatStream{ctx: ctx, stream: stream}, nil
}

// temperature maps 0 to the smallest positive float32. go-openai v1.36.1
// tags ChatCompletionRequest.Temperature with omitempty, so a literal 0 is
// dropped and the server default applies instead.
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

type chatStream struct {
	ctx    context.Context
	stream *goopenai.ChatCompletionStream
}

// Recv skips chunks that carry no content, such as the leading role chunk
// and the trailing finish_reason chunk.
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", classify(s.ctx, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}

// classify converts go-openai errors into *llm.LLMError. Context errors are
// passed through untouched so callers can tell cancellation from failure.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if e := llm.ClassifyStatus(apiErr.HTTPStatusCode, err); e != nil {
			if apiErr.Message != "" {
				e.Message = e.Message + ": " + apiErr.Message
			}
			return e
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if e := llm.ClassifyStatus(reqErr.HTTPStatusCode, err); e != nil {
			return e
		}
	}

	return llm.ClassifyProviderError(err)
}

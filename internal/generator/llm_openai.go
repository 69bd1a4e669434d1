package generator

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient on top of an OpenAI-compatible chat completions API.
type OpenAILLM struct {
	Model  string
	client openai.Client
}

// NewOpenAILLM builds a client from settings. Extra request options are appended last.
func NewOpenAILLM(settings LLMSettings, extra ...option.RequestOption) (*OpenAILLM, error) {
	if settings.APIKey == "" {
		return nil, errors.New("llm api key missing; provide llm.api_key")
	}
	if settings.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(settings.APIKey)}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	if settings.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: settings.Timeout}))
	}
	opts = append(opts, extra...)
	return &OpenAILLM{Model: settings.Model, client: openai.NewClient(opts...)}, nil
}

// Complete sends prompt as a system + user message pair.
func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: msgs,
	}
	if prompt.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(prompt.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package summarizer

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultSummaryTimeout     = 30 * time.Second
	defaultSummaryTemperature = 0.2

	summarySystemPrompt = "You summarize conversations concisely."

	// The closing marker line is what Parse splits on; keep the two in sync.
	summaryPromptTemplate = `Summarize this conversation in under 150 words.
Also provide a one-word sentiment (Positive/Negative/Neutral) on a final line formatted as "Sentiment: <word>".

Conversation:
%s

Summary:`
)

// OpenAIClient calls the OpenAI Chat Completions API for the summarization
// pass. The API key comes in per call; only the model is fixed up front.
type OpenAIClient struct {
	model openai.ChatModel
}

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(model openai.ChatModel) *OpenAIClient {
	if model == "" {
		model = openai.ChatModelGPT3_5Turbo
	}
	return &OpenAIClient{model: model}
}

func (c *OpenAIClient) Summarize(ctx context.Context, apiKey, transcript string) (Result, error) {
	if apiKey == "" {
		return Result{}, fmt.Errorf("api key required")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultSummaryTimeout)
	defer cancel()

	cli := openai.NewClient(option.WithAPIKey(apiKey))
	resp, err := cli.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(summarySystemPrompt, fmt.Sprintf(summaryPromptTemplate, transcript)),
		Temperature: openai.Float(defaultSummaryTemperature),
	})
	if err != nil {
		return Result{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Result{}, fmt.Errorf("openai: no choices returned")
	}
	return Parse(resp.Choices[0].Message.Content), nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// Package assistant forwards free-text questions to a text-generation model.
// Failures never surface as errors: Ask always returns text for the user.
package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"studyboard/internal/logging"
	"studyboard/internal/metrics"
)

// PromptPlaceholder marks where the user's question goes in a prompt template.
const PromptPlaceholder = "{{prompt}}"

const DefaultPromptTemplate = `Você é um assistente de gestão de projetos. Seja conciso e útil. Pergunta do usuário: "` + PromptPlaceholder + `"`

const (
	MissingConfigText = "Desculpe, a chave da API para o assistente de IA não está configurada. Por favor, adicione-a nas variáveis de ambiente."
	EmptyAnswerText   = "Não consegui gerar uma resposta. Tente novamente."
	FailureText       = "Ocorreu um erro ao contatar o assistente de IA. Verifique o console para mais detalhes."
	BusyText          = "O assistente ainda está respondendo a pergunta anterior. Aguarde um momento."
)

// NewGoogleAI builds a Gemini model. An empty apiKey yields a nil model, which Ask
// answers with MissingConfigText.
func NewGoogleAI(ctx context.Context, apiKey, model string) (llms.Model, error) {
	if apiKey == "" {
		return nil, nil
	}
	opts := []googleai.Option{googleai.WithAPIKey(apiKey)}
	if model != "" {
		opts = append(opts, googleai.WithDefaultModel(model))
	}
	return googleai.New(ctx, opts...)
}

type Options struct {
	PromptTemplate string
	Logger         logging.Logger
	Metrics        *metrics.Metrics
}

// Assistant allows a single outstanding call at a time.
type Assistant struct {
	model    llms.Model
	template string
	logger   logging.Logger
	metrics  *metrics.Metrics
	inflight sync.Mutex
}

func New(model llms.Model, opts Options) *Assistant {
	a := &Assistant{
		model:    model,
		template: opts.PromptTemplate,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if a.template == "" {
		a.template = DefaultPromptTemplate
	}
	if a.logger == nil {
		a.logger = logging.Nop()
	}
	return a
}

// Configured reports whether a model is available.
func (a *Assistant) Configured() bool {
	return a.model != nil
}

// Ask sends prompt to the model and returns its answer or a fallback text.
func (a *Assistant) Ask(ctx context.Context, prompt string) string {
	if a.model == nil {
		a.metrics.AddAssistantRequest(metrics.ResultFallback)
		return MissingConfigText
	}
	if !a.inflight.TryLock() {
		a.metrics.AddAssistantRequest(metrics.ResultBusy)
		return BusyText
	}
	defer a.inflight.Unlock()

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, a.model, a.render(prompt))
	a.metrics.ObserveAssistantResponse(time.Since(start))
	if err != nil {
		a.logger.Warnf("assistant call failed: %v", err)
		a.metrics.AddAssistantRequest(metrics.ResultError)
		return FailureText
	}
	if strings.TrimSpace(text) == "" {
		a.metrics.AddAssistantRequest(metrics.ResultFallback)
		return EmptyAnswerText
	}
	a.metrics.AddAssistantRequest(metrics.ResultOK)
	return text
}

func (a *Assistant) render(prompt string) string {
	return strings.ReplaceAll(a.template, PromptPlaceholder, prompt)
}

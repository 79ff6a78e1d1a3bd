package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetpotato0/radsafe/config"
	"github.com/sweetpotato0/radsafe/contrib/provider"
	"github.com/sweetpotato0/radsafe/errors"
	"github.com/sweetpotato0/radsafe/llm"
	"github.com/sweetpotato0/radsafe/llm/llmtest"
	"github.com/sweetpotato0/radsafe/message"
	"github.com/sweetpotato0/radsafe/rag/document"
	"github.com/sweetpotato0/radsafe/rag/i18n"
	"github.com/sweetpotato0/radsafe/rag/workflow"
)

const question = "What is the annual dose limit for radiation workers?"

type stubAnswerer struct {
	mu     sync.Mutex
	inputs []workflow.Input
	result *workflow.Result
	err    error
}

func (s *stubAnswerer) Run(_ context.Context, in workflow.Input) (*workflow.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	res.History = message.AppendTurn(in.History, in.Question, res.Generation)
	return &res, nil
}

func (s *stubAnswerer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

// fakeResolver builds resolvers whose clients are all fake.
func fakeResolver(fake llm.Client, built *[]string) *provider.Resolver {
	factory := func(name string) provider.Factory {
		return func(_ context.Context, model, _ string) (llm.Client, error) {
			if built != nil {
				*built = append(*built, name+"/"+model)
			}
			return fake, nil
		}
	}
	return provider.NewResolver(
		provider.WithFactory(provider.Mistral, factory(provider.Mistral)),
		provider.WithFactory(provider.Gemini, factory(provider.Gemini)),
		provider.WithFactory(provider.OpenAI, factory(provider.OpenAI)),
		provider.WithFactory(provider.Anthropic, factory(provider.Anthropic)),
	)
}

func newService(t *testing.T, answerer Answerer, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithDefaults(provider.Mistral, "", map[string]string{provider.Mistral: "env-key"})}, opts...)
	s, err := New(answerer, fakeResolver(llmtest.New(), nil), opts...)
	require.NoError(t, err)
	return s
}

func TestAskBuildsResponse(t *testing.T) {
	answerer := &stubAnswerer{result: &workflow.Result{
		Generation: "  The limit is 20 mSv per year.\n",
		Documents: []document.Chunk{
			{Text: "a", Source: "GSR-Part-3.pdf", Type: document.TypeIAEA},
			{Text: "b", Source: "GSR-Part-3.pdf", Type: document.TypeIAEA},
			{Text: "c", Source: "BEK-669.pdf", Type: document.TypeDanishLaw},
			{Text: "d", Source: "", Type: document.TypeIAEA},
		},
		TrustedVerified: true,
	}}
	s := newService(t, answerer)
	history := []message.Turn{{Question: "What is IAEA?", Answer: "The International Atomic Energy Agency."}}

	resp, err := s.Ask(context.Background(), Request{Question: question, ChatHistory: history})
	require.NoError(t, err)

	assert.Equal(t, "The limit is 20 mSv per year.", resp.Answer)
	assert.Equal(t, []Source{
		{Source: "GSR-Part-3.pdf", DocumentType: "IAEA"},
		{Source: "BEK-669.pdf", DocumentType: "Danish law"},
		{Source: "retrieved", DocumentType: "IAEA"},
	}, resp.Sources)
	require.Len(t, resp.ChatHistory, 2)
	assert.Equal(t, message.Turn{Question: question, Answer: resp.Answer}, resp.ChatHistory[1])
	assert.Empty(t, resp.Warning)
	assert.Empty(t, resp.SourcesLabel)
	assert.Equal(t, "Mistral", resp.Provider)
	assert.Equal(t, "mistral-small-latest", resp.Model)
	require.Equal(t, 1, answerer.calls())
	assert.Equal(t, history, answerer.inputs[0].History)
	assert.NotNil(t, answerer.inputs[0].LLM)
}

func TestAskLabelsWebSources(t *testing.T) {
	warning := i18n.For(question, i18n.NotVerifiedAfterWeb)
	answerer := &stubAnswerer{result: &workflow.Result{
		Generation: "Workers may receive 20 mSv.",
		Documents: []document.Chunk{
			{Text: "w", Source: "https://example.org/limits", Type: document.TypeWeb},
		},
		UsedWebSearch: true,
		Warning:       warning,
	}}

	resp, err := newService(t, answerer).Ask(context.Background(), Request{Question: question})
	require.NoError(t, err)

	assert.True(t, resp.UsedWebSearch)
	assert.Equal(t, i18n.For(question, i18n.LabelSourcesInclWeb), resp.SourcesLabel)
	assert.Equal(t, warning, resp.Warning)
	assert.Equal(t, []Source{{Source: "https://example.org/limits", DocumentType: "Web"}}, resp.Sources)
}

func TestAskMissingCredentialStopsBeforeWorkflow(t *testing.T) {
	answerer := &stubAnswerer{result: &workflow.Result{Generation: "unused"}}
	s := newService(t, answerer)

	_, err := s.Ask(context.Background(), Request{Question: question, Model: "openai"})

	var cerr *errors.CredentialError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, "OpenAI", cerr.Provider)
	assert.True(t, errors.Is(err, errors.ErrMissingCredential))
	assert.Contains(t, errors.UserMessage(err), "API key for OpenAI")
	assert.Zero(t, answerer.calls())
}

func TestAskRequestKeyAndModelSelection(t *testing.T) {
	var built []string
	answerer := &stubAnswerer{result: &workflow.Result{Generation: "ok answer"}}
	s, err := New(answerer, fakeResolver(llmtest.New(), &built))
	require.NoError(t, err)

	resp, err := s.Ask(context.Background(), Request{
		Question:     question,
		Model:        "gemini",
		ModelVariant: "gemini-2.5-pro",
		APIKeys:      map[string]string{"gemini": "request-key"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini/gemini-2.5-pro"}, built)
	assert.Equal(t, "Gemini", resp.Provider)

	_, err = s.Ask(context.Background(), Request{
		Question:     question,
		Model:        "anthropic",
		ModelVariant: "not-a-model",
		APIKeys:      map[string]string{"anthropic": "k"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-5-haiku-latest", built[1])
}

func TestAskSmallTalkSkipsModelAndWorkflow(t *testing.T) {
	answerer := &stubAnswerer{result: &workflow.Result{Generation: "unused"}}
	s, err := New(answerer, fakeResolver(llmtest.New(), nil))
	require.NoError(t, err)

	// No API key is configured: small talk still works.
	resp, err := s.Ask(context.Background(), Request{Question: "Thank you"})
	require.NoError(t, err)

	assert.Contains(t, resp.Answer, "You're welcome")
	assert.Empty(t, resp.Sources)
	assert.NotNil(t, resp.Sources)
	require.Len(t, resp.ChatHistory, 1)
	assert.Equal(t, "Thank you", resp.ChatHistory[0].Question)
	assert.Empty(t, resp.Warning)
	assert.False(t, resp.UsedWebSearch)
	assert.Zero(t, answerer.calls())
}

func TestAskRejectsInvalidInput(t *testing.T) {
	cfg := config.Default()
	cfg.MaxQuestionChars = 10
	answerer := &stubAnswerer{result: &workflow.Result{Generation: "unused"}}
	s := newService(t, answerer, WithMiddleware(DefaultMiddleware(cfg)...))

	_, err := s.Ask(context.Background(), Request{Question: "   "})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)

	_, err = s.Ask(context.Background(), Request{Question: question})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)
	assert.True(t, errors.IsClientError(err))
	assert.Zero(t, answerer.calls())
}

func TestAskClassifiesWorkflowErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "grading", err: stderrors.Join(errors.ErrGrading, stderrors.New("timeout")), target: errors.ErrGrading},
		{name: "unknown", err: stderrors.New("socket closed"), target: errors.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, &stubAnswerer{err: tt.err})
			_, err := s.Ask(context.Background(), Request{Question: question})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, errors.GenericUserMessage, errors.UserMessage(err))
		})
	}
}

func TestAskRateLimited(t *testing.T) {
	cfg := config.Default()
	cfg.RequestsPerSecond = 0.01
	s := newService(t, &stubAnswerer{result: &workflow.Result{Generation: "fine"}}, WithMiddleware(DefaultMiddleware(cfg)...))

	_, err := s.Ask(context.Background(), Request{Question: question})
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), Request{Question: question})
	assert.True(t, errors.Is(err, errors.ErrRateLimited), "got %v", err)
}

func TestHealth(t *testing.T) {
	s, err := New(nil, fakeResolver(llmtest.New(), nil))
	require.NoError(t, err)
	assert.False(t, s.Health().WorkflowLoaded)

	resp, err := s.Ask(context.Background(), Request{Question: question})
	require.NoError(t, err)
	assert.Equal(t, NotReadyAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)

	ready := newService(t, &stubAnswerer{})
	h := ready.Health()
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.WorkflowLoaded)
	assert.Contains(t, h.Middleware, "SmallTalk")

	_, err = New(&stubAnswerer{}, nil)
	assert.Error(t, err)
}

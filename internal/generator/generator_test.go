package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
)

type stubLLM struct {
	out    string
	err    error
	prompt Prompt
}

func (s *stubLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.prompt = p
	return s.out, s.err
}

func sampleForm() FormData {
	return FormData{
		ProjectName: "Orchard",
		Goals:       "A calm landing page",
		Budget:      "1200",
		BudgetBreakdown: []BudgetItem{
			{Item: "Design", Amount: "800"},
			{Item: "Copy", Amount: "400"},
		},
		References: []Reference{
			{Type: ReferenceLink, Value: "https://example.com"},
			{Type: ReferenceImage, Value: "https://cdn.example.com/mood.png"},
			{Type: ReferenceImage, Value: ""},
		},
	}
}

func TestBuildBriefPrompt(t *testing.T) {
	p := BuildBriefPrompt(sampleForm())

	assert.Equal(t, BriefMaxTokens, p.MaxTokens)
	assert.Empty(t, p.Section)
	assert.Contains(t, p.User, "Project Type: design\n")
	assert.Contains(t, p.User, "Deadline: Not specified\n")
	assert.Contains(t, p.User, "Budget: $1200\n")
	assert.Contains(t, p.User, "Design: $800\nCopy: $400")
	assert.Contains(t, p.User, "Link: [https://example.com](https://example.com)\nImage: https://cdn.example.com/mood.png")
	assert.NotContains(t, p.User, "Image: \n")
	assert.Contains(t, p.User, `"Conclusion:"`)
	assert.Contains(t, p.User, "[link text](URL)")
}

func TestBuildSectionPrompt(t *testing.T) {
	p := BuildSectionPrompt("Goals:\nShip it", "Goals:")

	assert.Equal(t, SectionMaxTokens, p.MaxTokens)
	assert.Equal(t, "Goals:", p.Section)
	assert.Contains(t, p.User, `"Goals" section`)
	assert.Contains(t, p.User, "Goals:\nShip it")
}

func TestFormValidate(t *testing.T) {
	require.NoError(t, sampleForm().Validate())

	f := sampleForm()
	f.ProjectName = ""
	assert.Error(t, f.Validate())

	f = sampleForm()
	f.References = append(f.References, Reference{Type: "video", Value: "x"})
	assert.Error(t, f.Validate())

	f = sampleForm()
	f.Deadline = "next week"
	assert.Error(t, f.Validate())

	f = sampleForm()
	f.Deadline = "2026-03-01"
	assert.NoError(t, f.Validate())
}

func TestFormValidate_BudgetRows(t *testing.T) {
	// The form starts with one empty breakdown row.
	f := FormData{ProjectName: "x", Goals: "y", BudgetBreakdown: []BudgetItem{{}}}
	require.NoError(t, f.Validate())
	assert.Empty(t, FormatBudgetBreakdown(f.BudgetBreakdown))

	f.BudgetBreakdown = []BudgetItem{{Amount: "300"}}
	assert.Error(t, f.Validate())

	f.BudgetBreakdown = []BudgetItem{{Item: "Logo"}}
	assert.NoError(t, f.Validate())
}

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trim", "  Introduction:\nHi  \n", "Introduction:\nHi"},
		{"fence", "```markdown\nIntroduction:\nHi\n```", "Introduction:\nHi"},
		{"plain fence", "```\nGoals:\nShip\n```", "Goals:\nShip"},
		{"no fence", "Goals:\nuse ``` sparingly", "Goals:\nuse ``` sparingly"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestCleanHTML(t *testing.T) {
	out := Clean("<h2>Goals:</h2><p>See <a href=\"https://example.com\">the site</a></p>")

	sections := brief.Parse(out, brief.ModeTrimmed)
	require.Len(t, sections, 1)
	assert.Equal(t, "Goals:", sections[0].Title)
	assert.Contains(t, sections[0].Content, "[the site](https://example.com)")
}

func TestCleanInlineTagKeepsSections(t *testing.T) {
	out := Clean("Introduction:\nWe want a <b>bold</b> look.\n\nGoals:\n- Stand out\n- Be <em>clear</em>\n\nBudget:\nAround $500.")

	sections := brief.Parse(out, brief.ModeTrimmed)
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"Introduction:", "Goals:", "Budget:"}, brief.Titles(sections))
	assert.Equal(t, "We want a **bold** look.", sections[0].Content)
	assert.Equal(t, "- Stand out\n- Be *clear*", sections[1].Content)
	assert.Equal(t, "Around $500.", sections[2].Content)
}

func TestCleanSection(t *testing.T) {
	assert.Equal(t, "New body", CleanSection("Goals:\nNew body", "Goals:"))
	assert.Equal(t, "New body", CleanSection("Goals\nNew body", "Goals:"))
	assert.Equal(t, "Budget:\nNew body", CleanSection("Budget:\nNew body", "Goals:"))
}

func TestGatewayGenerate(t *testing.T) {
	stub := &stubLLM{out: "```\nIntroduction:\nHello\n```"}
	gw, err := NewGateway(stub, nil)
	require.NoError(t, err)

	text, err := gw.Generate(context.Background(), sampleForm())
	require.NoError(t, err)
	assert.Equal(t, "Introduction:\nHello", text)
	assert.Equal(t, BriefMaxTokens, stub.prompt.MaxTokens)
}

func TestGatewayGenerateErrors(t *testing.T) {
	gw, err := NewGateway(&stubLLM{err: errors.New("boom")}, nil)
	require.NoError(t, err)
	_, err = gw.Generate(context.Background(), sampleForm())
	assert.ErrorIs(t, err, apperr.ErrGeneration)

	gw, err = NewGateway(&stubLLM{out: "   "}, nil)
	require.NoError(t, err)
	_, err = gw.Generate(context.Background(), sampleForm())
	assert.ErrorIs(t, err, apperr.ErrGeneration)

	_, err = gw.Generate(context.Background(), FormData{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGatewayRegenerateSection(t *testing.T) {
	stub := &stubLLM{out: "Timeline:\nTwo weeks"}
	gw, err := NewGateway(stub, nil)
	require.NoError(t, err)

	text, err := gw.RegenerateSection(context.Background(), "Timeline:\nOne week", "Timeline:")
	require.NoError(t, err)
	assert.Equal(t, "Two weeks", text)
	assert.Equal(t, SectionMaxTokens, stub.prompt.MaxTokens)
}

func TestMockLLMConforms(t *testing.T) {
	gw, err := NewGateway(MockLLM{}, nil)
	require.NoError(t, err)

	text, err := gw.Generate(context.Background(), sampleForm())
	require.NoError(t, err)

	sections := brief.Parse(text, brief.ModeTrimmed)
	titles := brief.Titles(sections)
	require.Len(t, titles, len(RequiredSections))
	for i, s := range RequiredSections {
		assert.Equal(t, s+":", titles[i])
	}
	refs := sections[brief.Index(sections, "References:")].Content
	assert.Contains(t, refs, "[https://example.com](https://example.com)")
	assert.Contains(t, refs, "https://cdn.example.com/mood.png")
}

func TestNewLLMClient(t *testing.T) {
	c, err := NewLLMClient(LLMSettings{Provider: ProviderMock})
	require.NoError(t, err)
	assert.IsType(t, MockLLM{}, c)

	_, err = NewLLMClient(LLMSettings{Provider: ProviderOpenAI, Model: "gpt-4"})
	assert.Error(t, err, "missing api key")

	_, err = NewLLMClient(LLMSettings{Provider: "other"})
	assert.Error(t, err)
}

func TestOpenAILLMComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Introduction:\nHi"}}]}`))
	}))
	defer srv.Close()

	llm, err := NewOpenAILLM(LLMSettings{Model: "gpt-4", APIKey: "k", BaseURL: srv.URL}, option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := llm.Complete(context.Background(), BuildSectionPrompt("Introduction:\nHello", "Introduction:"))
	require.NoError(t, err)
	assert.Equal(t, "Introduction:\nHi", out)
	assert.Equal(t, "gpt-4", body["model"])
	assert.EqualValues(t, SectionMaxTokens, body["max_tokens"])
}

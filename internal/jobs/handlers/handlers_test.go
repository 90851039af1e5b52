package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
)

// stubGenerator returns a canned response and records the prompt.
type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResumeParseHandler(t *testing.T) {
	t.Run("returns extracted profile", func(t *testing.T) {
		generator := &stubGenerator{
			response: `{"name":"John Doe","email":"john@example.com","skills":["Go","SQL"]}`,
		}
		handler := NewResumeParseHandler(generator, discardLogger())

		result, err := handler(context.Background(), json.RawMessage(`{"text":"John Doe\njohn@example.com\nGo, SQL"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"John Doe","email":"john@example.com","skills":["Go","SQL"]}`, string(result))
		assert.Contains(t, generator.prompt, "John Doe")
	})

	t.Run("tolerates fenced response", func(t *testing.T) {
		generator := &stubGenerator{
			response: "Here is the profile:\n```json\n{\"name\":\"Jane\"}\n```\nLet me know if you need more.",
		}
		handler := NewResumeParseHandler(generator, discardLogger())

		result, err := handler(context.Background(), json.RawMessage(`{"text":"Jane"}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Jane"}`, string(result))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		handler := NewResumeParseHandler(&stubGenerator{}, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"text":"   "}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		handler := NewResumeParseHandler(&stubGenerator{}, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"text":`))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("propagates generator error", func(t *testing.T) {
		generator := &stubGenerator{err: errors.New("rate limit exceeded")}
		handler := NewResumeParseHandler(generator, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"text":"resume"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit exceeded")
	})

	t.Run("fails on non-JSON output", func(t *testing.T) {
		generator := &stubGenerator{response: "I could not parse that resume, sorry."}
		handler := NewResumeParseHandler(generator, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"text":"resume"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse generated profile")
	})
}

func TestResumeGenerateHandler(t *testing.T) {
	t.Run("returns markdown document", func(t *testing.T) {
		generator := &stubGenerator{response: "# Jane Doe\n\nSenior Gopher\n"}
		handler := NewResumeGenerateHandler(generator, discardLogger())

		result, err := handler(context.Background(), json.RawMessage(`{"resume_text":"Jane Doe","job_description":"Go developer"}`))
		require.NoError(t, err)

		var doc GeneratedDocument
		require.NoError(t, json.Unmarshal(result, &doc))
		assert.Equal(t, "# Jane Doe\n\nSenior Gopher", doc.Content)
		assert.Equal(t, "markdown", doc.Format)

		assert.Contains(t, generator.prompt, "Go developer")
		assert.Contains(t, generator.prompt, "Jane Doe")
	})

	t.Run("includes user instructions in prompt", func(t *testing.T) {
		generator := &stubGenerator{response: "# Resume"}
		handler := NewResumeGenerateHandler(generator, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"resume_text":"r","job_description":"d","user_instructions":"emphasize leadership"}`))
		require.NoError(t, err)
		assert.Contains(t, generator.prompt, "emphasize leadership")
	})

	t.Run("requires resume text and job description", func(t *testing.T) {
		handler := NewResumeGenerateHandler(&stubGenerator{}, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"resume_text":"","job_description":"d"}`))
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)

		_, err = handler(context.Background(), json.RawMessage(`{"resume_text":"r","job_description":""}`))
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

func TestCoverLetterHandler(t *testing.T) {
	t.Run("addresses the company by name", func(t *testing.T) {
		generator := &stubGenerator{response: "Dear Acme team, ..."}
		handler := NewCoverLetterHandler(generator, discardLogger())

		result, err := handler(context.Background(), json.RawMessage(`{"resume_text":"r","job_description":"d","company_name":"Acme"}`))
		require.NoError(t, err)

		var doc GeneratedDocument
		require.NoError(t, json.Unmarshal(result, &doc))
		assert.Equal(t, "Dear Acme team, ...", doc.Content)

		assert.Contains(t, generator.prompt, "Acme")
	})

	t.Run("falls back to generic addressee", func(t *testing.T) {
		generator := &stubGenerator{response: "Dear hiring team, ..."}
		handler := NewCoverLetterHandler(generator, discardLogger())

		_, err := handler(context.Background(), json.RawMessage(`{"resume_text":"r","job_description":"d"}`))
		require.NoError(t, err)
		assert.Contains(t, generator.prompt, "the company")
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain object",
			response: `{"a":1}`,
			want:     `{"a":1}`,
		},
		{
			name:     "object with surrounding prose",
			response: "Sure! Here you go: {\"a\":1} Hope that helps.",
			want:     `{"a":1}`,
		},
		{
			name:     "fenced block with language tag",
			response: "```json\n{\"a\":1}\n```",
			want:     `{"a":1}`,
		},
		{
			name:     "fenced block without language tag",
			response: "```\n{\"nested\":{\"b\":2}}\n```",
			want:     `{"nested":{"b":2}}`,
		},
		{
			name:     "no object at all",
			response: "I cannot do that.",
			wantErr:  true,
		},
		{
			name:     "malformed object",
			response: `{"a":}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.response)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

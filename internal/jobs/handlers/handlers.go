// Package handlers implements the long-running operations behind each job
// type. Every handler takes the job's payload, drives one text-generation
// round trip, and returns structured result data. Handlers never persist
// anything themselves, so an error return leaves no partial state behind.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
)

// TextGenerator is the opaque AI call: prompt in, text out, may fail.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RegisterAll binds one handler per known job type.
func RegisterAll(processor *jobs.Processor, generator TextGenerator, logger *slog.Logger) {
	processor.Register(domain.JobTypeResumeParse, NewResumeParseHandler(generator, logger))
	processor.Register(domain.JobTypeResumeGenerate, NewResumeGenerateHandler(generator, logger))
	processor.Register(domain.JobTypeCoverLetterGenerate, NewCoverLetterHandler(generator, logger))
}

// ResumeParsePayload is the input for resume_parse jobs.
type ResumeParsePayload struct {
	Text string `json:"text"`
}

// NewResumeParseHandler extracts a structured profile from raw resume text.
func NewResumeParseHandler(generator TextGenerator, logger *slog.Logger) jobs.Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var input ResumeParsePayload
		if err := json.Unmarshal(payload, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		if strings.TrimSpace(input.Text) == "" {
			return nil, fmt.Errorf("%w: resume text is empty", domain.ErrInvalidPayload)
		}

		prompt := fmt.Sprintf(`Extract the candidate profile from the resume below.
Respond with a single JSON object using these keys:
"name", "title", "email", "phone", "summary",
"skills" (array of strings),
"experience" (array of {"company", "title", "start", "end", "highlights"}),
"education" (array of {"institution", "degree", "year"}).
Use null for anything not present. Respond with JSON only.

Resume:
%s`, input.Text)

		response, err := generator.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}

		profile, err := extractJSON(response)
		if err != nil {
			logger.Warn("Resume parse returned non-JSON output",
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("failed to parse generated profile: %w", err)
		}

		return profile, nil
	}
}

// ResumeGeneratePayload is the input for resume_generate jobs.
type ResumeGeneratePayload struct {
	ResumeText       string `json:"resume_text"`
	JobDescription   string `json:"job_description"`
	UserInstructions string `json:"user_instructions,omitempty"`
}

// GeneratedDocument is the result shape for document-producing jobs.
type GeneratedDocument struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// NewResumeGenerateHandler produces a resume tailored to one job
// description.
func NewResumeGenerateHandler(generator TextGenerator, logger *slog.Logger) jobs.Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var input ResumeGeneratePayload
		if err := json.Unmarshal(payload, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		if strings.TrimSpace(input.ResumeText) == "" {
			return nil, fmt.Errorf("%w: resume_text is empty", domain.ErrInvalidPayload)
		}
		if strings.TrimSpace(input.JobDescription) == "" {
			return nil, fmt.Errorf("%w: job_description is empty", domain.ErrInvalidPayload)
		}

		prompt := fmt.Sprintf(`Rewrite the resume below so it targets the given job description.
Keep every claim truthful to the original resume; reorder and rephrase to
emphasize relevant experience. Output the full resume in Markdown.
%s
Job description:
%s

Resume:
%s`, instructionBlock(input.UserInstructions), input.JobDescription, input.ResumeText)

		content, err := generator.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}

		return marshalDocument(content)
	}
}

// CoverLetterPayload is the input for cover_letter_generate jobs.
type CoverLetterPayload struct {
	ResumeText       string `json:"resume_text"`
	JobDescription   string `json:"job_description"`
	CompanyName      string `json:"company_name,omitempty"`
	UserInstructions string `json:"user_instructions,omitempty"`
}

// NewCoverLetterHandler produces a cover letter for one application.
func NewCoverLetterHandler(generator TextGenerator, logger *slog.Logger) jobs.Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var input CoverLetterPayload
		if err := json.Unmarshal(payload, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		if strings.TrimSpace(input.ResumeText) == "" {
			return nil, fmt.Errorf("%w: resume_text is empty", domain.ErrInvalidPayload)
		}
		if strings.TrimSpace(input.JobDescription) == "" {
			return nil, fmt.Errorf("%w: job_description is empty", domain.ErrInvalidPayload)
		}

		company := input.CompanyName
		if company == "" {
			company = "the company"
		}

		prompt := fmt.Sprintf(`Write a one-page cover letter addressed to %s for the job below,
grounded in the candidate's resume. Professional tone, no fabricated
experience. Output plain Markdown.
%s
Job description:
%s

Resume:
%s`, company, instructionBlock(input.UserInstructions), input.JobDescription, input.ResumeText)

		content, err := generator.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}

		return marshalDocument(content)
	}
}

func instructionBlock(instructions string) string {
	if strings.TrimSpace(instructions) == "" {
		return ""
	}
	return "Additional instructions from the candidate:\n" + instructions + "\n"
}

func marshalDocument(content string) (json.RawMessage, error) {
	doc := GeneratedDocument{
		Content: strings.TrimSpace(content),
		Format:  "markdown",
	}

	result, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return result, nil
}

// extractJSON pulls the first JSON object out of a model response,
// tolerating fenced code blocks and surrounding prose.
func extractJSON(response string) (json.RawMessage, error) {
	text := strings.TrimSpace(response)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	text = text[start : end+1]

	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}

	return json.RawMessage(text), nil
}

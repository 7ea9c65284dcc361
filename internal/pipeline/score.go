package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/sells-group/recruit-cli/internal/config"
	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/pkg/anthropic"
)

// EmailKind selects the tone of a drafted candidate email.
type EmailKind string

const (
	EmailInterview EmailKind = "interview"
	EmailRejection EmailKind = "rejection"
)

// Scorer produces AI analysis for candidates.
type Scorer interface {
	// Score analyzes the candidate's full profile and returns a scoring
	// result, or an error on any network, quota or malformed-response
	// failure.
	Score(ctx context.Context, c model.Candidate) (*model.Analysis, error)

	// SummarizeResume produces a Markdown resume overview, prioritizing the
	// raw resume text when provided.
	SummarizeResume(ctx context.Context, c model.Candidate, resumeText string) (string, error)

	// DraftEmail drafts an interview invitation or rejection email.
	DraftEmail(ctx context.Context, c model.Candidate, kind EmailKind) (string, error)
}

const scoreSystemPrompt = `You are an expert Technical Recruiter and Senior Full Stack Engineer analyzing applicants for a Senior Full Stack Developer position.`

const scorePrompt = `Candidate Profile:
Name: %s
LinkedIn: %s
GitHub: %s
Portfolio: %s
Resume: %s
Compensation Ask: %s
Availability: %s

Self-Reported Technical Ratings:
- TypeScript: %s
- Node.js: %s
- React: %s
- PostgreSQL: %s
- ETL/Pipelines: %s
- Cloud: %s

Technical Scenario Responses:
1. Data Ingestion (Cron/ETL) Strategy:
"%s"

2. Database Isolation Strategy (Multi-tenancy):
"%s"

3. Complex Frontend State Management:
"%s"

Task:
Analyze their technical depth based on the discrepancy between their self-ratings and their actual answers to the scenario questions. Look for depth of understanding, architectural patterns (e.g., RLS vs logical isolation, idempotency in ETL), and specific tool choices.

Return a valid JSON object:
{"summary": "<professional summary, max 30 words>", "strengths": [<max 3>], "weaknesses": [<max 3, e.g. shallow answers, salary/skill mismatch>], "rating": <1-10, be strict, 7+ is interview ready>, "suggestedQuestions": [<exactly 3 deep-dive interview questions tailored to their answers>]}`

const resumePrompt = `You are a Senior Technical Recruiter. Create a concise "Resume Overview" for this candidate.

If resume text is provided below, prioritize it. If not, synthesize the profile from their technical responses and portfolio data.

Candidate: %s
Role: Senior Full Stack Developer (React/Node/Postgres)
%s
KNOWN PROFILE DATA:
- Skills: TS (%s), Node (%s), React (%s), SQL (%s)
- Cloud: %s
- Project/Portfolio: %s
- Architecture Style (from quiz): %s / %s

Output a Markdown summary with sections: Professional Summary, Technical Skillset, Experience & Projects, Education & Certs (omit if unknown), Quick Verdict.`

// ClaudeScorer implements Scorer against the Anthropic Messages API.
type ClaudeScorer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	validate  *validator.Validate
}

// NewClaudeScorer creates a ClaudeScorer from explicit configuration.
func NewClaudeScorer(client anthropic.Client, cfg config.AnthropicConfig) *ClaudeScorer {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return &ClaudeScorer{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		validate:  validator.New(),
	}
}

// scoredResponse is the untrusted wire shape of a scoring reply. Required
// fields and domains are enforced before anything is merged into a record.
type scoredResponse struct {
	Summary            string   `json:"summary" validate:"required"`
	Strengths          []string `json:"strengths" validate:"required,max=3,dive,required"`
	Weaknesses         []string `json:"weaknesses" validate:"max=3,dive,required"`
	Rating             float64  `json:"rating" validate:"gte=1,lte=10"`
	SuggestedQuestions []string `json:"suggestedQuestions" validate:"required,min=1,max=3,dive,required"`
}

func (s *ClaudeScorer) Score(ctx context.Context, c model.Candidate) (*model.Analysis, error) {
	prompt := fmt.Sprintf(scorePrompt,
		c.FullName, c.LinkedIn, c.GitHub, c.Portfolio, c.ResumeURL, c.Compensation, c.Availability,
		c.RatingTypeScript, c.RatingNode, c.RatingReact, c.RatingSQL, c.RatingETL, c.CloudProviders,
		c.ScenarioIngestion, c.ScenarioIsolation, c.ScenarioState,
	)

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    scoreSystemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "score %s", c.Email)
	}
	resp.Usage.LogCost(s.model, "score")

	var scored scoredResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &scored); err != nil {
		return nil, eris.Wrapf(err, "score %s: parse response", c.Email)
	}
	if err := s.validate.Struct(scored); err != nil {
		return nil, eris.Wrapf(err, "score %s: invalid response", c.Email)
	}

	return &model.Analysis{
		Summary:            scored.Summary,
		Strengths:          scored.Strengths,
		Weaknesses:         scored.Weaknesses,
		Rating:             scored.Rating,
		SuggestedQuestions: scored.SuggestedQuestions,
	}, nil
}

func (s *ClaudeScorer) SummarizeResume(ctx context.Context, c model.Candidate, resumeText string) (string, error) {
	section := ""
	if resumeText != "" {
		section = "\nRESUME TEXT:\n" + resumeText + "\n"
	}
	prompt := fmt.Sprintf(resumePrompt,
		c.FullName, section,
		c.RatingTypeScript, c.RatingNode, c.RatingReact, c.RatingSQL,
		c.CloudProviders, c.Portfolio, c.ScenarioIsolation, c.ScenarioIngestion,
	)

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", eris.Wrapf(err, "summarize resume %s", c.Email)
	}
	resp.Usage.LogCost(s.model, "resume_summary")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.Errorf("summarize resume %s: empty response", c.Email)
	}
	return text, nil
}

func (s *ClaudeScorer) DraftEmail(ctx context.Context, c model.Candidate, kind EmailKind) (string, error) {
	var prompt string
	switch kind {
	case EmailInterview:
		scenario := c.ScenarioState
		if len(scenario) > 80 {
			scenario = scenario[:80] + "..."
		}
		prompt = fmt.Sprintf(
			"Draft a friendly interview invitation email for %s. Mention we were impressed by their answer regarding %q and their %s React skills.",
			c.FullName, scenario, c.RatingReact,
		)
	case EmailRejection:
		prompt = fmt.Sprintf(
			"Draft a polite and professional rejection email for %s. Keep it concise, encouraging, and wish them luck.",
			c.FullName,
		)
	default:
		return "", eris.Errorf("draft email: unknown kind %q", kind)
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", eris.Wrapf(err, "draft %s email for %s", kind, c.Email)
	}
	resp.Usage.LogCost(s.model, "draft_email")

	return strings.TrimSpace(resp.Text()), nil
}

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

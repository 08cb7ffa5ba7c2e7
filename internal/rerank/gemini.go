package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"jobsniper/internal/config"
	"jobsniper/internal/domain"
)

var ErrNoAPIKey = errors.New("gemini API key is not set")

const maxDescription = 3000

const verdictSchema = `{
  "type": "object",
  "required": ["score", "recommendation"],
  "properties": {
    "score": {"type": "number"},
    "recommendation": {"type": "string"},
    "reasoning": {"type": "string"},
    "highlights": {"type": "array", "items": {"type": "string"}},
    "requirements": {"type": "array", "items": {"type": "string"}}
  }
}`

type generateFunc func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)

// GeminiJudge asks a Gemini model to rate a posting against a candidate
// profile. Calls are paced by a limiter.
type GeminiJudge struct {
	client   *genai.Client
	generate generateFunc
	profile  string
	limiter  *rate.Limiter
}

func NewGeminiJudge(ctx context.Context, apiKey string, rc config.Rerank, profile string) (*GeminiJudge, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(rc.Model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	j := newJudge(func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(prompt))
	}, profile, time.Duration(rc.DelayMS)*time.Millisecond)
	j.client = client
	return j, nil
}

func newJudge(gen generateFunc, profile string, delay time.Duration) *GeminiJudge {
	lim := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		lim = rate.NewLimiter(rate.Every(delay), 1)
	}
	if profile == "" {
		profile = defaultProfile
	}
	return &GeminiJudge{generate: gen, profile: profile, limiter: lim}
}

func (j *GeminiJudge) Close() error {
	if j.client != nil {
		return j.client.Close()
	}
	return nil
}

func (j *GeminiJudge) Evaluate(ctx context.Context, p domain.Posting) (Verdict, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return Verdict{}, err
	}
	resp, err := j.generate(ctx, BuildPrompt(j.profile, p))
	if err != nil {
		return Verdict{}, fmt.Errorf("generate: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return Verdict{}, err
	}
	return ParseVerdict(text)
}

// ParseVerdict decodes a model reply, tolerating markdown code fences.
func ParseVerdict(text string) (Verdict, error) {
	text = cleanJSONBlock(text)

	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(verdictSchema),
		gojsonschema.NewStringLoader(text),
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Verdict{}, fmt.Errorf("invalid verdict: %s", strings.Join(msgs, "; "))
	}

	var raw struct {
		Score          float64  `json:"score"`
		Recommendation string   `json:"recommendation"`
		Reasoning      string   `json:"reasoning"`
		Highlights     []string `json:"highlights"`
		Requirements   []string `json:"requirements"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	return Verdict{
		Score:          int(math.Round(raw.Score)),
		Recommendation: raw.Recommendation,
		Reasoning:      raw.Reasoning,
		Highlights:     raw.Highlights,
		Requirements:   raw.Requirements,
	}.Normalize(), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return b.String(), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// BuildPrompt renders the evaluation request for p.
func BuildPrompt(profile string, p domain.Posting) string {
	desc := p.Description
	if desc == "" {
		desc = p.Title
	}
	if r := []rune(desc); len(r) > maxDescription {
		desc = string(r[:maxDescription])
	}
	loc := p.Location
	if loc == "" {
		loc = "Unknown"
	}
	return fmt.Sprintf(promptTemplate, profile, p.Title, p.Company, loc, desc)
}

const promptTemplate = `You are a recruiting assistant evaluating job fit for a specific candidate.

## CANDIDATE PROFILE:
%s

## JOB POSTING TO EVALUATE:
**Title:** %s
**Company:** %s
**Location:** %s
**Description:**
%s

## YOUR TASK:
Evaluate how well this job matches the candidate's background, skills, and career goals.

Consider:
1. Does the role match the candidate's experience level?
2. Is it in the candidate's target industries?
3. Does it align with the candidate's core skills?
4. Is the location compatible?
5. Are there any red flags (too junior, wrong field, technical role)?

## RESPONSE FORMAT (JSON only, no markdown):
{
    "score": <1-10 integer>,
    "recommendation": "<SEND|MAYBE|SKIP>",
    "reasoning": "<2-3 sentence explanation of why this is/isn't a good match>",
    "highlights": ["<matching point 1>", "<matching point 2>"],
    "requirements": ["<key requirement 1>", "<key requirement 2>", "<key requirement 3>"]
}

"requirements" should list 2-4 key job requirements or qualifications from the posting.

SCORING GUIDE:
- 9-10: Perfect match, exactly the target role and industry
- 7-8: Strong match, relevant role and good fit
- 5-6: Possible match, adjacent role worth considering
- 3-4: Weak match, tangentially related
- 1-2: Poor match, wrong level, industry or function

RECOMMENDATION GUIDE:
- SEND: score 7+
- MAYBE: score 5-6
- SKIP: score 4 or below

Respond with ONLY the JSON object, no other text.`

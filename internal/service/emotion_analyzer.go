package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"post-recommender/internal/domain"
	"post-recommender/internal/llm"
)

var (
	ErrInvalidAnalysis = errors.New("invalid emotion analysis")
	ErrMissingField    = errors.New("missing required field")
)

// requiredAnalysisFields son los campos que el clasificador debe devolver siempre.
var requiredAnalysisFields = []string{
	"primary_emotion",
	"secondary_emotions",
	"intensity",
	"sentiment",
	"emotional_context",
	"suggested_content_tone",
	"needs_support",
	"crisis_indicators",
}

const emotionAnalysisPrompt = `You are an expert emotion analyst with deep understanding of human psychology. Analyze the following text and identify the user's emotional state with precision and empathy.

User Input: %q

Provide your analysis ONLY as valid JSON (no markdown, no code fences) in this exact format:
{
  "primary_emotion": "main emotion (one lowercase word from: %s)",
  "secondary_emotions": ["2-3 additional emotions from the same list"],
  "intensity": <number 0-100>,
  "sentiment": "positive|negative|neutral|mixed",
  "emotional_context": "brief context description of what's driving these emotions",
  "suggested_content_tone": ["2-3 tone descriptors from: %s"],
  "needs_support": <boolean>,
  "crisis_indicators": <boolean>
}

Guidelines:
- crisis_indicators should be true ONLY if the text contains clear signs of self-harm, suicidal ideation, or immediate danger
- needs_support should be true if the person seems to be struggling and could benefit from supportive resources
- Consider nuance, context, and implicit emotions
- Be compassionate and accurate
- intensity: 0-30 mild, 31-60 moderate, 61-80 strong, 81-100 very intense`

// EmotionAnalyzer usa el LLM como clasificador y normaliza su salida a un EmotionProfile.
type EmotionAnalyzer struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewEmotionAnalyzer(llmClient llm.LLMClient, logger *zap.Logger) *EmotionAnalyzer {
	return &EmotionAnalyzer{llmClient: llmClient, logger: logger}
}

// Analyze clasifica el texto del usuario. Cualquier error implica que el llamador debe
// usar el fallback aleatorio.
func (a *EmotionAnalyzer) Analyze(ctx context.Context, text string) (domain.EmotionProfile, error) {
	prompt := fmt.Sprintf(emotionAnalysisPrompt,
		strings.TrimSpace(text),
		strings.Join(domain.EmotionVocabulary, ", "),
		strings.Join(domain.ToneVocabulary, ", "),
	)

	raw, err := a.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.EmotionProfile{}, fmt.Errorf("llm generate: %w", err)
	}

	profile, err := ParseEmotionAnalysis(raw)
	if err != nil {
		a.logger.Warn("emotion analysis parse failed", zap.Error(err), zap.Int("raw_len", len(raw)))
		return domain.EmotionProfile{}, err
	}
	return profile, nil
}

// ParseEmotionAnalysis valida la respuesta cruda del clasificador.
func ParseEmotionAnalysis(raw string) (domain.EmotionProfile, error) {
	payload := llmJSONPayload(raw)
	if payload == "" {
		return domain.EmotionProfile{}, fmt.Errorf("%w: no json object in response", ErrInvalidAnalysis)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return domain.EmotionProfile{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	for _, f := range requiredAnalysisFields {
		if _, ok := fields[f]; !ok {
			return domain.EmotionProfile{}, fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}

	var parsed struct {
		PrimaryEmotion       string      `json:"primary_emotion"`
		SecondaryEmotions    []string    `json:"secondary_emotions"`
		Intensity            json.Number `json:"intensity"`
		Sentiment            string      `json:"sentiment"`
		EmotionalContext     string      `json:"emotional_context"`
		SuggestedContentTone []string    `json:"suggested_content_tone"`
		NeedsSupport         bool        `json:"needs_support"`
		CrisisIndicators     bool        `json:"crisis_indicators"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.EmotionProfile{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	// null cuenta como 0, igual que una conversion numerica laxa.
	var err error
	intensity := 0.0
	if parsed.Intensity != "" {
		intensity, err = parsed.Intensity.Float64()
	}
	if err != nil || math.IsNaN(intensity) {
		return domain.EmotionProfile{}, fmt.Errorf("%w: intensity %q", ErrInvalidAnalysis, parsed.Intensity.String())
	}

	primary := domain.NormalizeLabel(parsed.PrimaryEmotion)
	if primary == "" {
		return domain.EmotionProfile{}, fmt.Errorf("%w: empty primary_emotion", ErrInvalidAnalysis)
	}

	sentiment := domain.NormalizeLabel(parsed.Sentiment)
	if !domain.IsKnownSentiment(sentiment) {
		sentiment = domain.SentimentNeutral
	}

	return domain.EmotionProfile{
		PrimaryEmotion:       primary,
		SecondaryEmotions:    normalizeLabels(parsed.SecondaryEmotions, domain.IsKnownEmotion, domain.MaxSecondaryEmotions),
		Intensity:            clampIntensityFloat(intensity),
		Sentiment:            sentiment,
		EmotionalContext:     strings.TrimSpace(parsed.EmotionalContext),
		SuggestedContentTone: normalizeLabels(parsed.SuggestedContentTone, domain.IsKnownTone, domain.MaxContentTones),
		NeedsSupport:         parsed.NeedsSupport,
		CrisisIndicators:     parsed.CrisisIndicators,
	}, nil
}

// ProfileFromQuery arma el perfil simplificado de la consulta directa por emocion.
func ProfileFromQuery(emotion, intensity string) domain.EmotionProfile {
	value := domain.DefaultIntensity
	if f, err := strconv.ParseFloat(strings.TrimSpace(intensity), 64); err == nil && f != 0 && !math.IsNaN(f) {
		value = clampIntensityFloat(f)
	}
	return domain.EmotionProfile{
		PrimaryEmotion:       domain.NormalizeLabel(emotion),
		SecondaryEmotions:    []string{},
		Intensity:            value,
		Sentiment:            domain.SentimentNeutral,
		SuggestedContentTone: []string{},
	}
}

func clampIntensityFloat(v float64) int {
	if math.IsInf(v, 1) {
		return domain.MaxIntensity
	}
	if math.IsInf(v, -1) {
		return domain.MinIntensity
	}
	return domain.ClampIntensity(int(math.Round(math.Max(-1, math.Min(v, 101)))))
}

// normalizeLabels pasa a minusculas, descarta etiquetas desconocidas y recorta a max.
func normalizeLabels(labels []string, known func(string) bool, max int) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		n := domain.NormalizeLabel(l)
		if n == "" || !known(n) {
			continue
		}
		out = append(out, n)
		if len(out) == max {
			break
		}
	}
	return out
}

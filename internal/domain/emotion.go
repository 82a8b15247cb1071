package domain

import "strings"

// EmotionProfile es el perfil emocional/tematico que consume el motor de ranking.
type EmotionProfile struct {
	PrimaryEmotion       string   `json:"primary_emotion"`
	SecondaryEmotions    []string `json:"secondary_emotions"`
	Intensity            int      `json:"intensity"`
	Sentiment            string   `json:"sentiment"`
	EmotionalContext     string   `json:"emotional_context,omitempty"`
	SuggestedContentTone []string `json:"suggested_content_tone"`
	NeedsSupport         bool     `json:"needs_support"`
	CrisisIndicators     bool     `json:"crisis_indicators"`
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

const (
	MinIntensity     = 0
	MaxIntensity     = 100
	DefaultIntensity = 50

	// MaxSecondaryEmotions y MaxContentTones limitan las listas que vienen del clasificador.
	MaxSecondaryEmotions = 3
	MaxContentTones      = 3
)

// EmotionVocabulary es el vocabulario cerrado de etiquetas que acepta el clasificador.
var EmotionVocabulary = []string{
	"joy", "sadness", "anger", "fear", "surprise", "disgust", "anxiety",
	"excitement", "frustration", "hope", "disappointment", "contentment",
	"loneliness", "pride", "shame", "gratitude", "stress", "overwhelm",
	"calm", "confusion", "motivation", "boredom", "nostalgia",
}

// ToneVocabulary son los descriptores de tono sugeridos.
var ToneVocabulary = []string{
	"supportive", "calming", "practical", "uplifting", "humorous", "motivational",
	"validating", "energetic", "reflective", "inspiring", "comforting", "empowering",
}

var (
	emotionSet   = toSet(EmotionVocabulary)
	toneSet      = toSet(ToneVocabulary)
	sentimentSet = toSet([]string{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed})
)

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// NormalizeLabel deja una etiqueta en minusculas y sin espacios.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// IsKnownEmotion indica si la etiqueta pertenece al vocabulario.
func IsKnownEmotion(label string) bool {
	_, ok := emotionSet[NormalizeLabel(label)]
	return ok
}

// IsKnownTone indica si el descriptor pertenece al vocabulario de tonos.
func IsKnownTone(tone string) bool {
	_, ok := toneSet[NormalizeLabel(tone)]
	return ok
}

// IsKnownSentiment indica si el sentimiento es uno de los cuatro admitidos.
func IsKnownSentiment(sentiment string) bool {
	_, ok := sentimentSet[NormalizeLabel(sentiment)]
	return ok
}

// ClampIntensity fuerza la intensidad al rango [0,100].
func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

package service

import "post-recommender/internal/domain"

// negativeEmotions es el conjunto fijo de emociones primarias que activan el bonus
// complementario y la pasada de balance.
var negativeEmotions = map[string]struct{}{
	"sadness":        {},
	"anger":          {},
	"fear":           {},
	"anxiety":        {},
	"frustration":    {},
	"disappointment": {},
	"loneliness":     {},
	"shame":          {},
	"stress":         {},
	"overwhelm":      {},
	"disgust":        {},
	"confusion":      {},
	"boredom":        {},
}

// complementaryEmotions mapea cada emocion negativa a emociones "terapeuticas".
// Ninguna entrada supera 4 elementos; el bonus depende de eso.
var complementaryEmotions = map[string][]string{
	"sadness":        {"hope", "joy", "gratitude", "contentment"},
	"anger":          {"calm", "contentment", "hope"},
	"fear":           {"calm", "hope", "contentment", "pride"},
	"anxiety":        {"calm", "contentment", "hope", "gratitude"},
	"frustration":    {"hope", "motivation", "calm", "pride"},
	"disappointment": {"hope", "motivation", "gratitude"},
	"loneliness":     {"contentment", "hope", "gratitude", "joy"},
	"shame":          {"pride", "hope", "gratitude", "contentment"},
	"stress":         {"calm", "contentment", "joy", "gratitude"},
	"overwhelm":      {"calm", "hope", "contentment"},
	"disgust":        {"hope", "calm", "joy"},
	"confusion":      {"calm", "motivation", "hope"},
	"boredom":        {"excitement", "motivation", "joy"},
}

// IsNegativeEmotion indica si la emocion primaria pertenece al conjunto negativo.
func IsNegativeEmotion(emotion string) bool {
	_, ok := negativeEmotions[emotion]
	return ok
}

// ComplementaryEmotions devuelve una copia de las emociones complementarias.
func ComplementaryEmotions(emotion string) []string {
	return append([]string(nil), complementaryEmotions[emotion]...)
}

// isUplifting es la condicion que exige la pasada de balance.
func isUplifting(p domain.Post) bool {
	return p.Tone == "uplifting" ||
		p.ContentType == "motivational" ||
		p.ContentType == "supportive"
}

package service

import (
	"math"
	"time"

	"post-recommender/internal/domain"
)

// Pesos del puntaje de coincidencia.
const (
	primaryMatchPoints     = 35.0
	complementaryPoints    = 8.0
	secondaryMatchPoints   = 10.0
	secondaryMatchCap      = 20.0
	toneMatchPoints        = 12.0
	toneMatchCap           = 25.0
	engagementDivisor      = 10.0
	freshnessWeekPoints    = 10.0
	freshnessMonthPoints   = 7.0
	freshnessQuarterPoints = 4.0
)

// ScorePost calcula el puntaje de un post para un perfil. Es puro: now se inyecta
// para que la frescura sea reproducible.
func ScorePost(profile domain.EmotionProfile, post domain.Post, now time.Time) float64 {
	matched := make(map[string]struct{}, len(post.EmotionsMatched))
	for _, e := range post.EmotionsMatched {
		matched[e] = struct{}{}
	}
	has := func(e string) bool {
		_, ok := matched[e]
		return ok
	}

	score := 0.0

	if has(profile.PrimaryEmotion) {
		score += primaryMatchPoints
	}

	// Sin tope: con 4 complementarias como maximo el bonus llega a 32.
	if IsNegativeEmotion(profile.PrimaryEmotion) {
		for _, e := range complementaryEmotions[profile.PrimaryEmotion] {
			if has(e) {
				score += complementaryPoints
			}
		}
	}

	score += secondaryScore(profile, has)
	score += toneScore(profile.SuggestedContentTone, post)
	score += freshnessScore(post.DateAdded, now)
	score += post.EngagementScore / engagementDivisor

	return score
}

// secondaryScore ignora secundarias repetidas o iguales a la primaria.
func secondaryScore(profile domain.EmotionProfile, has func(string) bool) float64 {
	counted := make(map[string]struct{}, len(profile.SecondaryEmotions))
	total := 0.0
	for _, e := range profile.SecondaryEmotions {
		if e == profile.PrimaryEmotion {
			continue
		}
		if _, dup := counted[e]; dup {
			continue
		}
		counted[e] = struct{}{}
		if has(e) {
			total += secondaryMatchPoints
		}
	}
	return math.Min(secondaryMatchCap, total)
}

func toneScore(tones []string, post domain.Post) float64 {
	total := 0.0
	for _, t := range tones {
		if t == post.Tone || t == post.ContentType {
			total += toneMatchPoints
		}
	}
	return math.Min(toneMatchCap, total)
}

func freshnessScore(added *time.Time, now time.Time) float64 {
	if added == nil {
		return 0
	}
	days := int(math.Floor(now.Sub(*added).Hours() / 24))
	switch {
	case days < 7:
		return freshnessWeekPoints
	case days < 30:
		return freshnessMonthPoints
	case days < 90:
		return freshnessQuarterPoints
	default:
		return 0
	}
}

package service

import (
	"math/rand/v2"
	"sort"
	"time"

	"post-recommender/internal/corpus"
	"post-recommender/internal/domain"
)

const (
	DefaultRecommendationCount = 8
	DefaultFallbackCount       = 5

	maxPerPlatform = 2
	maxPerAuthor   = 2
	// La pasada de balance solo corre con mas de balanceMinResults resultados.
	balanceMinResults = 3
)

// RecommendationEngine rankea el corpus contra un perfil emocional. No guarda estado
// mutable: puede usarse desde varios requests a la vez.
type RecommendationEngine struct {
	corpus  *corpus.Corpus
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// EngineOption ajusta dependencias del motor (reloj, aleatoriedad) para tests.
type EngineOption func(*RecommendationEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *RecommendationEngine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithShuffle(shuffle func(n int, swap func(i, j int))) EngineOption {
	return func(e *RecommendationEngine) {
		if shuffle != nil {
			e.shuffle = shuffle
		}
	}
}

func NewRecommendationEngine(c *corpus.Corpus, opts ...EngineOption) *RecommendationEngine {
	e := &RecommendationEngine{
		corpus:  c,
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend devuelve hasta count posts ordenados por puntaje, respetando los topes de
// diversidad y la correccion de balance para emociones negativas.
func (e *RecommendationEngine) Recommend(profile domain.EmotionProfile, count int) []domain.ScoredPost {
	if count <= 0 {
		count = DefaultRecommendationCount
	}
	profile.Intensity = domain.ClampIntensity(profile.Intensity)

	posts := e.corpus.Posts()
	now := e.now()
	scored := make([]domain.ScoredPost, len(posts))
	for i, p := range posts {
		scored[i] = domain.ScoredPost{Post: p, MatchScore: ScorePost(profile, p, now)}
	}

	// Estable: los empates conservan el orden del corpus.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	selected, picked := selectDiverse(scored, count)

	if IsNegativeEmotion(profile.PrimaryEmotion) && len(selected) > balanceMinResults {
		rebalance(scored, selected, picked)
	}
	return selected
}

// selectDiverse hace una sola pasada greedy; lo descartado no se reconsidera.
// picked marca los indices de scored que quedaron seleccionados.
func selectDiverse(scored []domain.ScoredPost, count int) ([]domain.ScoredPost, []bool) {
	selected := make([]domain.ScoredPost, 0, count)
	picked := make([]bool, len(scored))
	platformCount := make(map[string]int)
	authorCount := make(map[string]int)

	for i, sp := range scored {
		if len(selected) >= count {
			break
		}
		if platformCount[sp.Platform] >= maxPerPlatform {
			continue
		}
		if authorCount[sp.Author] >= maxPerAuthor {
			continue
		}
		selected = append(selected, sp)
		picked[i] = true
		platformCount[sp.Platform]++
		authorCount[sp.Author]++
	}
	return selected, picked
}

// rebalance reemplaza el ultimo seleccionado por el mejor post edificante no
// seleccionado cuando ninguno de los elegidos lo es. Ignora los topes de diversidad.
func rebalance(scored, selected []domain.ScoredPost, picked []bool) {
	for _, sp := range selected {
		if isUplifting(sp.Post) {
			return
		}
	}
	for i, sp := range scored {
		if picked[i] || !isUplifting(sp.Post) {
			continue
		}
		selected[len(selected)-1] = sp
		return
	}
}

// RandomPosts elige n posts al azar sin reemplazo, sin puntaje ni diversidad.
func (e *RecommendationEngine) RandomPosts(n int) []domain.Post {
	posts := e.corpus.Posts()
	e.shuffle(len(posts), func(i, j int) {
		posts[i], posts[j] = posts[j], posts[i]
	})
	if n < 0 {
		n = 0
	}
	if n > len(posts) {
		n = len(posts)
	}
	return posts[:n]
}

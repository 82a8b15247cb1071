package service

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"post-recommender/internal/corpus"
	"post-recommender/internal/domain"
)

func newTestEngine(t *testing.T, posts []domain.Post, opts ...EngineOption) *RecommendationEngine {
	t.Helper()
	c, err := corpus.New(posts)
	if err != nil {
		t.Fatalf("build corpus: %v", err)
	}
	opts = append([]EngineOption{WithClock(func() time.Time { return scoringNow })}, opts...)
	return NewRecommendationEngine(c, opts...)
}

func ids(posts []domain.ScoredPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.PostID
	}
	return out
}

func TestRecommendRanksMultiMatchAboveUnrelated(t *testing.T) {
	posts := []domain.Post{
		{PostID: "none", Platform: "blog", Author: "a", Tone: "informative", ContentType: "opinion", EmotionsMatched: []string{"surprise"}},
		{PostID: "uplift", Platform: "twitter", Author: "b", Tone: "uplifting", ContentType: "story"},
		{PostID: "multi", Platform: "reddit", Author: "c", Tone: "reflective", ContentType: "story", EmotionsMatched: []string{"sadness", "hope"}},
	}
	engine := newTestEngine(t, posts)
	profile := domain.EmotionProfile{
		PrimaryEmotion:       "sadness",
		SecondaryEmotions:    []string{"loneliness"},
		Sentiment:            domain.SentimentNegative,
		Intensity:            70,
		SuggestedContentTone: []string{"comforting"},
	}

	got := engine.Recommend(profile, 8)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %v", ids(got))
	}
	pos := map[string]int{}
	for i, p := range got {
		pos[p.PostID] = i
	}
	if pos["multi"] > pos["none"] {
		t.Fatalf("expected multi-matching post above unrelated post, got %v", ids(got))
	}
	if got[0].PostID != "multi" || got[0].MatchScore != 43 {
		t.Fatalf("expected multi first with score 43, got %s=%v", got[0].PostID, got[0].MatchScore)
	}
}

func TestRecommendStableTieBreak(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 6; i++ {
		posts = append(posts, domain.Post{
			PostID:   fmt.Sprintf("p%d", i),
			Platform: fmt.Sprintf("pl%d", i),
			Author:   fmt.Sprintf("a%d", i),
		})
	}
	engine := newTestEngine(t, posts)

	for run := 0; run < 5; run++ {
		got := ids(engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "joy"}, 8))
		want := []string{"p0", "p1", "p2", "p3", "p4", "p5"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("expected corpus order on ties, got %v", got)
		}
	}
}

func TestRecommendDiversityCaps(t *testing.T) {
	posts := []domain.Post{
		{PostID: "t1", Platform: "twitter", Author: "x", EngagementScore: 100},
		{PostID: "t2", Platform: "twitter", Author: "y", EngagementScore: 90},
		{PostID: "t3", Platform: "twitter", Author: "z", EngagementScore: 80},
		{PostID: "r1", Platform: "reddit", Author: "x", EngagementScore: 70},
		{PostID: "b1", Platform: "blog", Author: "x", EngagementScore: 60},
		{PostID: "b2", Platform: "blog", Author: "w", EngagementScore: 50},
	}
	engine := newTestEngine(t, posts)

	got := ids(engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "joy"}, 8))
	want := []string{"t1", "t2", "r1", "b2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRecommendStopsAtCount(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 20; i++ {
		posts = append(posts, domain.Post{PostID: fmt.Sprintf("p%d", i), Platform: fmt.Sprintf("pl%d", i), Author: fmt.Sprintf("a%d", i)})
	}
	engine := newTestEngine(t, posts)

	if got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "joy"}, 3); len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "joy"}, 0); len(got) != DefaultRecommendationCount {
		t.Fatalf("expected default count %d, got %d", DefaultRecommendationCount, len(got))
	}
}

// balanceCorpus arma 8 posts tristes no edificantes y un post edificante de bajo
// puntaje en una plataforma ya saturada.
func balanceCorpus() []domain.Post {
	posts := []domain.Post{
		{PostID: "s1", Platform: "twitter", Author: "a1"},
		{PostID: "s2", Platform: "twitter", Author: "a2"},
	}
	for i := 3; i <= 8; i++ {
		posts = append(posts, domain.Post{PostID: fmt.Sprintf("s%d", i), Platform: fmt.Sprintf("pl%d", i), Author: fmt.Sprintf("a%d", i)})
	}
	for i := range posts {
		posts[i].Tone = "reflective"
		posts[i].ContentType = "story"
		posts[i].EmotionsMatched = []string{"sadness"}
		posts[i].EngagementScore = float64(100 - i)
	}
	posts = append(posts,
		domain.Post{PostID: "up-low", Platform: "twitter", Author: "a1", Tone: "calming", ContentType: "supportive"},
		domain.Post{PostID: "plain", Platform: "other", Author: "zz", Tone: "reflective", ContentType: "story", EngagementScore: 5},
	)
	return posts
}

func TestRecommendBalanceReplacesLastSlot(t *testing.T) {
	engine := newTestEngine(t, balanceCorpus())

	got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "sadness"}, 8)
	if len(got) != 8 {
		t.Fatalf("expected 8 results, got %v", ids(got))
	}
	want := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "up-low"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	// El reemplazo ignora el tope: twitter y a1 aparecen tres y dos veces.
	twitter := 0
	for _, p := range got {
		if p.Platform == "twitter" {
			twitter++
		}
	}
	if twitter != 3 {
		t.Fatalf("expected balance correction to bypass platform cap, got %d twitter posts", twitter)
	}
}

func TestRecommendBalanceSkippedForNonNegative(t *testing.T) {
	engine := newTestEngine(t, balanceCorpus())

	got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "nostalgia"}, 8)
	for _, p := range got {
		if p.PostID == "up-low" {
			t.Fatalf("did not expect balance correction for non-negative primary, got %v", ids(got))
		}
	}
}

func TestRecommendBalanceKeepsExistingUplifting(t *testing.T) {
	posts := balanceCorpus()
	posts[4].ContentType = "motivational"
	engine := newTestEngine(t, posts)

	got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "sadness"}, 8)
	if got[len(got)-1].PostID != "s8" {
		t.Fatalf("expected no replacement when an uplifting post is already selected, got %v", ids(got))
	}
}

func TestRecommendBalanceNeedsMoreThanThreeResults(t *testing.T) {
	posts := []domain.Post{
		{PostID: "a", Platform: "p1", Author: "x", EmotionsMatched: []string{"fear"}, EngagementScore: 30},
		{PostID: "b", Platform: "p2", Author: "y", EmotionsMatched: []string{"fear"}, EngagementScore: 20},
		{PostID: "c", Platform: "p3", Author: "z", EmotionsMatched: []string{"fear"}, EngagementScore: 10},
	}
	engine := newTestEngine(t, posts)
	got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "fear"}, 8)
	if fmt.Sprint(ids(got)) != fmt.Sprint([]string{"a", "b", "c"}) {
		t.Fatalf("expected untouched ranking for 3-post corpus, got %v", ids(got))
	}

	posts = append(posts, domain.Post{PostID: "up", Platform: "p4", Author: "w", Tone: "uplifting"})
	engine = newTestEngine(t, posts)
	got = engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "fear"}, 3)
	if fmt.Sprint(ids(got)) != fmt.Sprint([]string{"a", "b", "c"}) {
		t.Fatalf("expected no balance correction with 3 results, got %v", ids(got))
	}
}

func TestRecommendEmptyCorpus(t *testing.T) {
	engine := newTestEngine(t, nil)
	got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "sadness"}, 8)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestRecommendToleratesExtremeIntensity(t *testing.T) {
	engine := newTestEngine(t, balanceCorpus())
	for _, intensity := range []int{-1000, 0, 100, 1 << 30} {
		got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: "sadness", Intensity: intensity}, 8)
		if len(got) == 0 {
			t.Fatalf("expected results for intensity %d", intensity)
		}
	}
}

func TestRecommendInvariantsOnRandomCorpora(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	platforms := []string{"twitter", "instagram", "reddit", "blog"}
	authors := []string{"a", "b", "c", "d", "e"}
	tones := []string{"uplifting", "reflective", "calming", "humorous"}
	types := []string{"story", "supportive", "motivational", "practical"}

	for round := 0; round < 200; round++ {
		n := rng.IntN(15)
		posts := make([]domain.Post, n)
		for i := range posts {
			var emotions []string
			for k := 0; k < rng.IntN(4); k++ {
				emotions = append(emotions, domain.EmotionVocabulary[rng.IntN(len(domain.EmotionVocabulary))])
			}
			posts[i] = domain.Post{
				PostID:          fmt.Sprintf("r%d-%d", round, i),
				Platform:        platforms[rng.IntN(len(platforms))],
				Author:          authors[rng.IntN(len(authors))],
				Tone:            tones[rng.IntN(len(tones))],
				ContentType:     types[rng.IntN(len(types))],
				EmotionsMatched: emotions,
				EngagementScore: float64(rng.IntN(100)),
			}
		}
		engine := newTestEngine(t, posts)
		primary := domain.EmotionVocabulary[rng.IntN(len(domain.EmotionVocabulary))]
		got := engine.Recommend(domain.EmotionProfile{PrimaryEmotion: primary}, 8)

		// Solo el ultimo puede saltar los topes, y solo si lo puso la pasada de balance.
		exemptLast := IsNegativeEmotion(primary) && len(got) > 3 && isUplifting(got[len(got)-1].Post)
		for _, p := range got[:max(len(got)-1, 0)] {
			if isUplifting(p.Post) {
				exemptLast = false
			}
		}

		seen := map[string]bool{}
		platformCount := map[string]int{}
		authorCount := map[string]int{}
		for i, p := range got {
			if seen[p.PostID] {
				t.Fatalf("round %d: duplicate post %s", round, p.PostID)
			}
			seen[p.PostID] = true
			if i == len(got)-1 && exemptLast {
				continue
			}
			platformCount[p.Platform]++
			authorCount[p.Author]++
			if platformCount[p.Platform] > 2 || authorCount[p.Author] > 2 {
				t.Fatalf("round %d: diversity cap violated by %v", round, ids(got))
			}
		}

		if !IsNegativeEmotion(primary) || len(got) <= 3 {
			continue
		}
		anyUplifting := false
		for _, p := range posts {
			if isUplifting(p) {
				anyUplifting = true
				break
			}
		}
		hasUplifting := false
		for _, p := range got {
			if isUplifting(p.Post) {
				hasUplifting = true
			}
		}
		if anyUplifting && !hasUplifting {
			t.Fatalf("round %d: expected an uplifting post in %v", round, ids(got))
		}
	}
}

func TestRandomPosts(t *testing.T) {
	var posts []domain.Post
	for i := 0; i < 10; i++ {
		posts = append(posts, domain.Post{PostID: fmt.Sprintf("p%d", i)})
	}
	rng := rand.New(rand.NewPCG(1, 2))
	engine := newTestEngine(t, posts, WithShuffle(rng.Shuffle))

	for _, n := range []int{-3, 0, 1, 5, 10, 25} {
		got := engine.RandomPosts(n)
		want := n
		if want < 0 {
			want = 0
		}
		if want > len(posts) {
			want = len(posts)
		}
		if len(got) != want {
			t.Fatalf("n=%d: expected %d posts, got %d", n, want, len(got))
		}
		seen := map[string]bool{}
		for _, p := range got {
			if seen[p.PostID] {
				t.Fatalf("n=%d: duplicate post %s", n, p.PostID)
			}
			seen[p.PostID] = true
		}
	}
}

func TestCrisisResourcesFixed(t *testing.T) {
	first := CrisisResources()
	if len(first) != 5 {
		t.Fatalf("expected 5 resources, got %d", len(first))
	}
	wantNames := []string{
		"988 Suicide & Crisis Lifeline",
		"Crisis Text Line",
		"SAMHSA National Helpline",
		"International Association for Suicide Prevention",
		"IMAlive Online Crisis Chat",
	}
	for i, r := range first {
		if r.Name != wantNames[i] {
			t.Fatalf("expected %q at %d, got %q", wantNames[i], i, r.Name)
		}
		if r.ContactMethods() != 1 {
			t.Fatalf("expected exactly one contact method for %q", r.Name)
		}
	}

	first[0].Phone = "changed"
	if CrisisResources()[0].Phone != "988" {
		t.Fatalf("expected crisis resources to be immutable")
	}
}

// Command recommend rankea posts del corpus para una emocion sin levantar el servidor.
//
//	recommend -emotion sadness -intensity 70
//	recommend -text "I feel stuck at work"   (usa el LLM configurado)
//	recommend -random 5
//	recommend -crisis
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"post-recommender/internal/config"
	"post-recommender/internal/corpus"
	"post-recommender/internal/domain"
	"post-recommender/internal/llm"
	"post-recommender/internal/service"
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run ejecuta el comando; client permite inyectar el LLM en tests.
func run(ctx context.Context, args []string, out io.Writer, client llm.LLMClient) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(out)
	emotion := fs.String("emotion", "", "emocion primaria (ej. sadness)")
	intensity := fs.String("intensity", "", "intensidad 0-100 (default 50)")
	text := fs.String("text", "", "texto libre a analizar con el LLM")
	count := fs.Int("count", service.DefaultRecommendationCount, "cantidad de posts")
	random := fs.Int("random", 0, "devolver N posts al azar")
	crisis := fs.Bool("crisis", false, "listar recursos de crisis")
	corpusPath := fs.String("corpus", "", "archivo JSON de posts (default: corpus embebido)")
	asJSON := fs.Bool("json", false, "salida en JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *crisis {
		return printCrisis(out, *asJSON)
	}

	c, err := loadCorpus(*corpusPath)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	engine := service.NewRecommendationEngine(c)

	if *random > 0 {
		return printPosts(out, engine.RandomPosts(*random), *asJSON)
	}

	var profile domain.EmotionProfile
	switch {
	case strings.TrimSpace(*text) != "":
		if client == nil {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			client = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, zap.NewNop())
		}
		ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		profile, err = service.NewEmotionAnalyzer(client, zap.NewNop()).Analyze(ctx, *text)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		if profile.CrisisIndicators {
			fmt.Fprintln(out, "Crisis indicators detected. Please reach out:")
			return printCrisis(out, *asJSON)
		}
	case strings.TrimSpace(*emotion) != "":
		profile = service.ProfileFromQuery(*emotion, *intensity)
	default:
		fs.Usage()
		return errors.New("one of -emotion, -text, -random or -crisis is required")
	}

	ranked := engine.Recommend(profile, *count)
	if *asJSON {
		return json.NewEncoder(out).Encode(map[string]any{"emotion": profile, "posts": ranked})
	}

	fmt.Fprintf(out, "emotion=%s intensity=%d sentiment=%s\n", profile.PrimaryEmotion, profile.Intensity, profile.Sentiment)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tID\tPLATFORM\tAUTHOR\tTONE\tCONTENT")
	for i, p := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, strconv.FormatFloat(p.MatchScore, 'f', 1, 64), p.PostID, p.Platform, p.Author, p.Tone, preview(p.Content, 60))
	}
	return w.Flush()
}

func printPosts(out io.Writer, posts []domain.Post, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(out).Encode(posts)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tAUTHOR\tCONTENT")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.PostID, p.Platform, p.Author, preview(p.Content, 60))
	}
	return w.Flush()
}

func printCrisis(out io.Writer, asJSON bool) error {
	resources := service.CrisisResources()
	if asJSON {
		return json.NewEncoder(out).Encode(resources)
	}
	for _, r := range resources {
		contact := strings.TrimSpace(strings.Join([]string{r.Phone, r.Contact, r.URL}, " "))
		fmt.Fprintf(out, "- %s: %s\n", r.Name, contact)
	}
	return nil
}

func loadCorpus(path string) (*corpus.Corpus, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.LoadFile(path)
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"post-recommender/internal/domain"
	"post-recommender/internal/llm"
)

const DefaultGeneratedCount = 4

var ErrNoPosts = errors.New("generator returned no posts")

const postGenerationPrompt = `You are a creative social media content strategist. A user wants to create a social media post. Based on their input, generate %d unique, engaging, ready-to-post social media posts.

User Input: %q

Instructions:
- Research and incorporate current, relevant information about the topic
- Each post should be tailored for a different social media platform
- Posts should be well-informed, engaging, and ready to copy-paste
- Include relevant hashtags where appropriate
- Vary the tone across posts (informative, witty, inspirational, conversational)
- For each post, include image_keywords: 2-4 words describing the best image to pair with this post

Provide your response ONLY as valid JSON (no markdown, no code fences) in this exact format:
{
  "topic_summary": "brief summary of what the user wants to post about",
  "posts": [
    {
      "platform": "instagram|twitter|facebook|linkedin|tiktok",
      "content": "the full post text with hashtags",
      "tone": "informative|witty|inspirational|conversational|humorous|professional",
      "content_type": "informative|story|opinion|tip|review|announcement",
      "image_keywords": "2-4 descriptive words for an ideal image to attach"
    }
  ]
}

Guidelines:
- Make posts feel authentic and human, not robotic
- Twitter posts should be concise (under 280 chars)
- Instagram posts can be longer with more hashtags
- LinkedIn posts should be professional
- Include facts, stats, or specific details when relevant to make posts informative
- image_keywords should describe a visually compelling photo that complements the post content`

// PostGenerator pide al LLM publicaciones listas para copiar sobre el tema del usuario.
type PostGenerator struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
	newID     func() string
}

func NewPostGenerator(llmClient llm.LLMClient, logger *zap.Logger) *PostGenerator {
	return &PostGenerator{
		llmClient: llmClient,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Generate devuelve count publicaciones (4 por defecto) marcadas como generadas.
func (g *PostGenerator) Generate(ctx context.Context, text string, count int) (domain.GeneratedPosts, error) {
	if count <= 0 {
		count = DefaultGeneratedCount
	}
	raw, err := g.llmClient.Generate(ctx, fmt.Sprintf(postGenerationPrompt, count, strings.TrimSpace(text)))
	if err != nil {
		return domain.GeneratedPosts{}, fmt.Errorf("llm generate: %w", err)
	}

	out, err := g.parse(raw)
	if err != nil {
		g.logger.Warn("generated posts parse failed", zap.Error(err), zap.Int("raw_len", len(raw)))
		return domain.GeneratedPosts{}, err
	}
	return out, nil
}

func (g *PostGenerator) parse(raw string) (domain.GeneratedPosts, error) {
	payload := llmJSONPayload(raw)
	if payload == "" {
		return domain.GeneratedPosts{}, fmt.Errorf("parse generated posts: no json object in response")
	}

	var parsed struct {
		TopicSummary string `json:"topic_summary"`
		Posts        []struct {
			Platform      string `json:"platform"`
			Content       string `json:"content"`
			Tone          string `json:"tone"`
			ContentType   string `json:"content_type"`
			ImageKeywords string `json:"image_keywords"`
		} `json:"posts"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.GeneratedPosts{}, fmt.Errorf("parse generated posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(parsed.Posts))
	for _, p := range parsed.Posts {
		content := strings.TrimSpace(p.Content)
		if content == "" {
			continue
		}
		posts = append(posts, domain.Post{
			PostID:        "gen_" + g.newID(),
			Platform:      domain.NormalizeLabel(p.Platform),
			Content:       content,
			Tone:          domain.NormalizeLabel(p.Tone),
			ContentType:   domain.NormalizeLabel(p.ContentType),
			ImageKeywords: strings.TrimSpace(p.ImageKeywords),
			Generated:     true,
		})
	}
	if len(posts) == 0 {
		return domain.GeneratedPosts{}, ErrNoPosts
	}

	return domain.GeneratedPosts{
		TopicSummary: strings.TrimSpace(parsed.TopicSummary),
		Posts:        posts,
	}, nil
}

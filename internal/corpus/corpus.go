package corpus

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"post-recommender/internal/domain"
)

//go:embed data/posts.json
var defaultPosts []byte

var (
	ErrEmptyPostID     = errors.New("post without post_id")
	ErrDuplicatePostID = errors.New("duplicate post_id")
)

// Corpus es el conjunto inmutable de posts candidatos. Se construye una vez y se
// comparte entre requests concurrentes sin locks.
type Corpus struct {
	posts []domain.Post
}

// New valida y copia los posts recibidos.
func New(posts []domain.Post) (*Corpus, error) {
	seen := make(map[string]struct{}, len(posts))
	out := make([]domain.Post, 0, len(posts))
	for i, p := range posts {
		id := strings.TrimSpace(p.PostID)
		if id == "" {
			return nil, fmt.Errorf("post %d: %w", i, ErrEmptyPostID)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("post %s: %w", id, ErrDuplicatePostID)
		}
		seen[id] = struct{}{}
		p.PostID = id
		p.EmotionsMatched = append([]string(nil), p.EmotionsMatched...)
		if p.DateAdded != nil {
			d := *p.DateAdded
			p.DateAdded = &d
		}
		if p.EngagementScore < 0 {
			p.EngagementScore = 0
		}
		out = append(out, p)
	}
	return &Corpus{posts: out}, nil
}

// Load lee un arreglo JSON de posts.
func Load(r io.Reader) (*Corpus, error) {
	var posts []domain.Post
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return New(posts)
}

// LoadFile carga el corpus desde un archivo JSON.
func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default devuelve el dataset embebido en el binario.
func Default() (*Corpus, error) {
	return Load(bytes.NewReader(defaultPosts))
}

// Posts devuelve una copia superficial; los slices internos no deben modificarse.
func (c *Corpus) Posts() []domain.Post {
	if c == nil {
		return nil
	}
	out := make([]domain.Post, len(c.posts))
	copy(out, c.posts)
	return out
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.posts)
}

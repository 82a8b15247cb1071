package domain

import "time"

// Post es un candidato del corpus; nunca se muta despues de cargarse.
type Post struct {
	PostID          string     `json:"post_id"`
	Platform        string     `json:"platform"`
	Author          string     `json:"author,omitempty"`
	Content         string     `json:"content"`
	Tone            string     `json:"tone"`
	ContentType     string     `json:"content_type"`
	EmotionsMatched []string   `json:"emotions_matched,omitempty"`
	EngagementScore float64    `json:"engagement_score"`
	DateAdded       *time.Time `json:"date_added,omitempty"`
	ImageKeywords   string     `json:"image_keywords,omitempty"`
	Generated       bool       `json:"generated,omitempty"`
	SuggestedImage  *Image     `json:"suggestedImage,omitempty"`
}

// ScoredPost es un Post con su puntaje transitorio de una sola llamada de ranking.
type ScoredPost struct {
	Post
	MatchScore float64 `json:"matchScore"`
}

const (
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformReddit    = "reddit"
	PlatformBlog      = "blog"
	PlatformFacebook  = "facebook"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
)

// Image es la foto sugerida para acompañar un post.
type Image struct {
	URL             string `json:"url"`
	ThumbURL        string `json:"thumbUrl"`
	Alt             string `json:"alt"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	UnsplashURL     string `json:"unsplashUrl"`
}

// GeneratedPosts agrupa la salida del generador de contenido.
type GeneratedPosts struct {
	TopicSummary string `json:"topic_summary"`
	Posts        []Post `json:"posts"`
}

// Feedback registra si una sugerencia le sirvio al usuario. No guarda texto del usuario.
type Feedback struct {
	PostID    string    `json:"post_id"`
	Helpful   bool      `json:"helpful"`
	CreatedAt time.Time `json:"created_at"`
}

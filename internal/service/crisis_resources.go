package service

import "post-recommender/internal/domain"

// crisisResources se muestra en este orden cuando el clasificador detecta indicios de crisis.
var crisisResources = [...]domain.CrisisResource{
	{
		Name:        "988 Suicide & Crisis Lifeline",
		Phone:       "988",
		Description: "24/7, free, confidential support for people in distress",
	},
	{
		Name:        "Crisis Text Line",
		Contact:     "Text HOME to 741741",
		Description: "Free, 24/7 support via text message with a trained crisis counselor",
	},
	{
		Name:        "SAMHSA National Helpline",
		Phone:       "1-800-662-4357",
		Description: "Free, confidential, 24/7 treatment referral and information service",
	},
	{
		Name:        "International Association for Suicide Prevention",
		URL:         "https://www.iasp.info/resources/Crisis_Centres/",
		Description: "Find crisis centers and help worldwide",
	},
	{
		Name:        "IMAlive Online Crisis Chat",
		URL:         "https://www.imalive.org/",
		Description: "Online crisis chat network staffed by trained volunteers",
	},
}

// CrisisResources devuelve una copia de los recursos de apoyo.
func CrisisResources() []domain.CrisisResource {
	out := make([]domain.CrisisResource, len(crisisResources))
	copy(out, crisisResources[:])
	return out
}

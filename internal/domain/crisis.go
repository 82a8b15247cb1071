package domain

// CrisisResource es un recurso de apoyo. Solo uno de Phone, Contact o URL viene cargado.
type CrisisResource struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone,omitempty"`
	Contact     string `json:"contact,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ContactMethods cuenta cuantos medios de contacto tiene cargados.
func (r CrisisResource) ContactMethods() int {
	n := 0
	for _, v := range []string{r.Phone, r.Contact, r.URL} {
		if v != "" {
			n++
		}
	}
	return n
}

package animals

import "epaws/internal/domain/organizations"

type View struct {
	Animal       Animal
	Organization *organizations.Summary
}

// Summary es la forma resumida que embeben adopciones y fichas médicas.
type Summary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Species  Species `json:"species"`
	Status   Status  `json:"status"`
	PhotoURL string  `json:"photo_url,omitempty"`
}

func (a Animal) Summary() Summary {
	s := Summary{ID: a.ID, Name: a.Name, Species: a.Species, Status: a.Status}
	if len(a.PhotoURLs) > 0 {
		s.PhotoURL = a.PhotoURLs[0]
	}
	return s
}

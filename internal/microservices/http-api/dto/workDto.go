package dto

import "yamdb/internal/microservices/http-api/models"

// CreateWorkDTO for POST /v1/titles/ and PUT. Genres and category are slugs.
type CreateWorkDTO struct {
	Name        string   `json:"name" binding:"required"`
	Year        *int     `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category,omitempty"`
}

// UpdateWorkDTO for PATCH. A nil Genre keeps the current genres, an empty
// Category string detaches the category.
type UpdateWorkDTO struct {
	Name        *string  `json:"name,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// AsUpdate turns a full PUT body into the same shape as a PATCH body.
func (d CreateWorkDTO) AsUpdate() UpdateWorkDTO {
	genres := d.Genre
	if genres == nil {
		genres = []string{}
	}
	category := ""
	if d.Category != nil {
		category = *d.Category
	}
	return UpdateWorkDTO{
		Name:        &d.Name,
		Year:        d.Year,
		Description: d.Description,
		Genre:       genres,
		Category:    &category,
	}
}

type WorkResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *int              `json:"rating"`
	Description *string           `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func WorkFromModel(w *models.Work) WorkResponse {
	resp := WorkResponse{
		ID:          w.ID,
		Name:        w.Name,
		Year:        w.Year,
		Description: w.Description,
		Genre:       []GenreResponse{},
	}
	if w.Rating != nil {
		// truncated like the integer field clients expect
		rating := int(*w.Rating)
		resp.Rating = &rating
	}
	for _, g := range w.Genres() {
		resp.Genre = append(resp.Genre, GenreFromModel(&g))
	}
	if w.Category != nil {
		c := CategoryFromModel(w.Category)
		resp.Category = &c
	}
	return resp
}

package models

// Work is a reviewable title. Rating is filled only by queries that select
// the review average, it has no column.
type Work struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string   `json:"name" gorm:"size:256;not null;index"`
	Year        int      `json:"year" gorm:"not null;index"`
	Description *string  `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64   `json:"category_id,omitempty" gorm:"index"`
	Rating      *float64 `json:"rating,omitempty" gorm:"->;-:migration"`

	// associations
	Category   *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	WorkGenres []WorkGenre `json:"-" gorm:"foreignKey:WorkID;constraint:OnDelete:CASCADE;"`
}

func (Work) TableName() string {
	return "works"
}

// Genres returns the genres still attached to the work, skipping rows whose
// genre was deleted.
func (w *Work) Genres() []Genre {
	genres := make([]Genre, 0, len(w.WorkGenres))
	for _, wg := range w.WorkGenres {
		if wg.Genre != nil {
			genres = append(genres, *wg.Genre)
		}
	}
	return genres
}

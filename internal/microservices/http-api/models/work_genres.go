package models

// WorkGenre is the explicit join row between works and genres. GenreID is
// nulled when the genre is deleted.
type WorkGenre struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkID  int64  `json:"work_id" gorm:"not null;uniqueIndex:idx_work_genre"`
	GenreID *int64 `json:"genre_id" gorm:"uniqueIndex:idx_work_genre"`

	Genre *Genre `json:"genre,omitempty" gorm:"foreignKey:GenreID;constraint:OnDelete:SET NULL;"`
}

func (WorkGenre) TableName() string {
	return "work_genres"
}

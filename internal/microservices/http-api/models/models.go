package models

// All lists every model in migration order
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Genre{},
		&Work{},
		&WorkGenre{},
		&Review{},
		&Comment{},
	}
}

package category

import "errors"

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Summary is the {id, name} projection attached to posts.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c Category) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name}
}

var ErrNotFound = errors.New("category not found")

// Defaults is the fixed catalog every store is seeded with, in id order.
func Defaults() []Category {
	return []Category{
		{ID: 1, Name: "Mental Health", Description: "Articles related to mental health and wellness"},
		{ID: 2, Name: "Heart Disease", Description: "Information about cardiovascular health"},
		{ID: 3, Name: "Covid19", Description: "Updates and information about COVID-19"},
		{ID: 4, Name: "Immunization", Description: "Vaccination and immunization guidelines"},
	}
}

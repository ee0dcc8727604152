package models

import (
	"slices"
	"time"
)

type Recipe struct {
	ID           string
	UserID       string
	Name         string
	Ingredients  []string
	Instructions string
	PhotoKey     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = slices.Clone(r.Ingredients)
	if r.PhotoKey != nil {
		v := *r.PhotoKey
		out.PhotoKey = &v
	}
	return out
}

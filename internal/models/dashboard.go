package models

type DashboardStats struct {
	TotalMovies          int64            `json:"totalMovies" example:"42"`
	TotalCategories      int64            `json:"totalCategories" example:"12"`
	TotalGenres          int64            `json:"totalGenres" example:"14"`
	IncompleteCategories []CategorySketch `json:"incompleteCategories"`
}

// CategorySketch is the short form of a category used in admin summaries.
type CategorySketch struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	RankedPicks int    `json:"rankedPicks"`
}

// ContactMessage is a visitor submission from the contact form.
type ContactMessage struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	SubmittedAt string `json:"submittedAt"`
}

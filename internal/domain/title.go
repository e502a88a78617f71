// internal/domain/title.go
package domain

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// TitleType distinguishes movies from episodic shows.
type TitleType string

const (
	TypeMovie  TitleType = "movie"
	TypeSeries TitleType = "series"
)

// Title is a catalog entry available for browsing and playback.
type Title struct {
	ID             int64          `json:"id" db:"id" validate:"required,gt=0"`
	Title          string         `json:"title" db:"title" validate:"required"`
	Description    string         `json:"description" db:"description"`
	ThumbnailURL   string         `json:"thumbnailUrl" db:"thumbnail_url"`
	VideoURL       string         `json:"videoUrl" db:"video_url"`
	Genre          string         `json:"genre" db:"genre" validate:"required"`
	ReleaseYear    int            `json:"releaseYear" db:"release_year"`
	Rating         string         `json:"rating" db:"rating"`
	Duration       string         `json:"duration" db:"duration"`
	Featured       bool           `json:"featured" db:"featured"`
	Type           TitleType      `json:"type" db:"type" validate:"required,oneof=movie series"`
	Cast           pq.StringArray `json:"cast,omitempty" db:"cast_members"`
	Director       string         `json:"director,omitempty" db:"director"`
	MaturityRating string         `json:"maturityRating,omitempty" db:"maturity_rating"`
}

// Clone returns a deep copy so callers can't mutate stored state through the cast slice.
func (t *Title) Clone() *Title {
	c := *t
	if t.Cast != nil {
		c.Cast = append(pq.StringArray(make([]string, 0, len(t.Cast))), t.Cast...)
	}
	return &c
}

// CreateTitleRequest carries catalog data for the seeding/import collaborator.
type CreateTitleRequest struct {
	Title          string    `json:"title" validate:"required,min=1,max=255"`
	Description    string    `json:"description" validate:"required"`
	ThumbnailURL   string    `json:"thumbnailUrl" validate:"required,url"`
	VideoURL       string    `json:"videoUrl" validate:"required,url"`
	Genre          string    `json:"genre" validate:"required,max=50"`
	ReleaseYear    int       `json:"releaseYear" validate:"required,gte=1888,lte=2100"`
	Rating         string    `json:"rating" validate:"required,max=20"`
	Duration       string    `json:"duration" validate:"required,max=50"`
	Featured       bool      `json:"featured"`
	Type           TitleType `json:"type" validate:"omitempty,oneof=movie series"`
	Cast           []string  `json:"cast,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Director       string    `json:"director,omitempty" validate:"omitempty,max=100"`
	MaturityRating string    `json:"maturityRating,omitempty" validate:"omitempty,max=50"`
}

// ToTitle builds an unsaved Title; the store assigns the ID.
func (r CreateTitleRequest) ToTitle() Title {
	t := Title{
		Title:          r.Title,
		Description:    r.Description,
		ThumbnailURL:   r.ThumbnailURL,
		VideoURL:       r.VideoURL,
		Genre:          r.Genre,
		ReleaseYear:    r.ReleaseYear,
		Rating:         r.Rating,
		Duration:       r.Duration,
		Featured:       r.Featured,
		Type:           r.Type,
		Director:       r.Director,
		MaturityRating: r.MaturityRating,
	}
	if t.Type == "" {
		t.Type = TypeMovie
	}
	if r.Cast != nil {
		t.Cast = pq.StringArray(append([]string(nil), r.Cast...))
	}
	return t
}

// TitleFilter enumerates every recognised listing option. A nil/empty field is not applied.
//
//   - Genre:    exact match on Title.Genre
//   - Type:     exact match on Title.Type
//   - Featured: exact match on Title.Featured
//   - Search:   case-insensitive substring of Title.Title
//
// Genre, Type and Featured are ANDed in a first equality stage. Search runs as a second
// pass over the equality result and only narrows it further.
type TitleFilter struct {
	Genre    *string    `json:"genre,omitempty"`
	Type     *TitleType `json:"type,omitempty"`
	Featured *bool      `json:"featured,omitempty"`
	Search   string     `json:"search,omitempty"`
}

// MatchesEquality reports whether t passes the equality stage.
func (f TitleFilter) MatchesEquality(t *Title) bool {
	if f.Genre != nil && t.Genre != *f.Genre {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Featured != nil && t.Featured != *f.Featured {
		return false
	}
	return true
}

// MatchesSearch reports whether t passes the search stage.
func (f TitleFilter) MatchesSearch(t *Title) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search))
}

// ApplySearch runs the search stage over an equality-filtered slice, preserving order.
func (f TitleFilter) ApplySearch(titles []*Title) []*Title {
	if f.Search == "" {
		return titles
	}
	out := make([]*Title, 0, len(titles))
	for _, t := range titles {
		if f.MatchesSearch(t) {
			out = append(out, t)
		}
	}
	return out
}

// ListTitlesQuery is the raw query-string input of the title listing operation.
type ListTitlesQuery struct {
	Search   string `json:"search" validate:"max=200"`
	Genre    string `json:"genre" validate:"max=50"`
	Featured string `json:"featured" validate:"omitempty,boolean"`
	Type     string `json:"type" validate:"omitempty,oneof=movie series"`
}

// Filter converts a validated query into a TitleFilter.
func (q ListTitlesQuery) Filter() TitleFilter {
	var f TitleFilter
	if q.Genre != "" {
		genre := q.Genre
		f.Genre = &genre
	}
	if q.Type != "" {
		typ := TitleType(q.Type)
		f.Type = &typ
	}
	if q.Featured != "" {
		if featured, err := strconv.ParseBool(q.Featured); err == nil {
			f.Featured = &featured
		}
	}
	f.Search = q.Search
	return f
}

// Query renders the filter back to its query-string form.
func (f TitleFilter) Query() ListTitlesQuery {
	var q ListTitlesQuery
	if f.Genre != nil {
		q.Genre = *f.Genre
	}
	if f.Type != nil {
		q.Type = string(*f.Type)
	}
	if f.Featured != nil {
		q.Featured = strconv.FormatBool(*f.Featured)
	}
	q.Search = f.Search
	return q
}

// internal/store/seed.go
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/domain"
)

const sampleVideoURL = "https://www.w3schools.com/html/mov_bbb.mp4"

// SampleTitles is the starter catalog loaded into an empty store.
func SampleTitles() []domain.CreateTitleRequest {
	return []domain.CreateTitleRequest{
		{
			Title:        "Stranger Things",
			Description:  "When a young boy vanishes, a small town uncovers a mystery involving secret experiments, terrifying supernatural forces and one strange little girl.",
			ThumbnailURL: "https://images.unsplash.com/photo-1626814026160-2237a95fc5a0?w=800&q=80",
			VideoURL:     sampleVideoURL,
			Genre:        "Sci-Fi",
			ReleaseYear:  2016,
			Rating:       "TV-14",
			Duration:     "4 Seasons",
			Featured:     true,
			Type:         domain.TypeSeries,
		},
		{
			Title:        "The Crown",
			Description:  "Follows the political rivalries and romance of Queen Elizabeth II's reign and the events that shaped the second half of the twentieth century.",
			ThumbnailURL: "https://images.unsplash.com/photo-1594909122845-11baa439b7bf?w=800&q=80",
			VideoURL:     sampleVideoURL,
			Genre:        "Drama",
			ReleaseYear:  2016,
			Rating:       "TV-MA",
			Duration:     "6 Seasons",
			Type:         domain.TypeSeries,
		},
		{
			Title:        "Inception",
			Description:  "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
			ThumbnailURL: "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=800&q=80",
			VideoURL:     sampleVideoURL,
			Genre:        "Action",
			ReleaseYear:  2010,
			Rating:       "PG-13",
			Duration:     "2h 28m",
			Type:         domain.TypeMovie,
			Director:     "Christopher Nolan",
		},
		{
			Title:        "The Office",
			Description:  "A mockumentary on a group of typical office workers, where the workday consists of ego clashes, inappropriate behavior, and tedium.",
			ThumbnailURL: "https://images.unsplash.com/photo-1527068560086-64c8d55c7a33?w=800&q=80",
			VideoURL:     sampleVideoURL,
			Genre:        "Comedy",
			ReleaseYear:  2005,
			Rating:       "TV-14",
			Duration:     "9 Seasons",
			Type:         domain.TypeSeries,
		},
		{
			Title:        "Interstellar",
			Description:  "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
			ThumbnailURL: "https://images.unsplash.com/photo-1419242902214-272b3f66ee7a?w=800&q=80",
			VideoURL:     sampleVideoURL,
			Genre:        "Sci-Fi",
			ReleaseYear:  2014,
			Rating:       "PG-13",
			Duration:     "2h 49m",
			Type:         domain.TypeMovie,
			Director:     "Christopher Nolan",
		},
	}
}

// SeedCatalog inserts SampleTitles when the catalog is empty. Returns the number of titles created.
func SeedCatalog(ctx context.Context, catalog CatalogStore, logger *slog.Logger) (int, error) {
	existing, err := catalog.ListTitles(ctx, domain.TitleFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to check catalog before seeding: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "Catalog already populated, skipping seed", slog.Int("titles", len(existing)))
		return 0, nil
	}

	created := 0
	for _, req := range SampleTitles() {
		if _, err := contract.Validate(req); err != nil {
			return created, fmt.Errorf("invalid seed title %q: %w", req.Title, err)
		}
		if _, err := catalog.CreateTitle(ctx, req.ToTitle()); err != nil {
			return created, fmt.Errorf("failed to seed title %q: %w", req.Title, err)
		}
		created++
	}
	logger.InfoContext(ctx, "Catalog seeded", slog.Int("titles", created))
	return created, nil
}

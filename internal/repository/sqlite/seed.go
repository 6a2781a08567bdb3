package sqlite

import (
	"time"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// Seed dataset applied the first time a collection is opened with no persisted
// snapshot. Identifiers are generated at seed time, not baked in here.
var socialLinkSeeds = []struct {
	title string
	url   string
	icon  string
}{
	{title: "YouTube", url: "https://youtube.com/@mrpiglr", icon: "youtube"},
	{title: "Spotify", url: "https://open.spotify.com/artist/mrpiglr", icon: "spotify"},
	{title: "SoundCloud", url: "https://soundcloud.com/mrpiglr", icon: "soundcloud"},
	{title: "Instagram", url: "https://instagram.com/mrpiglr", icon: "instagram"},
	{title: "Bandcamp", url: "https://mrpiglr.bandcamp.com", icon: "bandcamp"},
}

func seedItems(collection model.Collection) []model.Item {
	if collection.Name != model.SocialLinks.Name {
		return nil
	}

	items := make([]model.Item, 0, len(socialLinkSeeds))
	for i, seed := range socialLinkSeeds {
		items = append(items, model.Item{
			ID:           newLocalID(seedTime(i)),
			Title:        seed.title,
			DisplayOrder: i + 1,
			Fields: map[string]any{
				"url":  seed.url,
				"icon": seed.icon,
			},
			CreatedAt: seedTime(i),
			UpdatedAt: seedTime(i),
		})
	}

	return items
}

// seedTime spaces seed records one millisecond apart so their generated
// identifiers are guaranteed distinct.
func seedTime(i int) time.Time {
	return time.Now().Add(time.Duration(i) * time.Millisecond)
}

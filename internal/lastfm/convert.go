package lastfm

import "github.com/tessro/scrobblecord/internal/core"

// convertTrack converts a Last.fm track to a core.Track.
func convertTrack(t *Track) *core.Track {
	if t == nil {
		return nil
	}

	track := &core.Track{
		Title:      t.Name,
		Artist:     t.Artist.Name,
		Album:      t.Album.Name,
		Images:     convertImages(t.Images),
		URL:        t.URL,
		NowPlaying: bool(t.Attr.NowPlaying),
	}
	if t.Date != nil && !track.NowPlaying {
		track.PlayedAt = t.Date.UTS.Time()
	}
	return track
}

// convertImages maps the sized image list to an ImageSet, dropping the
// placeholder artwork.
func convertImages(images ImageList) core.ImageSet {
	var set core.ImageSet
	for _, img := range images {
		if img.URL == "" || core.IsPlaceholderArt(img.URL) {
			continue
		}
		switch img.Size {
		case "small":
			set.Small = img.URL
		case "medium":
			set.Medium = img.URL
		case "large":
			set.Large = img.URL
		case "extralarge":
			set.ExtraLarge = img.URL
		}
	}
	return set
}

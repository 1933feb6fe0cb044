package memory

import (
	"context"
	"slices"
	"time"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// FixedCatalog serves a constant list of videos, optionally after a delay
// that stands in for network latency.
type FixedCatalog struct {
	videos []domain.Video
	delay  time.Duration
}

func NewFixedCatalog(videos []domain.Video, delay time.Duration) *FixedCatalog {
	return &FixedCatalog{videos: videos, delay: delay}
}

// NewSampleCatalog returns the built-in six-video demo catalog.
func NewSampleCatalog(delay time.Duration) *FixedCatalog {
	return NewFixedCatalog(SampleVideos(), delay)
}

func (c *FixedCatalog) FetchCatalog(ctx context.Context) ([]domain.Video, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return slices.Clone(c.videos), nil
}

func SampleVideos() []domain.Video {
	sample := func(id, title, desc, thumb, url string, dur float64, genre string) domain.Video {
		year := 2024
		return domain.Video{
			ID:          id,
			Title:       title,
			Description: desc,
			Thumbnail:   thumb,
			VideoURL:    url,
			Duration:    &dur,
			Genre:       genre,
			ReleaseYear: &year,
		}
	}
	const (
		pexels = "https://images.pexels.com/photos/"
		gtv    = "http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/"
	)
	return []domain.Video{
		sample("1", "React Native Basics", "Learn the fundamentals of React Native development",
			pexels+"11035380/pexels-photo-11035380.jpeg?auto=compress&cs=tinysrgb&w=800",
			"https://www.w3schools.com/html/mov_bbb.mp4", 210, "Tutorial"),
		sample("2", "Sample Video - Big Buck Bunny", "A classic open source video for testing",
			pexels+"4164418/pexels-photo-4164418.jpeg?auto=compress&cs=tinysrgb&w=800",
			"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4", 180, "Sample"),
		sample("3", "Sample Video - Elephant Dream", "Another great sample video for testing",
			pexels+"3861969/pexels-photo-3861969.jpeg?auto=compress&cs=tinysrgb&w=800",
			gtv+"ElephantsDream.mp4", 300, "Sample"),
		sample("4", "Sample Video - For Bigger Blazes", "High quality sample video",
			pexels+"3165335/pexels-photo-3165335.jpeg?auto=compress&cs=tinysrgb&w=800",
			gtv+"ForBiggerBlazes.mp4", 240, "Sample"),
		sample("5", "Sample Video - For Bigger Escape", "Action-packed sample video",
			pexels+"574077/pexels-photo-574077.jpeg?auto=compress&cs=tinysrgb&w=800",
			gtv+"ForBiggerEscape.mp4", 195, "Sample"),
		sample("6", "Sample Video - For Bigger Fun", "Fun and entertaining sample video",
			pexels+"39284/macbook-apple-imac-computer-39284.jpeg?auto=compress&cs=tinysrgb&w=800",
			gtv+"ForBiggerFun.mp4", 270, "Sample"),
	}
}

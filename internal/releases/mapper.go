package releases

import (
	"fmt"

	"github.com/riptide-dl/riptide/internal/proxy"
)

// Format describes one supported bitrate tier.
type Format struct {
	BitrateKbps int
	Codec       string
	Container   string
	Label       string
}

// Bitrate tier identifiers as submitted in addToQueue.
const (
	BitrateMP3128 = 1
	BitrateMP3320 = 3
	BitrateFLAC   = 9
)

// formats is the fixed bitrate→format table; one release record is produced
// per entry for every album.
var formats = map[int]Format{
	BitrateMP3128: {BitrateKbps: 128, Codec: "MP3", Container: "mp3", Label: "MP3 128"},
	BitrateMP3320: {BitrateKbps: 320, Codec: "MP3", Container: "mp3", Label: "MP3 320"},
	BitrateFLAC:   {BitrateKbps: 1000, Codec: "FLAC", Container: "flac", Label: "FLAC"},
}

// tierOrder keeps mapped releases in a stable, quality-ascending order.
var tierOrder = []int{BitrateMP3128, BitrateMP3320, BitrateFLAC}

// Release is one grabbable rendition of an album at a specific bitrate tier.
type Release struct {
	Title       string
	Artist      string
	DownloadURL string
	Bitrate     int
	Codec       string
	Container   string
	// SizeBytes is an estimate: durationSeconds * bitrateKbps * 128.
	SizeBytes   int64
	ReleaseDate string
}

// FormatFor exposes the tier table entry for a bitrate identifier.
func FormatFor(bitrate int) (Format, bool) {
	f, ok := formats[bitrate]
	return f, ok
}

// Map turns a search result into release records, one per supported bitrate
// tier per album.
func Map(result proxy.SearchResult) []Release {
	out := make([]Release, 0, len(result.Albums)*len(tierOrder))
	for _, album := range result.Albums {
		for _, tier := range tierOrder {
			f := formats[tier]
			out = append(out, Release{
				Title:       fmt.Sprintf("%s - %s (%s)", album.Artist, album.Title, f.Label),
				Artist:      album.Artist,
				DownloadURL: album.Link,
				Bitrate:     tier,
				Codec:       f.Codec,
				Container:   f.Container,
				SizeBytes:   int64(album.DurationSeconds) * int64(f.BitrateKbps) * 128,
				ReleaseDate: album.ReleaseDate,
			})
		}
	}
	return out
}

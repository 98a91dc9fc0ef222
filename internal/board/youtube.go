package board

import "regexp"

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// VideoID pulls the 11-char video ID from any YouTube URL format, or "".
func VideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// ThumbnailURL returns the public hqdefault thumbnail of a YouTube video
// URL, or "" when the URL carries no video ID.
func ThumbnailURL(videoURL string) string {
	id := VideoID(videoURL)
	if id == "" {
		return ""
	}
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

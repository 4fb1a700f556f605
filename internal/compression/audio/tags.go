package audio

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// ReadTags extracts the descriptive tags worth carrying into the MP3 output.
// Files without readable tags yield an empty map.
func ReadTags(data []byte) map[string]string {
	tags := make(map[string]string)
	md, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return tags
	}

	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	set("title", md.Title())
	set("artist", md.Artist())
	set("album", md.Album())
	set("album_artist", md.AlbumArtist())
	set("genre", md.Genre())
	set("comment", md.Comment())
	if year := md.Year(); year > 0 {
		tags["date"] = strconv.Itoa(year)
	}
	if track, _ := md.Track(); track > 0 {
		tags["track"] = strconv.Itoa(track)
	}
	return tags
}

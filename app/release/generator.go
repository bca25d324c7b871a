package release

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// Channel is the feed-level metadata for the generated RSS document.
type Channel struct {
	Title       string
	Link        string
	SelfLink    string
	Description string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(channel Channel, releases []Release) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(channel.Title, "Release Radar"), 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, fmt.Sprintf("New releases found on %s", channel.Link)), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(releases) > 0 {
		if t, err := time.ParseInLocation(DateLayout, releases[0].DateFound, time.Local); err == nil {
			lastBuildDate = t
		}
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Release-Radar/%s", cmp.Or(channel.Version, "dev")), 4)

	for _, r := range releases {
		g.writeItem(&buf, r)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, r Release) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(r.ID))
	buf.WriteString("</guid>\n")

	title := r.Artist
	if r.Album != "" {
		title = r.Artist + " - " + r.Album
	}
	g.writeElement(buf, "title", title, 6)
	g.writeElement(buf, "link", cmp.Or(r.DetailURL, r.Links.YouTube), 6)
	g.writeElement(buf, "description", g.describe(r), 6)

	if t, err := time.ParseInLocation(DateLayout, r.DateFound, time.Local); err == nil {
		g.writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}

	for _, genre := range r.Genres {
		if genre != "" {
			g.writeElement(buf, "category", genre, 6)
		}
	}

	if r.Image != "" && g.isURL(r.Image) {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(r.Image), imageType(r.Image)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) describe(r Release) string {
	var sb strings.Builder
	if r.Excerpt != "" {
		sb.WriteString(r.Excerpt)
		sb.WriteString("\n\n")
	}
	if len(r.Genres) > 0 {
		sb.WriteString("Genres: ")
		sb.WriteString(strings.Join(r.Genres, ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("YouTube: " + r.Links.YouTube + "\n")
	sb.WriteString("Bandcamp: " + r.Links.Bandcamp + "\n")
	sb.WriteString("SoundCloud: " + r.Links.SoundCloud + "\n")
	sb.WriteString("Apple Music: " + r.Links.Apple)
	return sb.String()
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func imageType(u string) string {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, ".png"):
		return "image/png"
	case strings.Contains(lower, ".webp"):
		return "image/webp"
	case strings.Contains(lower, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

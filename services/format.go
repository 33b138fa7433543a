package services

import (
	"fmt"
	"strings"

	"pubhub/models"
)

// maxListedAuthors begrenzt die Autorenliste, danach folgt "et al.".
const maxListedAuthors = 6

// FormatPublication rendert eine Publikation als kompakte Referenzzeile,
// z.B. "Ada Lovelace, Alan Turing (1999). Lorem ipsum. [id 1]".
func FormatPublication(p models.PublicationView) string {
	names := make([]string, 0, len(p.Authors))
	for i, a := range p.Authors {
		if i == maxListedAuthors {
			names = append(names, "et al.")
			break
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("Author %d", a.ID)
		}
		names = append(names, name)
	}
	authors := strings.Join(names, ", ")
	if authors == "" {
		authors = "Unknown Authors"
	}

	year := "n.d."
	if p.PublishYear > 0 {
		year = fmt.Sprintf("%d", p.PublishYear)
	}
	title := p.Title
	if title == "" {
		title = "Untitled"
	}
	return fmt.Sprintf("%s (%s). %s. [id %d]", authors, year, title, p.ID)
}

package models

// AuthorView ist die Autorendarstellung innerhalb einer PublicationView.
type AuthorView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PublicationView ist die verschachtelte Lesesicht Publikation -> Autoren.
type PublicationView struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	PublishYear int          `json:"publishYear"`
	Authors     []AuthorView `json:"authors"`
}

// AuthorInfo bildet Autor-IDs (als String) auf Autoren ab. Lebt nur für eine Anfrage.
type AuthorInfo map[string]Author

// All gibt die Tabellenmodelle in Migrationsreihenfolge zurück.
func All() []any {
	return []any{&Author{}, &Publication{}, &AuthorPublication{}}
}

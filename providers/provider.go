package providers

// NameGenerator ist die Schnittstelle für die Namenssynthese neu angelegter Autoren.
type NameGenerator interface {
	// Generate liefert einen neuen, nicht leeren Personennamen.
	Generate() string
}

// NameGeneratorFunc erlaubt einfache Funktionen als NameGenerator.
type NameGeneratorFunc func() string

func (f NameGeneratorFunc) Generate() string { return f() }

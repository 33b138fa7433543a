package fakenames

import (
	"sync"

	"github.com/brianvoe/gofakeit/v7"
)

// Generator erzeugt synthetische Autorennamen über gofakeit.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator erstellt einen Generator. Seed 0 bedeutet zufällige Namen,
// jeder andere Seed eine reproduzierbare Folge.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate liefert den nächsten Namen. Sicher für parallele Aufrufe.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Name()
}

package services

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"pubhub/models"
)

// Tabellen, für die Surrogatschlüssel vergeben werden.
var (
	TablePublications       = models.Publication{}.TableName()
	TableAuthorPublications = models.AuthorPublication{}.TableName()
)

// IDAllocator vergibt Surrogatschlüssel als max(id)+1, beginnend bei 1.
//
// Die Vergabe ist nur sicher, solange der Aufrufer die Tabelle von der
// Vergabe bis zum Einfügen gesperrt hält: prozessintern über Lock, auf
// postgres zusätzlich über ein transaktionsgebundenes Advisory-Lock.
type IDAllocator struct {
	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{tables: make(map[string]*sync.Mutex)}
}

func (a *IDAllocator) tableMutex(table string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.tables[table]
	if !ok {
		m = &sync.Mutex{}
		a.tables[table] = m
	}
	return m
}

// Lock sperrt die angegebenen Tabellen in sortierter Reihenfolge und gibt
// die Freigabefunktion zurück.
func (a *IDAllocator) Lock(tables ...string) func() {
	sorted := append([]string(nil), tables...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	seen := make(map[string]bool, len(sorted))
	for _, t := range sorted {
		if seen[t] {
			continue
		}
		seen[t] = true
		m := a.tableMutex(t)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// LockTx sperrt die Tabelle prozessübergreifend bis zum Ende der Transaktion.
// Nur postgres kennt Advisory-Locks; SQLite serialisiert Schreiber ohnehin.
func (a *IDAllocator) LockTx(tx *gorm.DB, table string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", table).Error; err != nil {
		return storeError("lock "+table, err)
	}
	return nil
}

// Next liefert die nächste freie ID einer Tabelle.
func (a *IDAllocator) Next(tx *gorm.DB, table string) (int64, error) {
	return a.Reserve(tx, table, 1)
}

// Reserve liefert die erste ID eines zusammenhängenden Blocks der Länge n
// (base .. base+n-1). Alle IDs stammen aus einem einzigen max-Snapshot.
func (a *IDAllocator) Reserve(tx *gorm.DB, table string, n int) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("reserve %s: block size %d", table, n)
	}
	if err := a.LockTx(tx, table); err != nil {
		return 0, err
	}

	var maxID int64
	if err := tx.Table(table).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, storeError("max id "+table, err)
	}
	// leere Tabelle: COALESCE liefert 0, erste ID ist damit 1
	return maxID + 1, nil
}

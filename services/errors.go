package services

import (
	"errors"
	"fmt"

	"pubhub/database"
)

var (
	// ErrValidation markiert fehlerhafte Eingaben (400).
	ErrValidation = errors.New("validation failed")
	// ErrConflict markiert eine bereits vorhandene, gleichwertige Publikation (409).
	ErrConflict = errors.New("publication already exists")
	// ErrAllocationRace markiert eine ID-Kollision beim Einfügen.
	ErrAllocationRace = errors.New("surrogate id collision")
	// ErrStore markiert Lese- oder Schreibfehler des Speichers.
	ErrStore = errors.New("store failure")
)

func validationError(format string, args ...any) error {
	return errors.Join(ErrValidation, fmt.Errorf(format, args...))
}

func conflictError(title string, year int) error {
	return errors.Join(ErrConflict, fmt.Errorf("%q (%d) with the same authors", title, year))
}

// storeError hängt ErrStore an, lässt bereits klassifizierte Fehler aber unverändert.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) || errors.Is(err, ErrAllocationRace) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		return err
	}
	return errors.Join(ErrStore, fmt.Errorf("%s: %w", op, err))
}

// insertError meldet Schlüsselkollisionen beim Einfügen als ErrAllocationRace.
func insertError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return errors.Join(ErrAllocationRace, fmt.Errorf("%s: %w", op, err))
	}
	return storeError(op, err)
}

// FailureReason klassifiziert einen Fehler für Metriken und HTTP-Status.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAllocationRace):
		return "allocation_race"
	default:
		return "store"
	}
}

package ports

import (
	"context"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// SeasonStore persiste el estado de la temporada entre carreras.
// El llamador serializa los commits de un mismo equipo.
type SeasonStore interface {
	// LoadSeason devuelve el estado guardado. found=false significa primera carrera.
	LoadSeason(ctx context.Context) (state domain.SeasonState, found bool, err error)

	// SaveSeason reemplaza el estado guardado.
	SaveSeason(ctx context.Context, state domain.SeasonState) error

	// RecordSolve guarda el resultado de un solve en el histórico.
	RecordSolve(ctx context.Context, result domain.OptimizationResult, committed bool) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

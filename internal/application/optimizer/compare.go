package optimizer

// compare.go: evalúa varios escenarios en paralelo sobre el mismo snapshot.
// Cada formulación es función pura de (catálogo, parámetros, estado previo),
// así que no hay estado mutable compartido entre goroutines.

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// Comparison es el resultado de un escenario dentro de una comparación.
type Comparison struct {
	Request domain.ScenarioRequest
	Result  domain.OptimizationResult
	Err     error
}

// Compare resuelve todos los pedidos en paralelo. Un escenario que falla no
// cancela a los demás: su error queda en Comparison.Err. El orden de salida es
// el de entrada.
func (o *Optimizer) Compare(ctx context.Context, reqs []domain.ScenarioRequest) ([]Comparison, error) {
	snap, err := o.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Comparison, len(reqs))
	var g errgroup.Group
	if o.cfg.Workers > 0 {
		g.SetLimit(o.cfg.Workers)
	}

	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.Solve(ctx, snap, req)
			out[i] = Comparison{Request: req, Result: res, Err: err}
			if err != nil {
				slog.Debug("scenario failed in comparison", "chip", req.Chip.String(), "err", err)
			}
			return nil
		})
	}
	// Las goroutines nunca devuelven error; Wait solo sincroniza.
	_ = g.Wait()

	return out, ctx.Err()
}

// Best devuelve la comparación exitosa con más puntos esperados.
// En empate gana la primera en orden de entrada.
func Best(cmps []Comparison) (Comparison, bool) {
	var best Comparison
	found := false
	for _, c := range cmps {
		if c.Err != nil {
			continue
		}
		if !found || c.Result.TotalExpectedPoints > best.Result.TotalExpectedPoints {
			best, found = c, true
		}
	}
	return best, found
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// committer es la parte del optimizador que persiste o descarta un resultado.
type committer interface {
	Commit(ctx context.Context, res domain.OptimizationResult) error
	Discard(ctx context.Context, res domain.OptimizationResult) error
}

// finish decide si el resultado se guarda: mode es ask|yes|no.
// En modo ask se pregunta por in; cualquier respuesta distinta de y/yes descarta.
func finish(ctx context.Context, c committer, res domain.OptimizationResult, mode string, in io.Reader, out io.Writer) error {
	save := mode == "yes"
	if mode == "ask" {
		save = confirm(in, out, savePrompt(res))
	}

	if !save {
		if err := c.Discard(ctx, res); err != nil {
			slog.Warn("failed to record discarded solve", "run_id", res.RunID, "err", err)
		}
		fmt.Fprintln(out, "Team not saved.")
		return nil
	}

	if err := c.Commit(ctx, res); err != nil {
		return err
	}
	if res.RestorePriorState {
		fmt.Fprintln(out, "Limitless chip recorded. Previous team kept for the next race.")
	} else {
		fmt.Fprintln(out, "Team saved.")
	}
	return nil
}

func savePrompt(res domain.OptimizationResult) string {
	if res.RestorePriorState {
		return "Mark the Limitless chip as used? [y/N]: "
	}
	return "Save this team for the next race? [y/N]: "
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

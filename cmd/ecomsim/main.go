package main

import (
	"context"
	"log/slog"
	"os"

	apperrors "ecomsim/internal/errors"
)

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err, "code", apperrors.CodeOf(err))
		os.Exit(1)
	}
}

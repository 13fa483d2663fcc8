package models

import "fmt"

// modelsErrorf wraps err with an operation tag, the same per-package
// Errorf-wrapper convention hypergraph and contract use.
func modelsErrorf(op string, err error) error {
	return fmt.Errorf("models.%s: %w", op, err)
}

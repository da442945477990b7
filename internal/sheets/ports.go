// Package sheets defines the outbound export port. The sync worker pushes
// transactions through it; implementations live in the google and memory
// subpackages.
package sheets

import (
	"context"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

// TransactionWriter appends one transaction to the export target and
// returns a reference to where it landed.
type TransactionWriter interface {
	Append(ctx context.Context, t *core.Transaction) (rowRef string, err error)
}

package ports

import (
	"context"

	"gocmr/domain/bundle"
	"gocmr/domain/core"
)

// RunRecord is the persisted view of a prepared run.
type RunRecord struct {
	Manifest  bundle.Manifest     `json:"manifest"`
	Bundle    *bundle.ModelBundle `json:"bundle,omitempty"`
	Summaries []ParameterSummary  `json:"summaries,omitempty"`
}

// RunRepository persists run manifests, bundles and posterior summaries so
// prepared models are replayable and their results auditable.
type RunRepository interface {
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, id core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	SaveSummaries(ctx context.Context, id core.RunID, summaries []ParameterSummary) error
}

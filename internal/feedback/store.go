package feedback

import (
	"context"
	"fmt"

	"github.com/pv-case-assessor/internal/domain"
)

// Open returns the store selected by the feedback driver setting.
func Open(ctx context.Context, cfg *domain.Config) (Store, error) {
	switch cfg.Feedback.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.FeedbackDBPath())
	case "postgres":
		return NewPostgresStoreFromURL(ctx, cfg.Feedback.DatabaseURL)
	default:
		return nil, domain.NewValidationError("feedback.driver", fmt.Sprintf("unsupported driver %q", cfg.Feedback.Driver), cfg.Feedback.Driver)
	}
}

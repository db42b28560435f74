package intelligence

import (
	"context"

	"frontdesk/models"
)

// Client is the language-understanding capability. Its output is best-effort
// and non-deterministic; callers apply their own merge and validation rules
// before trusting anything it returns.
type Client interface {
	// Complete generates conversational reply text given the tenant's system
	// prompt and the turn history.
	Complete(ctx context.Context, systemPrompt string, history []models.Turn) (string, error)
	// ExtractFields pulls values for the named fields out of the
	// conversation. Missing fields are simply absent from the result.
	ExtractFields(ctx context.Context, fields []models.FieldSpec, history []models.Turn) (map[string]string, error)
}

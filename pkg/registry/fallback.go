package registry

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/loupeteam/lpm/pkg/deps"
)

// Fallback asks Primary first and Secondary when Primary fails. A nil
// Primary goes straight to Secondary.
type Fallback struct {
	Primary   deps.Registry
	Secondary deps.Registry
	Logger    *log.Logger
}

var _ deps.Registry = (*Fallback)(nil)

// Exists implements deps.Registry.
func (f *Fallback) Exists(ctx context.Context, ref deps.Reference) (bool, error) {
	if f.Primary != nil {
		ok, err := f.Primary.Exists(ctx, ref)
		if err == nil || ctx.Err() != nil {
			return ok, err
		}
		if f.Logger != nil {
			f.Logger.Debug("registry lookup failed, falling back", "package", ref, "error", err)
		}
	}
	return f.Secondary.Exists(ctx, ref)
}

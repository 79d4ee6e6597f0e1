package fixedroute

import "context"

// Repository stores fixed routes. Writes come from admin tooling only.
type Repository interface {
	// List returns routes, newest first.
	List(ctx context.Context, activeOnly bool) ([]*Route, error)

	// Get retrieves a route by ID.
	Get(ctx context.Context, id string) (*Route, error)

	// Create validates and stores a new active route, assigning ID and timestamps.
	Create(ctx context.Context, route *Route) error

	// Update validates and replaces an existing route.
	Update(ctx context.Context, route *Route) error

	// Deactivate soft-deletes a route.
	Deactivate(ctx context.Context, id string) error

	// Search returns active routes whose name, texts or description contain text, case-insensitively.
	Search(ctx context.Context, text string) ([]*Route, error)
}

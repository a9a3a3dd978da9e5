package guildconfig

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// PatchRequest is the generic document patch shared by the dashboard API and
// the MQTT bridge. An empty Section patches top-level fields.
type PatchRequest struct {
	GuildID string         `json:"guildId"`
	Section string         `json:"section,omitempty"`
	Fields  map[string]any `json:"fields"`
}

// Apply runs req against the store.
func (s *Store) Apply(ctx context.Context, req PatchRequest) (*models.GuildConfig, error) {
	if req.GuildID == "" {
		return nil, fmt.Errorf("%w: guildId is required", ErrInvalidPatch)
	}
	if len(req.Fields) == 0 {
		return nil, fmt.Errorf("%w: fields is empty", ErrInvalidPatch)
	}
	if req.Section == "" {
		return s.Patch(ctx, req.GuildID, req.Fields)
	}
	return s.PatchSection(ctx, req.GuildID, req.Section, req.Fields)
}

package clipserver

import (
	"github.com/anatolykoptev/go_clip/internal/board"
	"github.com/anatolykoptev/go_clip/internal/engine"
)

// ClipListInput is the input for clip_list.
type ClipListInput struct {
	Tab  string `json:"tab,omitempty" jsonschema:"Which clips to list: unread (default), favorite, all"`
	Page int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Size int    `json:"size,omitempty" jsonschema:"Clips per page (default from PAGE_SIZE, max 100)"`
}

// ClipListOutput is the output of clip_list.
type ClipListOutput struct {
	State     engine.State `json:"state"`
	FromCache bool         `json:"from_cache"`
	Error     string       `json:"error,omitempty"`
	Tab       board.Tab    `json:"tab"`
	Page      int          `json:"page"`
	Size      int          `json:"size"`
	Total     int          `json:"total"`
	HasMore   bool         `json:"has_more"`
	Clips     []board.Card `json:"clips"`
}

// ClipGetInput is the input for clip_get.
type ClipGetInput struct {
	ID  string `json:"id" jsonschema:"Clip ID from clip_list"`
	Tab string `json:"tab,omitempty" jsonschema:"Tab used for prev/next neighbours: unread (default), favorite, all"`
}

// ClipStatsInput is the input for clip_stats.
type ClipStatsInput struct{}

// ClipStatsOutput is the output of clip_stats.
type ClipStatsOutput struct {
	Total     int          `json:"total"`
	Unread    int          `json:"unread"`
	Favorite  int          `json:"favorite"`
	State     engine.State `json:"state"`
	FromCache bool         `json:"from_cache"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt string       `json:"updated_at,omitempty" jsonschema:"RFC 3339 time of the last state change"`
}

// ClipRefreshInput is the input for clip_refresh.
type ClipRefreshInput struct{}

// ClipIDInput is the input for the mutation tools.
type ClipIDInput struct {
	ID string `json:"id" jsonschema:"Clip ID from clip_list"`
}

// ClipMutationOutput is the output of clip_mark_read and clip_toggle_favorite.
type ClipMutationOutput struct {
	ID       string `json:"id"`
	Read     bool   `json:"read"`
	Favorite bool   `json:"favorite"`
}

// Package clipserver exposes the clip board as MCP tools.
package clipserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clip/internal/board"
)

// Deps are the collaborators the tools read and mutate through.
type Deps struct {
	Store    board.Store
	Script   board.Mutator // nil makes the mutation tools fail with board.ErrReadOnly
	PageSize int
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6

// RegisterTools registers all clip tools on the given MCP server:
// clip_list, clip_get, clip_stats, clip_refresh, clip_mark_read,
// clip_toggle_favorite.
func RegisterTools(server *mcp.Server, d Deps) {
	registerClipList(server, d)
	registerClipGet(server, d)
	registerClipStats(server, d)
	registerClipRefresh(server, d)
	registerClipMarkRead(server, d)
	registerClipToggleFavorite(server, d)
}

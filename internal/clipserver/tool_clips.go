package clipserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clip/internal/board"
	"github.com/anatolykoptev/go_clip/internal/toolutil"
)

func registerClipList(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_list",
		Description: "List clipped YouTube videos from the sheet. Tabs: unread (Read is not TRUE, default), favorite (Favorite is TRUE), all. Returns cards (id, title, channel, date, keywords, read, favorite) with pagination.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ClipListInput) (*mcp.CallToolResult, *ClipListOutput, error) {
		tab := toolutil.NormTab(input.Tab)
		size := toolutil.NormSize(input.Size, d.PageSize)

		snap := d.Store.Snapshot()
		paged := board.Page(board.Filter(snap.Rows, tab), toolutil.NormPage(input.Page), size)
		return nil, &ClipListOutput{
			State:     snap.State,
			FromCache: snap.FromCache,
			Error:     snap.Err,
			Tab:       tab,
			Page:      paged.Page,
			Size:      paged.Size,
			Total:     paged.Total,
			HasMore:   paged.HasMore,
			Clips:     board.Cards(paged.Rows),
		}, nil
	})
}

func registerClipGet(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_get",
		Description: "Get one clip by ID with its summary, analysis and insights, the video URL, and the previous/next clip IDs within the chosen tab (wrapping around).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ClipGetInput) (*mcp.CallToolResult, *board.Detail, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return nil, nil, errors.New("id is required")
		}
		detail, ok := board.NewDetail(d.Store.Snapshot().Rows, toolutil.NormTab(input.Tab), id)
		if !ok {
			return nil, nil, board.ErrUnknownItem
		}
		return nil, &detail, nil
	})
}

func registerClipStats(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_stats",
		Description: "Count clips: total, unread and favorite, plus the ingestion state (idle, loading, ready, failed) and whether rows come from the local cache.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ ClipStatsInput) (*mcp.CallToolResult, *ClipStatsOutput, error) {
		return nil, statsOutput(d.Store), nil
	})
}

func registerClipRefresh(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_refresh",
		Description: "Re-fetch the sheet now. Concurrent refreshes share one fetch. If the fetch fails while cached rows exist, the cached rows stay and no error is returned.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ ClipRefreshInput) (*mcp.CallToolResult, *ClipStatsOutput, error) {
		if _, err := d.Store.Refresh(ctx); err != nil {
			return nil, nil, err
		}
		return nil, statsOutput(d.Store), nil
	})
}

func registerClipMarkRead(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_mark_read",
		Description: "Mark a clip as read in the sheet via the Apps Script endpoint. Requires SCRIPT_URL. The local copy is updated only after the script confirms.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ClipIDInput) (*mcp.CallToolResult, *ClipMutationOutput, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return nil, nil, errors.New("id is required")
		}
		if err := board.MarkRead(ctx, d.Store, d.Script, id); err != nil {
			slog.Warn("clip_mark_read failed", slog.String("id", id), slog.Any("error", err))
			return nil, nil, err
		}
		return nil, mutationOutput(d.Store, id), nil
	})
}

func registerClipToggleFavorite(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clip_toggle_favorite",
		Description: "Flip a clip's favorite flag in the sheet via the Apps Script endpoint. Requires SCRIPT_URL. Returns the flag the script reports.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ClipIDInput) (*mcp.CallToolResult, *ClipMutationOutput, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return nil, nil, errors.New("id is required")
		}
		if _, err := board.ToggleFavorite(ctx, d.Store, d.Script, id); err != nil {
			slog.Warn("clip_toggle_favorite failed", slog.String("id", id), slog.Any("error", err))
			return nil, nil, err
		}
		return nil, mutationOutput(d.Store, id), nil
	})
}

func statsOutput(store board.Store) *ClipStatsOutput {
	snap := store.Snapshot()
	counts := board.Stats(snap.Rows)
	out := &ClipStatsOutput{
		Total:     counts.Total,
		Unread:    counts.Unread,
		Favorite:  counts.Favorite,
		State:     snap.State,
		FromCache: snap.FromCache,
		Error:     snap.Err,
	}
	if !snap.UpdatedAt.IsZero() {
		out.UpdatedAt = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func mutationOutput(store board.Store, id string) *ClipMutationOutput {
	out := &ClipMutationOutput{ID: id}
	rows := store.Snapshot().Rows
	if i := rows.Find(id); i >= 0 {
		card := board.NewCard(rows[i])
		out.Read = card.Read
		out.Favorite = card.Favorite
	}
	return out
}

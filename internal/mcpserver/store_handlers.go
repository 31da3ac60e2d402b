package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hans/internal/backend"

	"github.com/mark3labs/mcp-go/mcp"
)

// documentView is the JSON form of a document returned by store tools.
type documentView struct {
	ID     string                 `json:"id"`
	Path   string                 `json:"path"`
	Exists bool                   `json:"exists"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func viewOf(snap backend.DocumentSnapshot) documentView {
	return documentView{
		ID:     snap.ID(),
		Path:   snap.Path(),
		Exists: snap.Exists(),
		Data:   snap.Data(),
	}
}

func (s *Server) store() *backend.Backend {
	return s.current().Backend
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func requiredObject(args map[string]any, key string) (map[string]interface{}, error) {
	v, ok := args[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return v, nil
}

// handleGetDocument handles the store_get_document MCP tool
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := requiredString(request.GetArguments(), "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, err := s.store().Doc(p).Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get document: %v", err)), nil
	}
	return jsonResult(viewOf(snap))
}

// handleSetDocument handles the store_set_document MCP tool
func (s *Server) handleSetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	p, err := requiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := requiredObject(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store().Doc(p).Set(ctx, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set document: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document %s set", p)), nil
}

// handleUpdateDocument handles the store_update_document MCP tool
func (s *Server) handleUpdateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	p, err := requiredString(args, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := requiredObject(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store().Doc(p).Update(ctx, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update document: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document %s updated", p)), nil
}

// handleDeleteDocument handles the store_delete_document MCP tool
func (s *Server) handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := requiredString(request.GetArguments(), "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store().Doc(p).Delete(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete document: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document %s deleted", p)), nil
}

// handleAddDocument handles the store_add_document MCP tool
func (s *Server) handleAddDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	collection, err := requiredString(args, "collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := requiredObject(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ref, err := s.store().Collection(collection).Add(ctx, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add document: %v", err)), nil
	}
	return jsonResult(map[string]string{"id": ref.ID(), "path": ref.Path()})
}

// handleListCollection handles the store_list_collection MCP tool
func (s *Server) handleListCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := requiredString(request.GetArguments(), "collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snaps, err := s.store().Collection(collection).Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list collection: %v", err)), nil
	}
	views := make([]documentView, 0, len(snaps))
	for _, snap := range snaps {
		views = append(views, viewOf(snap))
	}
	return jsonResult(views)
}

// handleSetNetwork handles the store_set_network MCP tool
func (s *Server) handleSetNetwork(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	store := s.store()

	if preset, ok := args["preset"].(string); ok && preset != "" {
		switch preset {
		case "offline":
			store.SimulateOffline()
		case "online":
			store.SimulateOnline()
		default:
			cond, ok := backend.NetworkPresets[preset]
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid preset '%s', must be one of: default, fast, slow, unstable, offline, online", preset)), nil
			}
			if err := store.SetCustomNetworkCondition(cond); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		return s.networkStatus(store)
	}

	cond := backend.NetworkCondition{Name: "custom"}
	if latency, ok := args["latency"].(string); ok && latency != "" {
		d, err := time.ParseDuration(latency)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid latency '%s': %v", latency, err)), nil
		}
		cond.Latency = d
	}
	if rate, ok := args["error_rate"].(float64); ok {
		cond.ErrorRate = rate
	}
	if rate, ok := args["timeout_rate"].(float64); ok {
		cond.TimeoutRate = rate
	}
	if err := store.SetCustomNetworkCondition(cond); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.networkStatus(store)
}

func (s *Server) networkStatus(store *backend.Backend) (*mcp.CallToolResult, error) {
	cond := store.NetworkCondition()
	return jsonResult(map[string]interface{}{
		"name":        cond.Name,
		"latency":     cond.Latency.String(),
		"errorRate":   cond.ErrorRate,
		"timeoutRate": cond.TimeoutRate,
		"offline":     store.IsOffline(),
	})
}

// handleReset handles the store_reset MCP tool
func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.current().Reset()
	return mcp.NewToolResultText("Store reset"), nil
}

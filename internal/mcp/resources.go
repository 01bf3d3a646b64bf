package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CollectionsURI lists the loaded appstream collections.
const CollectionsURI = "appshelf://collections"

// CollectionInfo describes one loaded collection.
type CollectionInfo struct {
	ID         string `json:"id"`
	Origin     string `json:"origin,omitempty"`
	Source     string `json:"source"`
	Components int    `json:"components"`
}

func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "collections",
			URI:         CollectionsURI,
			Description: "Appstream collections in the metadata store",
			MIMEType:    "application/json",
		},
		s.handleCollections,
	)
}

// Collections returns the loaded collections in id order.
func (s *Server) Collections() []CollectionInfo {
	store := s.store.Load()
	out := make([]CollectionInfo, 0, store.Len())
	for _, id := range store.IDs() {
		coll, _ := store.Get(id)
		out = append(out, CollectionInfo{
			ID:         id,
			Origin:     coll.Origin,
			Source:     coll.Source,
			Components: len(coll.Components),
		})
	}
	return out
}

func (s *Server) handleCollections(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(s.Collections(), "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      CollectionsURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

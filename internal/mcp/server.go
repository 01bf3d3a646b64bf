package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/search"
	"github.com/Aman-CERP/appshelf/internal/telemetry"
	"github.com/Aman-CERP/appshelf/pkg/version"
)

// Tool names.
const (
	ToolSearchPackages = "search_packages"
	ToolListInstalled  = "list_installed"
	ToolShowPackage    = "show_package"
	ToolCatalogStatus  = "catalog_status"
)

// Default and maximum list sizes.
const (
	DefaultSearchLimit    = 20
	DefaultInstalledLimit = 100
	MaxLimit              = 500
)

// Catalog is the part of *catalog.App the server reads.
type Catalog interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
	Progress() *async.LoadProgress
	Metrics() *telemetry.QueryMetrics
}

// Server is the MCP server. Search runs directly on the published metadata
// store; installed packages and backends come from catalog snapshots.
type Server struct {
	mcp     *mcp.Server
	catalog Catalog
	store   *appstream.Holder
	engine  *search.Engine
	locale  string
	logger  *slog.Logger

	maxResults int
	cacheSize  int

	// Resolver for the most recently seen registry.
	mu       sync.Mutex
	registry *backend.Registry
	resolver *catalog.Resolver
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var toolInfos = []ToolInfo{
	{
		Name:        ToolSearchPackages,
		Description: "Search application metadata by name and summary. Results are ranked: exact name matches first, then name prefixes, other name matches, then summary matches in the same order.",
	},
	{
		Name:        ToolListInstalled,
		Description: "List installed applications across flatpak and dpkg, sorted by name. Optionally filter by backend.",
	},
	{
		Name:        ToolShowPackage,
		Description: "Show full appstream metadata for an installed package (backend + id) or a component from the metadata store (component_id).",
	},
	{
		Name:        ToolCatalogStatus,
		Description: "Report whether the catalog has finished loading, which backends are available and how much metadata is loaded.",
	},
}

// NewServer creates a new MCP server over cat and store.
func NewServer(cat Catalog, store *appstream.Holder, cfg *config.Config) (*Server, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if store == nil {
		return nil, errors.New("metadata store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		catalog:    cat,
		store:      store,
		engine:     search.NewEngine(search.WithLocale(cfg.Locale)),
		locale:     cfg.Locale,
		logger:     slog.Default(),
		maxResults: cfg.Search.MaxResults,
		cacheSize:  cfg.Catalog.SelectionCacheSize,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "appshelf",
			Version: version.Short(),
		},
		nil, // capabilities are inferred from registered tools/resources
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "appshelf", version.Short()
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), toolInfos...)
}

// CallTool invokes a tool by name with JSON-style arguments and returns its
// structured output.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolSearchPackages:
		var in SearchPackagesInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.searchPackages(ctx, in)
	case ToolListInstalled:
		var in ListInstalledInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.listInstalled(ctx, in)
	case ToolShowPackage:
		var in ShowPackageInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.showPackage(ctx, in)
	case ToolCatalogStatus:
		return s.catalogStatus(ctx)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewInvalidParamsError(err.Error())
	}
	return nil
}

func (s *Server) searchPackages(ctx context.Context, in SearchPackagesInput) (SearchPackagesOutput, error) {
	start := time.Now()
	requestID := generateRequestID()

	if strings.TrimSpace(in.Query) == "" {
		return SearchPackagesOutput{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}
	limit := s.clampLimit(in.Limit, DefaultSearchLimit)

	s.logger.Info("search_packages started",
		slog.String("request_id", requestID),
		slog.String("query", in.Query),
		slog.Int("limit", limit))

	pattern, err := search.Compile(in.Query)
	if err != nil {
		return SearchPackagesOutput{}, MapError(err)
	}
	searchStart := time.Now()
	results, err := s.engine.Search(ctx, s.store.Load(), pattern, search.SearchOptions{})
	if err != nil {
		s.logger.Error("search_packages failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return SearchPackagesOutput{}, MapError(err)
	}
	s.catalog.Metrics().Record(telemetry.SearchEvent(pattern.String(), results, time.Since(searchStart)))

	out := SearchPackagesOutput{
		Query:   in.Query,
		Total:   len(results),
		Results: make([]PackageEntry, 0, min(limit, len(results))),
	}
	for _, r := range results[:min(limit, len(results))] {
		weight := r.Weight
		out.Results = append(out.Results, PackageEntry{
			Backend:     r.Backend,
			ID:          r.ID,
			ComponentID: r.ComponentID,
			Name:        r.Name,
			Summary:     r.Summary,
			Weight:      &weight,
			Icon:        r.Icon,
		})
	}

	s.logger.Info("search_packages completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", out.Total))
	return out, nil
}

func (s *Server) listInstalled(ctx context.Context, in ListInstalledInput) (ListInstalledOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return ListInstalledOutput{}, err
	}
	limit := s.clampLimit(in.Limit, DefaultInstalledLimit)

	out := ListInstalledOutput{Packages: []PackageEntry{}}
	for _, p := range snap.Installed {
		if in.Backend != "" && p.Backend != in.Backend {
			continue
		}
		out.Total++
		if len(out.Packages) < limit {
			out.Packages = append(out.Packages, PackageEntry{
				Backend: p.Backend,
				ID:      p.ID,
				Name:    p.Name,
				Version: p.Version,
				Summary: p.Summary,
				Icon:    p.Icon,
			})
		}
	}
	return out, nil
}

func (s *Server) showPackage(ctx context.Context, in ShowPackageInput) (ShowPackageOutput, error) {
	switch {
	case in.ComponentID != "":
		return s.showComponent(in.ComponentID)
	case in.Backend != "" && in.ID != "":
		return s.showInstalled(ctx, in.Backend, in.ID)
	default:
		return ShowPackageOutput{}, NewInvalidParamsError("either component_id or backend and id are required")
	}
}

// showComponent describes a store component the way a selected search result
// is shown: its whole collection, no backend fetch.
func (s *Server) showComponent(id string) (ShowPackageOutput, error) {
	store := s.store.Load()
	ref, ok := store.ComponentByID(id)
	if !ok {
		return ShowPackageOutput{}, NewPackageNotFoundError(id)
	}
	return s.describe(catalog.Selected{
		Backend:     search.DefaultAttributor(ref.CollectionID, ref.Collection, ref.Component),
		ID:          ref.CollectionID,
		ComponentID: ref.Component.ID,
		Name:        ref.Component.Name.Get(s.locale),
		Summary:     ref.Component.Summary.Get(s.locale),
		Icon:        store.Icon(ref.Collection.Origin, ref.Component),
		Collection:  ref.Collection,
	}), nil
}

func (s *Server) showInstalled(ctx context.Context, backendName, id string) (ShowPackageOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return ShowPackageOutput{}, err
	}

	var pkg *backend.InstalledPackage
	for i := range snap.Installed {
		if snap.Installed[i].Backend == backendName && snap.Installed[i].ID == id {
			pkg = &snap.Installed[i]
			break
		}
	}
	if pkg == nil {
		return ShowPackageOutput{}, NewPackageNotFoundError(backendName + ":" + id)
	}

	sel, err := s.resolverFor(snap.Registry).Resolve(ctx, backendName, pkg.Package)
	if err != nil {
		s.logger.Warn("show_package failed",
			slog.String("backend", backendName),
			slog.String("id", id),
			slog.String("error", err.Error()))
		return ShowPackageOutput{}, MapError(err)
	}
	return s.describe(*sel), nil
}

func (s *Server) describe(sel catalog.Selected) ShowPackageOutput {
	out := ShowPackageOutput{
		Backend:    sel.Backend,
		ID:         sel.ID,
		Name:       sel.Name,
		Summary:    sel.Summary,
		Icon:       sel.Icon,
		Components: []ComponentOutput{},
	}
	if sel.Collection == nil {
		return out
	}
	for _, c := range sel.Collection.Components {
		out.Components = append(out.Components, ComponentOutput{
			ID:          c.ID,
			Type:        c.Type,
			PkgName:     c.PkgName,
			Name:        c.Name.Get(s.locale),
			Summary:     c.Summary.Get(s.locale),
			Description: c.Description.Get(s.locale),
		})
	}
	return out
}

// resolverFor returns a resolver over reg, keeping its cache while the
// registry is unchanged.
func (s *Server) resolverFor(reg *backend.Registry) *catalog.Resolver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolver == nil || s.registry != reg {
		s.registry = reg
		s.resolver = catalog.NewResolver(reg, s.cacheSize)
	}
	return s.resolver
}

func (s *Server) catalogStatus(ctx context.Context) (CatalogStatusOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return CatalogStatusOutput{}, err
	}
	backends := snap.Backends
	if backends == nil {
		backends = []string{}
	}
	return CatalogStatusOutput{
		Locale:   snap.Locale,
		Backends: backends,
		Loading:  s.catalog.Progress().Snapshot(),
		Searches: s.catalog.Metrics().Snapshot(),
	}, nil
}

func (s *Server) snapshot(ctx context.Context) (catalog.Snapshot, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if errors.Is(err, catalog.ErrStopped) {
		return catalog.Snapshot{}, MapError(ErrCatalogNotReady)
	}
	if err != nil {
		return catalog.Snapshot{}, MapError(err)
	}
	return snap, nil
}

// clampLimit applies def to unset limits and caps at search.max_results (or
// MaxLimit when that is unlimited).
func (s *Server) clampLimit(limit, def int) int {
	ceiling := MaxLimit
	if s.maxResults > 0 {
		ceiling = s.maxResults
	}
	if limit <= 0 {
		limit = def
	}
	return min(limit, ceiling)
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolSearchPackages, Description: toolInfos[0].Description}, s.mcpSearchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolListInstalled, Description: toolInfos[1].Description}, s.mcpListInstalledHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolShowPackage, Description: toolInfos[2].Description}, s.mcpShowPackageHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: ToolCatalogStatus, Description: toolInfos[3].Description}, s.mcpCatalogStatusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", len(toolInfos)))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchPackagesInput) (
	*mcp.CallToolResult,
	SearchPackagesOutput,
	error,
) {
	out, err := s.searchPackages(ctx, input)
	if err != nil {
		return nil, SearchPackagesOutput{}, err
	}
	return textResult(FormatSearchResults(out)), out, nil
}

func (s *Server) mcpListInstalledHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListInstalledInput) (
	*mcp.CallToolResult,
	ListInstalledOutput,
	error,
) {
	out, err := s.listInstalled(ctx, input)
	if err != nil {
		return nil, ListInstalledOutput{}, err
	}
	return textResult(FormatInstalled(out)), out, nil
}

func (s *Server) mcpShowPackageHandler(ctx context.Context, _ *mcp.CallToolRequest, input ShowPackageInput) (
	*mcp.CallToolResult,
	ShowPackageOutput,
	error,
) {
	out, err := s.showPackage(ctx, input)
	if err != nil {
		return nil, ShowPackageOutput{}, err
	}
	return textResult(FormatPackage(out)), out, nil
}

func (s *Server) mcpCatalogStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ CatalogStatusInput) (
	*mcp.CallToolResult,
	CatalogStatusOutput,
	error,
) {
	out, err := s.catalogStatus(ctx)
	if err != nil {
		return nil, CatalogStatusOutput{}, err
	}
	return nil, out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

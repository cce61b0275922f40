// Package server adapts the PSL front end to the Language Server Protocol.
package server

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/lint"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/manifest"
	"github.com/chazu/pslkit/syntax"
)

const lspName = "psl-lsp"

var log = commonlog.GetLogger("pslkit.server")

// Options configures an LspServer.
type Options struct {
	// Manifest configures lint rules and resolver paths. It defaults to
	// the defaults for the working directory.
	Manifest *manifest.Manifest
	// Loader serves files that are not open in the editor. It defaults to
	// loader.FS.
	Loader loader.Loader
	// Index backs workspace symbols and is refreshed on save. It may be
	// nil.
	Index *index.Store
}

// LspServer bridges LSP editor features to the resolver, the lint engine
// and the symbol index.
type LspServer struct {
	manifest *manifest.Manifest
	overlay  *loader.Overlay
	index    *index.Store
	engine   *lint.Engine

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP(opts Options) *LspServer {
	base := opts.Loader
	if base == nil {
		base = loader.FS{}
	}
	m := opts.Manifest
	if m == nil {
		m = defaultManifest()
	}
	s := &LspServer{
		manifest: m,
		overlay:  loader.NewOverlay(base),
		index:    opts.Index,
		engine:   lint.NewEngine(lint.Filter(lint.DefaultRules(), m.Lint.Disable)...),
		version:  "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		WorkspaceSymbol:            s.workspaceSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

func defaultManifest() *manifest.Manifest {
	m, err := manifest.Default(".")
	if err != nil {
		log.Warningf("using an empty project: %s", err)
		m = &manifest.Manifest{}
	}
	return m
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("initializing for %s", s.manifest.Dir)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      boolPtr(true),
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters:   []string{"("},
		RetriggerCharacters: []string{","},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentSymbolProvider = true
	capabilities.WorkspaceSymbolProvider = s.index != nil

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	log.Info("shutting down")
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	path := uriToPath(uri)
	s.overlay.Set(path, params.TextDocument.Text)

	s.publishDiagnostics(ctx, uri, path)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			path := uriToPath(uri)
			s.overlay.Set(path, whole.Text)
			s.publishDiagnostics(ctx, uri, path)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return s.reindex(context.Background(), uriToPath(params.TextDocument.URI))
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.overlay.Delete(uriToPath(uri))

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := s.completion(context.Background(), uriToPath(params.TextDocument.URI), params.Position)
	if items == nil {
		return nil, nil
	}
	return items, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return s.hover(context.Background(), uriToPath(params.TextDocument.URI), params.Position), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	loc := s.definition(context.Background(), uriToPath(params.TextDocument.URI), params.Position)
	if loc == nil {
		return nil, nil
	}
	return *loc, nil
}

func (s *LspServer) textDocumentSignatureHelp(ctx *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	return s.signatureHelp(context.Background(), uriToPath(params.TextDocument.URI), params.Position), nil
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	symbols := s.documentSymbols(uriToPath(params.TextDocument.URI))
	if symbols == nil {
		return nil, nil
	}
	return symbols, nil
}

func (s *LspServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return s.workspaceSymbols(context.Background(), params.Query)
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, path string) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.diagnostics(path),
	})
}

// --- Paths and positions ---

func uriToPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}
	return filepath.FromSlash(u.Path)
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}

func toPosition(pos protocol.Position) syntax.Position {
	return syntax.Position{Line: int(pos.Line), Column: int(pos.Character)}
}

func fromPosition(pos syntax.Position) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(pos.Line), Character: protocol.UInteger(pos.Column)}
}

func fromRange(r syntax.Range) protocol.Range {
	return protocol.Range{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}

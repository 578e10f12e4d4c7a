package connectors

import (
	"sync"

	"github.com/gekko3d/connectors/pathgeom"
	"github.com/google/uuid"
)

type AssetId string

type GeometryState int

const (
	GeometryPending GeometryState = iota
	GeometryReady
	GeometryFailed
)

func (s GeometryState) String() string {
	switch s {
	case GeometryPending:
		return "pending"
	case GeometryReady:
		return "ready"
	case GeometryFailed:
		return "failed"
	}
	return "unknown"
}

type GeometryAsset struct {
	State GeometryState
	Mesh  *pathgeom.Mesh
	Stats pathgeom.Stats
	Err   error
}

type geometryKey struct {
	source string
	opts   pathgeom.Options
}

// AssetServer owns the meshes built from vector outlines. Builds run in the
// background and are cached by source and options, so every body asking for
// the logo shares one mesh.
type AssetServer struct {
	mu         sync.Mutex
	geometries map[AssetId]*GeometryAsset
	bySource   map[geometryKey]AssetId
	wg         sync.WaitGroup
	logger     Logger
	build      func(string, pathgeom.Options) (pathgeom.Mesh, pathgeom.Stats, error)
}

func NewAssetServer(logger Logger) *AssetServer {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &AssetServer{
		geometries: make(map[AssetId]*GeometryAsset),
		bySource:   make(map[geometryKey]AssetId),
		logger:     logger,
		build:      pathgeom.Build,
	}
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer(app.Logger()))
}

// RequestGeometry returns the id of the mesh for source right away. The
// mesh starts Pending and is built on a goroutine unless an identical
// request was made before.
func (server *AssetServer) RequestGeometry(source string, opts pathgeom.Options) AssetId {
	id, fresh := server.reserve(source, opts)
	if !fresh {
		return id
	}
	server.wg.Add(1)
	go func() {
		defer server.wg.Done()
		server.runBuild(id, source, opts)
	}()
	return id
}

// Precompute builds synchronously and reports the build error, if any.
func (server *AssetServer) Precompute(source string, opts pathgeom.Options) (AssetId, error) {
	id, fresh := server.reserve(source, opts)
	if fresh {
		server.runBuild(id, source, opts)
	} else {
		server.Wait()
	}
	asset, _ := server.Geometry(id)
	return id, asset.Err
}

func (server *AssetServer) reserve(source string, opts pathgeom.Options) (AssetId, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := geometryKey{source: source, opts: opts}
	if id, ok := server.bySource[key]; ok {
		return id, false
	}
	id := makeAssetId()
	server.bySource[key] = id
	server.geometries[id] = &GeometryAsset{State: GeometryPending}
	return id, true
}

func (server *AssetServer) runBuild(id AssetId, source string, opts pathgeom.Options) {
	mesh, stats, err := server.build(source, opts)

	server.mu.Lock()
	defer server.mu.Unlock()
	asset := server.geometries[id]
	if err != nil {
		asset.State = GeometryFailed
		asset.Err = err
		server.logger.Errorf("geometry %s failed: %v", id, err)
		return
	}
	asset.State = GeometryReady
	asset.Mesh = &mesh
	asset.Stats = stats
	server.logger.Debugf("geometry %s ready: %d triangles", id, stats.Triangles)
}

// Geometry returns a snapshot of the asset. The mesh itself is immutable once
// ready and may be shared.
func (server *AssetServer) Geometry(id AssetId) (GeometryAsset, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	asset, ok := server.geometries[id]
	if !ok {
		return GeometryAsset{}, false
	}
	return *asset, true
}

// Wait blocks until every background build finished.
func (server *AssetServer) Wait() {
	server.wg.Wait()
}

func (server *AssetServer) Close() error {
	server.Wait()
	return nil
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

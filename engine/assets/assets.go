package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-pipeline/engine/assets/loaders"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// ChangeFunc is called with the stage program name whose config or source
// changed on disk. It runs on the watcher goroutine.
type ChangeFunc func(program string)

type AssetManager struct {
	shadersDir string
	assets     map[string]AssetInfo
	loaders    map[metadata.ResourceType]Loader
	// file path -> stage programs loaded from it
	dependents map[string][]string
	listeners  []ChangeFunc

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	logger   *log.Logger
}

func NewAssetManager(logger *log.Logger) *AssetManager {
	am := &AssetManager{
		assets:     make(map[string]AssetInfo),
		loaders:    make(map[metadata.ResourceType]Loader),
		dependents: make(map[string][]string),
		logger:     logger.WithPrefix("assets"),
	}
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeShaderSource, &loaders.SourceLoader{})
	return am
}

// Initialize indexes the shader directory and, when watch is set, starts
// watching it and its sub-directories for changes.
func (am *AssetManager) Initialize(shadersDir string, watch bool) error {
	am.shadersDir = filepath.Clean(shadersDir)
	if !watch {
		return am.indexRecursive(am.shadersDir)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.done = make(chan struct{})
	am.stopped = make(chan struct{})
	go am.start()

	return am.watchRecursive(am.shadersDir)
}

// OnChange registers fn to be told about changed stage programs.
func (am *AssetManager) OnChange(fn ChangeFunc) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.listeners = append(am.listeners, fn)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path = filepath.Clean(path)
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", resourceType)
	}
	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

/**
 * @brief Loads the config <name>.shader.toml from the shader directory and
 * the stage source it points at.
 *
 * @return The config, the source text, or an error.
 */
func (am *AssetManager) LoadShader(name string) (*metadata.ShaderConfig, string, error) {
	configPath := filepath.Join(am.shadersDir, name+loaders.ShaderConfigSuffix)
	res, err := am.LoadAsset(configPath, metadata.ResourceTypeShader, nil)
	if err != nil {
		return nil, "", err
	}
	config := res.Data.(*metadata.ShaderConfig)

	src, err := am.LoadAsset(config.Source, metadata.ResourceTypeShaderSource, map[string]string{"name": config.Name})
	if err != nil {
		return nil, "", fmt.Errorf("shader '%s': %w", config.Name, err)
	}

	am.mutex.Lock()
	am.addDependent(filepath.Clean(configPath), config.Name)
	am.addDependent(filepath.Clean(config.Source), config.Name)
	am.mutex.Unlock()

	return config, src.Data.(string), nil
}

func (am *AssetManager) addDependent(path, program string) {
	for _, p := range am.dependents[path] {
		if p == program {
			return
		}
	}
	am.dependents[path] = append(am.dependents[path], program)
}

// Assets returns a snapshot of the indexed assets.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	return out
}

// Shutdown stops the watcher, if any, and waits for it to exit.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.fsnotify == nil || am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			am.logger.Error("watcher error", "err", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	name := filepath.Clean(e.Name)
	s, err := os.Stat(name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(name); err != nil {
				am.logger.Warn("unable to watch new directory", "dir", name, "err", err)
			}
		}
		return
	}
	// Create covers editors that save through a rename.
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		am.handleFileEvent(name)
		am.notify(name)
	}
	// Can't stat a deleted path, so try to unwatch it regardless.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(name)
		_ = am.fsnotify.Remove(name)
	}
}

func (am *AssetManager) notify(path string) {
	am.mutex.RLock()
	programs := append([]string(nil), am.dependents[path]...)
	listeners := append([]ChangeFunc(nil), am.listeners...)
	am.mutex.RUnlock()

	for _, program := range programs {
		am.logger.Debug("shader changed", "program", program, "file", path)
		for _, fn := range listeners {
			fn(program)
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return errors.New("asset watcher already closed")
	}
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(filepath.Clean(walkPath))
		return nil
	})
}

func (am *AssetManager) indexRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			am.handleFileEvent(filepath.Clean(walkPath))
		}
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	if strings.HasSuffix(path, loaders.ShaderConfigSuffix) {
		return metadata.ResourceTypeShader
	}
	switch filepath.Ext(path) {
	case ".glsl", ".vert", ".frag", ".vs", ".fs":
		return metadata.ResourceTypeShaderSource
	default:
		return metadata.ResourceTypeNone
	}
}

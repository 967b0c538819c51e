package resolver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/dllforge/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// DefaultCacheSize bounds the number of remembered GUID resolutions.
const DefaultCacheSize = 256

const metaExtension = ".meta"

// metaFile is the part of a Unity .meta file we care about.
type metaFile struct {
	GUID string `yaml:"guid"`
}

// GUID resolves Unity asset GUIDs by reading the .meta files under Root.
// A .meta file "X.cs.meta" describes the asset "X.cs" next to it.
//
// Resolved entries are cached; a cached entry is revalidated against its
// .meta file before use, and a miss rescans Root, so renamed or deleted
// assets are picked up without restarting.
type GUID struct {
	Root string

	mu    sync.Mutex
	cache *lru.Cache[string, string]
}

// NewGUID returns a GUID resolver. A size below 1 selects DefaultCacheSize.
func NewGUID(root string, size int) (*GUID, error) {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating guid cache: %w", err)
	}
	return &GUID{Root: root, cache: cache}, nil
}

// Resolve implements Resolver.
func (g *GUID) Resolve(handle string) (string, error) {
	guid := strings.ToLower(strings.TrimSpace(handle))
	if guid == "" {
		return "", fmt.Errorf("empty guid: %w", ErrNotFound)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if path, ok := g.cache.Get(guid); ok {
		if g.stillValid(guid, path) {
			return path, nil
		}
		g.cache.Remove(guid)
	}

	index, err := g.scan()
	if err != nil {
		return "", err
	}
	path, ok := index[guid]
	if !ok {
		return "", fmt.Errorf("guid %s: %w", guid, ErrNotFound)
	}
	g.cache.Add(guid, path)
	return path, nil
}

func (g *GUID) stillValid(guid, path string) bool {
	if !fsutil.FileExists(path) {
		return false
	}
	id, err := readGUID(path + metaExtension)
	return err == nil && id == guid
}

// scan indexes every .meta file under Root that describes a regular file.
func (g *GUID) scan() (map[string]string, error) {
	metas, err := fsutil.FindFilesByExtension(g.Root, metaExtension)
	if err != nil {
		return nil, fmt.Errorf("scanning %q for meta files: %w", g.Root, err)
	}
	index := make(map[string]string, len(metas))
	for _, meta := range metas {
		asset := strings.TrimSuffix(meta, metaExtension)
		if !fsutil.FileExists(asset) {
			continue // folder or orphaned meta
		}
		id, err := readGUID(meta)
		if err != nil || id == "" {
			continue
		}
		if _, dup := index[id]; !dup {
			index[id] = asset
		}
	}
	return index, nil
}

func readGUID(metaPath string) (string, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return "", err
	}
	var m metaFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parsing %q: %w", metaPath, err)
	}
	return strings.ToLower(m.GUID), nil
}

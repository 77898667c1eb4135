package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Imergent-Technology/Protogen-sub001/internal/common/fsutil"
	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// catalogExts lists the file extensions LoadDir reads.
var catalogExts = []string{".yaml", ".yml", ".json", ".toml"}

// catalogFile is the on-disk shape of one catalog file.
type catalogFile struct {
	Scenes []types.Scene `json:"scenes" yaml:"scenes" toml:"scenes"`
	Decks  []types.Deck  `json:"decks" yaml:"decks" toml:"decks"`
}

// LoadDir reads every catalog file in dir (non-recursive, in name order) and
// merges their scenes and decks. Duplicate ids across files are an error.
func LoadDir(dir string) (*Catalog, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	if !fsutil.PathExists(abs) {
		return nil, fmt.Errorf("catalog dir not found: %s", abs)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var scenes []types.Scene
	var decks []types.Deck
	for _, e := range entries {
		if e.IsDir() || !fsutil.HasExt(e.Name(), catalogExts...) {
			continue
		}
		f, err := decodeFile(filepath.Join(abs, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		scenes = append(scenes, f.Scenes...)
		decks = append(decks, f.Decks...)
	}
	return NewCatalog(scenes, decks)
}

func decodeFile(path string) (catalogFile, error) {
	var f catalogFile
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	case ".toml":
		err = toml.Unmarshal(b, &f)
	default:
		err = fmt.Errorf("unsupported catalog extension: %s", ext)
	}
	return f, err
}

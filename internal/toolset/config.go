package toolset

import "github.com/Imergent-Technology/Protogen-sub001/pkg/types"

// Config describes the resources a scene or deck type needs.
type Config struct {
	Key       string
	Libraries []string
	CSS       []string
	// Preload marks bundles worth fetching at startup.
	Preload bool
}

// Builtin returns the default registry covering every scene and deck type.
func Builtin() []Config {
	return []Config{
		{
			Key:       string(types.SceneGraph),
			Libraries: []string{"sigma", "graphology", "graphology-layout-forceatlas2"},
			CSS:       []string{"sigma.css"},
			Preload:   true,
		},
		{
			Key:       string(types.SceneCard),
			Libraries: []string{"framer-motion"},
			CSS:       []string{"cards.css"},
			Preload:   true,
		},
		{
			Key:       string(types.SceneDocument),
			Libraries: []string{"marked", "prismjs"},
			CSS:       []string{"prism.css"},
		},
		{
			Key:       string(types.SceneDashboard),
			Libraries: []string{"recharts"},
		},
		{
			Key:       string(types.DeckHybrid),
			Libraries: []string{"sigma", "graphology", "framer-motion"},
			CSS:       []string{"sigma.css", "cards.css"},
		},
		{Key: string(types.SceneCustom)},
	}
}

func (c Config) clone() Config {
	c.Libraries = append([]string(nil), c.Libraries...)
	c.CSS = append([]string(nil), c.CSS...)
	return c
}

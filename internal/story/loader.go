package story

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"storymode/internal/reward"
)

//go:embed chapters/*.yaml
var embeddedContent embed.FS

const poolFile = "rewards.yaml"

// Library holds every loaded chapter definition plus the reward pool. Built
// once at startup and read-only afterwards.
type Library struct {
	chapters map[string]*Chapter
	pool     *reward.Pool
}

type poolDocument struct {
	Tiers map[reward.Rarity][]string `yaml:"tiers"`
}

// LoadLibrary reads the embedded starter content, then overlays chapter files
// from dir when it is non-empty. A dir chapter with an id matching an
// embedded one replaces it.
func LoadLibrary(dir string) (*Library, error) {
	lib := &Library{chapters: make(map[string]*Chapter)}

	sub, err := fs.Sub(embeddedContent, "chapters")
	if err != nil {
		return nil, fmt.Errorf("load embedded chapters: %w", err)
	}
	if err := lib.loadFrom(sub); err != nil {
		return nil, err
	}

	if dir != "" {
		if err := lib.loadFrom(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("load chapter dir %s: %w", dir, err)
		}
	}

	if lib.pool == nil {
		return nil, fmt.Errorf("chapter content has no %s", poolFile)
	}
	if len(lib.chapters) == 0 {
		return nil, fmt.Errorf("chapter content has no chapters")
	}
	return lib, nil
}

func (l *Library) loadFrom(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read chapter content: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		if filepath.Base(name) == poolFile {
			var doc poolDocument
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			pool, err := reward.NewPool(doc.Tiers)
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			l.pool = pool
			continue
		}

		var ch Chapter
		if err := yaml.Unmarshal(data, &ch); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		if err := ch.Validate(); err != nil {
			return fmt.Errorf("validate %s: %w", name, err)
		}
		l.chapters[ch.ID] = &ch
	}
	return nil
}

// Chapter looks up a definition by id.
func (l *Library) Chapter(id string) (*Chapter, bool) {
	ch, ok := l.chapters[id]
	return ch, ok
}

// ChaptersFor lists a character's chapters, ordered by id.
func (l *Library) ChaptersFor(characterID string) []*Chapter {
	var out []*Chapter
	for _, ch := range l.chapters {
		if ch.CharacterID == characterID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All lists every chapter, ordered by id.
func (l *Library) All() []*Chapter {
	out := make([]*Chapter, 0, len(l.chapters))
	for _, ch := range l.chapters {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pool returns the shared reward pool.
func (l *Library) Pool() *reward.Pool {
	return l.pool
}

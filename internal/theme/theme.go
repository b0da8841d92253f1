// Package theme embeds the default book theme, the project skeleton used by
// `bookbuilder init` and the preset files printed by `bookbuilder preset`.
package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed assets
var assetsFS embed.FS

//go:embed all:skeleton
var skeletonFS embed.FS

//go:embed presets
var presetsFS embed.FS

const (
	// SiteDir is where the theme is copied inside the site directory.
	SiteDir = "theme"
	// ArticleTemplate is the default page template inside Assets.
	ArticleTemplate = "templates/article.html"
	// PartialsDir holds templates parsed alongside every page template.
	PartialsDir = "templates/partials"

	dotPrefix = "dot-"
)

// Assets returns the default theme tree.
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(fmt.Sprintf("embedded theme missing: %v", err))
	}
	return sub
}

// Skeleton returns the files of a new project. Names starting with "dot-" are
// written with a leading dot instead.
func Skeleton() fs.FS {
	sub, err := fs.Sub(skeletonFS, "skeleton")
	if err != nil {
		panic(fmt.Sprintf("embedded skeleton missing: %v", err))
	}
	return sub
}

var presetFiles = map[string]string{
	"book":    "presets/book.yaml",
	"index":   "presets/index.yaml",
	"article": "presets/article.adoc",
}

// PresetNames lists the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(presetFiles))
	for n := range presetFiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns the content of the named preset file.
func Preset(name string) ([]byte, error) {
	p, ok := presetFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return presetsFS.ReadFile(p)
}

// WriteSkeleton writes the project skeleton into dir. Existing files are kept unless
// overwrite is set. It returns the slash-separated paths it wrote.
func WriteSkeleton(dir string, overwrite bool) ([]string, error) {
	var written []string
	skel := Skeleton()
	err := fs.WalkDir(skel, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(restoreDot(p)))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !overwrite {
			if _, statErr := os.Stat(target); statErr == nil {
				return nil
			}
		}
		data, err := fs.ReadFile(skel, p)
		if err != nil {
			return err
		}
		// #nosec G306 -- project files are meant to be shared
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		written = append(written, restoreDot(p))
		return nil
	})
	return written, err
}

func restoreDot(p string) string {
	dir, base := path.Split(p)
	if strings.HasPrefix(base, dotPrefix) {
		base = "." + strings.TrimPrefix(base, dotPrefix)
	}
	return dir + base
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
)

// Validate checks the directory layout and declared paths of cfg.
func Validate(cfg *Book) error {
	if err := validateRelative("src_dir", cfg.SrcDir); err != nil {
		return err
	}
	if err := validateRelative("site_dir", cfg.SiteDir); err != nil {
		return err
	}

	// The site directory is emptied on every build, so nothing the build reads may
	// live inside it.
	site := filepath.Clean(cfg.SiteDir)
	if site == "." {
		return derrors.ConfigError("site_dir must not be the book root").Build()
	}
	if within(site, filepath.Clean(cfg.SrcDir)) {
		return derrors.ConfigError("src_dir must not be site_dir or lie inside it").
			WithContext("site_dir", cfg.SiteDir).
			WithContext("src_dir", cfg.SrcDir).
			Build()
	}
	if within(site, CacheDirName) || within(CacheDirName, site) {
		return derrors.ConfigError("site_dir must not overlap the cache directory").
			WithContext("site_dir", cfg.SiteDir).
			Build()
	}

	for i, c := range cfg.Copies {
		if c.From == "" || c.To == "" {
			return derrors.ConfigError(fmt.Sprintf("copies[%d] needs both from and to", i)).Build()
		}
	}
	for _, opt := range cfg.Convert.Options {
		if strings.TrimSpace(opt.Flag) == "" {
			return derrors.ConfigError("convert option with an empty flag").Build()
		}
	}
	return nil
}

func validateRelative(field, path string) error {
	if filepath.IsAbs(path) {
		return derrors.ConfigError(field+" must be relative to the book root").
			WithContext("path", path).
			Build()
	}
	if !filepath.IsLocal(path) {
		return derrors.ConfigError(field+" must not escape the book root").
			WithContext("path", path).
			Build()
	}
	return nil
}

// within reports whether path is dir or lies under it. Both are cleaned and relative
// to the book root.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

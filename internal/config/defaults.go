package config

import "runtime"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Book) error
	Domain() string
}

// LayoutDefaultApplier fills the directory layout and output extension.
type LayoutDefaultApplier struct{}

func (l *LayoutDefaultApplier) Domain() string { return "layout" }

func (l *LayoutDefaultApplier) ApplyDefaults(cfg *Book) error {
	if cfg.SrcDir == "" {
		cfg.SrcDir = "src"
	}
	if cfg.SiteDir == "" {
		cfg.SiteDir = "site"
	}
	if cfg.OutputExt == "" {
		cfg.OutputExt = ".html"
	}
	if cfg.OutputExt[0] != '.' {
		cfg.OutputExt = "." + cfg.OutputExt
	}
	for len(cfg.BaseURL) > 0 && cfg.BaseURL[len(cfg.BaseURL)-1] == '/' {
		cfg.BaseURL = cfg.BaseURL[:len(cfg.BaseURL)-1]
	}
	return nil
}

// BuildDefaultApplier handles converter and worker pool defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Book) error {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Convert.Command == "" {
		cfg.Convert.Command = "asciidoctor"
	}
	if cfg.Convert.EmbeddedFlag == "" {
		cfg.Convert.EmbeddedFlag = "--embedded"
	}
	return nil
}

// LoggingDefaultApplier normalizes the logging section.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Book) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

var defaultAppliers = []DefaultApplier{
	&LayoutDefaultApplier{},
	&BuildDefaultApplier{},
	&LoggingDefaultApplier{},
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Book) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

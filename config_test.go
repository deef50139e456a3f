package stencil_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"impractical.co/stencil"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		data      string
		format    string
		directory string
		extension string
		cache     bool
		flavor    string
	}{
		"yaml": {
			data:      "directory: views\nextension: .tmpl\ncache: true\nflavor: html\n",
			format:    "yaml",
			directory: "views",
			extension: ".tmpl",
			cache:     true,
			flavor:    "html",
		},
		"yml-with-dot": {
			data:      "directory: views\n",
			format:    ".yml",
			directory: "views",
			flavor:    "text",
		},
		"toml": {
			data:      "directory = \"templates\"\ncache = true\nflavor = \"text\"\n",
			format:    "toml",
			directory: "templates",
			cache:     true,
			flavor:    "text",
		},
		"empty": {
			data:   "",
			format: "toml",
			flavor: "text",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := stencil.ParseConfig([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Directory != tc.directory {
				t.Errorf("expected directory %q, got %q", tc.directory, cfg.Directory)
			}
			if cfg.Extension != tc.extension {
				t.Errorf("expected extension %q, got %q", tc.extension, cfg.Extension)
			}
			if cfg.Cache != tc.cache {
				t.Errorf("expected cache %v, got %v", tc.cache, cfg.Cache)
			}
			if cfg.Flavor.Name() != tc.flavor {
				t.Errorf("expected flavor %q, got %q", tc.flavor, cfg.Flavor.Name())
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	if _, err := stencil.ParseConfig([]byte(`{"directory": "x"}`), "json"); !errors.Is(err, stencil.ErrUnknownConfigFormat) {
		t.Errorf("expected ErrUnknownConfigFormat, got %v", err)
	}
	if _, err := stencil.ParseConfig([]byte("flavor: markdown\n"), "yaml"); !errors.Is(err, stencil.ErrUnknownFlavor) {
		t.Errorf("expected ErrUnknownFlavor, got %v", err)
	}
	if _, err := stencil.ParseConfig([]byte("directory = \n"), "toml"); err == nil {
		t.Errorf("expected an error for invalid TOML")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	ctx := testContext()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("<b>{{ .name }}</b>"), 0o600); err != nil {
		t.Fatalf("error writing template: %v", err)
	}
	cfgPath := filepath.Join(dir, "stencil.yaml")
	if err := os.WriteFile(cfgPath, []byte("directory: "+filepath.ToSlash(dir)+"\nflavor: html\n"), 0o600); err != nil {
		t.Fatalf("error writing config: %v", err)
	}

	cfg, err := stencil.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	out, err := stencil.NewRegistry(cfg).Render(ctx, "page", stencil.Model{"name": "a&b"})
	if err != nil {
		t.Fatalf("unexpected error rendering: %v", err)
	}
	if out != "<b>a&amp;b</b>" {
		t.Errorf("expected %q, got %q", "<b>a&amp;b</b>", out)
	}

	if _, err := stencil.LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected an fs.ErrNotExist error, got %v", err)
	}
}

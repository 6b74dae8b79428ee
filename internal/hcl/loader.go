package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/supertrace/internal/config"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/fsutil"
	"github.com/vk/supertrace/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the `env` object. Defaults to os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, base *config.Model, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := clone(base)

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := newEvalContext(l.environ())
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := apply(model, &root, evalCtx); err != nil {
			return nil, fmt.Errorf("failed to evaluate HCL file %s: %w", file, err)
		}
		logger.Debug("Applied HCL file.", "file", file)
	}

	logger.Debug("HCL loading complete.",
		"step_delay", model.Playback.StepDelay,
		"renderers", model.Renderers,
		"watch", model.Watch,
	)
	return model, nil
}

func (l *Loader) environ() []string {
	if l.Environ == nil {
		return os.Environ()
	}
	return l.Environ()
}

// findAllHCLFiles expands directories and returns a de-duplicated list of
// .hcl files in argument order.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		all = append(all, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return all, nil
}

func clone(m *config.Model) *config.Model {
	if m == nil {
		return config.Defaults()
	}
	out := *m
	out.Renderers = append([]string(nil), m.Renderers...)
	return &out
}

// apply evaluates every attribute present in root and writes it into m.
func apply(m *config.Model, root *schema.File, evalCtx *hcl.EvalContext) error {
	var diags hcl.Diagnostics

	if p := root.Playback; p != nil {
		if err := evalDuration(p.StepDelay, evalCtx, &m.Playback.StepDelay); err != nil {
			return err
		}
		diags = append(diags, evalBool(p.Autostart, evalCtx, &m.Playback.Autostart)...)
		diags = append(diags, evalBool(p.ExitWhenDone, evalCtx, &m.Playback.ExitWhenDone)...)
	}
	if mk := root.Markers; mk != nil {
		diags = append(diags, evalString(mk.InitialNodes, evalCtx, &m.Markers.InitialNodes)...)
		diags = append(diags, evalString(mk.MessagePassed, evalCtx, &m.Markers.MessagePassed)...)
	}
	if pal := root.Palette; pal != nil {
		diags = append(diags, evalString(pal.InitiallyActive, evalCtx, &m.Palette.InitiallyActive)...)
		diags = append(diags, evalString(pal.Inactive, evalCtx, &m.Palette.Inactive)...)
		diags = append(diags, evalString(pal.Source, evalCtx, &m.Palette.Source)...)
		diags = append(diags, evalString(pal.Target, evalCtx, &m.Palette.Target)...)
	}
	if s := root.Server; s != nil {
		diags = append(diags, evalInt(s.Port, evalCtx, &m.Server.Port)...)
	}
	diags = append(diags, evalStringList(root.Renderers, evalCtx, &m.Renderers)...)
	diags = append(diags, evalBool(root.Watch, evalCtx, &m.Watch)...)

	if diags.HasErrors() {
		return diags
	}
	return nil
}

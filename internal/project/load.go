// Package project walks a project directory on disk and populates a
// fresh catalog.Catalog from it: foundry-project.yml locates model
// layers and external-source roots, connections.yml supplies the active
// connection profile, and every `.sql`/sibling-YAML pair under those
// roots becomes a catalog declaration. This is the glue spec.md leaves
// as "consumed, not specified" in its External Interfaces section —
// cmd/foundry is the only caller.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/catalog"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/config"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/parser"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// Project bundles the decoded project configuration with the catalog
// populated from it, so callers (cmd/foundry) have both the raw config
// (for compile_path, python.workspace_dir, etc.) and the ready-to-resolve
// catalog.
type Project struct {
	Dir    string
	Config *config.ProjectConfig
	Catalog *catalog.Catalog
}

// Load reads foundry-project.yml from dir, then walks every source named
// in it, populating a fresh catalog. Diagnostics are collected in a bag
// rather than failing on the first bad file, matching the parse/resolve
// phases' batch-reporting behavior.
func Load(dir string) (*Project, *diagnostics.Bag) {
	bag := &diagnostics.Bag{}

	cfgPath := filepath.Join(dir, "foundry-project.yml")
	cfg, err := config.LoadProjectConfig(cfgPath)
	if err != nil {
		bag.Add(asDiagnostic(cfgPath, err))
		return nil, bag
	}

	cat := catalog.New()

	loadConnections(dir, cfg, cat, bag)
	loadExternalSpecs(dir, cfg, cat, bag)
	loadModels(dir, cfg, cat, bag)
	loadKafkaDefinitions(dir, cfg, cat, bag)
	loadJobs(cfg, cat, bag)

	return &Project{Dir: dir, Config: cfg, Catalog: cat}, bag
}

func loadJobs(cfg *config.ProjectConfig, cat *catalog.Catalog, bag *diagnostics.Bag) {
	for _, spec := range cfg.Jobs {
		job := &catalog.JobDecl{
			Name:         spec.Name,
			Workspace:    spec.Workspace,
			ModuleOrPath: spec.ModuleOrPath,
			SourceFile:   "foundry-project.yml",
		}
		if diag := cat.Insert(catalog.KindJob, job.Name, job); diag != nil {
			bag.Add(diag)
		}
	}
}

func loadConnections(dir string, cfg *config.ProjectConfig, cat *catalog.Catalog, bag *diagnostics.Bag) {
	path := filepath.Join(dir, cfg.ConnectionProfileRef.Path)
	cf, err := config.LoadConnectionsFile(path)
	if err != nil {
		bag.Add(asDiagnostic(path, err))
		return
	}
	cat.SetConnectionProfile(config.ToCatalogConnectionProfile(cfg.ConnectionProfileRef.Profile, cf))
}

func loadExternalSpecs(dir string, cfg *config.ProjectConfig, cat *catalog.Catalog, bag *diagnostics.Bag) {
	for _, path := range specFiles(dir, cfg.Sources.Warehouse) {
		spec, err := config.LoadExternalDBSpec(path)
		if err != nil {
			bag.Add(asDiagnostic(path, err))
			continue
		}
		cat.AddWarehouseDB(config.ToCatalogExternalDBSpec(spec))
	}
	for _, path := range specFiles(dir, cfg.Sources.SourceDB) {
		spec, err := config.LoadExternalDBSpec(path)
		if err != nil {
			bag.Add(asDiagnostic(path, err))
			continue
		}
		cat.AddSourceDB(config.ToCatalogExternalDBSpec(spec))
	}
	for _, path := range specFiles(dir, cfg.Sources.Kafka) {
		spec, err := config.LoadKafkaClusterSpec(path)
		if err != nil {
			bag.Add(asDiagnostic(path, err))
			continue
		}
		cat.AddKafkaCluster(config.ToCatalogKafkaCluster(spec))
	}
	for _, path := range specFiles(dir, cfg.Sources.API) {
		spec, err := config.LoadAPISourceSpec(path)
		if err != nil {
			bag.Add(asDiagnostic(path, err))
			continue
		}
		cat.AddAPISource(config.ToCatalogAPISource(spec))
	}
}

// specFiles resolves a source group's specification root, preferring
// `specifications` and falling back to `source_root` (spec.md §6 lists
// both spellings across families).
func specFiles(dir string, group config.SourceGroup) []string {
	root := group.Specifications
	if root == "" {
		root = group.SourceRoot
	}
	if root == "" {
		return nil
	}
	files, _ := walkExt(filepath.Join(dir, root), ".yml")
	return files
}

// loadModels walks every configured layer directory for `_<name>.sql`
// model files plus their optional `_<name>.yml` sidecars (spec.md §6).
func loadModels(dir string, cfg *config.ProjectConfig, cat *catalog.Catalog, bag *diagnostics.Bag) {
	for layer, rel := range cfg.Models.Layers {
		layerDir := filepath.Join(dir, cfg.Models.Dir, rel)
		files, err := walkExt(layerDir, ".sql")
		if err != nil {
			bag.Addf(diagnostics.KindParseError, diagnostics.Span{File: layerDir}, layer,
				"reading layer %q directory: %v", layer, err)
			continue
		}
		for _, path := range files {
			loadModel(layer, path, cat, bag)
		}
	}
}

func loadModel(layer, path string, cat *catalog.Catalog, bag *diagnostics.Bag) {
	stem := strings.TrimSuffix(filepath.Base(path), ".sql")
	name := strings.TrimPrefix(stem, "_")

	raw, err := os.ReadFile(path)
	if err != nil {
		bag.Addf(diagnostics.KindParseError, diagnostics.Span{File: path}, name, "reading model file: %v", err)
		return
	}

	model := &catalog.Model{
		Layer:           layer,
		Name:            name,
		RawSQL:          string(raw),
		Materialization: catalog.MaterializationView,
		SourceFile:      path,
	}

	sidecarPath := filepath.Join(filepath.Dir(path), stem+".yml")
	if _, statErr := os.Stat(sidecarPath); statErr == nil {
		sidecar, loadErr := config.LoadModelSidecar(sidecarPath)
		if loadErr != nil {
			bag.Add(asDiagnostic(sidecarPath, loadErr))
		} else {
			applySidecar(model, sidecar)
		}
	}

	if diag := cat.Insert(catalog.KindModel, model.ID(), model); diag != nil {
		bag.Add(diag)
	}
}

func applySidecar(model *catalog.Model, sidecar *config.ModelSidecar) {
	if sidecar.Materialization == "table" {
		model.Materialization = catalog.MaterializationTable
	}
	if len(sidecar.Meta) > 0 {
		model.Metadata = sidecar.Meta
	}
}

// loadKafkaDefinitions walks the Kafka source group's definitions
// subtree for SMT/pipeline/predicate/connector DDL, inserting each into
// the catalog by statement kind. Connector statements consult a sibling
// YAML (same stem, `.yml`) for the declared name, include-list, and
// dag_executable flag.
func loadKafkaDefinitions(dir string, cfg *config.ProjectConfig, cat *catalog.Catalog, bag *diagnostics.Bag) {
	root := cfg.Sources.Kafka.Definitions
	if root == "" {
		root = cfg.Sources.Kafka.SourceRoot
	}
	if root == "" {
		return
	}
	files, err := walkExt(filepath.Join(dir, root), ".sql")
	if err != nil {
		bag.Addf(diagnostics.KindParseError, diagnostics.Span{File: root}, "", "reading kafka definitions: %v", err)
		return
	}

	for _, path := range files {
		src, readErr := os.ReadFile(path)
		if readErr != nil {
			bag.Addf(diagnostics.KindParseError, diagnostics.Span{File: path}, "", "reading %s: %v", path, readErr)
			continue
		}
		stmt, diag := parser.ParseKafkaStatement(path, string(src))
		if diag != nil {
			bag.Add(diag)
			continue
		}
		insertKafkaStatement(path, stmt, cat, bag)
	}
}

// walkExt recursively lists files under root with the given extension,
// sorted by path for deterministic processing order. A missing root is
// not an error: it returns an empty slice.
func walkExt(root, ext string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// asDiagnostic wraps an arbitrary error (config loaders already return
// *diagnostics.Diagnostic, but the interface is error so this keeps the
// bag's contract honest against any future change).
func asDiagnostic(path string, err error) *diagnostics.Diagnostic {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		return d
	}
	return diagnostics.New(diagnostics.KindParseError, diagnostics.Span{File: path}, "", err.Error())
}

package casework

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	models "casedocs/internal/domain/models/casework"
)

//go:embed config/*.yaml
var configFiles embed.FS

// stageFolders is one stage's entry in the folder catalogue.
type stageFolders struct {
	Paths []string `yaml:"paths"`
}

// folderCatalogue is the unmarshalled shape of config/folders.yaml.
type folderCatalogue struct {
	Fallback string                  `yaml:"fallback"`
	Stages   map[string]stageFolders `yaml:"stages"`
}

// FolderRegistry holds the static folder-path taxonomy. The catalogue is
// data, not logic: it is read once from the embedded YAML and served from
// memory thereafter.
type FolderRegistry struct {
	catalogue folderCatalogue
	mu        sync.RWMutex
}

// NewFolderRegistry loads the embedded folder catalogue.
func NewFolderRegistry() (*FolderRegistry, error) {
	data, err := configFiles.ReadFile("config/folders.yaml")
	if err != nil {
		return nil, fmt.Errorf("read folder catalogue: %w", err)
	}

	var cat folderCatalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("unmarshal folder catalogue: %w", err)
	}

	if len(cat.Stages) == 0 || cat.Fallback == "" {
		return nil, fmt.Errorf("folder catalogue is incomplete")
	}

	return &FolderRegistry{catalogue: cat}, nil
}

// DefaultFoldersForCase instantiates the full static catalogue for a new
// case: every stage path plus the catch-all fallback folder. Deterministic,
// no I/O; IDs are assigned by the repository on insert.
func (r *FolderRegistry) DefaultFoldersForCase(caseID int64) []models.Folder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folders := make([]models.Folder, 0, 64)
	for _, stage := range r.stageOrder() {
		for _, path := range r.catalogue.Stages[stage].Paths {
			folders = append(folders, models.Folder{CaseID: caseID, Path: path})
		}
	}
	folders = append(folders, models.Folder{CaseID: caseID, Path: r.catalogue.Fallback})
	return folders
}

// PathsForStage returns the canonical document-type sub-paths for a stage.
// The argument may be a bare stage name or a "stage/type" path. Stages
// with no explicit mapping fall back to the single catch-all folder.
//
// TODO: the silent dropbox fallback may be masking missing stage
// configuration; revisit once the stage catalogue stabilises.
func (r *FolderRegistry) PathsForStage(stagePathOrName string) []string {
	stage := stagePathOrName
	if i := strings.Index(stage, "/"); i >= 0 {
		stage = stage[:i]
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if sf, ok := r.catalogue.Stages[stage]; ok && len(sf.Paths) > 0 {
		paths := make([]string, len(sf.Paths))
		copy(paths, sf.Paths)
		return paths
	}
	return []string{r.catalogue.Fallback}
}

// Fallback returns the catch-all folder path.
func (r *FolderRegistry) Fallback() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalogue.Fallback
}

// stageOrder returns stages in a stable, process-chronological order so
// the folder set is created deterministically.
func (r *FolderRegistry) stageOrder() []string {
	known := []string{
		models.StageAppellantCase,
		models.StageLPAQuestionnaire,
		models.StageRepresentations,
		models.StageCosts,
		models.StageInternal,
		models.StageAppealDecision,
	}
	order := make([]string, 0, len(r.catalogue.Stages))
	for _, s := range known {
		if _, ok := r.catalogue.Stages[s]; ok {
			order = append(order, s)
		}
	}
	// Any stage configured but not in the known list goes last,
	// alphabetically
	var extra []string
	for s := range r.catalogue.Stages {
		found := false
		for _, k := range order {
			if k == s {
				found = true
				break
			}
		}
		if !found {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

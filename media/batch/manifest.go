package batch

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/media/processor"
)

// Manifest is a YAML batch description:
//
//	output: out
//	overwrite: false
//	defaults:
//	  format: webp
//	  quality: 0.8
//	jobs:
//	  - input: photos/*.jpg
//	    targets:
//	      - preset: discover
//	      - format: png
//	        width: 512
//	        height: 512
//	        fit: letterbox
//	  - input: logo.png
//	    folder: icons
//	    targets:
//	      - preset: favicon
type Manifest struct {
	Output    string               `yaml:"output"`
	Overwrite bool                 `yaml:"overwrite"`
	Defaults  processor.TargetSpec `yaml:"defaults"`
	Jobs      []ManifestJob        `yaml:"jobs"`

	dir string
}

// ManifestJob is one manifest entry. Input may be a glob.
type ManifestJob struct {
	Input   string                 `yaml:"input"`
	Folder  string                 `yaml:"folder"`
	Targets []processor.TargetSpec `yaml:"targets"`
}

// LoadManifest reads and parses a manifest file. Relative paths inside it
// are resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("manifest", path)
		}
		return nil, apperrors.Wrap(err, "read manifest")
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, apperrors.Wrap(err, "parse manifest").WithDetail("path", path)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest parses manifest YAML. Relative paths resolve against the
// working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewValidation("invalid manifest yaml").WithInnerError(err)
	}
	if len(m.Jobs) == 0 {
		return nil, apperrors.NewValidation("manifest has no jobs")
	}
	for i, j := range m.Jobs {
		if j.Input == "" {
			return nil, apperrors.NewValidation("manifest job has no input").WithDetail("job", i)
		}
	}
	return &m, nil
}

// OutputDir returns the output directory, resolved against the manifest.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Output)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// BuildJobs expands globs and resolves every target. Jobs come out in
// manifest order; files matched by one glob are sorted by name.
func (m *Manifest) BuildJobs() ([]Job, error) {
	var jobs []Job
	for i, mj := range m.Jobs {
		specs := mj.Targets
		if len(specs) == 0 {
			specs = []processor.TargetSpec{{}}
		}
		targets := make([]processor.Target, 0, len(specs))
		for _, spec := range specs {
			t, err := spec.Merge(m.Defaults).Build()
			if err != nil {
				return nil, apperrors.Wrap(err, "invalid manifest target").WithDetail("job", i)
			}
			targets = append(targets, t)
		}

		inputs, err := m.expand(mj.Input)
		if err != nil {
			return nil, apperrors.Wrap(err, "expand manifest input").WithDetail("job", i)
		}
		for _, input := range inputs {
			jobs = append(jobs, Job{
				InputPath: input,
				Targets:   targets,
				Folder:    mj.Folder,
				Overwrite: m.Overwrite,
			})
		}
	}
	return jobs, nil
}

func (m *Manifest) expand(input string) ([]string, error) {
	pattern := m.resolve(input)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, apperrors.NewInvalid("input", input, err.Error())
	}
	if len(matches) == 0 {
		// Not a glob, or nothing matched: keep the path so the job reports it.
		return []string{pattern}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

// Package pipelineconfig provides YAML configuration loading for the
// dicomflow CLI, adapted from AldrinSalazar-mrislicesto3d/pkg/config's
// "load from file, fall back to defaults" shape.
package pipelineconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gitter-badger/dicom-streams/dicom"
)

// Config is the on-disk YAML shape for the dicomflow CLI's validate, modify,
// and collect subcommands. Each section is optional; an absent section
// leaves the corresponding FlowComposition stage unconfigured.
type Config struct {
	Validate struct {
		DrainIncoming bool `yaml:"drainIncoming"`
		Contexts      []struct {
			SOPClassUID       string `yaml:"sopClassUID"`
			TransferSyntaxUID string `yaml:"transferSyntaxUID"`
		} `yaml:"contexts"`
	} `yaml:"validate"`

	Modify struct {
		InsertGuards  bool `yaml:"insertGuards"`
		Modifications []struct {
			// Path is a slash-separated tag path, e.g. "0010,0010" or
			// "0008,9215[1]/0008,0020" for a step inside sequence item 1.
			Path string `yaml:"path"`
			// Op is one of "replace", "insert", "endsWith".
			Op string `yaml:"op"`
			// Value is the literal replacement/inserted value. Omitted means
			// an empty value.
			Value string `yaml:"value"`
		} `yaml:"modifications"`
	} `yaml:"modify"`

	Collect struct {
		Label         string   `yaml:"label"`
		MaxBufferSize int      `yaml:"maxBufferSize"`
		Tags          []string `yaml:"tags"`
	} `yaml:"collect"`

	Log struct {
		// File is a path to rotate structured logs to, instead of stderr. Empty
		// means stderr.
		File string `yaml:"file"`
		// MaxSizeMB is the size in MB a log file reaches before it is rotated.
		MaxSizeMB int `yaml:"maxSizeMB"`
		// MaxBackups is the number of rotated log files kept around.
		MaxBackups int `yaml:"maxBackups"`
	} `yaml:"log"`
}

// DefaultConfig returns an empty Config: no validation contexts, no
// modifications, collect with spec.md's default buffer cap.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Modify.InsertGuards = true
	cfg.Collect.MaxBufferSize = dicom.DefaultCollectMaxBufferSize
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	return cfg
}

// LoadConfig loads a Config from path. A missing file is not an error: it
// returns DefaultConfig unchanged, mirroring LoadConfig's teacher behavior.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipelineconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("pipelineconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ValidateFlowConfig converts the Validate section into a
// dicom.ValidateFlowConfig.
func (c *Config) ValidateFlowConfig() dicom.ValidateFlowConfig {
	var contexts []dicom.ValidationContext
	for _, ctx := range c.Validate.Contexts {
		contexts = append(contexts, dicom.ValidationContext{
			SOPClassUID:       ctx.SOPClassUID,
			TransferSyntaxUID: ctx.TransferSyntaxUID,
		})
	}
	return dicom.ValidateFlowConfig{Contexts: contexts, DrainIncoming: c.Validate.DrainIncoming}
}

// ModifyFlowConfig converts the Modify section into a
// dicom.ModifyFlowConfig.
func (c *Config) ModifyFlowConfig() (dicom.ModifyFlowConfig, error) {
	var mods []dicom.TagModification
	for _, m := range c.Modify.Modifications {
		path, err := ParseTagPath(m.Path)
		if err != nil {
			return dicom.ModifyFlowConfig{}, fmt.Errorf("pipelineconfig: modification path %q: %w", m.Path, err)
		}
		value := []byte(m.Value)
		transform := func([]byte) []byte { return value }

		switch m.Op {
		case "insert":
			mods = append(mods, dicom.Insert(path, transform))
		case "endsWith":
			mods = append(mods, dicom.ReplaceEndsWith(path, transform))
		case "replace", "":
			mods = append(mods, dicom.Replace(path, transform))
		default:
			return dicom.ModifyFlowConfig{}, fmt.Errorf("pipelineconfig: unknown modification op %q", m.Op)
		}
	}
	return dicom.NewModifyFlowConfig(mods, c.Modify.InsertGuards)
}

// CollectFlowConfig converts the Collect section into a
// dicom.CollectFlowConfig.
func (c *Config) CollectFlowConfig() (dicom.CollectFlowConfig, error) {
	var paths []dicom.TagPath
	for _, t := range c.Collect.Tags {
		path, err := ParseTagPath(t)
		if err != nil {
			return dicom.CollectFlowConfig{}, fmt.Errorf("pipelineconfig: collect tag %q: %w", t, err)
		}
		paths = append(paths, path)
	}
	label := c.Collect.Label
	if label == "" {
		label = "collected"
	}
	cfg := dicom.NewCollectFlowConfigForTags(paths, label)
	if c.Collect.MaxBufferSize > 0 {
		cfg.MaxBufferSize = c.Collect.MaxBufferSize
	}
	return cfg, nil
}

// ParseTagPath parses a slash-separated tag path such as "0010,0010" or
// "0008,9215[1]/0008,0020" into a dicom.TagPath. Each step is
// "GGGG,EEEE" optionally followed by "[n]" naming a 1-based item index;
// an omitted index is the wildcard 0.
func ParseTagPath(s string) (dicom.TagPath, error) {
	path := dicom.RootTagPath
	if s == "" {
		return path, fmt.Errorf("empty tag path")
	}
	for _, step := range strings.Split(s, "/") {
		tag, item, err := parseStep(step)
		if err != nil {
			return dicom.RootTagPath, err
		}
		path = path.Push(tag, item)
	}
	return path, nil
}

func parseStep(step string) (dicom.Tag, int, error) {
	item := 0
	if i := strings.Index(step, "["); i >= 0 {
		if !strings.HasSuffix(step, "]") {
			return 0, 0, fmt.Errorf("malformed item index in step %q", step)
		}
		n, err := strconv.Atoi(step[i+1 : len(step)-1])
		if err != nil {
			return 0, 0, fmt.Errorf("malformed item index in step %q: %w", step, err)
		}
		item = n
		step = step[:i]
	}

	groupElem := strings.Split(step, ",")
	if len(groupElem) != 2 {
		return 0, 0, fmt.Errorf("malformed tag step %q, want GGGG,EEEE", step)
	}
	group, err := strconv.ParseUint(groupElem[0], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed group in step %q: %w", step, err)
	}
	elem, err := strconv.ParseUint(groupElem[1], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed element in step %q: %w", step, err)
	}
	return dicom.NewTag(uint16(group), uint16(elem)), item, nil
}

package pipelineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitter-badger/dicom-streams/dicom"
)

func TestParseTagPathSimple(t *testing.T) {
	path, err := ParseTagPath("0010,0010")
	if err != nil {
		t.Fatalf("ParseTagPath error: %v", err)
	}
	tag, ok := path.Tag()
	if !ok || tag != dicom.PatientNameTag {
		t.Fatalf("Tag() = (%v, %v), want (PatientNameTag, true)", tag, ok)
	}
}

func TestParseTagPathNestedWithItemIndex(t *testing.T) {
	path, err := ParseTagPath("0008,9215[1]/0008,0020")
	if err != nil {
		t.Fatalf("ParseTagPath error: %v", err)
	}
	if path.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", path.Depth())
	}
	tag, ok := path.Tag()
	if !ok || tag != dicom.StudyDateTag {
		t.Fatalf("Tag() = (%v, %v), want (StudyDateTag, true)", tag, ok)
	}
}

func TestParseTagPathEmptyIsError(t *testing.T) {
	if _, err := ParseTagPath(""); err == nil {
		t.Fatalf("ParseTagPath(\"\") error = nil, want an error")
	}
}

func TestParseTagPathMalformedStep(t *testing.T) {
	cases := []string{"0010", "0010,0010,0010", "zzzz,0010", "0010,zzzz", "0010,0010[abc]", "0010,0010[1"}
	for _, c := range cases {
		if _, err := ParseTagPath(c); err == nil {
			t.Fatalf("ParseTagPath(%q) error = nil, want an error", c)
		}
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if !cfg.Modify.InsertGuards {
		t.Fatalf("InsertGuards = false, want true (default)")
	}
	if cfg.Collect.MaxBufferSize != dicom.DefaultCollectMaxBufferSize {
		t.Fatalf("MaxBufferSize = %d, want %d", cfg.Collect.MaxBufferSize, dicom.DefaultCollectMaxBufferSize)
	}
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Collect.MaxBufferSize != dicom.DefaultCollectMaxBufferSize {
		t.Fatalf("MaxBufferSize = %d, want %d", cfg.Collect.MaxBufferSize, dicom.DefaultCollectMaxBufferSize)
	}
}

func TestDefaultConfigLogDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Log.File != "" {
		t.Fatalf("Log.File = %q, want empty (stderr default)", cfg.Log.File)
	}
	if cfg.Log.MaxSizeMB != 100 {
		t.Fatalf("Log.MaxSizeMB = %d, want 100", cfg.Log.MaxSizeMB)
	}
	if cfg.Log.MaxBackups != 3 {
		t.Fatalf("Log.MaxBackups = %d, want 3", cfg.Log.MaxBackups)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yamlContent := `
validate:
  drainIncoming: true
  contexts:
    - sopClassUID: "1.2.840.10008.5.1.4.1.1.7"
      transferSyntaxUID: "1.2.840.10008.1.2.1"
modify:
  insertGuards: false
  modifications:
    - path: "0008,0020"
      op: "replace"
      value: "19990101"
collect:
  label: "demographics"
  maxBufferSize: 2048
  tags:
    - "0010,0010"
log:
  file: "/var/log/dicomflow.log"
  maxSizeMB: 50
  maxBackups: 5
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if !cfg.Validate.DrainIncoming {
		t.Fatalf("DrainIncoming = false, want true")
	}
	if len(cfg.Validate.Contexts) != 1 {
		t.Fatalf("len(Contexts) = %d, want 1", len(cfg.Validate.Contexts))
	}
	if cfg.Modify.InsertGuards {
		t.Fatalf("InsertGuards = true, want false (overridden by YAML)")
	}
	if len(cfg.Modify.Modifications) != 1 {
		t.Fatalf("len(Modifications) = %d, want 1", len(cfg.Modify.Modifications))
	}
	if cfg.Collect.Label != "demographics" || cfg.Collect.MaxBufferSize != 2048 {
		t.Fatalf("Collect = %+v, want label demographics, maxBufferSize 2048", cfg.Collect)
	}
	if cfg.Log.File != "/var/log/dicomflow.log" || cfg.Log.MaxSizeMB != 50 || cfg.Log.MaxBackups != 5 {
		t.Fatalf("Log = %+v, want file /var/log/dicomflow.log, maxSizeMB 50, maxBackups 5", cfg.Log)
	}
}

func TestConfigModifyFlowConfigUnknownOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modify.Modifications = append(cfg.Modify.Modifications, struct {
		Path  string `yaml:"path"`
		Op    string `yaml:"op"`
		Value string `yaml:"value"`
	}{Path: "0010,0010", Op: "bogus", Value: "x"})

	if _, err := cfg.ModifyFlowConfig(); err == nil {
		t.Fatalf("ModifyFlowConfig with unknown op error = nil, want an error")
	}
}

func TestConfigModifyFlowConfigBuildsInsertAndReplace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modify.Modifications = []struct {
		Path  string `yaml:"path"`
		Op    string `yaml:"op"`
		Value string `yaml:"value"`
	}{
		{Path: "0010,0010", Op: "insert", Value: "Doe^John"},
		{Path: "0008,0020", Op: "replace", Value: "20240101"},
	}

	flowCfg, err := cfg.ModifyFlowConfig()
	if err != nil {
		t.Fatalf("ModifyFlowConfig error: %v", err)
	}
	if len(flowCfg.Modifications) != 2 {
		t.Fatalf("len(Modifications) = %d, want 2", len(flowCfg.Modifications))
	}
}

func TestConfigCollectFlowConfigDefaultsLabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collect.Tags = []string{"0010,0010"}

	flowCfg, err := cfg.CollectFlowConfig()
	if err != nil {
		t.Fatalf("CollectFlowConfig error: %v", err)
	}
	if flowCfg.Label != "collected" {
		t.Fatalf("Label = %q, want %q", flowCfg.Label, "collected")
	}
}

func TestConfigCollectFlowConfigInvalidTag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collect.Tags = []string{"not-a-tag"}

	if _, err := cfg.CollectFlowConfig(); err == nil {
		t.Fatalf("CollectFlowConfig with invalid tag error = nil, want an error")
	}
}

func TestConfigValidateFlowConfigConvertsContexts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validate.DrainIncoming = true
	cfg.Validate.Contexts = []struct {
		SOPClassUID       string `yaml:"sopClassUID"`
		TransferSyntaxUID string `yaml:"transferSyntaxUID"`
	}{{SOPClassUID: "1.2", TransferSyntaxUID: "1.2.840.10008.1.2.1"}}

	flowCfg := cfg.ValidateFlowConfig()
	if !flowCfg.DrainIncoming {
		t.Fatalf("DrainIncoming = false, want true")
	}
	if len(flowCfg.Contexts) != 1 || flowCfg.Contexts[0].SOPClassUID != "1.2" {
		t.Fatalf("Contexts = %v, want a single converted context", flowCfg.Contexts)
	}
}

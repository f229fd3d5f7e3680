package meticulous

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// metadataFile is the on-disk shape of metadata.json (spec.md §6), plus
// the two additive fields from SPEC_FULL.md §3.
type metadataFile struct {
	GitHeadSHA     string `json:"githead-sha"`
	GitHeadMessage string `json:"githead-message"`
	StartTime      string `json:"start-time"`
	EndTime        string `json:"end-time,omitempty"`
	Description    string `json:"description"`
	Command        string `json:"command"`
	InvocationUID  string `json:"invocation-uid,omitempty"`
	ArgsChecksum   string `json:"args-checksum,omitempty"`
}

func readMetadata(dir string) (metadataFile, error) {
	var m metadataFile
	b, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, err
	}
	return m, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

func readArgs(dir, filename string) (map[string]any, error) {
	b, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// canonicalize round-trips v through JSON so two maps built from different
// Go value kinds (e.g. int vs float64) compare equal whenever their JSON
// encodings would. Used to compare parsed args against args read back from
// disk (which are always float64 for numbers, per encoding/json).
func canonicalize(v map[string]any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

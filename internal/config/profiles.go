package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/mindlens/internal/adapters/llm"
)

type profilesFile struct {
	Profiles []llm.PromptProfile `yaml:"profiles"`
}

// LoadPromptProfiles returns the built-in profiles, overridden or extended
// by the ones in the YAML file at path. An empty path returns the built-ins.
func LoadPromptProfiles(path string) (map[string]llm.PromptProfile, error) {
	out := llm.DefaultProfiles()
	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt profiles: %w", err)
	}

	var f profilesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding prompt profiles %s: %w", path, err)
	}

	for _, p := range f.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("prompt profile without name in %s", path)
		}
		out[p.Name] = p
	}
	return out, nil
}

// ResolvePromptProfile resolves the configured profile.
func (c *Config) ResolvePromptProfile() (llm.PromptProfile, error) {
	profiles, err := LoadPromptProfiles(c.PromptProfilesPath)
	if err != nil {
		return llm.PromptProfile{}, err
	}
	p, ok := profiles[c.PromptProfile]
	if !ok {
		return llm.PromptProfile{}, fmt.Errorf("unknown prompt profile %q", c.PromptProfile)
	}
	return p, nil
}

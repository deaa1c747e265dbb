package match

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"accessmap/internal/domain"
)

//go:embed platform_profiles.yaml
var defaultProfileConfigYAML []byte

// ProfileConfig maps connection-profile protocols to the platform sets they
// restrict a policy to.
type ProfileConfig struct {
	Profiles map[string][]string `yaml:"profiles"`
}

var profileConfig *ProfileConfig

func init() {
	config, err := LoadProfileConfig("")
	if err != nil {
		panic("failed to load default platform profile config: " + err.Error())
	}
	profileConfig = config
}

// LoadProfileConfig loads the profile-to-platform mapping from YAML.
// If configPath is empty, uses the embedded default config.
func LoadProfileConfig(configPath string) (*ProfileConfig, error) {
	var data []byte
	var err error

	if configPath == "" {
		data = defaultProfileConfigYAML
	} else {
		data, err = os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	var config ProfileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SetProfileConfig replaces the active profile-to-platform mapping.
func SetProfileConfig(config *ProfileConfig) {
	if config != nil {
		profileConfig = config
	}
}

// DerivePlatforms computes a policy's allowed_platforms set from its
// connection profiles. A profile restricts the policy to its protocol's
// platforms only when it is the sole profile present; both present, or
// neither, yields an unrestricted (empty) set. A profile counts as present
// only if at least one of its sub-fields is non-null.
func DerivePlatforms(profiles domain.ConnectionProfiles) []string {
	present := make(map[string]bool)
	if profiles.SSH.Present() {
		present["ssh"] = true
	}
	if profiles.RDP.Present() {
		present["rdp"] = true
	}
	if len(present) != 1 {
		return nil
	}

	var platforms []string
	for protocol := range present {
		for _, platform := range profileConfig.Profiles[protocol] {
			platforms = append(platforms, strings.ToLower(platform))
		}
	}
	sort.Strings(platforms)
	return platforms
}

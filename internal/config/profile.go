package config

// Profile holds a named anonymization profile. Profiles let one config
// file cover distinct workflows: realistic aliases for documents leaving
// the firm, generic numbered labels for internal review.
type Profile struct {
	// ServiceURL overrides the classification service base URL.
	ServiceURL string `yaml:"serviceUrl,omitempty"`

	// AliasStyle overrides the replacement style ("generic" or
	// "realistic"). Empty keeps the global setting.
	AliasStyle string `yaml:"aliasStyle,omitempty"`

	// Jurisdictions overrides the dictionary scope.
	Jurisdictions []string `yaml:"jurisdictions,omitempty"`

	// DecoyRatio overrides the synthetic-to-real term ratio. A pointer
	// distinguishes "unset" from an explicit zero (no decoys).
	DecoyRatio *float64 `yaml:"decoyRatio,omitempty"`

	// MaxBatchSize overrides the outbound batch bound.
	MaxBatchSize *int `yaml:"maxBatchSize,omitempty"`
}

// File represents the structure of the .whiteout configuration file.
type File struct {
	// Profiles maps profile names to their settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`

	// Defaults contains settings applied before any named profile.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the named profile merged over the file defaults.
func (cf *File) GetProfile(name string) Profile {
	result := cf.Defaults

	if p, ok := cf.Profiles[name]; ok {
		if p.ServiceURL != "" {
			result.ServiceURL = p.ServiceURL
		}
		if p.AliasStyle != "" {
			result.AliasStyle = p.AliasStyle
		}
		if len(p.Jurisdictions) > 0 {
			result.Jurisdictions = p.Jurisdictions
		}
		if p.DecoyRatio != nil {
			result.DecoyRatio = p.DecoyRatio
		}
		if p.MaxBatchSize != nil {
			result.MaxBatchSize = p.MaxBatchSize
		}
	}

	return result
}

package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// CurrentProfileVersion is bumped on incompatible changes to the format.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the profile name in the home directory.
	DefaultProfileFileName = ".rsagcd_calibration.json"
)

// Profile is a saved calibration result together with the hardware it was
// measured on.
type Profile struct {
	NumCPU    int      `json:"num_cpu"`
	GOARCH    string   `json:"goarch"`
	GOOS      string   `json:"goos"`
	GoVersion string   `json:"go_version"`
	Features  []string `json:"features,omitempty"`

	Algorithm  string `json:"algorithm"`
	GroupWidth int    `json:"group_width"`
	Workers    int    `json:"workers"`

	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationTime string    `json:"calibration_time"`
	ProfileVersion  int       `json:"profile_version"`
}

// GetDefaultProfilePath returns the profile path in the user's home
// directory, or in the current directory when there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolvePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// NewProfile returns an empty profile for h.
func NewProfile(h Hardware) *Profile {
	return &Profile{
		NumCPU:         h.NumCPU,
		GOARCH:         h.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		Features:       h.Features(),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

// LoadProfile reads a profile from path, or from the default path when path
// is empty.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// SaveProfile writes p to path, or to the default path when path is empty.
func (p *Profile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(resolvePath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValidFor reports whether p was measured on hardware equivalent to h and
// holds usable values.
func (p *Profile) IsValidFor(h Hardware) bool {
	if p == nil || p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != h.NumCPU || p.GOARCH != h.GOARCH {
		return false
	}
	return p.GroupWidth > 0 && p.Workers > 0
}

// IsStale reports whether p is older than maxAge.
func (p *Profile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *Profile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("Profile{%s/%d cores, %s: width %d, workers %d, calibrated %s}",
		p.GOARCH, p.NumCPU, p.Algorithm, p.GroupWidth, p.Workers, p.CalibratedAt.Format(time.RFC3339))
}

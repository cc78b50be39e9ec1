package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds the signed-in user's details and the clubs they belong to.
type Profile struct {
	DisplayName string   `yaml:"display_name"`
	Email       string   `yaml:"email"`
	Clubs       []string `yaml:"clubs"`
}

// AddClub appends a single empty entry for the user to fill in.
func (p *Profile) AddClub() int {
	p.Clubs = append(p.Clubs, "")
	return len(p.Clubs) - 1
}

// SetClub names the club at index i.
func (p *Profile) SetClub(i int, name string) error {
	if i < 0 || i >= len(p.Clubs) {
		return fmt.Errorf("club index %d out of range [0,%d)", i, len(p.Clubs))
	}
	p.Clubs[i] = strings.TrimSpace(name)
	return nil
}

// RemoveClub deletes the club at index i.
func (p *Profile) RemoveClub(i int) error {
	if i < 0 || i >= len(p.Clubs) {
		return fmt.Errorf("club index %d out of range [0,%d)", i, len(p.Clubs))
	}
	p.Clubs = append(p.Clubs[:i], p.Clubs[i+1:]...)
	return nil
}

// Memberships returns the named clubs in order, skipping blank entries.
func (p *Profile) Memberships() []string {
	out := make([]string, 0, len(p.Clubs))
	for _, c := range p.Clubs {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Load reads a profile from a YAML file. A missing file yields an empty profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Profile{}, nil
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the profile to path, replacing it atomically.
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

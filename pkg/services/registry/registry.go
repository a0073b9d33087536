package registry

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// WarehouseProfile is one named database/sql target from the warehouse
// profiles file.
type WarehouseProfile struct {
	Name   string
	Driver string
	DSN    string
}

type ProfileRegistry interface {
	GetProfiles() ([]string, error)
	GetProfile(name string) (WarehouseProfile, error)
}

type profileRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse profiles: %w", err)
	}
	return &profileRegistry{cfg: cfg}, nil
}

func (pr *profileRegistry) GetProfiles() ([]string, error) {
	var profiles []string
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (pr *profileRegistry) GetProfile(name string) (WarehouseProfile, error) {
	section, err := pr.cfg.GetSection(name)
	if err != nil {
		return WarehouseProfile{}, fmt.Errorf("profile %s not found", name)
	}

	profile := WarehouseProfile{
		Name:   name,
		Driver: section.Key("driver").String(),
		DSN:    section.Key("dsn").String(),
	}
	if profile.Driver == "" || profile.DSN == "" {
		return WarehouseProfile{}, fmt.Errorf("profile %s is missing driver or dsn", name)
	}
	return profile, nil
}

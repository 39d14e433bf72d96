package probe

import (
	"context"
	"fmt"
)

// redistRecord is one native-redistributable installation record as read
// from the platform's software registry.
type redistRecord struct {
	// Installed reflects the record's installed flag
	Installed bool

	// Version is the recorded redistributable version, empty when the
	// record exists but carries no version field
	Version string
}

// recordReader reads the installation record at one registry location.
// It returns an error when the location does not exist.
type recordReader func(location string) (*redistRecord, error)

// RedistProbe verifies the Visual C++ runtime redistributable the ML
// framework's native wheels link against. The record is checked at a primary
// location and a WOW6432Node compatibility alias; either one passing is
// sufficient, since installers have historically written to both or only the
// alias depending on the redistributable generation.
type RedistProbe struct {
	read      recordReader
	locations []string
	required  bool
}

// NewRedistProbe creates the redistributable probe with the platform's
// default record reader and locations.
func NewRedistProbe() *RedistProbe {
	return &RedistProbe{
		read:      defaultRecordReader(),
		locations: defaultRecordLocations(),
		required:  redistRequired(),
	}
}

// Name implements Probe.
func (p *RedistProbe) Name() string { return "vc-redistributable" }

// Severity implements Probe. Missing native runtime libraries break the ML
// framework import outright, so this is always blocking where it applies.
func (p *RedistProbe) Severity() Severity { return Fatal }

// Check implements Probe. Pass if any record location reports an installed
// flag and a non-empty version.
func (p *RedistProbe) Check(ctx context.Context) (*Result, error) {
	if !p.required {
		return &Result{Present: true, Details: "not required on this platform"}, nil
	}

	for _, location := range p.locations {
		rec, err := p.read(location)
		if err != nil {
			// Record absent at this location, try the alias
			continue
		}
		if rec.Installed && rec.Version != "" {
			return &Result{
				Present: true,
				Details: fmt.Sprintf("version %s (%s)", rec.Version, location),
			}, nil
		}
	}

	return &Result{
		Present: false,
		Details: "no installation record found at any known location",
	}, nil
}

// Remediation implements Probe.
func (p *RedistProbe) Remediation() string {
	return `The Microsoft Visual C++ Redistributable (x64) is not installed.
The ML framework's native libraries cannot load without it.

  1. Download: https://aka.ms/vs/17/release/vc_redist.x64.exe
  2. Run the installer and accept the defaults
  3. Re-run this bootstrap`
}

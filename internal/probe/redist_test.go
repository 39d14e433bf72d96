package probe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	primaryLocation = `SOFTWARE\Microsoft\VisualStudio\14.0\VC\Runtimes\x64`
	aliasLocation   = `SOFTWARE\WOW6432Node\Microsoft\VisualStudio\14.0\VC\Runtimes\x64`
)

func newRedistProbeWithRecords(records map[string]*redistRecord) *RedistProbe {
	return &RedistProbe{
		read: func(location string) (*redistRecord, error) {
			rec, ok := records[location]
			if !ok {
				return nil, fmt.Errorf("key not found: %s", location)
			}
			return rec, nil
		},
		locations: []string{primaryLocation, aliasLocation},
		required:  true,
	}
}

func TestRedistProbePrimaryRecord(t *testing.T) {
	p := newRedistProbeWithRecords(map[string]*redistRecord{
		primaryLocation: {Installed: true, Version: "14.40.33810.0"},
	})

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Present)
	assert.Contains(t, result.Details, "14.40.33810.0")
}

func TestRedistProbeAliasRecordOnly(t *testing.T) {
	// Installers have written only the WOW6432Node alias on some systems;
	// the alias alone must pass.
	p := newRedistProbeWithRecords(map[string]*redistRecord{
		aliasLocation: {Installed: true, Version: "14.38.33135.0"},
	})

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Present)
	assert.Contains(t, result.Details, aliasLocation)
}

func TestRedistProbeNoRecords(t *testing.T) {
	p := newRedistProbeWithRecords(nil)

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Present)
}

func TestRedistProbeRecordWithoutVersion(t *testing.T) {
	// An installed flag with an empty version field does not pass.
	p := newRedistProbeWithRecords(map[string]*redistRecord{
		primaryLocation: {Installed: true, Version: ""},
	})

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Present)
}

func TestRedistProbeUninstalledRecord(t *testing.T) {
	p := newRedistProbeWithRecords(map[string]*redistRecord{
		primaryLocation: {Installed: false, Version: "14.40.33810.0"},
	})

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Present)
}

func TestRedistProbeNotRequiredPlatform(t *testing.T) {
	p := &RedistProbe{required: false}

	result, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Present)
	assert.Contains(t, result.Details, "not required")
}

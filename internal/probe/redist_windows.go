//go:build windows

package probe

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// Primary record location plus the WOW6432Node compatibility alias. Some
// redistributable generations only write the alias on 64-bit systems.
func defaultRecordLocations() []string {
	return []string{
		`SOFTWARE\Microsoft\VisualStudio\14.0\VC\Runtimes\x64`,
		`SOFTWARE\WOW6432Node\Microsoft\VisualStudio\14.0\VC\Runtimes\x64`,
	}
}

func redistRequired() bool { return true }

// defaultRecordReader reads redistributable records from HKEY_LOCAL_MACHINE.
func defaultRecordReader() recordReader {
	return func(location string) (*redistRecord, error) {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, location, registry.QUERY_VALUE)
		if err != nil {
			return nil, fmt.Errorf("opening registry key %s: %w", location, err)
		}
		defer key.Close()

		rec := &redistRecord{}

		installed, _, err := key.GetIntegerValue("Installed")
		if err == nil {
			rec.Installed = installed == 1
		}

		version, _, err := key.GetStringValue("Version")
		if err == nil {
			rec.Version = version
		}

		return rec, nil
	}
}

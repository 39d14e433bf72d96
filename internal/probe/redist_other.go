//go:build !windows

package probe

import "fmt"

// The Visual C++ redistributable is a Windows-only prerequisite; on other
// platforms the framework wheels bundle their native dependencies.
func defaultRecordLocations() []string { return nil }

func redistRequired() bool { return false }

func defaultRecordReader() recordReader {
	return func(location string) (*redistRecord, error) {
		return nil, fmt.Errorf("no installation records on this platform")
	}
}

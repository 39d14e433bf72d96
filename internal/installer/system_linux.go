//go:build linux

package installer

import "os/exec"

// systemPackages are the native libraries the ML stack loads at runtime but
// pip never installs: the vision pipeline's OpenCV build needs libGL and
// glib from the OS.
var systemPackages = []string{"libgl1", "libglib2.0-0", "ffmpeg"}

// SystemPlan builds the native-OS package-manager step for platforms that
// have one. Distributions without apt-get get no step; installing system
// libraries there is left to the operator.
func SystemPlan(environ []string) []Step {
	return systemPlan(exec.LookPath, environ)
}

func systemPlan(lookPath func(name string) (string, error), environ []string) []Step {
	if _, err := lookPath("apt-get"); err != nil {
		return nil
	}

	return []Step{
		{
			Desc: "install system libraries",
			Cmd: Command{
				Name: "apt-get",
				Args: append([]string{"install", "-y"}, systemPackages...),
				Env:  environ,
			},
		},
	}
}

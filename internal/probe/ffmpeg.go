package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/zm-ai/bootstrap/internal/execctx"
)

// FFmpegProbe verifies the media-transcoding binary the event exporter and
// frame pipeline shell out to. Resolution order: the execution context's
// search path first, then a set of well-known installation directories. A
// hit outside the search path still passes but carries a tip to add the
// directory to PATH so later invocations resolve without absolute paths.
type FFmpegProbe struct {
	lookPath   func(name string) (string, error)
	fileExists func(path string) bool
	extraDirs  []string
}

// NewFFmpegProbe creates the media binary probe. Lookups resolve against
// execCtx's search path, the same one the later install and launch commands
// inherit, so a pass here means those commands resolve the binary too.
func NewFFmpegProbe(execCtx *execctx.ExecutionContext) *FFmpegProbe {
	return &FFmpegProbe{
		lookPath: execCtx.LookPath,
		fileExists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		},
		extraDirs: wellKnownFFmpegDirs(),
	}
}

// Name implements Probe.
func (p *FFmpegProbe) Name() string { return "ffmpeg" }

// Severity implements Probe. Media operations are a hard dependency of the
// service being bootstrapped.
func (p *FFmpegProbe) Severity() Severity { return Fatal }

// Check implements Probe.
func (p *FFmpegProbe) Check(ctx context.Context) (*Result, error) {
	if path, err := p.lookPath("ffmpeg"); err == nil {
		return &Result{Present: true, Details: path}, nil
	}

	binary := "ffmpeg"
	if runtime.GOOS == "windows" {
		binary = "ffmpeg.exe"
	}

	for _, dir := range p.extraDirs {
		candidate := filepath.Join(dir, binary)
		if p.fileExists(candidate) {
			return &Result{
				Present: true,
				Details: candidate,
				Tip:     fmt.Sprintf("ffmpeg found at %s but not on PATH; add %s to your PATH", candidate, dir),
			}, nil
		}
	}

	return &Result{
		Present: false,
		Details: "ffmpeg not found on PATH or in any well-known install directory",
	}, nil
}

// Remediation implements Probe.
func (p *FFmpegProbe) Remediation() string {
	return `ffmpeg is not installed or not reachable.

  Windows: download a release build from https://www.gyan.dev/ffmpeg/builds/
           extract it, and add the bin\ directory to your PATH
  Linux:   sudo apt install ffmpeg   (or your distribution's equivalent)
  macOS:   brew install ffmpeg

  Project page: https://ffmpeg.org/download.html`
}

// wellKnownFFmpegDirs lists installation directories commonly used when
// ffmpeg is unpacked manually rather than installed via a package manager.
func wellKnownFFmpegDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Tools\ffmpeg\bin`,
		}
	}
	return []string{
		"/usr/bin",
		"/usr/local/bin",
		"/opt/homebrew/bin",
	}
}

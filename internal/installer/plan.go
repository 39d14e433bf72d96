package installer

import (
	"github.com/zm-ai/bootstrap/internal/config"
)

// Plan builds the ordered installation steps for the isolated environment's
// interpreter. The steps are fixed: upgrade the package manager itself,
// install the declared base manifest, install the accelerator-matched ML
// framework triad from its dedicated index, and finally the detection-model
// library at its latest version.
//
// python must be the isolated environment's interpreter so the installs land
// inside the environment. environ is applied to every step.
func Plan(python string, cfg *config.Config, environ []string) []Step {
	return []Step{
		{
			Desc: "upgrade pip",
			Cmd: Command{
				Name: python,
				Args: []string{"-m", "pip", "install", "--upgrade", "pip"},
				Env:  environ,
			},
		},
		{
			Desc: "install base requirements",
			Cmd: Command{
				Name: python,
				Args: []string{"-m", "pip", "install", "-r", cfg.RequirementsFile},
				Env:  environ,
			},
		},
		{
			Desc: "install ML framework (CUDA build)",
			Cmd: Command{
				Name: python,
				Args: []string{
					"-m", "pip", "install",
					"torch==" + cfg.Pins.Torch,
					"torchvision==" + cfg.Pins.Vision,
					"torchaudio==" + cfg.Pins.Audio,
					"--index-url", cfg.Pins.IndexURL,
				},
				Env: environ,
			},
		},
		{
			Desc: "install detection model library",
			Cmd: Command{
				Name: python,
				Args: []string{"-m", "pip", "install", cfg.ModelPackage},
				Env:  environ,
			},
		},
	}
}

package espeak

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Status describes whether the espeak binary can be used on this system.
type Status struct {
	Name         string
	Installed    bool
	Path         string
	Version      string
	Error        error
	Instructions string
}

// Check resolves binary the way New does and asks it for its version.
func Check(ctx context.Context, binary string) Status {
	name := binary
	if name == "" {
		name = defaultBinaries[0]
	}
	status := Status{Name: name}

	path, err := LookPath(binary)
	if err != nil {
		status.Error = err
		status.Instructions = InstallInstructions(runtime.GOOS, detectLinuxDistro())
		return status
	}
	status.Installed = true
	status.Path = path

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		status.Error = err
		return status
	}
	status.Version = parseVersion(out)
	return status
}

// parseVersion picks the version number out of "eSpeak NG text-to-speech:
// 1.51  Data at: ...".
func parseVersion(out []byte) string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return line
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// InstallInstructions returns a hint for installing espeak-ng on goos.
func InstallInstructions(goos, distro string) string {
	switch goos {
	case "darwin":
		return "Install with: brew install espeak-ng"
	case "linux":
		switch distro {
		case "debian", "ubuntu":
			return "Install with: sudo apt-get install espeak-ng"
		case "fedora", "rhel":
			return "Install with: sudo dnf install espeak-ng"
		case "arch":
			return "Install with: sudo pacman -S espeak-ng"
		}
		return "Install espeak-ng with your package manager"
	case "windows":
		return "Download the installer from https://github.com/espeak-ng/espeak-ng/releases and add it to PATH"
	default:
		return "Install espeak-ng from https://github.com/espeak-ng/espeak-ng"
	}
}

func detectLinuxDistro() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	content := strings.ToLower(string(data))
	for _, d := range []string{"ubuntu", "debian", "fedora", "arch"} {
		if strings.Contains(content, d) {
			return d
		}
	}
	if strings.Contains(content, "rhel") || strings.Contains(content, "centos") {
		return "rhel"
	}
	return "unknown"
}

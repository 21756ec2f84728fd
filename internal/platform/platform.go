// Package platform resolves the operating-system family and the human
// readable platform label that tailors generated commands to a shell dialect.
package platform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/TonnyWong1052/shellgen/internal/config"
	"github.com/TonnyWong1052/shellgen/internal/logging"
)

// Family is the closed set of OS families the program distinguishes.
type Family string

const (
	Darwin  Family = "darwin"
	Windows Family = "windows"
	Linux   Family = "linux"
	Other   Family = "other"
)

// Info is the resolved platform description.
type Info struct {
	Family Family
	GOOS   string
	Label  string
	Shell  string
}

// Detector derives Info from the running system. Every hook may be replaced
// in tests; zero values fall back to the real system.
type Detector struct {
	GOOS     string
	GOARCH   string
	ReadFile func(name string) ([]byte, error)
	Run      func(ctx context.Context, name string, args ...string) ([]byte, error)
	Getenv   func(key string) string
}

// NewDetector returns a Detector bound to the real system.
func NewDetector() *Detector {
	return &Detector{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		ReadFile: os.ReadFile,
		Run:      runCommand,
		Getenv:   os.Getenv,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// FamilyOf maps a GOOS value onto a Family.
func FamilyOf(goos string) Family {
	switch goos {
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	case "linux":
		return Linux
	default:
		return Other
	}
}

// Resolve applies the configured policy once. Overrides from cfg win over
// both the fixed literals and the detected values.
func (d *Detector) Resolve(ctx context.Context, cfg *config.Config) Info {
	info := Info{Family: FamilyOf(d.GOOS), GOOS: d.GOOS}

	if cfg.Policy == config.PolicyFixed {
		info.Label = config.FixedPlatformLabel
		info.Shell = config.FixedShell
	} else {
		info.Label = d.Label(ctx)
		info.Shell = d.Shell()
	}

	if cfg.PlatformLabel != "" {
		info.Label = cfg.PlatformLabel
	}
	if cfg.Shell != "" {
		info.Shell = cfg.Shell
	}

	logging.WithComponent("platform").WithFields(map[string]interface{}{
		"policy": cfg.Policy,
		"family": info.Family,
		"label":  info.Label,
		"shell":  info.Shell,
	}).Debug("platform resolved")
	return info
}

// Label reports the OS family and a version string, e.g.
// "Darwin/macOS14.2", "Windows 11" or "Linux/Ubuntu22.04". Unrecognised
// families and failed probes yield the generic "<goos>/<goarch>" form.
func (d *Detector) Label(ctx context.Context) string {
	var label string
	switch FamilyOf(d.GOOS) {
	case Darwin:
		label = d.darwinLabel(ctx)
	case Linux:
		label = d.linuxLabel()
	case Windows:
		label = d.windowsLabel(ctx)
	}
	if label == "" {
		return d.genericLabel()
	}
	return label
}

func (d *Detector) genericLabel() string {
	return fmt.Sprintf("%s/%s", d.GOOS, d.GOARCH)
}

func (d *Detector) darwinLabel(ctx context.Context) string {
	out, err := d.Run(ctx, "sw_vers", "-productVersion")
	if err != nil {
		return ""
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return ""
	}
	return "Darwin/macOS" + version
}

var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

func (d *Detector) linuxLabel() string {
	for _, path := range osReleasePaths {
		data, err := d.ReadFile(path)
		if err != nil {
			continue
		}
		env := gotenv.Parse(bytes.NewReader(data))
		name := strings.Fields(env["NAME"])
		if len(name) == 0 {
			continue
		}
		return "Linux/" + name[0] + env["VERSION_ID"]
	}
	return ""
}

var windowsBuildRe = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

func (d *Detector) windowsLabel(ctx context.Context) string {
	out, err := d.Run(ctx, "cmd", "/c", "ver")
	if err != nil {
		return "Windows"
	}
	m := windowsBuildRe.FindStringSubmatch(string(out))
	if m == nil {
		return "Windows"
	}
	build, err := strconv.Atoi(m[3])
	if err != nil {
		return "Windows"
	}
	// Windows 11 kept the 10.0 kernel version; only the build tells them apart.
	if m[1] == "10" && build >= 22000 {
		return "Windows 11"
	}
	return "Windows " + m[1]
}

// Shell returns the user's interactive shell name from $SHELL.
func (d *Detector) Shell() string {
	if shell := d.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	if FamilyOf(d.GOOS) == Windows {
		return "powershell"
	}
	return "sh"
}

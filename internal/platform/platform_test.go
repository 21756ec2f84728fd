package platform

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/TonnyWong1052/shellgen/internal/config"
)

func fakeDetector(goos string, files map[string]string, outputs map[string]string) *Detector {
	return &Detector{
		GOOS:   goos,
		GOARCH: "amd64",
		ReadFile: func(name string) ([]byte, error) {
			if data, ok := files[name]; ok {
				return []byte(data), nil
			}
			return nil, os.ErrNotExist
		},
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if out, ok := outputs[name]; ok {
				return []byte(out), nil
			}
			return nil, errors.New("executable file not found")
		},
		Getenv: func(string) string { return "" },
	}
}

func TestLabel(t *testing.T) {
	testCases := []struct {
		name     string
		detector *Detector
		expected string
	}{
		{
			name:     "macOS",
			detector: fakeDetector("darwin", nil, map[string]string{"sw_vers": "14.2\n"}),
			expected: "Darwin/macOS14.2",
		},
		{
			name:     "macOS without sw_vers",
			detector: fakeDetector("darwin", nil, nil),
			expected: "darwin/amd64",
		},
		{
			name: "Ubuntu",
			detector: fakeDetector("linux", map[string]string{
				"/etc/os-release": "NAME=\"Ubuntu\"\nVERSION_ID=\"22.04\"\nID=ubuntu\n",
			}, nil),
			expected: "Linux/Ubuntu22.04",
		},
		{
			name: "Debian from usr lib",
			detector: fakeDetector("linux", map[string]string{
				"/usr/lib/os-release": "PRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\nNAME=\"Debian GNU/Linux\"\nVERSION_ID=\"12\"\n",
			}, nil),
			expected: "Linux/Debian12",
		},
		{
			name:     "Linux without os-release",
			detector: fakeDetector("linux", nil, nil),
			expected: "linux/amd64",
		},
		{
			name:     "Windows 11",
			detector: fakeDetector("windows", nil, map[string]string{"cmd": "\r\nMicrosoft Windows [Version 10.0.22631.3007]\r\n"}),
			expected: "Windows 11",
		},
		{
			name:     "Windows 10",
			detector: fakeDetector("windows", nil, map[string]string{"cmd": "Microsoft Windows [Version 10.0.19045.3803]"}),
			expected: "Windows 10",
		},
		{
			name:     "Windows unknown",
			detector: fakeDetector("windows", nil, nil),
			expected: "Windows",
		},
		{
			name:     "unrecognised family",
			detector: fakeDetector("freebsd", nil, nil),
			expected: "freebsd/amd64",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.detector.Label(context.Background()); got != tc.expected {
				t.Errorf("Expected: %s, Got: %s", tc.expected, got)
			}
		})
	}
}

func TestFamilyOf(t *testing.T) {
	testCases := map[string]Family{
		"darwin":  Darwin,
		"windows": Windows,
		"linux":   Linux,
		"plan9":   Other,
	}
	for goos, expected := range testCases {
		if got := FamilyOf(goos); got != expected {
			t.Errorf("FamilyOf(%s): expected %s, got %s", goos, expected, got)
		}
	}
}

func TestShell(t *testing.T) {
	d := fakeDetector("linux", nil, nil)
	d.Getenv = func(key string) string {
		if key == "SHELL" {
			return "/usr/bin/fish"
		}
		return ""
	}
	if got := d.Shell(); got != "fish" {
		t.Errorf("Expected fish, got %s", got)
	}

	if got := fakeDetector("windows", nil, nil).Shell(); got != "powershell" {
		t.Errorf("Expected powershell fallback on Windows, got %s", got)
	}
	if got := fakeDetector("linux", nil, nil).Shell(); got != "sh" {
		t.Errorf("Expected sh fallback, got %s", got)
	}
}

func TestResolvePolicies(t *testing.T) {
	d := fakeDetector("linux", map[string]string{
		"/etc/os-release": "NAME=Fedora\nVERSION_ID=40\n",
	}, nil)
	d.Getenv = func(key string) string {
		if key == "SHELL" {
			return "/bin/bash"
		}
		return ""
	}

	testCases := []struct {
		name          string
		cfg           config.Config
		expectedLabel string
		expectedShell string
	}{
		{
			name:          "detect",
			cfg:           config.Config{Policy: config.PolicyDetect},
			expectedLabel: "Linux/Fedora40",
			expectedShell: "bash",
		},
		{
			name:          "fixed",
			cfg:           config.Config{Policy: config.PolicyFixed},
			expectedLabel: config.FixedPlatformLabel,
			expectedShell: config.FixedShell,
		},
		{
			name:          "overrides",
			cfg:           config.Config{Policy: config.PolicyFixed, PlatformLabel: "Alpine 3.19", Shell: "ash"},
			expectedLabel: "Alpine 3.19",
			expectedShell: "ash",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := d.Resolve(context.Background(), &tc.cfg)
			if info.Family != Linux {
				t.Errorf("Expected family linux, got %s", info.Family)
			}
			if info.Label != tc.expectedLabel {
				t.Errorf("Expected label %s, got %s", tc.expectedLabel, info.Label)
			}
			if info.Shell != tc.expectedShell {
				t.Errorf("Expected shell %s, got %s", tc.expectedShell, info.Shell)
			}
		})
	}
}

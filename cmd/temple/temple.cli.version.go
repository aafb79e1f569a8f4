package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"gopkg.in/yaml.v3"
)

// Build settings read from the module build info
const (
	buildSettingRevision = "vcs.revision"
	buildSettingTime     = "vcs.time"
	buildVersionDevel    = "(devel)"
)

// versionsFileCandidates are searched in order for a versions.yaml
var versionsFileCandidates = []string{"versions.yaml", "../versions.yaml", "../../versions.yaml"}

// versionInfo holds version information, also used as JSON output
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// versionsYAML represents the versions.yaml file structure
type versionsYAML struct {
	Project struct {
		Version string `yaml:"version"`
	} `yaml:"project"`
	Git struct {
		Commit string `yaml:"commit"`
		Branch string `yaml:"branch"`
	} `yaml:"git"`
	Build struct {
		Time      string `yaml:"time"`
		GoVersion string `yaml:"go_version"`
	} `yaml:"build"`
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	format, err := parseVersionFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	v := getVersionInfo()
	if format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}

	fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline,
		v.Version, v.Commit, v.Branch, v.BuildTime, v.GoVersion)
	return ExitCodeSuccess
}

func parseVersionFlags(args []string) (string, error) {
	fs := flag.NewFlagSet(CmdNameVersion, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var format string
	fs.StringVar(&format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if format != OutputFormatText && format != OutputFormatJSON {
		return "", errors.New(ErrMsgInvalidFormat)
	}
	return format, nil
}

// getVersionInfo prefers a versions.yaml next to the binary's working
// directory and falls back to the embedded build info
func getVersionInfo() *versionInfo {
	v := &versionInfo{
		Version:   VersionUnknown,
		Commit:    VersionUnknown,
		Branch:    VersionUnknown,
		BuildTime: VersionUnknown,
		GoVersion: runtime.Version(),
	}

	for _, path := range versionsFileCandidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var vy versionsYAML
		if err := yaml.Unmarshal(data, &vy); err != nil {
			continue
		}

		v.Version = vy.Project.Version
		v.Commit = vy.Git.Commit
		v.Branch = vy.Git.Branch
		if vy.Build.Time != "" {
			v.BuildTime = vy.Build.Time
		}
		if vy.Build.GoVersion != "" {
			v.GoVersion = vy.Build.GoVersion
		}
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Version != "" && info.Main.Version != buildVersionDevel {
		v.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case buildSettingRevision:
			v.Commit = setting.Value
		case buildSettingTime:
			v.BuildTime = setting.Value
		}
	}
	return v
}

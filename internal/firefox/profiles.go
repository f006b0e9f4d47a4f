package firefox

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lotas/tabsalvage/internal/types"
)

// sessionFiles are the session store locations inside a profile, most
// recent first.
var sessionFiles = []struct {
	rel   string
	label string
}{
	{filepath.Join("sessionstore-backups", "recovery.jsonlz4"), "current session"},
	{filepath.Join("sessionstore-backups", "recovery.baklz4"), "current session backup"},
	{"sessionstore.jsonlz4", "session at last shutdown"},
	{filepath.Join("sessionstore-backups", "previous.jsonlz4"), "previous session"},
}

// firefoxDirs lists the profile root candidates for this platform, the
// standard location first.
func firefoxDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	switch runtime.GOOS {
	case "linux":
		return []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
			filepath.Join(home, ".var", "app", "org.mozilla.firefox", ".mozilla", "firefox"),
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "Firefox")}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return []string{filepath.Join(appData, "Mozilla", "Firefox")}
		}
	}
	return nil
}

// FindFirefoxDir returns the first profile root that has a profiles.ini,
// or the standard location when none does.
func FindFirefoxDir() string {
	dirs := firefoxDirs()
	for _, d := range dirs {
		if _, err := os.Stat(filepath.Join(d, "profiles.ini")); err == nil {
			return d
		}
	}
	if len(dirs) == 0 {
		return ""
	}
	return dirs[0]
}

type iniSection struct {
	name   string
	values map[string]string
}

func readINI(path string) ([]iniSection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles.ini: %w", err)
	}
	defer f.Close()

	var sections []iniSection
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			sections = append(sections, iniSection{name: line[1 : len(line)-1], values: map[string]string{}})
		case len(sections) > 0:
			if key, value, ok := strings.Cut(line, "="); ok {
				sections[len(sections)-1].values[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles.ini: %w", err)
	}
	return sections, nil
}

// ParseProfilesINI reads profiles.ini and returns the profiles that have at
// least one session file. An [Install*] section naming a default profile
// path takes precedence over the per-profile Default flag.
func ParseProfilesINI(iniPath, firefoxDir string) ([]types.Profile, error) {
	sections, err := readINI(iniPath)
	if err != nil {
		return nil, err
	}

	installDefault := ""
	for _, sec := range sections {
		if strings.HasPrefix(sec.name, "Install") && sec.values["Default"] != "" {
			installDefault = sec.values["Default"]
			break
		}
	}

	var usable []types.Profile
	for _, sec := range sections {
		if !strings.HasPrefix(sec.name, "Profile") {
			continue
		}
		rel := sec.values["Path"]
		p := types.Profile{
			Name:       sec.values["Name"],
			Path:       rel,
			IsRelative: sec.values["IsRelative"] == "1",
		}
		if installDefault != "" {
			p.IsDefault = rel == installDefault
		} else {
			p.IsDefault = sec.values["Default"] == "1"
		}
		if p.IsRelative {
			p.Path = filepath.Join(firefoxDir, filepath.FromSlash(rel))
		}
		if len(SessionCandidates(p)) > 0 {
			usable = append(usable, p)
		}
	}
	return usable, nil
}

// DiscoverProfiles finds and parses Firefox profiles on this system.
func DiscoverProfiles() ([]types.Profile, error) {
	dir := FindFirefoxDir()
	if dir == "" {
		return nil, fmt.Errorf("could not find Firefox directory for %s", runtime.GOOS)
	}
	return ParseProfilesINI(filepath.Join(dir, "profiles.ini"), dir)
}

// SessionCandidates lists the existing session files of a profile.
func SessionCandidates(p types.Profile) []types.SessionCandidate {
	var out []types.SessionCandidate
	for _, sf := range sessionFiles {
		path := filepath.Join(p.Path, sf.rel)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, types.SessionCandidate{
			DisplayName: fmt.Sprintf("%s: %s", p.Name, sf.label),
			Path:        path,
			ModTime:     info.ModTime(),
		})
	}
	return out
}

// FindProfile returns the named profile, or the default one when name is
// empty (falling back to the first profile).
func FindProfile(profiles []types.Profile, name string) (types.Profile, error) {
	if len(profiles) == 0 {
		return types.Profile{}, fmt.Errorf("no Firefox profiles found")
	}
	if name != "" {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
		return types.Profile{}, fmt.Errorf("profile %q not found", name)
	}
	for _, p := range profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	return profiles[0], nil
}

// Package profile loads named classification profiles. A profile
// picks the predicate to count (const or async) and the path prefixes
// to exclude from the tally.
//
// Profiles live as files in the profiles directory, one per file, in
// TOML, YAML, or JSON keyed by extension. The two builtin profiles
// (const, async) carry the standard library exclusion lists and are
// used when no file shadows them.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	btoml "github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	ptoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"rustdex/internal/classify"
	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
)

const (
	PredicateConst = "const"
	PredicateAsync = "async"
)

// Profile names a predicate and its exclusion prefixes.
type Profile struct {
	Name         string   `toml:"name" yaml:"name" json:"name" mapstructure:"name"`
	Description  string   `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Predicate    string   `toml:"predicate" yaml:"predicate" json:"predicate" mapstructure:"predicate"`
	ExcludePaths []string `toml:"exclude_paths" yaml:"exclude_paths" json:"excludePaths" mapstructure:"exclude_paths"`
}

// Builtin returns the named builtin profile, if one exists.
func Builtin(name string) (*Profile, bool) {
	switch name {
	case PredicateConst:
		return &Profile{
			Name:         PredicateConst,
			Description:  "const fn coverage of the stable API surface",
			Predicate:    PredicateConst,
			ExcludePaths: append([]string(nil), classify.ConstExcludePaths...),
		}, true
	case PredicateAsync:
		return &Profile{
			Name:         PredicateAsync,
			Description:  "async fn coverage of the stable API surface",
			Predicate:    PredicateAsync,
			ExcludePaths: append([]string(nil), classify.AsyncExcludePaths...),
		}, true
	}
	return nil, false
}

// Load reads a profile file, dispatching on its extension.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
			fmt.Sprintf("cannot read profile %s", path), err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := btoml.Decode(string(data), &p)
		if err != nil {
			return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
				fmt.Sprintf("invalid TOML in %s", path), err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
				fmt.Sprintf("unknown key %q in %s", keys[0].String(), path), nil)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
				fmt.Sprintf("invalid YAML in %s", path), err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
				fmt.Sprintf("invalid JSON in %s", path), err)
		}
	default:
		return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
			fmt.Sprintf("unsupported profile format %q", ext), nil)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Find resolves a profile by name: a file in dir shadows the builtin
// of the same name.
func Find(dir, name string) (*Profile, error) {
	for _, ext := range []string{".toml", ".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	if p, ok := Builtin(name); ok {
		return p, nil
	}
	return nil, rdxerrors.New(rdxerrors.ProfileInvalid,
		fmt.Sprintf("no profile named %q in %s", name, dir), nil)
}

// Validate checks that the profile can drive a counting run.
func (p *Profile) Validate() error {
	switch p.Predicate {
	case PredicateConst, PredicateAsync:
		return nil
	case "":
		return rdxerrors.New(rdxerrors.ProfileInvalid,
			fmt.Sprintf("profile %q has no predicate (use %q or %q)", p.Name, PredicateConst, PredicateAsync), nil)
	default:
		return rdxerrors.New(rdxerrors.ProfileInvalid,
			fmt.Sprintf("profile %q has unknown predicate %q", p.Name, p.Predicate), nil)
	}
}

// PredicateFunc returns the classifier predicate the profile names.
// Call Validate first; an unknown predicate matches nothing.
func (p *Profile) PredicateFunc() classify.Predicate {
	switch p.Predicate {
	case PredicateConst:
		return classify.IsConst
	case PredicateAsync:
		return classify.IsAsync
	}
	return func(flatten.Record) bool { return false }
}

// Count runs the profile over a record set.
func (p *Profile) Count(items []flatten.Record) classify.CountResult {
	return classify.Count(items, p.PredicateFunc(), p.ExcludePaths)
}

// WriteDefaults scaffolds the builtin profiles as TOML files in dir,
// skipping any that already exist. It returns the paths it wrote.
func WriteDefaults(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profiles dir: %w", err)
	}

	var written []string
	for _, name := range []string{PredicateConst, PredicateAsync} {
		p, _ := Builtin(name)
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := ptoml.Marshal(p)
		if err != nil {
			return written, fmt.Errorf("encoding profile %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("writing profile %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

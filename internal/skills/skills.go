package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"capa/internal/fileutil"
	"capa/internal/paths"
)

const (
	skillsDirName = "skills"
	skillFileName = "SKILL.md"
	delimiter     = "---"
)

// ErrMissingFrontmatter indicates a skill file has no frontmatter block.
var ErrMissingFrontmatter = errors.New("skill file missing frontmatter")

// ErrSkillNotFound indicates no skill directory exists for the name.
var ErrSkillNotFound = errors.New("skill not found")

// Frontmatter is the structured header of a skill file.
type Frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version,omitempty"`
}

// Skill is a parsed skill definition: frontmatter plus markdown body.
type Skill struct {
	Frontmatter
	Body string
}

// Dir returns the root directory holding skill definitions.
func Dir() (string, error) {
	dir, err := paths.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, skillsDirName), nil
}

// Path returns the definition file location for a skill name. Names are
// single directory components; anything that could escape the skills
// directory is rejected.
func Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name, skillFileName), nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("skill name is required")
	}
	if name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid skill name %q: must be a single path component", name)
	}
	return nil
}

// Parse splits raw file content into frontmatter and body.
func Parse(raw []byte) (*Skill, error) {
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(content, delimiter+"\n") {
		return nil, ErrMissingFrontmatter
	}
	rest := content[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated block", ErrMissingFrontmatter)
	}
	header := rest[:end]
	body := rest[end+len(delimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("parse skill frontmatter: %w", err)
	}
	if strings.TrimSpace(fm.Name) == "" {
		return nil, errors.New("skill frontmatter requires a name")
	}
	return &Skill{Frontmatter: fm, Body: body}, nil
}

// Format renders the skill back into file form with a frontmatter block.
func (s *Skill) Format() ([]byte, error) {
	header, err := yaml.Marshal(s.Frontmatter)
	if err != nil {
		return nil, fmt.Errorf("encode skill frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.Write(header)
	b.WriteString(delimiter + "\n\n")
	b.WriteString(strings.TrimLeft(s.Body, "\n"))
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// Load reads and parses the named skill.
func Load(name string) (*Skill, error) {
	path, err := Path(name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, name)
		}
		return nil, fmt.Errorf("read skill %q: %w", name, err)
	}
	return Parse(raw)
}

// Write persists the skill under its frontmatter name, creating the
// skill directory as needed.
func Write(s *Skill) error {
	if s == nil || strings.TrimSpace(s.Name) == "" {
		return errors.New("skill requires a name")
	}
	path, err := Path(s.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create skill directory: %w", err)
	}
	data, err := s.Format()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write skill %q: %w", s.Name, err)
	}
	return nil
}

// List returns every parseable skill in the skills directory, sorted by
// directory order. A missing skills directory yields an empty list.
func List() ([]*Skill, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read skills directory: %w", err)
	}

	var result []*Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skill, loadErr := Load(entry.Name())
		if loadErr != nil {
			if errors.Is(loadErr, ErrSkillNotFound) {
				continue
			}
			return nil, fmt.Errorf("skill %q: %w", entry.Name(), loadErr)
		}
		result = append(result, skill)
	}
	return result, nil
}

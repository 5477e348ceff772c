package skills

import (
	"bytes"
	"fmt"
	"text/template"
)

const scaffoldBody = `# {{.Name}}

{{.Description}}

## Usage

Describe when and how this skill should be invoked.
`

var scaffoldTemplate = template.Must(template.New("skill").Parse(scaffoldBody))

// Scaffold creates and persists a new skill with a starter body. It
// refuses to overwrite an existing skill of the same name.
func Scaffold(name, description string) (*Skill, error) {
	if _, err := Load(name); err == nil {
		return nil, fmt.Errorf("skill %q already exists", name)
	}

	skill := &Skill{
		Frontmatter: Frontmatter{
			Name:        name,
			Description: description,
			Version:     "0.1.0",
		},
	}
	var body bytes.Buffer
	if err := scaffoldTemplate.Execute(&body, skill.Frontmatter); err != nil {
		return nil, fmt.Errorf("render skill template: %w", err)
	}
	skill.Body = body.String()

	if err := Write(skill); err != nil {
		return nil, err
	}
	return skill, nil
}

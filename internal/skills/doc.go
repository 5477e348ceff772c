// Package skills reads and writes skill-definition files kept under the
// state directory. Each skill lives at skills/<name>/SKILL.md: a YAML
// frontmatter block delimited by "---" lines followed by a markdown body.
package skills

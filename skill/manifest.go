package skill

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter is the recognized YAML key set inside SKILL.md (spec §6).
type frontmatter struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Category    string               `yaml:"category"`
	Version     string               `yaml:"version"`
	Parameters  map[string]ParamSpec `yaml:"parameters"`
	Returns     map[string]any       `yaml:"returns"`
	Examples    []Example            `yaml:"examples"`
	Tags        []string             `yaml:"tags"`
}

// ParseSkillMD splits a SKILL.md file into its YAML front-matter and
// markdown body (spec §6: `---\n` ... `---\n` ... body).
func ParseSkillMD(path string) (frontmatter, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return frontmatter{}, "", fmt.Errorf("skill: read %s: %w", path, err)
	}

	content := string(raw)
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return frontmatter{}, "", fmt.Errorf("skill: %s missing opening --- delimiter", path)
	}

	rest := content[strings.Index(content, "\n")+1:]
	closeIdx := strings.Index(rest, "\n---")
	if closeIdx == -1 {
		return frontmatter{}, "", fmt.Errorf("skill: %s missing closing --- delimiter", path)
	}

	yamlBlock := rest[:closeIdx]
	body := strings.TrimLeft(rest[closeIdx+len("\n---"):], "\r\n")

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return frontmatter{}, "", fmt.Errorf("skill: %s front-matter invalid: %w", path, err)
	}

	if fm.Name == "" {
		return frontmatter{}, "", fmt.Errorf("skill: %s front-matter missing required 'name'", path)
	}
	if fm.Description == "" {
		return frontmatter{}, "", fmt.Errorf("skill: %s front-matter missing required 'description'", path)
	}

	return fm, body, nil
}

func (fm frontmatter) toSkill(agent string, isCore bool, promptInstructions string) *Skill {
	category := fm.Category
	if category == "" {
		category = "general"
	}
	version := fm.Version
	if version == "" {
		version = "1.0.0"
	}
	return &Skill{
		Name:               fm.Name,
		Description:        fm.Description,
		Category:           category,
		Version:            version,
		Parameters:         fm.Parameters,
		Returns:            fm.Returns,
		Examples:           fm.Examples,
		Tags:               fm.Tags,
		Agent:              agent,
		IsCore:             isCore,
		PromptInstructions: promptInstructions,
	}
}

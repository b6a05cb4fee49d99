package dataset

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

type templateFile struct {
	Rules     map[string]ruleRecord `yaml:"rules"`
	Templates []templateRecord      `yaml:"templates" validate:"min=1,dive"`
}

type ruleRecord struct {
	Kind string   `yaml:"kind" validate:"required,oneof=requires-tag forbids-tags warn-if-missing-base-tag"`
	Tags []string `yaml:"tags" validate:"min=1,dive,required"`
}

type templateRecord struct {
	Name         string     `yaml:"name" validate:"required"`
	Category     string     `yaml:"category" validate:"required"`
	UnlockPoints int        `yaml:"unlock_points" validate:"oneof=0 5 15"`
	Rule         ruleRecord `yaml:"rule"`
	Sections     []string   `yaml:"sections" validate:"min=1,dive,required"`
}

// DefaultTemplates returns the embedded template catalog.
func DefaultTemplates() ([]catalog.Template, error) {
	return ParseTemplates(defaultTemplatesYAML)
}

// ParseTemplates decodes a YAML template catalog.
func ParseTemplates(data []byte) ([]catalog.Template, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("%w: templates: %s", ErrInvalidDataset, describe(err))
	}

	out := make([]catalog.Template, 0, len(file.Templates))
	for _, r := range file.Templates {
		category, err := catalog.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: template %q: %w", ErrInvalidDataset, r.Name, err)
		}
		rule, err := r.Rule.toRule()
		if err != nil {
			return nil, fmt.Errorf("%w: template %q: %w", ErrInvalidDataset, r.Name, err)
		}
		out = append(out, catalog.Template{
			Name:         r.Name,
			Category:     category,
			UnlockPoints: r.UnlockPoints,
			Rule:         rule,
			Sections:     r.Sections,
		})
	}
	return out, nil
}

func (r ruleRecord) toRule() (catalog.Rule, error) {
	kind, err := catalog.ParseRuleKind(r.Kind)
	if err != nil {
		return catalog.Rule{}, err
	}
	switch kind {
	case catalog.RuleRequiresTag:
		if len(r.Tags) != 1 {
			return catalog.Rule{}, fmt.Errorf("requires-tag takes exactly one tag, got %d", len(r.Tags))
		}
		return catalog.RequiresTag(r.Tags[0]), nil
	case catalog.RuleForbidsTags:
		return catalog.ForbidsTags(r.Tags...), nil
	default:
		return catalog.WarnIfMissingBaseTag(r.Tags...), nil
	}
}

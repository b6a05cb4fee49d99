// Package dataset loads, normalises and validates the reference datasets
// and serves them as immutable catalog snapshots
package dataset

import (
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// File names expected in a dataset directory.
const (
	CustomersFile   = "customer_types.json"
	IngredientsFile = "ingredients_data.json"
	MatchesFile     = "matches_data.json"
)

// Source reports where a snapshot came from.
type Source string

const (
	SourceFiles Source = "files"
	SourceDemo  Source = "demo"
)

//go:embed demo/*.json
var demoFS embed.FS

// ErrInvalidDataset is returned when a dataset file cannot be used at all.
var ErrInvalidDataset = stderrors.New("invalid dataset")

// Report summarises one load.
type Report struct {
	Source      Source   `json:"source"`
	Fingerprint string   `json:"fingerprint"`
	Ingredients int      `json:"ingredients"`
	Segments    int      `json:"segments"`
	Templates   int      `json:"templates"`
	Edges       int      `json:"edges"`
	Warnings    []string `json:"warnings"`
}

// Options configures a Loader.
type Options struct {
	Dir            string
	TemplatesPath  string
	FallbackToDemo bool
}

// Loader builds snapshots from a dataset directory and a template catalog.
type Loader struct {
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLoader creates a loader
func NewLoader(opts Options, logger *zap.Logger) *Loader {
	return &Loader{
		opts:     opts,
		validate: validator.New(),
		logger:   logger.Named("dataset-loader"),
	}
}

// Load reads the configured files, falling back to the embedded demo data
// when they are missing or invalid and fallback is enabled.
func (l *Loader) Load() (*catalog.Snapshot, Report, error) {
	templates, err := l.templates()
	if err != nil {
		return nil, Report{}, err
	}

	if l.opts.Dir == "" {
		return l.build(l.demo(), templates, SourceDemo, nil)
	}

	snap, report, err := l.build(os.DirFS(l.opts.Dir), templates, SourceFiles, nil)
	if err == nil {
		return snap, report, nil
	}
	if !l.opts.FallbackToDemo {
		return nil, report, err
	}

	l.logger.Warn("Dataset unusable, falling back to demo data",
		zap.String("dir", l.opts.Dir),
		zap.Error(err),
	)
	prior := append(report.Warnings, "falling back to demo data: "+err.Error())
	return l.build(l.demo(), templates, SourceDemo, prior)
}

// LoadFS builds a snapshot from the three dataset files found in fsys.
func (l *Loader) LoadFS(fsys fs.FS, templates []catalog.Template) (*catalog.Snapshot, Report, error) {
	return l.build(fsys, templates, SourceFiles, nil)
}

func (l *Loader) demo() fs.FS {
	sub, err := fs.Sub(demoFS, "demo")
	if err != nil {
		// embed paths are fixed at compile time
		panic(err)
	}
	return sub
}

func (l *Loader) templates() ([]catalog.Template, error) {
	if l.opts.TemplatesPath == "" {
		return DefaultTemplates()
	}
	data, err := os.ReadFile(l.opts.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return ParseTemplates(data)
}

func (l *Loader) build(fsys fs.FS, templates []catalog.Template, source Source, prior []string) (*catalog.Snapshot, Report, error) {
	report := Report{Source: source, Warnings: append([]string{}, prior...)}
	var errs []error

	segments, warnings, err := l.readCustomers(fsys)
	report.Warnings = append(report.Warnings, prefix("customers", warnings)...)
	errs = append(errs, err)

	ingredients, warnings, err := l.readIngredients(fsys)
	report.Warnings = append(report.Warnings, prefix("ingredients", warnings)...)
	errs = append(errs, err)

	edges, warnings, err := l.readMatches(fsys)
	report.Warnings = append(report.Warnings, prefix("matches", warnings)...)
	errs = append(errs, err)

	if err := stderrors.Join(errs...); err != nil {
		return nil, report, err
	}

	snap, warnings, err := catalog.NewSnapshot(catalog.Dataset{
		Ingredients: ingredients,
		Segments:    segments,
		Edges:       edges,
		Templates:   templates,
	})
	report.Warnings = append(report.Warnings, prefix("snapshot", warnings)...)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	report.Fingerprint = snap.Fingerprint()
	report.Ingredients = len(snap.Ingredients())
	report.Segments = len(snap.Segments())
	report.Templates = len(snap.Templates())
	report.Edges = snap.EdgeCount()

	l.logger.Info("Dataset loaded",
		zap.String("source", string(source)),
		zap.String("fingerprint", report.Fingerprint),
		zap.Int("ingredients", report.Ingredients),
		zap.Int("segments", report.Segments),
		zap.Int("templates", report.Templates),
		zap.Int("edges", report.Edges),
		zap.Int("warnings", len(report.Warnings)),
	)
	return snap, report, nil
}

// readArray decodes a JSON array file into records, rejecting anything
// that is not a non-empty array of objects.
func readArray[T any](fsys fs.FS, name string, allowEmpty bool) ([]T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDataset, name, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s must be an array of objects: %w", ErrInvalidDataset, name, err)
	}
	if len(records) == 0 && !allowEmpty {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidDataset, name)
	}
	return records, nil
}

func (l *Loader) readCustomers(fsys fs.FS) ([]catalog.CustomerSegment, []string, error) {
	records, err := readArray[customerRecord](fsys, CustomersFile, false)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	out := make([]catalog.CustomerSegment, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, warnings, fmt.Errorf("%w: customer %d missing required field: name", ErrInvalidDataset, i)
		}
		if err := l.validate.Struct(r); err != nil {
			warnings = append(warnings, fmt.Sprintf("customer %q dropped: %s", r.Name, describe(err)))
			continue
		}
		if !r.hasFavourites {
			warnings = append(warnings, fmt.Sprintf("customer %q: missing favourite_tags", r.Name))
		}
		if !r.hasSections {
			warnings = append(warnings, fmt.Sprintf("customer %q: missing sections data", r.Name))
		}

		sections := make(map[string]catalog.Section, len(r.Sections))
		for _, name := range sortedKeys(r.Sections) {
			sec := r.Sections[name]
			if sec.CostExpectation == nil {
				warnings = append(warnings, fmt.Sprintf("customer %q: section %q missing cost_expectation", r.Name, name))
			}
			sections[name] = catalog.Section{
				Probability:     orDefault(sec.Probability, DefaultProbability),
				CostExpectation: orDefault(sec.CostExpectation, DefaultCostExpectation),
			}
		}

		out = append(out, catalog.NewCustomerSegment(r.Name,
			r.FavouriteTags, r.SecondaryTags,
			catalog.Weights{
				Price:      orDefault(r.PriceWeight, DefaultWeight),
				Tag:        orDefault(r.TagWeight, DefaultWeight),
				Evaluation: orDefault(r.EvaluationWeight, DefaultWeight),
			},
			r.Expectations, sections,
		))
	}
	return out, warnings, nil
}

func (l *Loader) readIngredients(fsys fs.FS) ([]catalog.Ingredient, []string, error) {
	records, err := readArray[ingredientRecord](fsys, IngredientsFile, false)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	out := make([]catalog.Ingredient, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, warnings, fmt.Errorf("%w: ingredient %d missing name field", ErrInvalidDataset, i)
		}
		if err := l.validate.Struct(r); err != nil {
			warnings = append(warnings, fmt.Sprintf("ingredient %q dropped: %s", r.Name, describe(err)))
			continue
		}
		if !r.hasTags {
			warnings = append(warnings, fmt.Sprintf("ingredient %q: missing tags", r.Name))
		}
		if !r.hasFlavor {
			warnings = append(warnings, fmt.Sprintf("ingredient %q: missing flavor values", r.Name))
		}
		if !r.hasQualities {
			warnings = append(warnings, fmt.Sprintf("ingredient %q: missing quality costs", r.Name))
		}

		var flavor catalog.FlavorVector
		for _, key := range sortedKeys(r.Flavor) {
			axis, err := catalog.ParseFlavorAxis(key)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("ingredient %q: %v ignored", r.Name, err))
				continue
			}
			flavor[axis] = r.Flavor[key]
		}

		costs := catalog.DefaultTierCosts
		for _, key := range sortedKeys(r.Qualities) {
			tier, err := catalog.ParseTier(key)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("ingredient %q: %v ignored", r.Name, err))
				continue
			}
			q := r.Qualities[key]
			if q.UnitCost != nil {
				costs[tier].UnitCost = *q.UnitCost
			}
			if q.PointsCost != nil {
				costs[tier].PointsCost = *q.PointsCost
			}
		}

		out = append(out, catalog.NewIngredient(r.Name, r.Tags, flavor, costs))
	}
	return out, warnings, nil
}

func (l *Loader) readMatches(fsys fs.FS) ([]catalog.CompatibilityEdge, []string, error) {
	records, err := readArray[matchRecord](fsys, MatchesFile, true)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, []string{"matches array is empty"}, nil
	}

	var warnings []string
	out := make([]catalog.CompatibilityEdge, 0, len(records))
	for i, r := range records {
		if r.A == "" || r.B == "" {
			return nil, warnings, fmt.Errorf("%w: match %d missing field: IngredientA/IngredientB", ErrInvalidDataset, i)
		}
		if err := l.validate.Struct(r); err != nil {
			warnings = append(warnings, fmt.Sprintf("match %d: MatchValue should be 1, 2, or 3 (found %d)", i, r.Value))
			continue
		}
		out = append(out, catalog.CompatibilityEdge{A: r.A, B: r.B, Value: r.Value})
	}
	return out, warnings, nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func prefix(scope string, warnings []string) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = scope + ": " + w
	}
	return out
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package seed creates initial question groups from a YAML document.
//
// The document is validated against an embedded CUE schema before any
// command runs. Seeding is idempotent by group name: a group that
// already exists is skipped, so re-running the seed after a partial
// failure completes the remainder without duplicating anything.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/workflow"
)

//go:embed schema.cue
var schemaSource string

// Document is the root of a seed file.
type Document struct {
	Groups []GroupSeed `yaml:"groups" json:"groups"`
}

// GroupSeed describes one group and its initial questions.
type GroupSeed struct {
	Name      string         `yaml:"name" json:"name"`
	Questions []QuestionSeed `yaml:"questions,omitempty" json:"questions,omitempty"`
}

// QuestionSeed describes one question. Option ids are assigned
// positionally at creation time.
type QuestionSeed struct {
	Text                   string   `yaml:"text" json:"text"`
	Options                []string `yaml:"options" json:"options"`
	AllowMultipleResponses bool     `yaml:"allowMultipleResponses,omitempty" json:"allowMultipleResponses,omitempty"`
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse seed document: %w", err)
	}
	if err := validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// validate unifies the decoded document with the embedded schema.
func validate(doc Document) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode seed document: %w", err)
	}

	if err := schema.Unify(value).Validate(); err != nil {
		return fmt.Errorf("seed document invalid: %w", err)
	}
	return nil
}

// Seeder applies seed documents through the workflows.
type Seeder struct {
	workflows *workflow.Workflows
	model     *readmodel.Model

	attempts int
	delay    time.Duration
}

// NewSeeder creates a seeder with three attempts per group and a
// short fixed delay between them.
func NewSeeder(workflows *workflow.Workflows, model *readmodel.Model) *Seeder {
	return &Seeder{
		workflows: workflows,
		model:     model,
		attempts:  3,
		delay:     500 * time.Millisecond,
	}
}

// WithRetry overrides the per-group attempt count and delay.
func (s *Seeder) WithRetry(attempts int, delay time.Duration) *Seeder {
	if attempts > 0 {
		s.attempts = attempts
	}
	s.delay = delay
	return s
}

// Apply creates every group in the document that does not already
// exist. Each group gets its questions created and linked in order.
func (s *Seeder) Apply(ctx context.Context, doc Document) error {
	for _, g := range doc.Groups {
		if s.groupExists(g.Name) {
			slog.Info("seed group already exists, skipping", "name", g.Name)
			continue
		}
		if err := s.createGroup(ctx, g); err != nil {
			return fmt.Errorf("seed group %q: %w", g.Name, err)
		}
	}
	return nil
}

func (s *Seeder) createGroup(ctx context.Context, g GroupSeed) error {
	seeds := make([]workflow.QuestionSeed, 0, len(g.Questions))
	for _, q := range g.Questions {
		options := make([]question.QuestionOption, 0, len(q.Options))
		for i, text := range q.Options {
			options = append(options, question.QuestionOption{
				ID:   fmt.Sprintf("%d", i+1),
				Text: text,
			})
		}
		seeds = append(seeds, workflow.QuestionSeed{
			Text:                   q.Text,
			Options:                options,
			AllowMultipleResponses: q.AllowMultipleResponses,
		})
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		groupID, err := s.workflows.CreateGroupWithQuestions(ctx, g.Name, seeds)
		if err == nil {
			slog.Info("seed group created",
				"name", g.Name,
				"group_id", groupID,
				"questions", len(seeds),
			)
			return nil
		}
		lastErr = err
		slog.Warn("seed attempt failed",
			"name", g.Name,
			"attempt", attempt,
			"error", err,
		)

		// A partial creation leaves the group visible; the next
		// Apply run skips it instead of retrying here.
		if s.groupExists(g.Name) {
			return err
		}
		if attempt < s.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return lastErr
}

func (s *Seeder) groupExists(name string) bool {
	for _, g := range s.model.ListGroups() {
		if g.Name == name {
			return true
		}
	}
	return false
}

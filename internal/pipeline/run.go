// Package pipeline provides the high-level orchestration from raw candidate documents to a merged record.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/linkedin"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/merge"
	"github.com/jonathan/candidate-profiler/internal/parsing"
	"github.com/jonathan/candidate-profiler/internal/pipeline/steps"
	"github.com/jonathan/candidate-profiler/internal/scoring"
	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	ItemID   string `json:"item_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. During a batch it
// may be called from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	// AsOf resolves "present" when computing experience years; nil skips the metric
	AsOf *time.Time
	// Concurrency bounds RunBatch; values below 1 mean one item at a time
	Concurrency int
	OnProgress  ProgressCallback
}

// Input is one candidate: a resume and whatever is known about the LinkedIn profile.
// Profile takes precedence over LinkedIn text; with neither, a placeholder record is used.
type Input struct {
	ID         string
	Resume     *types.RawDocument
	LinkedIn   *types.RawDocument
	Profile    *linkedin.ProfileData
	ProfileURL string
}

// Result holds the merged record and the per-source records it came from
type Result struct {
	ID       string
	Record   *types.CandidateRecord
	Resume   *types.PartialCandidateRecord
	LinkedIn *types.PartialCandidateRecord
}

// Runner executes the pipeline. It holds only immutable collaborators and is safe for concurrent use.
type Runner struct {
	parser     *parsing.Parser
	normalizer *skills.Normalizer
	engine     *merge.Engine
}

// NewRunner creates a Runner; a nil engine gets one that resolves skills against the normalizer's vocabulary
func NewRunner(normalizer *skills.Normalizer, engine *merge.Engine) *Runner {
	if engine == nil {
		engine = merge.NewEngine(merge.WithVocabulary(normalizer.Vocabulary()))
	}
	return &Runner{
		parser:     parsing.NewParser(normalizer),
		normalizer: normalizer,
		engine:     engine,
	}
}

// Parser returns the parser used for single documents
func (r *Runner) Parser() *parsing.Parser {
	return r.parser
}

// Normalizer returns the skill normalizer shared by both sources
func (r *Runner) Normalizer() *skills.Normalizer {
	return r.normalizer
}

// progress tracks completed steps for one item and forwards events
type progress struct {
	opts      *RunOptions
	itemID    string
	mu        sync.Mutex
	completed map[string]bool
}

func newProgress(opts *RunOptions, itemID string) *progress {
	return &progress{opts: opts, itemID: itemID, completed: map[string]bool{}}
}

// begin fails when a step runs before its dependencies
func (p *progress) begin(step string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return steps.ValidateDependencies(p.completed, step)
}

func (p *progress) complete(step, message string, content any) {
	p.mu.Lock()
	p.completed[step] = true
	p.mu.Unlock()
	emitProgress(p.opts, p.itemID, step, message, content)
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, itemID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.Category(step),
			Message:  message,
			ItemID:   itemID,
			Content:  content,
		})
	}
}

// Run processes one candidate. The resume and LinkedIn branches run concurrently;
// only undecodable input text or a cancelled context is an error.
func (r *Runner) Run(ctx context.Context, in Input, opts RunOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.Ctx(ctx).With().Str("item", in.ID).Logger()
	prog := newProgress(&opts, in.ID)

	g, gCtx := errgroup.WithContext(ctx)

	var resumeRecord, linkedinRecord *types.PartialCandidateRecord

	g.Go(func() error {
		record, err := r.runResumeBranch(gCtx, in, prog)
		if err != nil {
			return fmt.Errorf("resume branch failed: %w", err)
		}
		resumeRecord = record
		return nil
	})

	g.Go(func() error {
		record, err := r.runLinkedInBranch(gCtx, in, prog)
		if err != nil {
			return fmt.Errorf("linkedin branch failed: %w", err)
		}
		linkedinRecord = record
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("extraction failed")
		return nil, err
	}

	if err := prog.begin(steps.Merge); err != nil {
		return nil, err
	}
	record := r.engine.Merge(resumeRecord, linkedinRecord)
	for _, c := range record.Conflicts {
		log.Info().
			Str("field", c.Field).
			Str("resume", c.ResumeValue).
			Str("linkedin", c.LinkedInValue).
			Str("chosen", string(c.Chosen)).
			Msg("conflicting values")
	}
	prog.complete(steps.Merge, fmt.Sprintf("merged with %d conflicts", len(record.Conflicts)), record.Conflicts)

	if err := prog.begin(steps.Score); err != nil {
		return nil, err
	}
	if opts.AsOf != nil {
		record.ExperienceYears = scoring.ExperienceYears(record.Experience, *opts.AsOf)
	}
	log.Debug().
		Float64("overall_confidence", record.OverallConfidence).
		Int("skills", len(record.Skills)).
		Int("experience", len(record.Experience)).
		Int("education", len(record.Education)).
		Msg("record scored")
	prog.complete(steps.Score, fmt.Sprintf("overall confidence %.2f", record.OverallConfidence), record.OverallConfidence)

	return &Result{
		ID:       in.ID,
		Record:   record,
		Resume:   resumeRecord,
		LinkedIn: linkedinRecord,
	}, nil
}

func (r *Runner) runResumeBranch(ctx context.Context, in Input, prog *progress) (*types.PartialCandidateRecord, error) {
	log := logger.Ctx(ctx)

	if err := prog.begin(steps.IngestResume); err != nil {
		return nil, err
	}
	text := ""
	if in.Resume != nil {
		text = in.Resume.Text
	}
	lines, err := ingestion.NormalizeLines(text)
	if err != nil {
		return nil, err
	}
	prog.complete(steps.IngestResume, fmt.Sprintf("normalized %d lines", len(lines)), nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := prog.begin(steps.ExtractResume); err != nil {
		return nil, err
	}
	record, err := r.parser.ParseLines(types.SourceResume, lines)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("item", in.ID).Int("skills", len(record.Skills)).Msg("resume extracted")
	prog.complete(steps.ExtractResume, "resume extracted", record)
	return record, nil
}

func (r *Runner) runLinkedInBranch(ctx context.Context, in Input, prog *progress) (*types.PartialCandidateRecord, error) {
	log := logger.Ctx(ctx)

	if err := prog.begin(steps.IngestLinkedIn); err != nil {
		return nil, err
	}

	var record *types.PartialCandidateRecord
	switch {
	case in.Profile != nil:
		prog.complete(steps.IngestLinkedIn, "structured profile", nil)
		record = linkedin.FromProfile(in.Profile, r.normalizer)

	case in.LinkedIn != nil && strings.TrimSpace(in.LinkedIn.Text) != "":
		lines, err := ingestion.NormalizeLines(in.LinkedIn.Text)
		if err != nil {
			return nil, err
		}
		prog.complete(steps.IngestLinkedIn, fmt.Sprintf("normalized %d lines", len(lines)), nil)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err = r.parser.ParseLines(types.SourceLinkedIn, lines)
		if err != nil {
			return nil, err
		}

	default:
		prog.complete(steps.IngestLinkedIn, "profile unavailable, using placeholder", nil)
		log.Warn().Str("item", in.ID).Str("profile_url", in.ProfileURL).Msg("no LinkedIn data, using placeholder")
		record = linkedin.Placeholder(in.ProfileURL)
	}

	if err := prog.begin(steps.ExtractLinkedIn); err != nil {
		return nil, err
	}
	log.Debug().Str("item", in.ID).Bool("placeholder", record.Placeholder).Int("skills", len(record.Skills)).Msg("linkedin extracted")
	prog.complete(steps.ExtractLinkedIn, "linkedin extracted", record)
	return record, nil
}

package director

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"taleweaver/internal/game"
	"taleweaver/internal/game/narration"
	"taleweaver/internal/llm"
	"taleweaver/internal/observability"
)

const (
	choiceSeparator = "\n\n[You chose: %s]\n\n"
	customSeparator = "\n\n[You decided to: %s]\n\n"
	endingSeparator = "\n\n"
	starterCount    = 3
)

// Generator produces text for a prompt. Implementations degrade to fallback
// text instead of failing.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) string
}

// Store persists whole story records.
type Store interface {
	Save(ctx context.Context, state *game.NarrativeState) (string, error)
	Load(ctx context.Context, key string) (*game.NarrativeState, error)
}

// Speaker reads narrative aloud. It is optional and its failures never
// reach the caller.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Director drives one story through Welcome, Setup, Story and Ending.
// It owns the NarrativeState and is not safe for concurrent use; callers
// serialize access per session.
//
// Every action that generates or persists works on a clone of the state and
// commits it only once generation has returned, so a failed or panicking
// action leaves the story exactly as it was. Non-fatal failures come back
// as a *Notice.
type Director struct {
	gen     Generator
	store   Store
	speaker Speaker
	logger  *zap.Logger
	tracer  trace.Tracer
	newID   func() string

	maxTurns                int
	choiceCount             int
	temperature             float64
	continuationTemperature float64
	density                 narration.Density

	state *game.NarrativeState

	starters []string

	choices    []string
	choicesFor string

	ending      string
	recap       string
	endingReady bool

	lastKey string
}

// Option configures a Director.
type Option func(*Director)

// WithMaxTurns sets the turn count that forces the ending.
func WithMaxTurns(n int) Option {
	return func(d *Director) {
		if n > 0 {
			d.maxTurns = n
		}
	}
}

// WithChoiceCount sets how many choices are offered each turn.
func WithChoiceCount(n int) Option {
	return func(d *Director) {
		if n > 0 {
			d.choiceCount = n
		}
	}
}

// WithTemperatures sets the temperature for starters, choices, endings and
// recaps, and the one used for continuations.
func WithTemperatures(story, continuation float64) Option {
	return func(d *Director) {
		d.temperature = story
		d.continuationTemperature = continuation
	}
}

// WithDensity sets how long continuations should be.
func WithDensity(density narration.Density) Option {
	return func(d *Director) {
		d.density = density
	}
}

// WithSpeaker reads each new passage aloud.
func WithSpeaker(s Speaker) Option {
	return func(d *Director) {
		d.speaker = s
	}
}

// WithLogger sets the logger. The director logs under the "director" name.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Director) {
		d.logger = logger.Named("director")
	}
}

// WithTracer sets the tracer used for spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Director) {
		d.tracer = tracer
	}
}

// WithIDGenerator replaces the uuid source for new story ids.
func WithIDGenerator(newID func() string) Option {
	return func(d *Director) {
		d.newID = newID
	}
}

// New creates a Director holding a fresh story in the Welcome stage.
func New(gen Generator, store Store, opts ...Option) *Director {
	d := &Director{
		gen:                     gen,
		store:                   store,
		logger:                  zap.NewNop(),
		tracer:                  otel.Tracer("taleweaver/director"),
		newID:                   uuid.NewString,
		maxTurns:                10,
		choiceCount:             3,
		temperature:             0.7,
		continuationTemperature: 0.8,
		density:                 narration.DensityStandard,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.state = game.NewNarrativeState(d.newID())
	return d
}

// State returns a copy of the current narrative state.
func (d *Director) State() game.NarrativeState {
	return *d.state.Clone()
}

func (d *Director) Stage() game.Stage {
	return d.state.Stage
}

// LastKey is the storage key of the most recent successful save.
func (d *Director) LastKey() string {
	return d.lastKey
}

// Begin moves a fresh story from Welcome to Setup.
func (d *Director) Begin() error {
	if d.state.Stage != game.StageWelcome {
		return wrongStage("begin", d.state.Stage)
	}
	d.state.Stage = game.StageSetup
	return nil
}

// Configure records the genre and protagonist. It may be repeated until a
// starter is selected; each call discards previously generated starters.
func (d *Director) Configure(genre, name, trait string) error {
	if d.state.Stage != game.StageSetup {
		return wrongStage("configure", d.state.Stage)
	}
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return ErrEmptyGenre
	}
	d.state.Genre = genre
	d.state.CharacterName = strings.TrimSpace(name)
	d.state.CharacterTrait = strings.TrimSpace(trait)
	d.starters = nil
	return nil
}

// Starters returns three story openings for the configured setup,
// generating them on first call.
func (d *Director) Starters(ctx context.Context) ([]string, error) {
	if d.state.Stage != game.StageSetup {
		return nil, wrongStage("starters", d.state.Stage)
	}
	if d.starters != nil {
		return clone(d.starters), nil
	}

	err := d.guard(ctx, "starters", func(ctx context.Context) error {
		raw := d.gen.Generate(ctx, narration.StarterPrompt(d.premise()), d.temperature)
		items := make([]string, 0, starterCount)
		for _, item := range narration.ExtractList(raw) {
			if cleaned := narration.Clean(item); cleaned != "" {
				items = append(items, cleaned)
			}
		}
		d.starters = narration.Fit(items, starterCount, narration.FallbackStarters...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone(d.starters), nil
}

// PendingStarters returns the generated starters without generating.
func (d *Director) PendingStarters() []string {
	return clone(d.starters)
}

// SelectStarter opens the story with starter i and enters the Story stage.
// A failed autosave is reported as a Notice; the story still advances.
func (d *Director) SelectStarter(ctx context.Context, i int) error {
	if d.state.Stage != game.StageSetup {
		return wrongStage("select starter", d.state.Stage)
	}
	if i < 0 || i >= len(d.starters) {
		return fmt.Errorf("starter %d of %d: %w", i, len(d.starters), ErrChoiceOutOfRange)
	}

	return d.guard(ctx, "select_starter", func(ctx context.Context) error {
		starter := d.starters[i]
		next := d.state.Clone()
		next.AppendText("", starter)
		next.AddBeginning(starter)
		next.Stage = game.StageStory
		next.TurnCount = 0

		d.commit(next)
		d.starters = nil
		return d.autosave(ctx)
	})
}

// Choices returns the pending choices for the current text, generating
// them only when the text has changed since the last call.
func (d *Director) Choices(ctx context.Context) ([]string, error) {
	if d.state.Stage != game.StageStory {
		return nil, wrongStage("choices", d.state.Stage)
	}
	if d.choices != nil && d.choicesFor == d.state.CurrentText {
		return clone(d.choices), nil
	}

	err := d.guard(ctx, "choices", func(ctx context.Context) error {
		prompt := narration.ChoicesPrompt(d.state.CurrentText, d.premise(), d.choiceCount)
		raw := d.gen.Generate(ctx, prompt, d.temperature)

		items := make([]string, 0, d.choiceCount)
		for _, item := range narration.ExtractList(raw) {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		d.choices = narration.Fit(items, d.choiceCount)
		d.choicesFor = d.state.CurrentText
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone(d.choices), nil
}

// PendingChoices returns the memoized choices for the current text, or nil.
func (d *Director) PendingChoices() []string {
	if d.choicesFor != d.state.CurrentText {
		return nil
	}
	return clone(d.choices)
}

// Choose resolves pending choice i: the continuation is generated, cleaned
// and appended, and the turn counter advances. Reaching the turn limit
// moves the story to Ending.
func (d *Director) Choose(ctx context.Context, i int) error {
	if d.state.Stage != game.StageStory {
		return wrongStage("choose", d.state.Stage)
	}
	pending := d.PendingChoices()
	if i < 0 || i >= len(pending) {
		return fmt.Errorf("choice %d of %d: %w", i, len(pending), ErrChoiceOutOfRange)
	}
	return d.guard(ctx, "continuation", func(ctx context.Context) error {
		return d.advance(ctx, pending[i], false)
	})
}

// ChooseCustom resolves a free-text action the same way as Choose.
func (d *Director) ChooseCustom(ctx context.Context, action string) error {
	if d.state.Stage != game.StageStory {
		return wrongStage("custom action", d.state.Stage)
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrEmptyAction
	}
	return d.guard(ctx, "continuation", func(ctx context.Context) error {
		return d.advance(ctx, action, true)
	})
}

func (d *Director) advance(ctx context.Context, action string, custom bool) error {
	prompt := narration.ContinuationPrompt(d.state.CurrentText, action, d.premise())
	continuation := narration.Clean(d.gen.Generate(ctx, prompt, d.continuationTemperature))

	next := d.state.Clone()
	separator := choiceSeparator
	if custom {
		next.AddCustomChoice(action)
		separator = customSeparator
	} else {
		next.AddChoice(action)
	}
	next.AppendText(fmt.Sprintf(separator, action), continuation)
	next.AddStory(continuation)
	next.TurnCount++
	if next.TurnCount >= d.maxTurns {
		next.Stage = game.StageEnding
	}

	d.commit(next)
	observability.TurnsTotal.Inc()
	d.logger.Info("turn completed",
		zap.String("story_id", next.StoryID),
		zap.Int("turn", next.TurnCount),
		zap.Bool("custom", custom),
		zap.String("stage", string(next.Stage)))

	d.speak(ctx, continuation)
	return d.autosave(ctx)
}

// EndStory ends the story early. The ending itself is written on the first
// call to Ending.
func (d *Director) EndStory() error {
	if d.state.Stage != game.StageStory {
		return wrongStage("end story", d.state.Stage)
	}
	d.state.Stage = game.StageEnding
	d.choices, d.choicesFor = nil, ""
	return nil
}

// Conclusion is the closing text of a story and a recap of its choices.
type Conclusion struct {
	Text  string `json:"text"`
	Recap string `json:"recap"`
}

// Ending returns the story's conclusion, generating it once. The ending is
// appended to the narrative and saved; the recap is for display only.
func (d *Director) Ending(ctx context.Context) (Conclusion, error) {
	if d.state.Stage != game.StageEnding {
		return Conclusion{}, wrongStage("ending", d.state.Stage)
	}
	if d.endingReady {
		return Conclusion{Text: d.ending, Recap: d.recap}, nil
	}

	var saveErr error
	err := d.guard(ctx, "ending", func(ctx context.Context) error {
		text, written := d.state.PathTaken.Last(game.SegmentEnding)
		if !written {
			prompt := narration.EndingPrompt(d.state.CurrentText, d.premise())
			raw := d.gen.Generate(ctx, prompt, d.temperature)

			next := d.state.Clone()
			next.AppendText(endingSeparator, raw)
			next.AddEnding(raw)
			d.commit(next)
			text = game.Segment{Type: game.SegmentEnding, Text: raw}
		}

		recap := ""
		if prompt := narration.RecapPrompt(d.state.ChoicesMade, d.premise()); prompt != "" {
			recap = strings.TrimSpace(d.gen.Generate(llm.WithOperationType(ctx, "recap"), prompt, d.temperature))
		}

		d.ending, d.recap, d.endingReady = text.Text, recap, true
		if !written {
			d.speak(ctx, text.Text)
			saveErr = d.autosave(ctx)
		}
		return nil
	})
	if err != nil {
		return Conclusion{}, err
	}
	return Conclusion{Text: d.ending, Recap: d.recap}, saveErr
}

// Conclusion returns the memoized ending, if one has been produced.
func (d *Director) Conclusion() (Conclusion, bool) {
	if !d.endingReady {
		return Conclusion{}, false
	}
	return Conclusion{Text: d.ending, Recap: d.recap}, true
}

// Save writes the story to the store and returns its key.
func (d *Director) Save(ctx context.Context) (string, error) {
	if d.state.Stage != game.StageStory && d.state.Stage != game.StageEnding {
		return "", wrongStage("save", d.state.Stage)
	}
	err := d.guard(ctx, "save", d.autosave)
	if err != nil {
		return "", err
	}
	return d.lastKey, nil
}

// Resume replaces the story with a saved record. A record that is over,
// by stage or by turn count, continues in Ending and Ending writes any
// missing conclusion. Everything else continues in Story.
func (d *Director) Resume(ctx context.Context, key string) error {
	return d.guard(ctx, "resume", func(ctx context.Context) error {
		loaded, err := d.store.Load(ctx, key)
		if err != nil {
			d.logger.Warn("failed to load story", zap.String("key", key), zap.Error(err))
			return &Notice{
				Kind:    NoticePersistence,
				Message: "That story could not be loaded.",
				Err:     err,
			}
		}

		d.clearMemos()
		ended := loaded.Stage == game.StageEnding || loaded.TurnCount >= d.maxTurns
		loaded.Stage = game.StageStory
		if ending, ok := loaded.PathTaken.Last(game.SegmentEnding); ok {
			loaded.Stage = game.StageEnding
			d.ending = ending.Text
		} else if ended {
			loaded.Stage = game.StageEnding
		}
		loaded.RecountWords()
		d.state = loaded
		d.lastKey = key

		d.logger.Info("story resumed",
			zap.String("key", key),
			zap.String("story_id", loaded.StoryID),
			zap.String("stage", string(loaded.Stage)))
		return nil
	})
}

// Reset discards the story and starts a fresh one in Welcome.
func (d *Director) Reset() {
	d.clearMemos()
	d.lastKey = ""
	d.state = game.NewNarrativeState(d.newID())
}

// Stats summarizes the story for presentation.
type Stats struct {
	Stage          game.Stage `json:"stage"`
	Genre          string     `json:"genre"`
	Character      string     `json:"character"`
	TurnCount      int        `json:"turnCount"`
	MaxTurns       int        `json:"maxTurns"`
	TurnsRemaining int        `json:"turnsRemaining"`
	ChoiceCount    int        `json:"choiceCount"`
	WordCount      int        `json:"wordCount"`
}

func (d *Director) Stats() Stats {
	return Stats{
		Stage:          d.state.Stage,
		Genre:          d.state.Genre,
		Character:      d.state.CharacterName,
		TurnCount:      d.state.TurnCount,
		MaxTurns:       d.maxTurns,
		TurnsRemaining: max(d.maxTurns-d.state.TurnCount, 0),
		ChoiceCount:    len(d.state.ChoicesMade),
		WordCount:      d.state.WordCount,
	}
}

func (d *Director) premise() narration.Premise {
	return narration.PremiseOf(d.state, d.density)
}

func (d *Director) commit(next *game.NarrativeState) {
	next.RecountWords()
	d.state = next
	d.choices, d.choicesFor = nil, ""
}

func (d *Director) clearMemos() {
	d.starters = nil
	d.choices, d.choicesFor = nil, ""
	d.ending, d.recap, d.endingReady = "", "", false
}

func (d *Director) autosave(ctx context.Context) error {
	key, err := d.store.Save(ctx, d.state)
	if err != nil {
		d.logger.Warn("failed to save story",
			zap.String("story_id", d.state.StoryID),
			zap.String("stage", string(d.state.Stage)),
			zap.Error(err))
		return &Notice{
			Kind:    NoticePersistence,
			Message: "Your story could not be saved. You can keep playing and try again.",
			Err:     err,
		}
	}
	d.lastKey = key
	return nil
}

func (d *Director) speak(ctx context.Context, text string) {
	if d.speaker == nil || text == "" {
		return
	}
	if err := d.speaker.Speak(ctx, text); err != nil {
		d.logger.Debug("speech failed", zap.Error(err))
	}
}

// guard runs one action inside a span and turns a panic into an
// unexpected Notice.
func (d *Director) guard(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	ctx = llm.WithStoryID(llm.WithOperationType(ctx, op), d.state.StoryID)
	ctx, span := d.tracer.Start(ctx, "story."+op, trace.WithAttributes(
		attribute.String("story.id", d.state.StoryID),
		attribute.String("story.stage", string(d.state.Stage)),
		attribute.Int("story.turn", d.state.TurnCount),
	))

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("story action panicked",
				zap.String("operation", op),
				zap.String("story_id", d.state.StoryID),
				zap.String("stage", string(d.state.Stage)),
				zap.Any("panic", r))
			err = &Notice{
				Kind:    NoticeUnexpected,
				Message: "Something went wrong. Please try again.",
				Err:     fmt.Errorf("panic in %s: %v", op, r),
			}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return fn(ctx)
}

func clone(items []string) []string {
	if items == nil {
		return nil
	}
	return append([]string(nil), items...)
}

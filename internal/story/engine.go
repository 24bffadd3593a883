// Package story is the narrative session engine: it drives branching,
// chapter-based storylines per user per character, enforces turn limits,
// resolves puzzle chapters, and hands terminal outcomes to the reward engine
// and cleanup scheduler.
package story

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storymode/internal/cleanup"
	"storymode/internal/reward"
	"storymode/internal/transport"
)

// Store is the persistence collaborator: affinity scores, inventory counts,
// and completion records. Reads happen immediately before a resolver
// decision, writes immediately after; there is no transactional guarantee
// across the in-memory transition and the store.
type Store interface {
	Affinity(ctx context.Context, userID, characterID string) (int, error)
	AddAffinity(ctx context.Context, userID, characterID string, delta int) (int, error)
	AddInventoryItem(ctx context.Context, userID, itemID string, qty int) error
	UseInventoryItem(ctx context.Context, userID, itemID string, qty int) (bool, error)
	OwnedItemIDs(ctx context.Context, userID string) (map[string]bool, error)
	// RecordCompletion marks the chapter complete and credits granted items
	// in one store operation.
	RecordCompletion(ctx context.Context, userID, characterID, chapterID string, items []string) error
}

// Options tune engine pacing.
type Options struct {
	// TeardownDelay is how long a finished chapter's channel lingers before
	// the scheduler deletes it.
	TeardownDelay time.Duration
	// AffinityPerTurn is credited to the relationship after every processed
	// conversational exchange.
	AffinityPerTurn int
}

func (o *Options) fill() {
	if o.TeardownDelay <= 0 {
		o.TeardownDelay = 90 * time.Second
	}
	if o.AffinityPerTurn <= 0 {
		o.AffinityPerTurn = 8
	}
}

const apologyReply = "…sorry, I lost my train of thought. Say that again?"

// Engine is the story state machine: one generic driver parameterized by
// chapter definitions. All inbound events pass through it, one at a time:
// the single mutex reproduces the cooperative single-threaded model the
// session registry's lock-free design depends on.
type Engine struct {
	mu sync.Mutex

	chapters  *Library
	sessions  SessionStore
	store     Store
	gen       Generator
	transport transport.Transport
	rewards   *reward.Engine
	scheduler *cleanup.Scheduler
	log       *zap.Logger
	opts      Options
}

func NewEngine(
	chapters *Library,
	sessions SessionStore,
	store Store,
	gen Generator,
	tp transport.Transport,
	rewards *reward.Engine,
	scheduler *cleanup.Scheduler,
	log *zap.Logger,
	opts Options,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	opts.fill()
	return &Engine{
		chapters:  chapters,
		sessions:  sessions,
		store:     store,
		gen:       gen,
		transport: tp,
		rewards:   rewards,
		scheduler: scheduler,
		log:       log,
		opts:      opts,
	}
}

// BeginChapter opens (or reuses) the channel for the character and creates a
// session in its Introduction state. A pending teardown on the reused channel
// is cancelled so the new session cannot be deleted out from under the user.
func (e *Engine) BeginChapter(ctx context.Context, userID, characterID, chapterID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch, ok := e.chapters.Chapter(chapterID)
	if !ok || ch.CharacterID != characterID {
		return "", fmt.Errorf("begin %s/%s: %w", characterID, chapterID, ErrUnknownChapter)
	}

	channelID, err := e.transport.CreateChannel(ctx, userID, characterID)
	if err != nil {
		return "", fmt.Errorf("begin %s: create channel: %w", chapterID, err)
	}
	e.scheduler.Cancel(channelID)

	if _, err := e.sessions.Create(channelID, userID, characterID, chapterID); err != nil {
		return "", err
	}

	if err := e.transport.SendMessage(ctx, channelID, strings.TrimSpace(ch.Opening)); err != nil {
		e.sessions.Remove(channelID)
		return "", fmt.Errorf("begin %s: send opening: %w", chapterID, err)
	}

	e.log.Info("chapter started",
		zap.String("channel", channelID),
		zap.String("user", userID),
		zap.String("chapter", ch.ID))
	return channelID, nil
}

// HandleIncomingMessage processes one inbound chat event for a channel.
// Events for absent, inactive, or finished sessions are no-ops.
func (e *Engine) HandleIncomingMessage(ctx context.Context, channelID, userID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ch, err := e.activeSession(channelID, userID)
	if err != nil {
		e.ignore(err)
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	switch sess.State {
	case StateIntroduction:
		return e.handleIntroduction(ctx, sess, ch, text)
	case StateInProgress:
		return e.handleInProgress(ctx, sess, ch, text)
	case StateAwaitingResolution:
		return e.handleAwaiting(ctx, sess, ch, text)
	default:
		e.ignore(fmt.Errorf("message in %s state %s: %w", channelID, sess.State, ErrWrongPhase))
		return nil
	}
}

func (e *Engine) handleIntroduction(ctx context.Context, sess *Session, ch *Chapter, text string) error {
	if !strings.EqualFold(text, "begin") {
		return e.send(ctx, sess.ChannelID, "(Say 'begin' when you're ready to start.)")
	}
	sess.State = StateInProgress

	if ch.Win == WinServingGame {
		first := ch.Serving.Customers[0]
		return e.send(ctx, sess.ChannelID, fmt.Sprintf("First up, the %s: %s",
			first.Name, strings.Join(first.Ingredients, ", ")))
	}
	reply, err := e.gen.Generate(ctx, BuildCharacterPrompt(ch), nil, "The user is ready. Open the scene in character.")
	if err != nil {
		e.log.Warn("opening generation failed", zap.String("channel", sess.ChannelID), zap.Error(err))
		return e.send(ctx, sess.ChannelID, apologyReply)
	}
	sess.History.AddCharacterLine(ch.Character, reply)
	return e.send(ctx, sess.ChannelID, reply)
}

func (e *Engine) handleInProgress(ctx context.Context, sess *Session, ch *Chapter, text string) error {
	switch ch.Win {
	case WinServingGame:
		ev, err := AdvanceTurn(sess, ch)
		if err != nil {
			e.ignore(err)
			return nil
		}
		res, err := resolverFor(ch, e.gen)
		if err != nil {
			e.ignore(err)
			return nil
		}
		out, err := res.Advance(ctx, sess, ch, Input{Ingredients: ParseIngredients(text), Forced: ev.ForceResolution})
		if err != nil {
			e.ignore(err)
			return nil
		}
		if err := e.apply(ctx, sess, ch, out); err != nil {
			return err
		}
		return e.sendHints(ctx, sess.ChannelID, ev.Hints)

	case WinMysteryDeduction:
		forced := ch.TurnLimit > 0 && sess.Turns+1 >= ch.TurnLimit
		res, err := resolverFor(ch, e.gen)
		if err != nil {
			e.ignore(err)
			return nil
		}
		if forced {
			if _, err := AdvanceTurn(sess, ch); err != nil {
				e.ignore(err)
				return nil
			}
			out, err := res.Advance(ctx, sess, ch, Input{Forced: true})
			if err != nil {
				return e.send(ctx, sess.ChannelID, apologyReply)
			}
			return e.apply(ctx, sess, ch, out)
		}
		// Generate before mutating: a transient failure must leave the
		// session unchanged so the user can retry the question.
		out, err := res.Advance(ctx, sess, ch, Input{Text: text})
		if err != nil {
			e.log.Warn("mystery generation failed", zap.String("channel", sess.ChannelID), zap.Error(err))
			return e.send(ctx, sess.ChannelID, apologyReply)
		}
		ev, err := AdvanceTurn(sess, ch)
		if err != nil {
			e.ignore(err)
			return nil
		}
		sess.History.AddUserLine(text)
		sess.History.AddCharacterLine(ch.Character, out.Reply)
		if err := e.apply(ctx, sess, ch, out); err != nil {
			return err
		}
		return e.sendHints(ctx, sess.ChannelID, ev.Hints)

	default: // conversational chapters: quiz, gift, affinity
		return e.handleConversation(ctx, sess, ch, text)
	}
}

func (e *Engine) handleConversation(ctx context.Context, sess *Session, ch *Chapter, text string) error {
	reply, err := e.gen.Generate(ctx, BuildCharacterPrompt(ch), sess.History.Entries(), text)
	if err != nil {
		e.log.Warn("generation failed", zap.String("channel", sess.ChannelID), zap.Error(err))
		return e.send(ctx, sess.ChannelID, apologyReply)
	}

	ev, err := AdvanceTurn(sess, ch)
	if err != nil {
		e.ignore(err)
		return nil
	}
	sess.History.AddUserLine(text)
	sess.History.AddCharacterLine(ch.Character, reply)

	if err := e.send(ctx, sess.ChannelID, reply); err != nil {
		return err
	}
	if err := e.sendHints(ctx, sess.ChannelID, ev.Hints); err != nil {
		return err
	}

	score, err := e.store.AddAffinity(ctx, sess.UserID, sess.CharacterID, e.opts.AffinityPerTurn)
	if err != nil {
		e.log.Error("affinity update failed", zap.String("channel", sess.ChannelID), zap.Error(err))
	}

	if ch.Win == WinAffinityGoal {
		res, err := resolverFor(ch, e.gen)
		if err != nil {
			e.ignore(err)
			return nil
		}
		out, err := res.Advance(ctx, sess, ch, Input{Affinity: score, Forced: ev.ForceResolution})
		if err != nil {
			e.ignore(err)
			return nil
		}
		if out.State != StateInProgress {
			return e.apply(ctx, sess, ch, out)
		}
		return nil
	}

	if ev.ForceResolution {
		return e.forceResolution(ctx, sess, ch)
	}
	return nil
}

// forceResolution moves a quiz or gift chapter into its resolution step once
// the turn limit is spent.
func (e *Engine) forceResolution(ctx context.Context, sess *Session, ch *Chapter) error {
	sess.State = StateAwaitingResolution
	switch ch.Win {
	case WinQuiz:
		sess.Awaiting = AwaitingAnswer
		prompt := fmt.Sprintf("%s takes a breath. \"Okay. My question.\"\n\n%s\n(Answer with the option number.)",
			ch.Character, FormatQuizPrompt(ch.Quiz))
		return e.send(ctx, sess.ChannelID, prompt)
	case WinGiftResolution:
		sess.Awaiting = AwaitingGift
		return e.send(ctx, sess.ChannelID, ch.Gift.Prompt)
	default:
		return fmt.Errorf("force resolution in %s: win condition %q has no resolution step", sess.ChannelID, ch.Win)
	}
}

func (e *Engine) handleAwaiting(ctx context.Context, sess *Session, ch *Chapter, text string) error {
	switch sess.Awaiting {
	case AwaitingAnswer:
		choice := ParseQuizChoice(text, len(ch.Quiz.Options))
		if choice < 0 {
			return e.send(ctx, sess.ChannelID, "(Answer with the option number.)\n\n"+FormatQuizPrompt(ch.Quiz))
		}
		res, err := resolverFor(ch, e.gen)
		if err != nil {
			e.ignore(err)
			return nil
		}
		out, err := res.Advance(ctx, sess, ch, Input{Choice: choice})
		if err != nil {
			e.ignore(err)
			return nil
		}
		return e.apply(ctx, sess, ch, out)
	case AwaitingGift:
		return e.send(ctx, sess.ChannelID, ch.Gift.Prompt)
	case AwaitingDeduction:
		return e.send(ctx, sess.ChannelID, FormatSuspectList(ch.Mystery))
	default:
		e.ignore(fmt.Errorf("awaiting message in %s without flag: %w", sess.ChannelID, ErrWrongPhase))
		return nil
	}
}

// GiftResult summarizes a resolved gift chapter.
type GiftResult struct {
	Rarity reward.Rarity
	Items  []string
}

// UseGift validates the item against the user's inventory, consumes it, and
// resolves the chapter at the item's rarity band. An item the user does not
// hold rejects the action without consuming anything.
func (e *Engine) UseGift(ctx context.Context, channelID, userID, itemID string) (GiftResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ch, err := e.activeSession(channelID, userID)
	if err != nil {
		return GiftResult{}, err
	}
	if ch.Win != WinGiftResolution || sess.State == StateIntroduction {
		return GiftResult{}, fmt.Errorf("gift in %s: %w", channelID, ErrWrongPhase)
	}

	rarity, ok := e.chapters.Pool().RarityOf(itemID)
	if !ok {
		return GiftResult{}, fmt.Errorf("gift %q: %w", itemID, ErrInsufficientItem)
	}
	used, err := e.store.UseInventoryItem(ctx, userID, itemID, 1)
	if err != nil {
		return GiftResult{}, fmt.Errorf("gift %q: %w", itemID, err)
	}
	if !used {
		return GiftResult{}, fmt.Errorf("gift %q: %w", itemID, ErrInsufficientItem)
	}

	res, err := resolverFor(ch, e.gen)
	if err != nil {
		return GiftResult{}, err
	}
	out, err := res.Advance(ctx, sess, ch, Input{GiftRarity: rarity})
	if err != nil {
		return GiftResult{}, err
	}
	items, err := e.applyTerminal(ctx, sess, ch, out)
	if err != nil {
		return GiftResult{}, err
	}
	return GiftResult{Rarity: rarity, Items: items}, nil
}

// AccusationResult summarizes one accusation in a mystery chapter.
type AccusationResult struct {
	Correct          bool
	Failed           bool
	RemainingGuesses int
	Items            []string
}

// AccuseSuspect names a suspect in a mystery chapter. Accusations are valid
// from the first question onward; wrong guesses burn the bounded budget.
func (e *Engine) AccuseSuspect(ctx context.Context, channelID, userID, suspectID string) (AccusationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ch, err := e.activeSession(channelID, userID)
	if err != nil {
		return AccusationResult{}, err
	}
	if ch.Win != WinMysteryDeduction || sess.State == StateIntroduction {
		return AccusationResult{}, fmt.Errorf("accusation in %s: %w", channelID, ErrWrongPhase)
	}

	res, err := resolverFor(ch, e.gen)
	if err != nil {
		return AccusationResult{}, err
	}
	out, err := res.Advance(ctx, sess, ch, Input{SuspectID: suspectID})
	if err != nil {
		return AccusationResult{}, err
	}
	result := AccusationResult{
		Correct:          out.State == StateCompleted,
		Failed:           out.State == StateFailed,
		RemainingGuesses: ch.Mystery.MaxGuesses - sess.DeductionGuesses,
	}
	result.Items, err = e.applyTerminal(ctx, sess, ch, out)
	if err != nil {
		return result, err
	}
	return result, nil
}

// apply delivers the outcome's reply and either records the new in-progress
// state or finalizes the chapter.
func (e *Engine) apply(ctx context.Context, sess *Session, ch *Chapter, out Outcome) error {
	_, err := e.applyTerminal(ctx, sess, ch, out)
	return err
}

func (e *Engine) applyTerminal(ctx context.Context, sess *Session, ch *Chapter, out Outcome) ([]string, error) {
	if out.Reply != "" {
		if err := e.send(ctx, sess.ChannelID, out.Reply); err != nil {
			return nil, err
		}
	}
	if !out.State.Terminal() {
		sess.State = out.State
		sess.Awaiting = out.Awaiting
		return nil, nil
	}
	return e.finalize(ctx, sess, ch, out), nil
}

// finalize performs the terminal transition exactly once: reward draw guarded
// by the session's RewardIssued flag, completion persisted, farewell sent,
// registry entry removed, teardown armed. Store failures are logged and the
// in-memory transition stands; the reward may then be lost, a known risk.
func (e *Engine) finalize(ctx context.Context, sess *Session, ch *Chapter, out Outcome) []string {
	sess.State = out.State
	sess.Awaiting = AwaitingNone
	sess.Active = false

	var items []string
	if out.State == StateCompleted && out.Reward != nil && !sess.RewardIssued {
		sess.RewardIssued = true

		score, err := e.store.Affinity(ctx, sess.UserID, sess.CharacterID)
		if err != nil {
			e.log.Error("affinity read failed before grant", zap.String("channel", sess.ChannelID), zap.Error(err))
		}
		items, err = e.rewards.Grant(ctx, sess.UserID, *out.Reward, reward.GradeFor(score))
		if err != nil {
			e.log.Error("reward grant failed", zap.String("channel", sess.ChannelID), zap.Error(err))
			items = nil
		}
		if err := e.store.RecordCompletion(ctx, sess.UserID, sess.CharacterID, sess.ChapterID, items); err != nil {
			e.log.Error("completion write failed", zap.String("channel", sess.ChannelID), zap.Error(err))
		}
		if farewell := strings.TrimSpace(ch.Farewell); farewell != "" {
			_ = e.send(ctx, sess.ChannelID, farewell)
		}
		if len(items) > 0 {
			_ = e.send(ctx, sess.ChannelID, "Received: "+strings.Join(items, ", "))
		}
	}

	e.log.Info("chapter finished",
		zap.String("channel", sess.ChannelID),
		zap.String("chapter", sess.ChapterID),
		zap.String("state", string(out.State)),
		zap.Strings("rewards", items))

	e.sessions.Remove(sess.ChannelID)
	e.scheduler.Arm(sess.ChannelID, e.opts.TeardownDelay)
	return items
}

// activeSession resolves the channel to its live session and chapter.
func (e *Engine) activeSession(channelID, userID string) (*Session, *Chapter, error) {
	sess, ok := e.sessions.Get(channelID)
	if !ok {
		return nil, nil, fmt.Errorf("channel %s: %w", channelID, ErrNoSession)
	}
	if !sess.Active || sess.State.Terminal() {
		return nil, nil, fmt.Errorf("channel %s: %w", channelID, ErrInactiveSession)
	}
	if userID != "" && sess.UserID != userID {
		return nil, nil, fmt.Errorf("channel %s belongs to another user: %w", channelID, ErrWrongPhase)
	}
	ch, ok := e.chapters.Chapter(sess.ChapterID)
	if !ok {
		return nil, nil, fmt.Errorf("channel %s: %w", channelID, ErrUnknownChapter)
	}
	return sess, ch, nil
}

func (e *Engine) send(ctx context.Context, channelID, content string) error {
	if err := e.transport.SendMessage(ctx, channelID, content); err != nil {
		e.log.Warn("send failed", zap.String("channel", channelID), zap.Error(err))
		return err
	}
	return nil
}

func (e *Engine) sendHints(ctx context.Context, channelID string, hints []string) error {
	for _, hint := range hints {
		if err := e.send(ctx, channelID, hint); err != nil {
			return err
		}
	}
	return nil
}

// ignore logs a state mismatch at debug level; anything else is a bug worth a
// louder line.
func (e *Engine) ignore(err error) {
	if IsStateError(err) {
		e.log.Debug("ignored event", zap.Error(err))
		return
	}
	e.log.Warn("unexpected engine error", zap.Error(err))
}

// Package brain is the decision core: it turns a normalized utterance into a
// symbolic Decision and owns the confirmation gate for critical actions. It
// never executes anything itself; the caller maps actions to real operations.
//
// The brain is synchronous and holds no locks: callers must serialize their
// input sources into one Decide call stream.
package brain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"evo-v1/internal/config"
	"evo-v1/internal/memory"
	"evo-v1/internal/state"
)

// Canonical action identifiers crossing the executor boundary.
const (
	ActionAppExit    = "app.exit"
	ActionHibernate  = "power.hibernate"
	ActionLock       = "power.lock"
	ActionSleep      = "power.sleep"
	ActionDeleteFact = "memory.delete_fact"
)

// HudUnknown marks the fallback decision; the app layer uses it to hand the
// text to the legacy router.
const HudUnknown = "Unknown"

// Decision is everything the app layer needs to act on one utterance.
type Decision struct {
	SpeakText    string
	HudText      string
	Action       string
	ActionArgs   map[string]string
	NeedsConfirm bool
	ShouldExit   bool
}

type directEntry struct {
	action string
	speak  string
}

type powerEntry struct {
	action       string
	needsConfirm bool
	speak        string
}

type Brain struct {
	cfg    config.Config
	log    zerolog.Logger
	memory *memory.Store
	notes  *state.DB
	skills *Registry

	pending *PendingAction

	direct       map[string]directEntry
	power        map[string]powerEntry
	confirmWords map[string]struct{}
	cancelWords  map[string]struct{}

	now func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, mem *memory.Store, notes *state.DB, skills *Registry) *Brain {
	if skills == nil {
		skills = NewRegistry(log)
	}
	return &Brain{
		cfg:    cfg,
		log:    log,
		memory: mem,
		notes:  notes,
		skills: skills,
		direct: map[string]directEntry{
			"fecha evo": {ActionAppExit, "Shutting down."},
			"close evo": {ActionAppExit, "Shutting down."},
			"sair":      {ActionAppExit, "Shutting down."},
			"exit":      {ActionAppExit, "Shutting down."},
			"quit":      {ActionAppExit, "Shutting down."},
			"fecha":     {ActionAppExit, "Shutting down."}, // tolerated shorthand
		},
		power: map[string]powerEntry{
			"dormir":    {ActionSleep, false, "Suspending."},
			"suspender": {ActionSleep, false, "Suspending."},
			"suspend":   {ActionSleep, false, "Suspending."},
			"sleep":     {ActionSleep, false, "Suspending."},
			"bloquear":  {ActionLock, false, "Session locked."},
			"lock":      {ActionLock, false, "Session locked."},
			"hibernar":  {ActionHibernate, true, "Confirm hibernate? Say 'confirm' or 'cancel'."},
			"hibernate": {ActionHibernate, true, "Confirm hibernate? Say 'confirm' or 'cancel'."},
		},
		confirmWords: phraseSet("confirm", "confirmed", "yes", "ok", "confirmo", "sim", "confirmar"),
		cancelWords:  phraseSet("cancel", "no", "cancela", "cancelar", "nao"),
		now:          time.Now,
	}
}

// Pending returns a copy of the pending slot, if any.
func (b *Brain) Pending() (PendingAction, bool) {
	if b.pending == nil {
		return PendingAction{}, false
	}
	return *b.pending, true
}

// Decide is the single entry point. Priority: pending confirmation > skills >
// memory intents > direct commands > power commands > fallback.
func (b *Brain) Decide(text string) Decision {
	t := Normalize(text)

	// Housekeeping: an expired pending slot is cleared first, and the text
	// that triggered the check is discarded, not reinterpreted.
	if b.pending != nil && b.pending.Expired(b.now()) {
		b.log.Info().Str("action", b.pending.Action).Msg("confirmation expired")
		b.pending = nil
		return Decision{
			SpeakText: "The confirmation expired. Repeat the request.",
			HudText:   "Confirmation expired",
		}
	}

	if t == "" {
		return Decision{SpeakText: "Say a command.", HudText: "No command"}
	}

	// 1) A pending action suppresses every other path.
	if b.pending != nil {
		return b.handlePending(t)
	}

	// 2) Skills, in registration order.
	res := b.skills.Resolve(t, &SkillContext{
		Config: b.cfg,
		Memory: b.memory,
		Notes:  b.notes,
		Log:    b.log,
		Meta:   map[string]string{"brain": "evo"},
	})
	if res.Handled {
		return Decision{
			SpeakText:    res.SpeakText,
			HudText:      res.HudText,
			Action:       res.Action,
			ActionArgs:   res.ActionArgs,
			NeedsConfirm: res.NeedsConfirm,
			ShouldExit:   res.Action == ActionAppExit,
		}
	}

	// 3) Memory intents. The only synchronous side effects in the core.
	if d, ok := b.tryMemoryIntents(t); ok {
		return d
	}

	// 4) Direct safe commands.
	if e, ok := b.direct[t]; ok {
		return Decision{
			SpeakText:  e.speak,
			HudText:    "Action: " + e.action,
			Action:     e.action,
			ActionArgs: map[string]string{},
			ShouldExit: e.action == ActionAppExit,
		}
	}

	// 5) Power / system commands.
	if e, ok := b.power[t]; ok {
		if e.needsConfirm && b.cfg.RequireConfirmForPower {
			b.pending = &PendingAction{
				Action:    e.action,
				Args:      map[string]string{},
				CreatedAt: b.now(),
				TTL:       b.cfg.ConfirmTimeout(),
			}
			return Decision{
				SpeakText:    e.speak,
				HudText:      "Pending: " + e.action,
				NeedsConfirm: true,
			}
		}
		return Decision{
			SpeakText:  directPowerSpeak(e),
			HudText:    "Action: " + e.action,
			Action:     e.action,
			ActionArgs: map[string]string{},
		}
	}

	// 6) Controlled fallback.
	return Decision{
		SpeakText: "I don't have that capability yet. Can you rephrase it as a direct command?",
		HudText:   HudUnknown,
	}
}

// directPowerSpeak picks the spoken line for a power action that executes
// without confirmation. Confirm-gated entries store the prompt instead.
func directPowerSpeak(e powerEntry) string {
	if e.needsConfirm {
		switch e.action {
		case ActionHibernate:
			return "Hibernating."
		case ActionLock:
			return "Session locked."
		default:
			return "Ok."
		}
	}
	return e.speak
}

// Memory intent patterns, anchored. English first, with the Portuguese forms
// the voice pipeline was trained on kept as aliases.
var (
	memSetAsRe    = regexp.MustCompile(`^(?:remember|memoriza)\s+(.+?)\s+(?:as|como)\s+(.+)$`)
	memSetColonRe = regexp.MustCompile(`^(?:remember|memoriza)\s+(.+?)\s*:\s*(.+)$`)
	memGetRe      = regexp.MustCompile(`^(?:what do you know about|o que sabes (?:sobre|de))\s+(.+)$`)
	memDelRe      = regexp.MustCompile(`^(?:forget|delete|esquece|apaga)\s+(.+)$`)

	memPrefixRe = regexp.MustCompile(`^(?:remember|memoriza|forget|delete|esquece|apaga)\b`)
)

func (b *Brain) tryMemoryIntents(t string) (Decision, bool) {
	if b.memory == nil {
		return Decision{}, false
	}

	if m := memSetAsRe.FindStringSubmatch(t); m != nil {
		return b.memorySet(m[1], m[2]), true
	}
	if m := memSetColonRe.FindStringSubmatch(t); m != nil {
		return b.memorySet(m[1], m[2]), true
	}

	if m := memGetRe.FindStringSubmatch(t); m != nil {
		key := strings.TrimSpace(m[1])
		fact, ok := b.memory.GetFact(key)
		if !ok {
			return Decision{
				SpeakText: fmt.Sprintf("I have nothing stored about '%s' yet.", key),
				HudText:   "Memory empty: " + key,
			}, true
		}
		return Decision{
			SpeakText: fmt.Sprintf("About '%s': %s", key, fact.Value),
			HudText:   "Memory: " + key,
		}, true
	}

	if m := memDelRe.FindStringSubmatch(t); m != nil {
		key := strings.TrimSpace(m[1])

		// Existence pre-check: a delete of nothing never creates a pending.
		if _, ok := b.memory.GetFact(key); !ok {
			return Decision{
				SpeakText: fmt.Sprintf("I have nothing stored about '%s'.", key),
				HudText:   "Memory missing: " + key,
			}, true
		}

		b.pending = &PendingAction{
			Action:    ActionDeleteFact,
			Args:      map[string]string{"key": key},
			CreatedAt: b.now(),
			TTL:       b.cfg.ConfirmTimeout(),
		}
		return Decision{
			SpeakText:    fmt.Sprintf("Confirm deleting the memory of '%s'? Say 'confirm' or 'cancel'.", key),
			HudText:      "Pending: delete " + key,
			NeedsConfirm: true,
		}, true
	}

	// A memory verb with unparseable arguments gets a corrective message,
	// not the generic fallback.
	if memPrefixRe.MatchString(t) {
		return Decision{
			SpeakText: "Say: remember X as Y, what do you know about X, or forget X.",
			HudText:   "Memory: invalid format",
		}, true
	}

	return Decision{}, false
}

func (b *Brain) memorySet(key, value string) Decision {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return Decision{
			SpeakText: "Say: remember X as Y.",
			HudText:   "Memory: invalid format",
		}
	}
	if err := b.memory.SetFact(key, value); err != nil {
		b.log.Error().Err(err).Str("key", key).Msg("persist fact")
		return Decision{
			SpeakText: "I couldn't save that. Try again.",
			HudText:   "Memory: save failed",
		}
	}
	return Decision{
		SpeakText: fmt.Sprintf("Ok. Remembered '%s'.", key),
		HudText:   "Memory saved: " + key,
	}
}

func (b *Brain) handlePending(t string) Decision {
	if _, ok := b.confirmWords[t]; ok {
		action := b.pending.Action
		args := b.pending.Args
		b.pending = nil

		// Internal actions resolve inside the core and are never exposed.
		if action == ActionDeleteFact {
			key := strings.TrimSpace(args["key"])
			deleted, err := b.memory.DeleteFact(key)
			if err != nil {
				b.log.Error().Err(err).Str("key", key).Msg("delete fact")
			}
			if deleted {
				return Decision{
					SpeakText: fmt.Sprintf("Confirmed. Deleted '%s'.", key),
					HudText:   "Memory deleted: " + key,
				}
			}
			return Decision{
				SpeakText: "Confirmed, but that memory was already gone.",
				HudText:   "Memory already gone",
			}
		}

		return Decision{
			SpeakText:  "Confirmed.",
			HudText:    "Confirmed: " + action,
			Action:     action,
			ActionArgs: args,
		}
	}

	if _, ok := b.cancelWords[t]; ok {
		b.pending = nil
		return Decision{
			SpeakText: "Ok. Cancelled.",
			HudText:   "Cancelled",
		}
	}

	// Anything else re-prompts. The TTL is deliberately not refreshed, so
	// unrelated chatter cannot keep a pending request alive forever.
	return Decision{
		SpeakText:    "I need a confirmation. Say 'confirm' or 'cancel'.",
		HudText:      "Awaiting confirmation",
		NeedsConfirm: true,
	}
}

func phraseSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[Normalize(w)] = struct{}{}
	}
	return out
}

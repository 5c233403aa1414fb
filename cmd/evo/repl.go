package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"evo-v1/internal/brain"
	"evo-v1/internal/config"
	"evo-v1/internal/memory"
	"evo-v1/internal/session"
	"evo-v1/internal/state"
)

type loggerHandle struct {
	Log   zerolog.Logger
	Close func() error
}

// app wires the decision core together. One goroutine owns it: stdin lines
// arrive over a channel and are interleaved with the session tick, so the
// core never sees concurrent calls.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	db     *state.DB
	brain  *brain.Brain
	sm     *session.StateMachine
	router *brain.Router
}

func runREPL(cfg config.Config) error {
	lh, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer lh.Close()
	log := lh.Log

	db, err := state.Open(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	mem, err := memory.Open(cfg.MemoryPath())
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}

	skills := brain.NewRegistry(log)
	skills.Register(brain.NewHelpSkill())
	skills.Register(brain.NewReadFileSkill())
	skills.Register(brain.NewNotesQuerySkill())

	sm := session.New(cfg.ConversationTimeout())
	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		brain:  brain.New(cfg, log, mem, db, skills),
		sm:     sm,
		router: brain.NewRouter(cfg, sm, db, log),
	}

	fmt.Printf("%s online. Say '%s' before a command, or 'help'.\n",
		cfg.AppName, strings.ToLower(cfg.AppName))
	log.Info().Strs("skills", skills.Names()).Msg("decision core ready")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			a.handleLine(line)
		case <-ticker.C:
			a.sm.Tick()
		}
		if a.sm.Mode() == session.ModeExit {
			a.say("Goodbye.")
			return nil
		}
	}
}

func (a *app) say(text string) {
	if text != "" {
		fmt.Printf("[%s] %s\n", a.cfg.AppName, text)
	}
}

// handleLine applies the wake-prefix discipline before the core sees the
// text: in standby or sleep, input must name the operator first, except when
// a confirmation is pending.
func (a *app) handleLine(line string) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return
	}
	lower := strings.ToLower(raw)
	wake := strings.ToLower(a.cfg.AppName)

	_, pendingConfirm := a.brain.Pending()
	if a.cfg.WakeWordRequired && !pendingConfirm {
		if mode := a.sm.Mode(); mode == session.ModeStandby || mode == session.ModeSleep {
			if lower != wake && !strings.HasPrefix(lower, wake+" ") {
				fmt.Printf("(ignored) Say '%s' before the command.\n", wake)
				return
			}
		}
	}

	// The wake word always reopens the conversation, including from sleep.
	if lower == wake {
		a.sm.EnterConversation()
		a.say("Yes?")
		return
	}
	if strings.HasPrefix(lower, wake+" ") {
		a.sm.EnterConversation()
		a.decide(strings.TrimSpace(raw[len(wake):]))
		return
	}
	a.sm.Refresh()

	// Bare confirm/cancel (and anything else) while a confirmation pends.
	a.decide(raw)
}

func (a *app) decide(text string) {
	dec := a.brain.Decide(text)

	if dec.HudText != "" {
		a.log.Debug().Str("hud", dec.HudText).Msg("decision")
	}
	a.say(dec.SpeakText)

	a.record(text, dec.SpeakText, dec.Action, dec.NeedsConfirm)

	if dec.Action != "" {
		a.execute(dec)
		return
	}

	// The legacy router handles what the brain calls unknown, as long as no
	// confirmation is pending.
	if _, pending := a.brain.Pending(); !pending && dec.HudText == brain.HudUnknown {
		a.routeFallback(text)
	}
}

func (a *app) execute(dec brain.Decision) {
	if dec.Action == brain.ActionAppExit {
		a.sm.RequestExit()
		return
	}
	ok, msg := executeAction(a.log, dec.Action)
	a.say(msg)
	a.record("", msg, "", false)
	if ok {
		a.sm.EnterStandby()
	}
}

func (a *app) routeFallback(text string) {
	cmd := brain.Parse(text, a.cfg)
	a.log.Info().
		Str("intent", cmd.Intent.String()).
		Float64("confidence", cmd.Confidence).
		Msg("fallback route")

	res := a.router.Route(cmd)
	a.say(res.SpeakText)
	a.record(text, res.SpeakText, res.PendingAction, false)

	if res.PendingAction != "" {
		ok, msg := executeAction(a.log, res.PendingAction)
		a.say(msg)
		if ok {
			a.sm.EnterStandby()
		}
	}
	if res.ShouldExit {
		a.sm.RequestExit()
	}
}

func (a *app) record(input, spoken, action string, needsConfirm bool) {
	if input == "" && spoken == "" {
		return
	}
	err := a.db.AppendTranscript(state.TranscriptEntry{
		Source:       "text",
		Input:        input,
		Spoken:       spoken,
		Action:       action,
		NeedsConfirm: needsConfirm,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("transcript append failed")
	}
}

// executeAction is the relay stub at the action boundary: it never touches
// the OS, it only reports what the external executor would do.
func executeAction(log zerolog.Logger, action string) (bool, string) {
	log.Info().Str("action", action).Msg("relay to executor")
	switch action {
	case brain.ActionHibernate:
		return true, "Hibernating."
	case brain.ActionLock:
		return true, "Session locked."
	case brain.ActionSleep:
		return true, "Suspending the PC."
	default:
		return false, "Unknown action."
	}
}

package brain

import (
	"github.com/rs/zerolog"

	"evo-v1/internal/config"
	"evo-v1/internal/session"
)

// RouteResult is the legacy router's output. PendingAction, when set, is an
// action identifier the caller should execute immediately.
type RouteResult struct {
	HudText       string
	SpeakText     string
	PendingAction string
	ShouldExit    bool
}

// Transcript lets the router replay the last spoken reply. Nil disables
// repetition.
type Transcript interface {
	LastSpoken() (string, bool)
}

// Router is the older, simpler decision path kept strictly as a fallback
// behind the Brain: it consumes classified commands, keeps its own
// unstructured pending string (no TTL) and drives the session state machine
// directly. It must never run while the Brain holds a pending action.
type Router struct {
	cfg        config.Config
	sm         *session.StateMachine
	transcript Transcript
	log        zerolog.Logger

	pending string
}

func NewRouter(cfg config.Config, sm *session.StateMachine, transcript Transcript, log zerolog.Logger) *Router {
	return &Router{cfg: cfg, sm: sm, transcript: transcript, log: log}
}

func (r *Router) PendingAction() string { return r.pending }
func (r *Router) ClearPending()         { r.pending = "" }

func (r *Router) Route(cmd Command) RouteResult {
	app := r.cfg.AppName

	// 1) With a pending action, only CONFIRM/CANCEL matter.
	if r.pending != "" {
		switch cmd.Intent {
		case IntentConfirm:
			action := executableAction(r.pending)
			r.ClearPending()
			r.log.Info().Str("action", action).Msg("router: confirmed")
			return RouteResult{
				HudText:       app + ": Confirmed",
				SpeakText:     "Confirmed.",
				PendingAction: action,
			}
		case IntentCancel:
			r.ClearPending()
			return RouteResult{
				HudText:   app + ": Cancelled",
				SpeakText: "Cancelled.",
			}
		}
		return RouteResult{
			HudText:   app + ": Awaiting confirmation",
			SpeakText: "I'm waiting for your confirmation. Say: confirm, or cancel.",
		}
	}

	// 2) No pending: plain intents.
	switch cmd.Intent {
	case IntentConfirm:
		// Nothing was asked; saying "confirm" alone must not do anything.
		return RouteResult{
			HudText:   app + ": Nothing pending",
			SpeakText: "Nothing to confirm.",
		}
	case IntentCancel:
		return RouteResult{
			HudText:   app + ": Nothing pending",
			SpeakText: "Nothing to cancel.",
		}
	case IntentUnknown:
		return RouteResult{
			HudText:   app + ": Not understood",
			SpeakText: "I didn't get that. Repeat it more directly.",
		}
	case IntentRepeat:
		if r.transcript != nil {
			if last, ok := r.transcript.LastSpoken(); ok {
				return RouteResult{
					HudText:   app + ": Repeat",
					SpeakText: "I said: " + last,
				}
			}
		}
		return RouteResult{
			HudText:   app + ": Repeat",
			SpeakText: "I have nothing to repeat yet.",
		}
	case IntentSleep:
		r.sm.EnterSleep()
		return RouteResult{
			HudText:   app + ": Sleep",
			SpeakText: "Entering sleep mode.",
		}
	case IntentExit:
		r.sm.RequestExit()
		return RouteResult{
			HudText:    app + ": Shutting down",
			SpeakText:  "Shutting down.",
			ShouldExit: true,
		}
	}

	// 3) Critical power intents: stage a confirmation.
	if cmd.Intent == IntentHibernate || cmd.Intent == IntentLock || cmd.Intent == IntentSuspend {
		if cmd.NeedsConfirmation && cmd.ConfirmationKind != "" {
			r.pending = cmd.ConfirmationKind
			question, hud := confirmPrompt(app, cmd.ConfirmationKind)
			return RouteResult{HudText: hud, SpeakText: question}
		}

		// Confirmation disabled: hand the action straight back.
		kind := map[Intent]string{
			IntentHibernate: ActionHibernate,
			IntentLock:      ActionLock,
			IntentSuspend:   ActionSleep,
		}[cmd.Intent]
		return RouteResult{
			HudText:       app + ": Action ready",
			SpeakText:     "Ok.",
			PendingAction: kind,
		}
	}

	// 4) Waking up just enters conversation.
	if cmd.Intent == IntentWake {
		r.sm.EnterConversation()
		return RouteResult{
			HudText:   app + ": Conversation active",
			SpeakText: "Yes?",
		}
	}

	return RouteResult{
		HudText:   app + ": Not supported",
		SpeakText: "That command isn't available yet.",
	}
}

// executableAction maps a confirmation kind to the action identifier the
// executor understands: suspend resolves to the sleep action, and a
// confirmed power clarification resolves to hibernate, the offered option.
func executableAction(kind string) string {
	switch kind {
	case "power.suspend":
		return ActionSleep
	case "power.ask":
		return ActionHibernate
	default:
		return kind
	}
}

func confirmPrompt(app, kind string) (question, hud string) {
	switch kind {
	case ActionHibernate:
		return "Do you want me to hibernate the PC now? Say: confirm, or cancel.",
			app + ": Confirm hibernate"
	case ActionLock:
		return "Do you want to lock the session now? Say: confirm, or cancel.",
			app + ": Confirm lock"
	case "power.suspend":
		return "Do you want to suspend the PC now? Say: confirm, or cancel.",
			app + ": Confirm suspend"
	case "power.ask":
		return "Do you want to hibernate or shut down? To be safe, say: hibernate, or cancel.",
			app + ": Clarify power"
	default:
		return "Confirm the action. Say: confirm, or cancel.",
			app + ": Confirm"
	}
}

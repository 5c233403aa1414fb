package brain

import (
	"regexp"
	"strings"

	"evo-v1/internal/config"
)

// Intent is the closed set of purposes the classifier can assign.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentWake
	IntentSleep
	IntentExit
	IntentRepeat
	IntentHibernate
	IntentLock
	IntentSuspend
	IntentCancel
	IntentConfirm
)

func (i Intent) String() string {
	switch i {
	case IntentWake:
		return "WAKE"
	case IntentSleep:
		return "SLEEP"
	case IntentExit:
		return "EXIT"
	case IntentRepeat:
		return "REPEAT"
	case IntentHibernate:
		return "HIBERNATE"
	case IntentLock:
		return "LOCK"
	case IntentSuspend:
		return "SUSPEND"
	case IntentCancel:
		return "CANCEL"
	case IntentConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

// Command is an immutable classification result. Confidence values are fixed
// per rule at design time; the classifier never learns.
type Command struct {
	Intent            Intent
	Confidence        float64
	Raw               string
	Normalized        string
	NeedsConfirmation bool
	ConfirmationKind  string
}

// Word rules, in strict priority order. Confirmation is matched before
// anything else so a pending critical action can always be resolved.
var (
	confirmRe  = wordSet("confirm", "confirmed", "confirmo", "confirmar", "segue")
	cancelRe   = wordSet("cancel", "cancela", "cancelar", "nao", "no", "para", "deixa", "stop")
	exitRe     = wordSet("fecha", "fechar", "termina", "sair", "encerrar", "close", "quit", "exit")
	operatorRe = wordSet("evo", "assistant", "assistente", "operator", "operador")
	sleepRe    = wordSet("dormir", "dorme", "silencio", "standby", "quiet")
	repeatRe   = wordSet("repete", "repetir", "repeat", "volta a dizer", "say again")

	hibernateRe = wordSet("hiberna", "hibernar", "hibernacao", "hibernate")
	lockRe      = wordSet("bloqueia", "bloquear", "tranca", "lock")
	suspendRe   = wordSet("suspende", "suspender", "suspensao", "suspend", "sleep")
	powerOffRe  = wordSet("desliga", "desligar", "power off", "shut down", "shutdown", "turn off")
)

func wordSet(words ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Parse maps text to a Command. It is total: any input yields a valid intent
// with confidence in [0,1], and an unexpected panic in the rule cascade
// degrades to UNKNOWN instead of propagating.
func Parse(text string, cfg config.Config) (cmd Command) {
	raw := text
	norm := Normalize(raw)

	defer func() {
		if r := recover(); r != nil {
			cmd = Command{Intent: IntentUnknown, Confidence: 0.3, Raw: raw, Normalized: norm}
		}
	}()

	cmd = classify(raw, norm, cfg)
	return cmd
}

func classify(raw, norm string, cfg config.Config) Command {
	mk := func(intent Intent, conf float64) Command {
		return Command{Intent: intent, Confidence: conf, Raw: raw, Normalized: norm}
	}

	// 1) Confirmation must be explicit, and beats everything.
	if confirmRe.MatchString(norm) {
		return mk(IntentConfirm, 0.9)
	}

	// 2) Cancellation.
	if cancelRe.MatchString(norm) {
		return mk(IntentCancel, 0.9)
	}

	// 3) Exit. Trusted only when the operator is referenced by name; a bare
	// "fecha" still exits, at lower confidence.
	if exitRe.MatchString(norm) {
		if operatorRe.MatchString(norm) {
			return mk(IntentExit, 0.85)
		}
		return mk(IntentExit, 0.6)
	}

	// 4) Sleep / standby.
	if sleepRe.MatchString(norm) {
		return mk(IntentSleep, 0.85)
	}

	// 5) Repeat.
	if repeatRe.MatchString(norm) {
		return mk(IntentRepeat, 0.8)
	}

	// 6) Power intents. These never execute anything; they only carry the
	// confirmation requirement derived from the safety flag.
	wantsHibernate := hibernateRe.MatchString(norm)
	wantsLock := lockRe.MatchString(norm)
	wantsSuspend := suspendRe.MatchString(norm)

	// The generic "power off" phrase is resolved by policy.
	if powerOffRe.MatchString(norm) {
		switch cfg.PowerOffPolicy {
		case config.PowerOffHibernate:
			wantsHibernate = true
		case config.PowerOffAsk:
			return Command{
				Intent:            IntentHibernate,
				Confidence:        0.55,
				Raw:               raw,
				Normalized:        norm,
				NeedsConfirmation: true,
				ConfirmationKind:  "power.ask",
			}
		case config.PowerOffRefuse:
			return mk(IntentUnknown, 0.4)
		}
	}

	if wantsHibernate {
		return powerCommand(raw, norm, IntentHibernate, 0.85, "power.hibernate", cfg)
	}
	if wantsLock {
		return powerCommand(raw, norm, IntentLock, 0.8, "power.lock", cfg)
	}
	if wantsSuspend {
		return powerCommand(raw, norm, IntentSuspend, 0.75, "power.suspend", cfg)
	}

	// 7) Everything else.
	return mk(IntentUnknown, 0.3)
}

func powerCommand(raw, norm string, intent Intent, conf float64, kind string, cfg config.Config) Command {
	cmd := Command{Intent: intent, Confidence: conf, Raw: raw, Normalized: norm}
	if cfg.RequireConfirmForPower {
		cmd.NeedsConfirmation = true
		cmd.ConfirmationKind = kind
	}
	return cmd
}

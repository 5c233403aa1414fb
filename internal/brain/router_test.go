package brain

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"evo-v1/internal/config"
	"evo-v1/internal/session"
)

type fakeTranscript struct {
	last string
}

func (f *fakeTranscript) LastSpoken() (string, bool) {
	return f.last, f.last != ""
}

func newTestRouter(cfg config.Config, tr Transcript) (*Router, *session.StateMachine) {
	sm := session.New(30 * time.Second)
	return NewRouter(cfg, sm, tr, zerolog.Nop()), sm
}

func TestRoute_ConfirmWithNothingPending(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, nil)

	res := r.Route(Parse("confirm", cfg))
	if res.SpeakText != "Nothing to confirm." {
		t.Fatalf("unexpected reply: %q", res.SpeakText)
	}
	if res.PendingAction != "" {
		t.Fatalf("nothing was staged, got action %q", res.PendingAction)
	}

	res = r.Route(Parse("cancel", cfg))
	if res.SpeakText != "Nothing to cancel." {
		t.Fatalf("unexpected reply: %q", res.SpeakText)
	}
}

func TestRoute_HibernateConfirmFlow(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, nil)

	res := r.Route(Parse("hibernate", cfg))
	if !strings.Contains(res.SpeakText, "hibernate") || res.PendingAction != "" {
		t.Fatalf("expected a confirmation question, got %+v", res)
	}
	if r.PendingAction() != ActionHibernate {
		t.Fatalf("pending kind %q", r.PendingAction())
	}

	res = r.Route(Parse("confirm", cfg))
	if res.PendingAction != ActionHibernate {
		t.Fatalf("expected hibernate action after confirm, got %q", res.PendingAction)
	}
	if r.PendingAction() != "" {
		t.Fatalf("pending not cleared")
	}
}

func TestRoute_CancelClearsPending(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, nil)

	r.Route(Parse("hibernate", cfg))
	res := r.Route(Parse("cancel", cfg))
	if res.SpeakText != "Cancelled." || res.PendingAction != "" {
		t.Fatalf("unexpected cancel result: %+v", res)
	}
	if r.PendingAction() != "" {
		t.Fatalf("pending not cleared")
	}
}

func TestRoute_ChatterDuringPendingReprompts(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, nil)

	r.Route(Parse("hibernate", cfg))
	res := r.Route(Parse("what is the weather", cfg))
	if !strings.Contains(res.SpeakText, "waiting for your confirmation") {
		t.Fatalf("unexpected reply: %q", res.SpeakText)
	}
	if r.PendingAction() != ActionHibernate {
		t.Fatalf("chatter cleared the pending: %q", r.PendingAction())
	}
}

func TestRoute_SuspendConfirmResolvesToSleepAction(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, nil)

	r.Route(Parse("suspend", cfg))
	res := r.Route(Parse("confirm", cfg))
	if res.PendingAction != ActionSleep {
		t.Fatalf("suspend must resolve to %s, got %q", ActionSleep, res.PendingAction)
	}
}

func TestRoute_ConfirmDisabledIsImmediate(t *testing.T) {
	cfg := config.Default()
	cfg.RequireConfirmForPower = false
	r, _ := newTestRouter(cfg, nil)

	res := r.Route(Parse("hibernate", cfg))
	if res.PendingAction != ActionHibernate {
		t.Fatalf("expected immediate action, got %+v", res)
	}
	if r.PendingAction() != "" {
		t.Fatalf("no pending expected")
	}
}

func TestRoute_RepeatUsesTranscript(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, &fakeTranscript{last: "the door is locked"})

	res := r.Route(Parse("repeat", cfg))
	if res.SpeakText != "I said: the door is locked" {
		t.Fatalf("unexpected repeat: %q", res.SpeakText)
	}
}

func TestRoute_RepeatWithEmptyTranscript(t *testing.T) {
	cfg := config.Default()
	r, _ := newTestRouter(cfg, &fakeTranscript{})

	res := r.Route(Parse("repeat", cfg))
	if res.SpeakText != "I have nothing to repeat yet." {
		t.Fatalf("unexpected repeat: %q", res.SpeakText)
	}
}

func TestRoute_SleepAndExitDriveSession(t *testing.T) {
	cfg := config.Default()
	r, sm := newTestRouter(cfg, nil)

	r.Route(Parse("standby", cfg))
	if sm.Mode() != session.ModeSleep {
		t.Fatalf("expected sleep mode, got %s", sm.Mode())
	}

	res := r.Route(Parse("fecha evo", cfg))
	if !res.ShouldExit || sm.Mode() != session.ModeExit {
		t.Fatalf("expected exit, got %+v mode %s", res, sm.Mode())
	}
}

func TestRoute_WakeEntersConversation(t *testing.T) {
	cfg := config.Default()
	r, sm := newTestRouter(cfg, nil)

	res := r.Route(Command{Intent: IntentWake, Confidence: 1})
	if res.SpeakText != "Yes?" || sm.Mode() != session.ModeConversation {
		t.Fatalf("wake failed: %+v mode %s", res, sm.Mode())
	}
}

func TestRoute_UnknownIsPolite(t *testing.T) {
	cfg := config.Default()
	res, _ := newTestRouter(cfg, nil)

	got := res.Route(Parse("zorp the blorf", cfg))
	if !strings.Contains(got.SpeakText, "didn't get that") {
		t.Fatalf("unexpected reply: %q", got.SpeakText)
	}
}

// Package session tracks which mode EVO is in. Transitions are explicit and
// the conversation timeout is enforced by Tick, which the owner must drive;
// there is no internal timer.
package session

import "time"

type Mode int

const (
	ModeStandby Mode = iota
	ModeConversation
	ModeSleep
	ModeExit
)

func (m Mode) String() string {
	switch m {
	case ModeStandby:
		return "STANDBY"
	case ModeConversation:
		return "CONVERSATION"
	case ModeSleep:
		return "SLEEP"
	case ModeExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

type StateMachine struct {
	mode     Mode
	timeout  time.Duration
	deadline time.Time
	now      func() time.Time
}

func New(conversationTimeout time.Duration) *StateMachine {
	return &StateMachine{
		mode:    ModeStandby,
		timeout: conversationTimeout,
		now:     time.Now,
	}
}

func (sm *StateMachine) Mode() Mode { return sm.mode }

func (sm *StateMachine) EnterStandby() {
	sm.mode = ModeStandby
	sm.deadline = time.Time{}
}

func (sm *StateMachine) EnterConversation() {
	sm.mode = ModeConversation
	sm.deadline = sm.now().Add(sm.timeout)
}

// Refresh extends the conversation deadline while the user keeps talking.
// No-op outside conversation mode.
func (sm *StateMachine) Refresh() {
	if sm.mode == ModeConversation {
		sm.deadline = sm.now().Add(sm.timeout)
	}
}

func (sm *StateMachine) EnterSleep() {
	sm.mode = ModeSleep
	sm.deadline = time.Time{}
}

func (sm *StateMachine) RequestExit() {
	sm.mode = ModeExit
	sm.deadline = time.Time{}
}

// Tick reverts an expired conversation to standby. Must be called regularly
// by the owner.
func (sm *StateMachine) Tick() {
	if sm.mode == ModeConversation && sm.now().After(sm.deadline) {
		sm.EnterStandby()
	}
}

func (sm *StateMachine) ConversationActive() bool {
	return sm.mode == ModeConversation
}

package brain

import "strings"

// HelpSkill answers "what can you do" with the capabilities that actually
// exist. No promises.
type HelpSkill struct {
	phrases map[string]struct{}
}

func NewHelpSkill() *HelpSkill {
	return &HelpSkill{
		phrases: phraseSet(
			"help",
			"ajuda",
			"commands",
			"comandos",
			"what can you do",
			"o que sabes fazer",
			"capabilities",
			"capacidades",
		),
	}
}

func (s *HelpSkill) Name() string { return "help" }

func (s *HelpSkill) Match(text string) bool {
	_, ok := s.phrases[Normalize(text)]
	return ok
}

func (s *HelpSkill) Handle(text string, ctx *SkillContext) (SkillResult, error) {
	lines := []string{
		"I can run direct commands and manage local memory.",
		"Main commands:",
		"exit / close evo,",
		"sleep / suspend,",
		"lock,",
		"hibernate (asks for confirmation).",
		"Memory, offline:",
		"remember X as Y,",
		"what do you know about X,",
		"forget X (asks for confirmation).",
		"Files and notes:",
		"read file <path>,",
		"summarize last, search <term>.",
	}
	return SkillResult{
		Handled:   true,
		SpeakText: strings.Join(lines, " "),
		HudText:   "Help: available commands",
	}, nil
}

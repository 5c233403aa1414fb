package brain

import (
	"fmt"

	"github.com/rs/zerolog"

	"evo-v1/internal/config"
	"evo-v1/internal/memory"
	"evo-v1/internal/state"
)

// SkillContext is what the brain hands every skill. Kept small on purpose;
// skills that need more get it added here, not through globals.
type SkillContext struct {
	Config config.Config
	Memory *memory.Store
	Notes  *state.DB
	Log    zerolog.Logger
	Meta   map[string]string
}

// SkillResult is the uniform outcome the brain consumes.
type SkillResult struct {
	Handled      bool
	SpeakText    string
	HudText      string
	Action       string
	ActionArgs   map[string]string
	NeedsConfirm bool
}

// Skill handles one family of open-ended commands. Match must be cheap and
// side-effect free; Handle reports failure through its error, never by
// panicking (a panic is still contained at the chain boundary).
type Skill interface {
	Name() string
	Match(text string) bool
	Handle(text string, ctx *SkillContext) (SkillResult, error)
}

// Registry resolves skills in registration order; the first handled result
// wins. A failing skill is treated as "does not apply" and logged, so one
// misbehaving skill can never abort resolution or affect the others.
type Registry struct {
	skills []Skill
	log    zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{log: log}
}

func (r *Registry) Register(s Skill) {
	r.skills = append(r.skills, s)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for _, s := range r.skills {
		names = append(names, s.Name())
	}
	return names
}

func (r *Registry) Resolve(text string, ctx *SkillContext) SkillResult {
	if ctx == nil {
		ctx = &SkillContext{}
	}
	for _, s := range r.skills {
		res, err := trySkill(s, text, ctx)
		if err != nil {
			r.log.Warn().Str("skill", s.Name()).Err(err).Msg("skill failed, skipping")
			continue
		}
		if res.Handled {
			return res
		}
	}
	return SkillResult{Handled: false}
}

func trySkill(s Skill, text string, ctx *SkillContext) (res SkillResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = SkillResult{}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	if !s.Match(text) {
		return SkillResult{}, nil
	}
	return s.Handle(text, ctx)
}

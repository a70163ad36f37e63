package session

import (
	"github.com/harshmriduhash/callbot/internal/calllog"
	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/harshmriduhash/callbot/internal/responder"
	"github.com/harshmriduhash/callbot/internal/synthesizer"
	"github.com/harshmriduhash/callbot/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Registry, error) {
		return NewRegistry(), nil
	})
	do.Provide(injector, func(i do.Injector) (*Coordinator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		profiles := do.MustInvoke[profile.Store](i)
		calllogs := do.MustInvoke[calllog.Repository](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		synth := do.MustInvoke[synthesizer.Synthesizer](i)
		resp := do.MustInvoke[responder.Responder](i)
		registry := do.MustInvoke[*Registry](i)
		return NewCoordinator(cfg, profiles, calllogs, stt, synth, resp, registry), nil
	})
}

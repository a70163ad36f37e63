package mediaserver

import (
	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		coordinator := do.MustInvoke[*session.Coordinator](i)
		registry := do.MustInvoke[*session.Registry](i)
		return NewServer(cfg, coordinator, registry), nil
	})
}

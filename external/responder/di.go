package responder

import (
	"context"

	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/responder"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (responder.Responder, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGeminiResponder(context.Background(), GeminiConfig{
			APIKey:  c.GeminiAPIKey,
			Model:   c.GeminiModel,
			Timeout: c.ExternalCallTimeout(),
		})
	})
}

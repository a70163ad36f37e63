package synthesizer

import (
	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/synthesizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (synthesizer.Synthesizer, error) {
		c := do.MustInvoke[*config.Config](i)
		return New(Config{
			Provider: c.TTSProvider,
			APIKey:   c.TTSAPIKey,
			VoiceID:  c.TTSVoiceID,
			Timeout:  c.ExternalCallTimeout(),
		})
	})
}

package synthesizer

import (
	"context"
	"fmt"

	"github.com/harshmriduhash/callbot/internal/synthesizer"
)

// azureSynthesizer is declared for configuration compatibility but has no
// implementation yet. It fails every request explicitly instead of
// returning empty audio.
type azureSynthesizer struct{}

func (s *azureSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("%w: azure synthesis is not implemented", synthesizer.ErrUnsupportedProvider)
}

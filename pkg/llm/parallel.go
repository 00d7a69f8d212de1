package llm

import "context"

type legResult struct {
	text string
	err  error
}

// GenerateDual issues the prose-framing and strict-structure calls
// concurrently under a shared deadline. If the deadline elapses or either
// leg fails, a single combined call is issued instead of propagating
// partial results.
func (c *OpenAIClient) GenerateDual(ctx context.Context, prose, structured Request) (DualResult, error) {
	dualCtx, cancel := context.WithTimeout(ctx, c.parallelTimeout)
	defer cancel()

	proseCh := make(chan legResult, 1)
	structCh := make(chan legResult, 1)

	go func() {
		text, err := c.Generate(dualCtx, prose)
		proseCh <- legResult{text: text, err: err}
	}()

	go func() {
		text, err := c.Generate(dualCtx, structured)
		structCh <- legResult{text: text, err: err}
	}()

	var proseLeg, structLeg *legResult

	for proseLeg == nil || structLeg == nil {
		select {
		case result := <-proseCh:
			proseLeg = &result
		case result := <-structCh:
			structLeg = &result
		case <-dualCtx.Done():
			return c.combinedFallback(ctx, structured)
		}

		if (proseLeg != nil && proseLeg.err != nil) || (structLeg != nil && structLeg.err != nil) {
			cancel()

			return c.combinedFallback(ctx, structured)
		}
	}

	return DualResult{Prose: proseLeg.text, Structured: structLeg.text}, nil
}

// combinedFallback runs the structure request as one sequential call; its
// payload message doubles as the natural-language framing.
func (c *OpenAIClient) combinedFallback(ctx context.Context, structured Request) (DualResult, error) {
	c.logger.DebugContext(ctx, "Parallel mode fell back to combined single call")

	text, err := c.Generate(ctx, structured)
	if err != nil {
		return DualResult{}, err
	}

	return DualResult{Structured: text}, nil
}

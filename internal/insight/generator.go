// Package insight turns the unreliable generative-language provider into a
// total function: every call returns some on-brand sentence, absorbing
// provider errors, timeouts and stylistic drift.
package insight

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Henok-Aragaw/echo/internal/genai"
	"github.com/Henok-Aragaw/echo/internal/model"
)

// Model tiers, most capable and cheapest first.
const (
	modelTier1 = "gemini-2.5-flash-lite"
	modelTier2 = "gemini-2.5-flash"
	modelTier3 = "gemini-2.0-flash"
	modelTier4 = "gemini-flash"
)

// Fixed fallback sentences. Returned whenever generation degrades; callers
// never see an error from this package.
const (
	fragmentFallback = "A quiet moment that felt worth holding onto."
	dailyFallback    = "The day settled quietly, shaped by moments that mattered in simple ways."
	quietDaySummary  = "The day moved gently, without many moments asking to be remembered."
)

// toneRx kills analytical or fantasy tone. One hit anywhere in a result
// discards the whole generation in favor of the fixed fallback; later tiers
// are not consulted.
var toneRx = regexp.MustCompile(`(?i)likely|probably|appears|seems|tapestry|journey|unfold|weave|cosmic`)

// Moment is the (content, type) pair fed into the daily summary prompt.
type Moment struct {
	Content string
	Type    model.FragmentType
}

// Generator runs the tiered model-fallback strategy.
type Generator struct {
	gen    genai.TextGenerator
	log    zerolog.Logger
	models []string

	// Timing knobs; tests shrink them.
	AttemptTimeout time.Duration // bound on each individual model call
	RetrySleep     time.Duration // pause before retrying an overloaded model
	TierSleep      time.Duration // pause before falling through to the next tier
}

// NewGenerator builds a Generator with the production tier order and timing.
func NewGenerator(gen genai.TextGenerator, log zerolog.Logger) *Generator {
	return &Generator{
		gen:            gen,
		log:            log,
		models:         []string{modelTier1, modelTier2, modelTier3, modelTier4},
		AttemptTimeout: 10 * time.Second,
		RetrySleep:     1500 * time.Millisecond,
		TierSleep:      time.Second,
	}
}

// FragmentInsight returns one reflective sentence for a captured fragment.
// Never fails; degraded generation yields the fixed fragment fallback.
func (g *Generator) FragmentInsight(ctx context.Context, content string, ftype model.FragmentType, caption string) string {
	return g.generateWithFallback(ctx, fragmentPrompt(content, ftype, caption), fragmentFallback)
}

// DailyMemory returns a 2-3 sentence narrative for one day's moments.
// An empty day short-circuits to the quiet-day sentence without any model call.
func (g *Generator) DailyMemory(ctx context.Context, moments []Moment) string {
	if len(moments) == 0 {
		return quietDaySummary
	}

	var lines []string
	for _, m := range moments {
		lines = append(lines, fmt.Sprintf("- (%s) %s", strings.ToLower(string(m.Type)), m.Content))
	}

	prompt := fmt.Sprintf(`You are ECHO, a personal memory companion.

These moments were captured across one day:
%s

Write a short daily memory in 2-3 sentences.
Make it feel personal and reflective, like a page from a journal.
No advice. No analysis. No metaphors about journeys or time.`, strings.Join(lines, "\n"))

	return g.generateWithFallback(ctx, prompt, dailyFallback)
}

// generateWithFallback walks the model tiers. A usable result is returned as
// is; a tone-filter hit returns fallback immediately without trying further
// tiers; any model failure sleeps briefly and falls through. Exhausting every
// tier also returns fallback.
func (g *Generator) generateWithFallback(ctx context.Context, prompt, fallback string) string {
	for _, m := range g.models {
		text, err := g.tryModel(ctx, m, prompt)
		if err != nil {
			g.log.Warn().Err(err).Str("model", m).Msg("generation attempt failed, falling through")
			if !sleep(ctx, g.TierSleep) {
				return fallback
			}
			continue
		}
		if toneRx.MatchString(text) {
			g.log.Debug().Str("model", m).Msg("generated text hit tone block-list")
			return fallback
		}
		return text
	}
	return fallback
}

// tryModel runs up to two attempts against one model. Only the provider's
// transient overload signal earns the second attempt; anything else aborts
// the model immediately. Each attempt is bounded by AttemptTimeout.
func (g *Generator) tryModel(ctx context.Context, m, prompt string) (string, error) {
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.AttemptTimeout)
		text, err := g.gen.Generate(callCtx, m, prompt)
		cancel()
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("empty response from %s", m)
			}
			return strings.TrimSpace(text), nil
		}
		lastErr = err
		if errors.Is(err, genai.ErrOverloaded) && attempt < maxAttempts {
			if !sleep(ctx, g.RetrySleep) {
				return "", ctx.Err()
			}
			continue
		}
		return "", err
	}
	return "", lastErr
}

func fragmentPrompt(content string, ftype model.FragmentType, caption string) string {
	switch ftype {
	case model.FragmentLink:
		return fmt.Sprintf(`You are ECHO, a personal memory companion.

The user saved this link:
%q

Write ONE memorable sentence about what this link represented in the user's day.
Focus on intention, curiosity, or care for doing things properly.
Speak with quiet certainty, not analysis.
Avoid words like "likely", "probably", or "appears".`, content)

	case model.FragmentImage:
		if caption == "" {
			caption = "No caption provided"
		}
		return fmt.Sprintf(`You are ECHO, a personal memory companion.

The user saved an image.
Optional context:
%q

Write ONE memorable sentence about why the user chose to keep this image.
Focus on feeling, not description.
Speak with warmth and confidence, as if this moment is already understood.
Avoid uncertainty or visual analysis.`, caption)

	case model.FragmentLocation:
		return fmt.Sprintf(`You are ECHO, a personal memory companion.

The user saved this place:
%q

Write ONE memorable sentence about why this place mattered in that moment.
Focus on presence and meaning, not geography.
Use calm, reflective language with gentle confidence.`, content)

	default: // TEXT
		return fmt.Sprintf(`You are ECHO, a personal memory companion.

The user wrote:
%q

Write ONE memorable sentence that reads like a private journal.
Speak with gentle confidence, as if the meaning is already understood.
Use poetic but grounded language.
Do not sound analytical or uncertain.`, content)
	}
}

// sleep waits for d or until ctx is done; reports whether the full wait
// completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

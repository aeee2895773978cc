package services

import (
	"context"
	"time"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
	"github.com/ewilliams-labs/moodify/internal/metrics"
)

const (
	// candidateFactor is how many AI candidates are requested per slot.
	candidateFactor = 3

	verifyLimit     = 2
	supplementLimit = 3
	directLimit     = 5
)

const (
	stageAI         = "ai"
	stageSupplement = "supplement"
	stageDirect     = "direct"
	stageLastResort = "last_resort"
)

// Resolver turns a mood into a list of playable, distinct tracks by
// cascading through AI candidates, mood phrases and a generic catalog search.
type Resolver struct {
	catalog    ports.Catalog
	candidates ports.CandidateSource
}

// NewResolver constructs a Resolver. candidates may be nil when no language
// model is configured; resolution then starts at the direct stage.
func NewResolver(catalog ports.Catalog, candidates ports.CandidateSource) *Resolver {
	return &Resolver{
		catalog:    catalog,
		candidates: candidates,
	}
}

// Resolve returns at most count tracks, each with a stream URL and a unique
// title+artist key, in discovery order. It never fails; a shortfall is
// reported as a shorter list.
func (r *Resolver) Resolve(ctx context.Context, mood domain.Mood, count int) []domain.Track {
	if count <= 0 {
		return []domain.Track{}
	}
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("component", "resolver").Str("mood", mood.String()).Int("count", count).Logger()

	res := &resolution{
		rec:   &domain.Recommendation{Mood: mood, Tracks: make([]domain.Track, 0, count)},
		seen:  make(map[string]bool),
		count: count,
	}

	var candidates []domain.Track
	if r.candidates != nil {
		candidates = r.candidates.Candidates(ctx, mood, count*candidateFactor)
	}

	if len(candidates) > 0 {
		r.verifyCandidates(ctx, res, candidates)
		metrics.RecordStage(stageAI, res.rec.Len())
		if !res.full() {
			r.searchPhrases(ctx, res, domain.SupplementQueries(mood), supplementLimit, stageSupplement)
		}
	} else {
		log.Debug().Msg("no ai candidates, starting at direct stage")
	}

	if !res.full() {
		r.searchPhrases(ctx, res, domain.DirectQueries(mood), directLimit, stageDirect)
	}

	if !res.full() {
		before := res.rec.Len()
		for _, t := range r.catalog.SearchMood(ctx, mood, count) {
			if res.full() {
				break
			}
			res.add(t)
		}
		metrics.RecordStage(stageLastResort, res.rec.Len()-before)
	}

	metrics.RecordResolve(time.Since(start), res.rec.Len(), count)
	log.Info().Int("resolved", res.rec.Len()).Dur("took", time.Since(start)).Msg("recommendations resolved")
	return res.rec.Tracks
}

// verifyCandidates looks each candidate up in the catalog and keeps the first
// playable hit, carrying the candidate's rationale across.
func (r *Resolver) verifyCandidates(ctx context.Context, res *resolution, candidates []domain.Track) {
	for _, c := range candidates {
		if res.full() {
			return
		}
		key := c.Key()
		if res.seen[key] {
			continue
		}
		res.seen[key] = true

		hits, err := r.catalog.Search(ctx, c.Query(), verifyLimit)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("candidate", c.Query()).Msg("candidate lookup failed")
			continue
		}
		for _, hit := range hits {
			if hit.Title == "" || !hit.Playable() {
				continue
			}
			hit.MoodMatch = c.MoodMatch
			if res.add(hit) {
				break
			}
		}
	}
}

func (r *Resolver) searchPhrases(ctx context.Context, res *resolution, phrases []string, limit int, stage string) {
	before := res.rec.Len()
	for _, q := range phrases {
		if res.full() {
			break
		}
		hits, err := r.catalog.Search(ctx, q, limit)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("query", q).Str("stage", stage).Msg("phrase search failed")
			continue
		}
		for _, hit := range hits {
			if res.full() {
				break
			}
			res.add(hit)
		}
	}
	metrics.RecordStage(stage, res.rec.Len()-before)
}

// resolution accumulates tracks for one Resolve call. seen holds candidate
// and result keys; rec enforces playability and key uniqueness.
type resolution struct {
	rec   *domain.Recommendation
	seen  map[string]bool
	count int
}

func (s *resolution) full() bool { return s.rec.Len() >= s.count }

func (s *resolution) add(t domain.Track) bool {
	if s.full() {
		return false
	}
	if err := s.rec.AddTrack(t); err != nil {
		return false
	}
	s.seen[t.Key()] = true
	return true
}

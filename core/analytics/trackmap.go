package analytics

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/pitwall-io/pitwall/errs"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/refdata"
)

// OutlinePoint is one vertex of the reconstructed circuit shape.
type OutlinePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CarMarker is one synthesized car position along the outline.
type CarMarker struct {
	refdata.Record
	Position     int     `json:"position"`
	OutlineIndex int     `json:"outline_index"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// TrackMapView is the live map: the cached outline plus synthesized cars.
type TrackMapView struct {
	IsDemo     bool           `json:"is_demo"`
	SessionKey string         `json:"session_key"`
	Outline    []OutlinePoint `json:"outline"`
	Cars       []CarMarker    `json:"cars"`
}

// referenceDrivers are tried in order when picking the lap to trace.
var referenceDrivers = [2]int{1, 44}

// minOutlineSamples guards against tracing a partial lap.
const minOutlineSamples = 20

// Outline returns the circuit shape for a session. Reconstruction runs at
// most once per session id ever: results live in memory for a day and on
// disk indefinitely, because track geometry cannot change mid-event.
func (a *Analyzer) Outline(ctx context.Context, sessionKey string) ([]OutlinePoint, error) {
	res := a.resolve(ctx, sessionKey)
	key := "track_outline:" + res.SessionKey
	if hit, ok := a.store.Get(key); ok {
		if outline, ok := hit.([]OutlinePoint); ok {
			return outline, nil
		}
	}

	// Serialize computation so concurrent callers cannot each trigger the
	// expensive fine-grained fetch.
	a.outlineMu.Lock()
	defer a.outlineMu.Unlock()
	if hit, ok := a.store.Get(key); ok {
		if outline, ok := hit.([]OutlinePoint); ok {
			return outline, nil
		}
	}

	if outline, ok := a.readArtifact(res.SessionKey); ok {
		a.store.Set(key, outline)
		return outline, nil
	}

	outline, err := a.reconstructOutline(ctx, res.SessionKey)
	if err != nil {
		return nil, err
	}
	a.writeArtifact(res.SessionKey, outline)
	a.store.Set(key, outline)
	return outline, nil
}

// TrackMap returns the outline with car markers synthesized from the
// lightweight position feed. Marker placement is proportional to race
// position, not measured telemetry: the leader sits near outline index 0
// and the last car near 80% of the outline. This is a deliberate visual
// approximation that keeps the per-refresh request shape fixed and cheap.
func (a *Analyzer) TrackMap(ctx context.Context, sessionKey string) (TrackMapView, error) {
	res := a.resolve(ctx, sessionKey)
	outline, err := a.Outline(ctx, res.SessionKey)
	if err != nil {
		return TrackMapView{}, err
	}

	positions, err := a.live.Positions(ctx, res.SessionKey)
	if err != nil {
		observability.Log().Warn("track map position fetch degraded",
			observability.Field{Key: "error", Value: err.Error()})
	}
	latest := make(map[int]openf1.Position)
	for _, p := range positions {
		if p.DriverNumber == 0 {
			continue
		}
		if cur, ok := latest[p.DriverNumber]; !ok || p.Date > cur.Date {
			latest[p.DriverNumber] = p
		}
	}
	ordered := make([]openf1.Position, 0, len(latest))
	for _, p := range latest {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	season := a.season(res)
	cars := make([]CarMarker, 0, len(ordered))
	for rank, p := range ordered {
		idx := outlineIndexFor(rank, len(ordered), len(outline))
		marker := CarMarker{
			Record:       refdata.Enrich(season, p.DriverNumber),
			Position:     p.Position,
			OutlineIndex: idx,
			X:            0,
			Y:            0,
		}
		if idx >= 0 && idx < len(outline) {
			marker.X = outline[idx].X
			marker.Y = outline[idx].Y
		}
		cars = append(cars, marker)
	}

	return TrackMapView{
		IsDemo:     res.IsDemo,
		SessionKey: res.SessionKey,
		Outline:    outline,
		Cars:       cars,
	}, nil
}

// outlineIndexFor spreads the field over the first 80% of the outline by
// rank: rank 0 maps to index 0, the last rank to 80% of the length.
func outlineIndexFor(rank, fieldSize, outlineLen int) int {
	if outlineLen == 0 {
		return -1
	}
	if fieldSize <= 1 || rank <= 0 {
		return 0
	}
	frac := 0.8 * float64(rank) / float64(fieldSize-1)
	idx := int(frac * float64(outlineLen-1))
	if idx >= outlineLen {
		idx = outlineLen - 1
	}
	return idx
}

// reconstructOutline traces one representative lap of one reference driver
// and never samples the whole field: full-field fine-grained sampling is
// the one query shape constrained deployments cannot afford.
func (a *Analyzer) reconstructOutline(ctx context.Context, sessionKey string) ([]OutlinePoint, error) {
	for _, driver := range referenceDrivers {
		laps, err := a.live.Laps(ctx, sessionKey, driver)
		if err != nil {
			observability.Log().Debug("outline lap fetch failed",
				observability.Field{Key: "driver", Value: driver},
				observability.Field{Key: "error", Value: err.Error()})
			continue
		}
		lap, ok := representativeLap(laps)
		if !ok {
			continue
		}
		start, err := time.Parse(time.RFC3339, lap.DateStart)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(*lap.LapDuration * float64(time.Second)))
		samples, err := a.live.Locations(ctx, sessionKey, driver,
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
		if err != nil || len(samples) < minOutlineSamples {
			continue
		}
		return downsample(samples, a.settings.Analytics.OutlinePoints), nil
	}
	return nil, errs.New("openf1", errs.CodeUnavailable,
		errs.WithMessage("no reference lap available for outline reconstruction"))
}

// representativeLap prefers a lap past the opening laps with a recorded
// duration, so the trace is a clean flying lap rather than the out-lap.
func representativeLap(laps []openf1.Lap) (openf1.Lap, bool) {
	sort.Slice(laps, func(i, j int) bool { return laps[i].LapNumber < laps[j].LapNumber })
	for _, lap := range laps {
		if lap.LapNumber > 2 && lap.LapDuration != nil && *lap.LapDuration > 0 && lap.DateStart != "" {
			return lap, true
		}
	}
	for _, lap := range laps {
		if lap.LapDuration != nil && *lap.LapDuration > 0 && lap.DateStart != "" {
			return lap, true
		}
	}
	return openf1.Lap{}, false
}

// downsample reduces the trace to roughly target points by fixed stride.
func downsample(samples []openf1.Location, target int) []OutlinePoint {
	if target <= 0 {
		target = 250
	}
	stride := len(samples) / target
	if stride < 1 {
		stride = 1
	}
	out := make([]OutlinePoint, 0, target+1)
	for i := 0; i < len(samples); i += stride {
		out = append(out, OutlinePoint{X: samples[i].X, Y: samples[i].Y})
	}
	return out
}

func (a *Analyzer) artifactPath(sessionKey string) string {
	return filepath.Join(a.settings.Analytics.OutlineDir, "outline_"+sessionKey+".json")
}

func (a *Analyzer) readArtifact(sessionKey string) ([]OutlinePoint, bool) {
	raw, err := os.ReadFile(a.artifactPath(sessionKey))
	if err != nil {
		return nil, false
	}
	var outline []OutlinePoint
	if err := json.Unmarshal(raw, &outline); err != nil || len(outline) == 0 {
		return nil, false
	}
	return outline, true
}

// writeArtifact persists the outline; failure is logged and ignored since
// the in-memory copy keeps the session serviceable.
func (a *Analyzer) writeArtifact(sessionKey string, outline []OutlinePoint) {
	raw, err := json.Marshal(outline)
	if err != nil {
		return
	}
	path := a.artifactPath(sessionKey)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		observability.Log().Warn("outline artifact dir create failed",
			observability.Field{Key: "path", Value: path},
			observability.Field{Key: "error", Value: err.Error()})
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		observability.Log().Warn("outline artifact write failed",
			observability.Field{Key: "path", Value: path},
			observability.Field{Key: "error", Value: err.Error()})
	}
}

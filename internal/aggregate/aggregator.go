package aggregate

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/supplematch/internal/logger"
	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/source"
)

// Aggregator builds snapshots from a source. A failing sub-source degrades the
// snapshot to "no data" for that part instead of failing the whole build.
type Aggregator struct {
	src        source.Source
	windowDays int
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an aggregator averaging over the last windowDays days
func New(src source.Source, windowDays int, log *zap.Logger) *Aggregator {
	if windowDays <= 0 {
		windowDays = model.DefaultScoringConfig().AverageWindowDays
	}
	return &Aggregator{
		src:        src,
		windowDays: windowDays,
		logger:     logger.WithFields(log),
		now:        time.Now,
	}
}

// WithClock overrides the clock, for tests and reproducible runs
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate fetches profile, check-ins and nutrition logs concurrently and
// folds them into a snapshot. It only fails when ctx is done.
func (a *Aggregator) Aggregate(ctx context.Context, userID string) (*model.AggregatedUserData, error) {
	now := a.now().UTC()
	since := WindowStart(now, a.windowDays)
	log := logger.WithUser(a.logger, userID)

	var (
		wg        sync.WaitGroup
		profile   *model.ProfileRecord
		checkins  []model.Checkin
		nutrition []model.NutritionLog
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		p, err := a.src.Profile(ctx, userID)
		if err != nil {
			absorb(log, "profile", err)
			return
		}
		profile = p
	}()
	go func() {
		defer wg.Done()
		c, err := a.src.Checkins(ctx, userID, since)
		if err != nil {
			absorb(log, "checkins", err)
			return
		}
		checkins = c
	}()
	go func() {
		defer wg.Done()
		n, err := a.src.NutritionLogs(ctx, userID, since)
		if err != nil {
			absorb(log, "nutrition_logs", err)
			return
		}
		nutrition = n
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := Build(userID, profile, checkins, nutrition, since, now)
	log.Debug("snapshot aggregated",
		zap.Bool("profile", profile != nil),
		zap.Int("daily_data_points", snap.Daily.DataPoints),
		zap.Int("nutrition_data_points", snap.Nutrition.DataPoints),
	)
	return snap, nil
}

func absorb(log *zap.Logger, name string, err error) {
	if errors.Is(err, source.ErrNotFound) {
		log.Debug("source has no data", zap.String(logger.FieldSource, name))
		return
	}
	log.Warn("source failed; treating as no data", zap.String(logger.FieldSource, name), zap.Error(err))
}

// WindowStart returns the start of the averaging window: midnight UTC of the
// oldest day included, with today counting as one of the days
func WindowStart(now time.Time, days int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))
}

// Build folds raw records into a snapshot. Records outside [since, now] are ignored.
func Build(userID string, profile *model.ProfileRecord, checkins []model.Checkin, nutrition []model.NutritionLog, since, now time.Time) *model.AggregatedUserData {
	snap := &model.AggregatedUserData{
		UserID:    userID,
		Freshness: model.Freshness{AggregatedAt: now},
	}

	if profile != nil {
		snap.Profile = profile.Basic
		snap.Fitness = profile.Fitness
		snap.Lifestyle = profile.Lifestyle
		snap.Health = profile.Health
		snap.Goals = profile.Goals
		snap.Freshness.ProfileUpdatedAt = profile.UpdatedAt
	}

	inWindow := func(t time.Time) bool { return !t.Before(since) && !t.After(now) }

	var daily []model.Checkin
	for _, c := range checkins {
		if inWindow(c.Date) {
			daily = append(daily, c)
		}
	}
	snap.Daily = dailyAverages(daily)
	snap.Freshness.LastCheckinAt = latest(len(daily), func(i int) time.Time { return daily[i].Date })

	var logs []model.NutritionLog
	for _, n := range nutrition {
		if inWindow(n.Date) {
			logs = append(logs, n)
		}
	}
	snap.Nutrition = nutritionAverages(logs)
	snap.Freshness.LastNutritionAt = latest(len(logs), func(i int) time.Time { return logs[i].Date })

	return snap
}

// dailyAverages averages each metric over the check-ins that carry it
func dailyAverages(checkins []model.Checkin) model.DailyAverages {
	days := make(map[string]bool)
	var sleep, quality, energy, stress, mood, soreness, water, steps mean
	for _, c := range checkins {
		days[dayKey(c.Date)] = true
		sleep.add(c.SleepHours)
		quality.add(c.SleepQuality)
		energy.add(c.EnergyLevel)
		stress.add(c.StressLevel)
		mood.add(c.Mood)
		soreness.add(c.Soreness)
		water.add(c.WaterLiters)
		steps.add(c.Steps)
	}
	return model.DailyAverages{
		DataPoints:   len(days),
		SleepHours:   sleep.value(),
		SleepQuality: quality.value(),
		EnergyLevel:  energy.value(),
		StressLevel:  stress.value(),
		Mood:         mood.value(),
		Soreness:     soreness.value(),
		WaterLiters:  water.value(),
		Steps:        steps.value(),
	}
}

// nutritionAverages sums logs per day, then averages the daily totals over
// the days that logged each metric
func nutritionAverages(logs []model.NutritionLog) model.NutritionAverages {
	type totals struct {
		calories, protein, carbs, fat, fiber, sugar *float64
	}
	byDay := make(map[string]*totals)
	var order []string
	for _, n := range logs {
		key := dayKey(n.Date)
		t, ok := byDay[key]
		if !ok {
			t = &totals{}
			byDay[key] = t
			order = append(order, key)
		}
		t.calories = sum(t.calories, n.Calories)
		t.protein = sum(t.protein, n.ProteinG)
		t.carbs = sum(t.carbs, n.CarbsG)
		t.fat = sum(t.fat, n.FatG)
		t.fiber = sum(t.fiber, n.FiberG)
		t.sugar = sum(t.sugar, n.SugarG)
	}

	var calories, protein, carbs, fat, fiber, sugar mean
	for _, key := range order {
		t := byDay[key]
		calories.add(t.calories)
		protein.add(t.protein)
		carbs.add(t.carbs)
		fat.add(t.fat)
		fiber.add(t.fiber)
		sugar.add(t.sugar)
	}
	return model.NutritionAverages{
		DataPoints: len(byDay),
		Calories:   calories.value(),
		ProteinG:   protein.value(),
		CarbsG:     carbs.value(),
		FatG:       fat.value(),
		FiberG:     fiber.value(),
		SugarG:     sugar.value(),
	}
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

// value is rounded to two decimals so record order cannot change the fingerprint
func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := math.Round(m.sum/float64(m.n)*100) / 100
	return &v
}

func sum(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	if acc == nil {
		x := *v
		return &x
	}
	x := *acc + *v
	return &x
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func latest(n int, at func(int) time.Time) *time.Time {
	if n == 0 {
		return nil
	}
	newest := at(0)
	for i := 1; i < n; i++ {
		if t := at(i); t.After(newest) {
			newest = t
		}
	}
	return &newest
}

package probe

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/okian/payscout/internal/domain/types"
	"github.com/okian/payscout/pkg/logger"
)

// strictMinRating is the tight bound used for the monotonicity check.
const strictMinRating = "4.5"

// CheckCatalog walks every category and verifies the listing invariants:
// descending rating order, shown counts that shrink as min_rating rises,
// a fully relaxed filter that shows everything, and cashouts within the ceiling.
func CheckCatalog(ctx context.Context, config *Config) (*Report, error) {
	report := &Report{StartTime: time.Now()}
	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	var categories []types.CategorySummary
	if err := client.GetJSON(ctx, config.BaseURL+"/categories", &categories); err != nil {
		return nil, fmt.Errorf("category listing failed: %w", err)
	}
	report.Categories = len(categories)

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	jobs := make(chan types.CategorySummary, workers*2)
	record := func(platforms int, violations []string) {
		mu.Lock()
		defer mu.Unlock()
		report.Platforms += platforms
		report.Violations = append(report.Violations, violations...)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				violations, err := checkCategory(ctx, client, config.BaseURL, c)
				if err != nil {
					violations = append(violations, fmt.Sprintf("%s: %v", c.ID, err))
				}
				if config.Verbose {
					logger.Get().Info(ctx, "category checked",
						logger.String("category", c.ID),
						logger.Int("platforms", c.PlatformCount),
						logger.Int("violations", len(violations)))
				}
				record(c.PlatformCount, violations)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range categories {
			select {
			case <-ctx.Done():
				return
			case jobs <- c:
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.StartTime)
	return report, nil
}

func checkCategory(ctx context.Context, client *HTTPClient, baseURL string, c types.CategorySummary) ([]string, error) {
	base := baseURL + "/categories/" + url.PathEscape(c.ID) + "/platforms"

	var defaults, relaxed, strict types.PlatformPage
	if err := client.GetJSON(ctx, base, &defaults); err != nil {
		return nil, err
	}
	if err := client.GetJSON(ctx, base+"?min_rating=0", &relaxed); err != nil {
		return nil, err
	}
	if err := client.GetJSON(ctx, base+"?min_rating="+strictMinRating, &strict); err != nil {
		return nil, err
	}

	var violations []string
	fail := func(format string, args ...any) {
		violations = append(violations, c.ID+": "+fmt.Sprintf(format, args...))
	}

	if defaults.Total != c.PlatformCount {
		fail("total %d differs from category count %d", defaults.Total, c.PlatformCount)
	}
	if relaxed.Shown != relaxed.Total {
		fail("relaxed filter shows %d of %d", relaxed.Shown, relaxed.Total)
	}
	if !(strict.Shown <= defaults.Shown && defaults.Shown <= relaxed.Shown) {
		fail("shown counts not monotonic: strict %d, default %d, relaxed %d", strict.Shown, defaults.Shown, relaxed.Shown)
	}
	for _, page := range []types.PlatformPage{defaults, relaxed, strict} {
		violations = append(violations, pageViolations(c.ID, page)...)
	}
	return violations, nil
}

// pageViolations checks ordering and bounds within one page.
func pageViolations(categoryID string, page types.PlatformPage) []string {
	var out []string
	if page.Shown != len(page.Platforms) {
		out = append(out, fmt.Sprintf("%s: shown %d but %d platforms listed", categoryID, page.Shown, len(page.Platforms)))
	}
	for i, p := range page.Platforms {
		if i > 0 && p.RatingValue > page.Platforms[i-1].RatingValue {
			out = append(out, fmt.Sprintf("%s: %q rated %.1f follows %q rated %.1f",
				categoryID, p.Name, p.RatingValue, page.Platforms[i-1].Name, page.Platforms[i-1].RatingValue))
		}
		if p.CashoutValue > page.CashoutCeiling {
			out = append(out, fmt.Sprintf("%s: %q cashout %.2f above ceiling %.2f",
				categoryID, p.Name, p.CashoutValue, page.CashoutCeiling))
		}
		if p.RatingValue < page.Criteria.MinRating {
			out = append(out, fmt.Sprintf("%s: %q rated %.1f below min %.1f",
				categoryID, p.Name, p.RatingValue, page.Criteria.MinRating))
		}
	}
	return out
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	var health map[string]string
	if err := client.GetJSON(ctx, config.BaseURL+"/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health["status"] != "ok" {
		return fmt.Errorf("unexpected health status %q", health["status"])
	}
	return nil
}

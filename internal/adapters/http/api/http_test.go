package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/payscout/internal/adapters/http/api"
	"github.com/okian/payscout/internal/adapters/repository"
	service "github.com/okian/payscout/internal/app"
	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/internal/domain/types"
	"github.com/okian/payscout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDependencies struct {
	categories   []types.CategorySummary
	categoryErr  error
	page         types.PlatformPage
	pageErr      error
	proofs       types.ProofPage
	platform     types.PlatformView
	platformErr  error
	outcome      model.MatchOutcome
	lastCategory string
	lastQuery    types.PlatformQuery
	lastProofQ   types.ProofQuery
	lastSession  string
	lastPrompt   string
	matchCalls   int
}

func (m *mockDependencies) Categories(context.Context) ([]types.CategorySummary, error) {
	return m.categories, m.categoryErr
}

func (m *mockDependencies) PlatformPage(_ context.Context, id string, q types.PlatformQuery) (types.PlatformPage, error) {
	m.lastCategory = id
	m.lastQuery = q
	return m.page, m.pageErr
}

func (m *mockDependencies) ProofPage(_ context.Context, q types.ProofQuery) (types.ProofPage, error) {
	m.lastProofQ = q
	return m.proofs, nil
}

func (m *mockDependencies) PlatformByName(_ context.Context, name string) (types.PlatformView, error) {
	if m.platformErr != nil {
		return types.PlatformView{}, m.platformErr
	}
	v := m.platform
	v.Name = name
	return v, nil
}

func (m *mockDependencies) Match(_ context.Context, sessionID, prompt string) model.MatchOutcome {
	m.matchCalls++
	m.lastSession = sessionID
	m.lastPrompt = prompt
	return m.outcome
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then health returns JSON by default", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Then health serves metrics when asked for text", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldNotContainSubstring, "application/json")
		})

		Convey("Then stats are served with uptime", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			So(w.Body.String(), ShouldContainSubstring, `"uptimeSeconds"`)
		})

		Convey("Then every response carries a request ID", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/categories", nil)
			req.Header.Set(api.RequestIDHeader, "req-42")
			echoed := httptest.NewRecorder()
			mux.ServeHTTP(echoed, req)
			So(echoed.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are not found", func() {
			So(serve(mux, http.MethodPost, "/categories", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodGet, "/matchmaker", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCatalogHandlers(t *testing.T) {
	Convey("Given catalog dependencies", t, func() {
		deps := &mockDependencies{
			categories: []types.CategorySummary{
				{Category: model.Category{ID: "surveys", Name: "Surveys"}, PlatformCount: 3},
			},
			page: types.PlatformPage{
				Category:       model.Category{ID: "surveys", Name: "Surveys"},
				Total:          3,
				CashoutCeiling: 28.0,
			},
			proofs: types.ProofPage{Total: 2},
		}
		mux := newMux(deps)

		Convey("When listing categories", func() {
			w := serve(mux, http.MethodGet, "/categories", "")

			Convey("Then the summaries are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []types.CategorySummary
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].ID, ShouldEqual, "surveys")
				So(got[0].PlatformCount, ShouldEqual, 3)
			})
		})

		Convey("When listing platforms with every filter", func() {
			w := serve(mux, http.MethodGet,
				"/categories/surveys/platforms?payment_method=PayPal&region=us-ca&max_cashout=12.5&min_rating=4", "")

			Convey("Then the query reaches the service parsed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastCategory, ShouldEqual, "surveys")
				So(deps.lastQuery.PaymentMethod, ShouldEqual, "PayPal")
				So(deps.lastQuery.Region, ShouldEqual, "us-ca")
				So(*deps.lastQuery.MaxCashout, ShouldEqual, 12.5)
				So(*deps.lastQuery.MinRating, ShouldEqual, 4.0)
				So(w.Body.String(), ShouldContainSubstring, `"cashout_ceiling":28`)
			})
		})

		Convey("When listing platforms without filters", func() {
			w := serve(mux, http.MethodGet, "/categories/surveys/platforms", "")

			Convey("Then the optional values stay unset", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.MaxCashout, ShouldBeNil)
				So(deps.lastQuery.MinRating, ShouldBeNil)
			})
		})

		Convey("When numeric filters are malformed", func() {
			for _, q := range []string{"max_cashout=abc", "min_rating=NaN", "max_cashout=Inf"} {
				w := serve(mux, http.MethodGet, "/categories/surveys/platforms?"+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the category is unknown", func() {
			deps.pageErr = fmt.Errorf("%w: nope", repository.ErrCategoryNotFound)
			w := serve(mux, http.MethodGet, "/categories/nope/platforms", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the service rejects the query", func() {
			deps.pageErr = fmt.Errorf("%w: bad region", service.ErrInvalidQuery)
			w := serve(mux, http.MethodGet, "/categories/surveys/platforms?region=mars", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service is not started", func() {
			deps.categoryErr = service.ErrNotStarted
			w := serve(mux, http.MethodGet, "/categories", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When listing proofs", func() {
			w := serve(mux, http.MethodGet, "/proofs?search=%20honey%20&category=Survey&min_rating=3", "")

			Convey("Then search is trimmed and category lowered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastProofQ.Search, ShouldEqual, "honey")
				So(deps.lastProofQ.Category, ShouldEqual, "survey")
				So(*deps.lastProofQ.MinRating, ShouldEqual, 3.0)
			})
		})

		Convey("When fetching one platform", func() {
			w := serve(mux, http.MethodGet, "/platforms/Prolific", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"name":"Prolific"`)
		})

		Convey("When the platform is unknown", func() {
			deps.platformErr = fmt.Errorf("%w: Nope", repository.ErrPlatformNotFound)
			w := serve(mux, http.MethodGet, "/platforms/Nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMatchHandler(t *testing.T) {
	Convey("Given a matchmaker endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the outcome state varies", func() {
			cases := []struct {
				state  model.MatchState
				status int
			}{
				{model.MatchMatched, http.StatusOK},
				{model.MatchNoMatch, http.StatusOK},
				{model.MatchInvalidInput, http.StatusBadRequest},
				{model.MatchStale, http.StatusConflict},
				{model.MatchBusy, http.StatusTooManyRequests},
				{model.MatchFailed, http.StatusBadGateway},
			}
			for _, tc := range cases {
				deps.outcome = model.MatchOutcome{State: tc.state, SessionID: "s1", Recommendations: []model.MatchResult{}}
				w := serve(mux, http.MethodPost, "/matchmaker", `{"prompt":"surveys","session_id":"s1"}`)
				So(w.Code, ShouldEqual, tc.status)
				So(w.Body.String(), ShouldContainSubstring, `"state":"`+string(tc.state)+`"`)
			}
			So(deps.lastSession, ShouldEqual, "s1")
			So(deps.lastPrompt, ShouldEqual, "surveys")
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/matchmaker", `not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.matchCalls, ShouldEqual, 0)
		})

		Convey("When the body has unknown fields", func() {
			w := serve(mux, http.MethodPost, "/matchmaker", `{"prompt":"x","extra":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.matchCalls, ShouldEqual, 0)
		})

		Convey("When the session id is too long", func() {
			body := fmt.Sprintf(`{"prompt":"x","session_id":%q}`, strings.Repeat("a", 129))
			w := serve(mux, http.MethodPost, "/matchmaker", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "SessionID")
		})

		Convey("When the prompt is blank", func() {
			deps.outcome = model.MatchOutcome{State: model.MatchInvalidInput, Recommendations: []model.MatchResult{}}
			w := serve(mux, http.MethodPost, "/matchmaker", `{"prompt":"   "}`)

			Convey("Then the matchmaker decides and reports invalid input", func() {
				So(deps.matchCalls, ShouldEqual, 1)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler over a full snapshot", t, func() {
		snapshot := map[string]interface{}{
			"started":     true,
			"queueLength": 3,
			"sessions":    2,
			"provider":    "gemini",
			"platforms":   40,
		}
		h := api.NewStatsHandler(&mockStatsProvider{stats: snapshot})

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.HandleStats(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		Convey("When a section is requested", func() {
			w := get("/stats?section=matchmaker")
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then only that group's keys are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["provider"], ShouldEqual, "gemini")
				So(body["sessions"], ShouldEqual, float64(2))
				So(body, ShouldContainKey, "uptimeSeconds")
				So(body, ShouldNotContainKey, "queueLength")
				So(body, ShouldNotContainKey, "platforms")
			})
		})

		Convey("When the section is unknown", func() {
			w := get("/stats?section=bogus")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the full snapshot is served", func() {
			So(get("/stats").Code, ShouldEqual, http.StatusOK)

			Convey("Then the provider's map is left untouched", func() {
				So(snapshot, ShouldNotContainKey, "uptimeSeconds")
			})
		})
	})
}

package matchmaker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeCatalog []model.Platform

func (c fakeCatalog) AllPlatforms(context.Context) []model.Platform { return c }

type fakeProvider struct {
	mu    sync.Mutex
	text  string
	err   error
	delay time.Duration
	calls int
	last  llm.GenerateRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	text, err, delay := f.text, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: text, Model: "fake-1"}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		{Name: "Prolific", Description: "Academic surveys", PaymentMethods: []string{"PayPal"}, Difficulty: "Beginner", Rating: "4.5/5"},
		{Name: "Freecash", Description: "GPT offers", PaymentMethods: []string{"PayPal", "Crypto"}, Difficulty: "Beginner", Rating: "4.6/5"},
		{Name: "Faucet", Description: "Crypto faucet", PaymentMethods: []string{"Crypto"}, Difficulty: "Beginner", Rating: "3.0/5", Caution: "Low pay"},
		{Name: "Risky", Description: "Risky", PaymentMethods: []string{"Crypto"}, Difficulty: "Beginner", Rating: "2.0/5", Warning: "Many complaints", Caution: "ignored"},
		{Name: "Upwork", Description: "Freelance", PaymentMethods: []string{"Bank"}, Difficulty: "Intermediate", Rating: "4.0/5"},
		{Name: "Fiverr", Description: "Gigs", PaymentMethods: []string{"Bank"}, Difficulty: "Intermediate", Rating: "4.1/5"},
	}
}

func TestProjection(t *testing.T) {
	Convey("Project keeps order and flattens fields", t, func() {
		proj := Project(testCatalog())
		So(len(proj), ShouldEqual, 6)
		So(proj[0].Name, ShouldEqual, "Prolific")
		So(proj[1].PaymentMethods, ShouldEqual, "PayPal, Crypto")
		So(proj[0].Warning, ShouldBeNil)
		So(*proj[2].Warning, ShouldEqual, "Low pay")
		So(*proj[3].Warning, ShouldEqual, "Many complaints")
	})

	Convey("Missing advisories serialize as null", t, func() {
		raw, err := json.Marshal(Project(testCatalog()[:1]))
		So(err, ShouldBeNil)
		So(string(raw), ShouldContainSubstring, `"warning":null`)
		So(string(raw), ShouldContainSubstring, `"payRate":""`)
	})

	Convey("UserContent embeds catalog and query", t, func() {
		content, err := UserContent(Project(testCatalog()[:1]), "surveys for students")
		So(err, ShouldBeNil)
		So(content, ShouldStartWith, "Here is the list of available platforms: [")
		So(content, ShouldEndWith, `find the best matches: "surveys for students"`)
	})

	Convey("ResponseSchema requires the recommendation fields", t, func() {
		s := ResponseSchema()
		So(s.Required, ShouldResemble, []string{"recommendations"})
		item := s.Properties["recommendations"].Items
		So(item.Required, ShouldResemble, []string{"platformName", "reason", "matchScore"})
		So(item.Properties["matchScore"].Type, ShouldEqual, llm.TypeInteger)
	})
}

func TestDecodeResponse(t *testing.T) {
	Convey("Given model outputs", t, func() {
		Convey("valid output decodes", func() {
			recs, err := DecodeResponse(`{"recommendations":[{"platformName":"Prolific","reason":"fits","matchScore":9}]}`)
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []model.Recommendation{{PlatformName: "Prolific", Reason: "fits", MatchScore: 9}})
		})

		Convey("null and empty lists are no match", func() {
			recs, err := DecodeResponse(`{"recommendations":null}`)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 0)

			recs, err = DecodeResponse(`{"recommendations":[]}`)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 0)
		})

		malformed := []struct {
			name string
			text string
		}{
			{"not json", `Sure! Here are some platforms`},
			{"missing key", `{}`},
			{"top-level null", `null`},
			{"unknown top-level field", `{"recommendations":[],"note":"x"}`},
			{"unknown item field", `{"recommendations":[{"platformName":"A","reason":"r","matchScore":5,"url":"x"}]}`},
			{"string score", `{"recommendations":[{"platformName":"A","reason":"r","matchScore":"5"}]}`},
			{"fractional score", `{"recommendations":[{"platformName":"A","reason":"r","matchScore":7.5}]}`},
			{"missing reason", `{"recommendations":[{"platformName":"A","matchScore":5}]}`},
			{"null item", `{"recommendations":[null]}`},
			{"wrong container", `{"recommendations":{"platformName":"A"}}`},
			{"trailing data", `{"recommendations":[]} {"recommendations":[]}`},
		}
		for _, tc := range malformed {
			Convey("rejects "+tc.name, func() {
				_, err := DecodeResponse(tc.text)
				So(errors.Is(err, ErrMalformedResponse), ShouldBeTrue)
			})
		}
	})
}

func TestReconcile(t *testing.T) {
	Convey("Given recommendations against the catalog", t, func() {
		byName := map[string]model.Platform{}
		for _, p := range testCatalog() {
			byName[p.Name] = p
		}

		Convey("known names keep their platform and order", func() {
			kept, dropped := Reconcile([]model.Recommendation{
				{PlatformName: "Freecash", Reason: "a", MatchScore: 8},
				{PlatformName: "Prolific", Reason: "b", MatchScore: 9},
			}, byName)
			So(len(dropped), ShouldEqual, 0)
			So(len(kept), ShouldEqual, 2)
			So(kept[0].Platform.Name, ShouldEqual, "Freecash")
			So(kept[1].Platform.Rating, ShouldEqual, "4.5/5")
		})

		Convey("unknown names and bad scores are dropped", func() {
			kept, dropped := Reconcile([]model.Recommendation{
				{PlatformName: "Nope", Reason: "a", MatchScore: 8},
				{PlatformName: "prolific", Reason: "case differs", MatchScore: 8},
				{PlatformName: "Prolific", Reason: "b", MatchScore: 0},
				{PlatformName: "Upwork", Reason: "c", MatchScore: 11},
				{PlatformName: "Fiverr", Reason: "d", MatchScore: 10},
			}, byName)
			So(len(kept), ShouldEqual, 1)
			So(kept[0].PlatformName, ShouldEqual, "Fiverr")
			So(dropped, ShouldResemble, []Dropped{
				{"Nope", DropUnknownPlatform},
				{"prolific", DropUnknownPlatform},
				{"Prolific", DropScoreRange},
				{"Upwork", DropScoreRange},
			})
		})

		Convey("duplicates and extras beyond four are dropped", func() {
			kept, dropped := Reconcile([]model.Recommendation{
				{PlatformName: "Prolific", MatchScore: 9},
				{PlatformName: "Prolific", MatchScore: 8},
				{PlatformName: "Freecash", MatchScore: 8},
				{PlatformName: "Upwork", MatchScore: 7},
				{PlatformName: "Fiverr", MatchScore: 6},
				{PlatformName: "Faucet", MatchScore: 5},
			}, byName)
			So(len(kept), ShouldEqual, MaxRecommendations)
			So(kept[3].PlatformName, ShouldEqual, "Fiverr")
			So(dropped, ShouldResemble, []Dropped{
				{"Prolific", DropDuplicate},
				{"Faucet", DropOverLimit},
			})
		})
	})
}

func TestMatcher(t *testing.T) {
	Convey("Given a matcher with a fake provider", t, func() {
		ctx := context.Background()
		provider := &fakeProvider{
			text: `{"recommendations":[{"platformName":"Prolific","reason":"Academic surveys fit students.","matchScore":9},{"platformName":"Freecash","reason":"Pays in PayPal.","matchScore":7}]}`,
		}
		mem := cache.NewMemoryCache(time.Minute, time.Minute)
		m := NewMatcher(testCatalog(),
			WithProvider(provider),
			WithModel("gemini-2.5-flash"),
			WithCache(mem, time.Minute),
			WithTimeout(time.Second),
			WithMaxPromptLength(50),
			WithRateLimit(1000, 100),
		)

		Convey("a matching prompt yields recommendations", func() {
			out := m.Resolve(ctx, "  surveys for students  ")
			So(out.State, ShouldEqual, model.MatchMatched)
			So(out.Message, ShouldEqual, "")
			So(len(out.Recommendations), ShouldEqual, 2)
			So(out.Recommendations[0].Platform.Description, ShouldEqual, "Academic surveys")
			So(out.Cached, ShouldBeFalse)

			So(provider.last.SystemInstruction, ShouldEqual, SystemInstruction)
			So(provider.last.Model, ShouldEqual, "gemini-2.5-flash")
			So(provider.last.Schema, ShouldNotBeNil)
			So(provider.last.Prompt, ShouldContainSubstring, `"name":"Risky"`)
			So(provider.last.Prompt, ShouldEndWith, `"surveys for students"`)

			Convey("and the same prompt is served from cache", func() {
				again := m.Resolve(ctx, "Surveys   FOR students")
				So(again.State, ShouldEqual, model.MatchMatched)
				So(again.Cached, ShouldBeTrue)
				So(len(again.Recommendations), ShouldEqual, 2)
				So(provider.callCount(), ShouldEqual, 1)
			})
		})

		Convey("empty prompts never call out", func() {
			for _, p := range []string{"", "   ", "\n\t"} {
				out := m.Resolve(ctx, p)
				So(out.State, ShouldEqual, model.MatchInvalidInput)
				So(out.Message, ShouldEqual, MessageEmptyPrompt)
			}
			So(provider.callCount(), ShouldEqual, 0)
		})

		Convey("overlong prompts are invalid", func() {
			out := m.Resolve(ctx, strings.Repeat("é", 51))
			So(out.State, ShouldEqual, model.MatchInvalidInput)
			So(out.Message, ShouldContainSubstring, "50")
			So(provider.callCount(), ShouldEqual, 0)
		})

		Convey("an empty list is no match and is not cached", func() {
			provider.text = `{"recommendations":[]}`
			out := m.Resolve(ctx, "underwater basket weaving")
			So(out.State, ShouldEqual, model.MatchNoMatch)
			So(out.Message, ShouldEqual, MessageNoMatch)
			So(mem.Len(), ShouldEqual, 0)
		})

		Convey("all-unknown names is no match", func() {
			provider.text = `{"recommendations":[{"platformName":"Ghost","reason":"x","matchScore":9}]}`
			out := m.Resolve(ctx, "ghosts")
			So(out.State, ShouldEqual, model.MatchNoMatch)
		})

		Convey("provider errors fail", func() {
			provider.err = &llm.HTTPError{StatusCode: 503}
			out := m.Resolve(ctx, "anything")
			So(out.State, ShouldEqual, model.MatchFailed)
			So(out.Message, ShouldEqual, MessageFailed)
		})

		Convey("malformed output fails", func() {
			provider.text = `{"recommendations":"none"}`
			out := m.Resolve(ctx, "anything")
			So(out.State, ShouldEqual, model.MatchFailed)
		})

		Convey("slow providers time out", func() {
			provider.delay = 5 * time.Second
			slow := NewMatcher(testCatalog(), WithProvider(provider), WithTimeout(20*time.Millisecond))
			start := time.Now()
			out := slow.Resolve(ctx, "anything")
			So(out.State, ShouldEqual, model.MatchFailed)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
		})

		Convey("a missing provider fails", func() {
			out := NewMatcher(testCatalog()).Resolve(ctx, "anything")
			So(out.State, ShouldEqual, model.MatchFailed)
		})

		Convey("rate limit waits honor cancellation", func() {
			limited := NewMatcher(testCatalog(), WithProvider(provider), WithRateLimit(0.001, 1))
			So(limited.Resolve(ctx, "first").State, ShouldEqual, model.MatchMatched)

			cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			So(limited.Resolve(cctx, "second").State, ShouldEqual, model.MatchFailed)
		})

		Convey("the timeout bounds the rate limit wait", func() {
			limited := NewMatcher(testCatalog(),
				WithProvider(provider),
				WithTimeout(50*time.Millisecond),
				WithRateLimit(0.001, 1),
			)
			So(limited.Resolve(ctx, "first").State, ShouldEqual, model.MatchMatched)
			calls := provider.callCount()

			start := time.Now()
			out := limited.Resolve(ctx, "second")
			So(out.State, ShouldEqual, model.MatchFailed)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
			So(provider.callCount(), ShouldEqual, calls)
		})
	})
}

func TestNewOutcome(t *testing.T) {
	Convey("Outcomes carry standard messages", t, func() {
		cases := []struct {
			state   model.MatchState
			message string
		}{
			{model.MatchMatched, ""},
			{model.MatchNoMatch, MessageNoMatch},
			{model.MatchFailed, MessageFailed},
			{model.MatchBusy, MessageFailed},
			{model.MatchInvalidInput, MessageEmptyPrompt},
			{model.MatchStale, MessageStale},
		}
		for _, tc := range cases {
			out := NewOutcome(tc.state)
			So(out.Message, ShouldEqual, tc.message)
			So(out.Recommendations, ShouldNotBeNil)
		}
	})
}

func TestSequencer(t *testing.T) {
	Convey("Given a sequencer", t, func() {
		s := NewSequencer(time.Minute)
		ctx := context.Background()

		Convey("sequence numbers increase per session", func() {
			_, a, doneA := s.Begin(ctx, "s1")
			doneA()
			_, b, doneB := s.Begin(ctx, "s1")
			doneB()
			_, other, doneO := s.Begin(ctx, "s2")
			doneO()
			So(a, ShouldEqual, uint64(1))
			So(b, ShouldEqual, uint64(2))
			So(other, ShouldEqual, uint64(1))
			So(s.Sessions(), ShouldEqual, 2)
		})

		Convey("a newer request cancels and supersedes the older", func() {
			first, seq1, done1 := s.Begin(ctx, "s1")
			defer done1()
			So(s.IsLatest("s1", seq1), ShouldBeTrue)

			_, seq2, done2 := s.Begin(ctx, "s1")
			defer done2()

			So(first.Err(), ShouldEqual, context.Canceled)
			So(s.IsLatest("s1", seq1), ShouldBeFalse)
			So(s.IsLatest("s1", seq2), ShouldBeTrue)
		})

		Convey("finishing keeps the session latest", func() {
			reqCtx, seq, done := s.Begin(ctx, "s1")
			done()
			So(reqCtx.Err(), ShouldEqual, context.Canceled)
			So(s.IsLatest("s1", seq), ShouldBeTrue)
		})

		Convey("an uncommitted reservation leaves the running request alone", func() {
			running, seq1, done1 := s.Begin(ctx, "s1")
			defer done1()

			rejected := s.Reserve(ctx, "s1")
			rejected.Done()

			So(rejected.Seq, ShouldEqual, seq1+1)
			So(running.Err(), ShouldBeNil)
			So(s.IsLatest("s1", seq1), ShouldBeTrue)
			So(s.IsLatest("s1", rejected.Seq), ShouldBeFalse)
		})

		Convey("a ticket overtaken before committing is canceled", func() {
			older := s.Reserve(ctx, "s1")
			newer := s.Reserve(ctx, "s1")
			So(newer.Commit(), ShouldBeTrue)
			So(older.Commit(), ShouldBeFalse)
			So(older.Ctx.Err(), ShouldEqual, context.Canceled)
			So(newer.Ctx.Err(), ShouldBeNil)
			So(s.IsLatest("s1", newer.Seq), ShouldBeTrue)
			newer.Done()
			older.Done()
		})

		Convey("unknown sessions are never latest", func() {
			So(s.IsLatest("nobody", 1), ShouldBeFalse)
		})
	})
}

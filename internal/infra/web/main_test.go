//go:build !integration

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"advent-calendar/internal/calendar"
	"advent-calendar/internal/infra/i18n"
	"advent-calendar/internal/infra/memory"
	red "advent-calendar/internal/infra/redis"
	"advent-calendar/internal/usecase"

	"github.com/rs/zerolog"
)

const testSecret = "test-visitor-secret-please-change"

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

var testOffers = calendar.Offers{
	1: "Fireworks",
	2: "Sliding down the hill and sipping mulled wine with friends all day",
	3: "Reins",
	4: "Nurse",
	5: "Music",
	6: "Nun",
	7: "Girl in pink",
}

type testEnv struct {
	server  *Server
	handler http.Handler
	tracker *usecase.TodayTracker
}

func newTestEnv(t *testing.T, testDay int) *testEnv {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	settings := calendar.Settings{Year: 2026, Month: time.January, Mode: calendar.ModeTest, TestDay: testDay, Location: time.UTC}
	repo := red.NewOpenedDaysRepo(memory.NewKV(), "advent_opened_days_2026", "memory", newTestLogger())
	uc := usecase.NewCalendarUseCase(settings, calendar.SystemClock{}, testOffers, tr, repo, memory.NewLocker(), "advent_opened_days_2026", newTestLogger())
	tracker := usecase.NewTodayTracker(uc, newTestLogger())

	sessions := NewVisitorSessions(testSecret, false, false, time.Hour)
	srv, err := NewServer(uc, tracker, sessions, tr, time.Minute, false, newTestLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{server: srv, handler: srv.Routes(), tracker: tracker}
}

// do sends a request carrying cookie (if any) and returns the recorder.
func (e *testEnv) do(method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func visitorCookieFrom(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == visitorCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", visitorCookie)
	return nil
}

//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/usecase"
)

type boardJSON struct {
	AllowedDay *int `json:"allowed_day"`
	Banner     string
	Cards      []model.Card
}

type openJSON struct {
	Result usecase.OpenResult `json:"result"`
	Board  boardJSON          `json:"board"`
}

func TestHealthAndTrace(t *testing.T) {
	env := newTestEnv(t, 2)
	rr := env.do(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rr.Code, rr.Body.String())
	}
	if len(rr.Header().Get(traceHeader)) != 26 {
		t.Fatalf("trace id header: %q", rr.Header().Get(traceHeader))
	}
}

func TestCalendarAPI_OpenFlow(t *testing.T) {
	env := newTestEnv(t, 2)

	rr := env.do(http.MethodGet, "/api/v1/calendar", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar: %d", rr.Code)
	}
	cookie := visitorCookieFrom(t, rr)

	var board boardJSON
	if err := json.NewDecoder(rr.Body).Decode(&board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if board.AllowedDay == nil || *board.AllowedDay != 2 || board.Cards[1].State != model.StateAvailable {
		t.Fatalf("initial board: %+v", board)
	}

	open := func(path string) openJSON {
		t.Helper()
		rr := env.do(http.MethodPost, path, cookie)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, rr.Code, rr.Body.String())
		}
		var out openJSON
		if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	t.Run("available day is accepted", func(t *testing.T) {
		out := open("/api/v1/days/2/open")
		if out.Result != usecase.OpenAccepted || out.Board.Cards[1].State != model.StateOpened {
			t.Fatalf("got %+v", out)
		}
		if out.Board.Cards[1].Text != testOffers[2] {
			t.Fatalf("opened text: %q", out.Board.Cards[1].Text)
		}
	})

	t.Run("second open is a duplicate", func(t *testing.T) {
		if out := open("/api/v1/days/2/open"); out.Result != usecase.OpenDuplicate {
			t.Fatalf("got %s", out.Result)
		}
	})

	t.Run("other days are stale", func(t *testing.T) {
		if out := open("/api/v1/days/5/open"); out.Result != usecase.OpenStale {
			t.Fatalf("got %s", out.Result)
		}
	})

	t.Run("malformed day is 400", func(t *testing.T) {
		for _, p := range []string{"/api/v1/days/x/open", "/api/v1/days/0/open", "/api/v1/days/8/open"} {
			if rr := env.do(http.MethodPost, p, cookie); rr.Code != http.StatusBadRequest {
				t.Fatalf("%s: want 400, got %d", p, rr.Code)
			}
		}
	})

	t.Run("opened set is per visitor", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/api/v1/calendar", nil)
		var other boardJSON
		if err := json.NewDecoder(rr.Body).Decode(&other); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if other.Cards[1].State != model.StateAvailable {
			t.Fatalf("new visitor sees %s", other.Cards[1].State)
		}
	})
}

func TestPage(t *testing.T) {
	env := newTestEnv(t, 2)

	rr := env.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("page: %d", rr.Code)
	}
	cookie := visitorCookieFrom(t, rr)
	body := rr.Body.String()
	for _, want := range []string{
		`<meta http-equiv="refresh" content="60">`,
		`<span id="today-day">2</span>`,
		`class="day-card day-card--available"`,
		`class="day-card day-card--past"`,
		`title="Will be available 3 January"`,
		`past day`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}

	rr = env.do(http.MethodPost, "/days/2/open", cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("form open: %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = env.do(http.MethodGet, "/", cookie)
	if body := rr.Body.String(); !strings.Contains(body, `class="day-card day-card--opened"`) || !strings.Contains(body, "Sliding down the hill") {
		t.Fatal("opened card not rendered")
	}

	if rr := env.do(http.MethodPost, "/days/nope/open", cookie); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad form day: %d", rr.Code)
	}
}

func TestPage_ClosedCalendar(t *testing.T) {
	env := newTestEnv(t, 9)
	body := env.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, `<span id="today-day">—</span>`) {
		t.Fatal("banner placeholder missing")
	}
	if strings.Contains(body, `class="day-card day-card--available"`) || strings.Contains(body, `class="day-card day-card--past"`) {
		t.Fatal("closed calendar should show only future cards")
	}
}

func TestTodayEndpoint(t *testing.T) {
	env := newTestEnv(t, 3)
	if err := env.tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	rr := env.do(http.MethodGet, "/api/v1/today", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("today: %d", rr.Code)
	}
	var snap struct {
		AllowedDay int            `json:"allowed_day"`
		Banner     string         `json:"banner"`
		Counts     map[string]int `json:"counts"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.AllowedDay != 3 || snap.Counts["past"] != 2 || snap.Counts["future"] != 4 {
		t.Fatalf("snapshot: %+v", snap)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("today endpoint should not mint sessions")
	}
}

// lockedUC reports every open as contended.
type lockedUC struct {
	usecase.CalendarUseCase
}

func (lockedUC) Open(ctx context.Context, visitorID string, day model.Day) (usecase.OpenResult, *model.Board, error) {
	return "", nil, fmt.Errorf("lock visitor: %w", domain.ErrLocked)
}

func TestFormOpen_ContendedLockRedirects(t *testing.T) {
	env := newTestEnv(t, 2)
	env.server.calendarUC = lockedUC{env.server.calendarUC}
	handler := env.server.Routes()

	req := httptest.NewRequest(http.MethodPost, "/days/2/open", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("want silent redirect, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/records"
	"github.com/robalobadob/mastermind/internal/store"
)

// zeroRand always draws index 0, so AI-made secrets are all red.
type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, h: s.Router(), cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DailySalt = "test_salt"
	return cfg
}

func newTestServer(t *testing.T, withDB bool) *Server {
	t.Helper()
	d := Deps{Store: store.NewMemoryStore(), Config: testConfig(), Rand: zeroRand{}}
	if withDB {
		db, err := records.Open(filepath.Join(t.TempDir(), "app.db"))
		if err != nil {
			if strings.Contains(err.Error(), "CGO_ENABLED=0") {
				t.Skip("sqlite3 driver requires cgo")
			}
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := records.Migrate(db); err != nil {
			t.Fatalf("Migrate: %v", err)
		}
		d.DB = db
	}
	return New(d)
}

func TestHealthAndNotFound(t *testing.T) {
	c := newClient(t, newTestServer(t, false))
	var health map[string]bool
	if code := c.do(http.MethodGet, "/health", nil, &health); code != http.StatusOK || !health["ok"] {
		t.Fatalf("health = %d %v", code, health)
	}
	if code := c.do(http.MethodGet, "/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("404 route = %d", code)
	}
}

func TestBreakerRound(t *testing.T) {
	c := newClient(t, newTestServer(t, false))

	var ng newGameRes
	if code := c.do(http.MethodPost, "/game/new", newGameReq{Mode: "breaker", MaxGuesses: 5}, &ng); code != http.StatusOK {
		t.Fatalf("new = %d", code)
	}
	if ng.MaxGuesses != 5 || len(ng.Palette) != 6 {
		t.Fatalf("new game = %+v", ng)
	}

	var res guessRes
	code := c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"blue", "red", "green", "red"}}, &res)
	if code != http.StatusOK {
		t.Fatalf("guess = %d", code)
	}
	if res.Exact != 2 || res.Color != 0 || res.State != game.StatePlaying || res.Secret != nil {
		t.Fatalf("guess res = %+v", res)
	}
	if res.Feedback[0] != game.MarkerExact || res.Feedback[1] != game.MarkerExact || res.Feedback[2] != game.MarkerNone {
		t.Fatalf("feedback not sorted: %v", res.Feedback)
	}

	code = c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "red"}}, &res)
	if code != http.StatusOK || res.State != game.StateWon {
		t.Fatalf("winning guess = %d %+v", code, res)
	}
	if strings.Join(res.Secret, " ") != "red red red red" {
		t.Fatalf("secret not revealed: %v", res.Secret)
	}

	if code := c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "red"}}, nil); code != http.StatusConflict {
		t.Fatalf("guess after win = %d", code)
	}
}

func TestGuessErrors(t *testing.T) {
	c := newClient(t, newTestServer(t, false))
	var ng newGameRes
	c.do(http.MethodPost, "/game/new", nil, &ng)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"unknown game", guessReq{GameID: "missing", Guess: []string{"red", "red", "red", "red"}}, http.StatusNotFound},
		{"bad color", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "pink"}}, http.StatusBadRequest},
		{"short", guessReq{GameID: ng.GameID, Guess: []string{"red"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code := c.do(http.MethodPost, "/game/guess", tt.body, nil); code != tt.want {
			t.Fatalf("%s: code = %d, want %d", tt.name, code, tt.want)
		}
	}
	if code := c.do(http.MethodPost, "/game/new", newGameReq{Mode: "spectator"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad mode = %d", code)
	}
	if code := c.do(http.MethodPost, "/game/new", newGameReq{Mode: "maker", Secret: []string{"red"}}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad secret = %d", code)
	}
}

func TestMakerRoundAITurns(t *testing.T) {
	c := newClient(t, newTestServer(t, false))
	secret := []string{"red", "red", "red", "red"}

	var ng newGameRes
	if code := c.do(http.MethodPost, "/game/new", newGameReq{Mode: "maker", Secret: secret, MaxGuesses: 3}, &ng); code != http.StatusOK {
		t.Fatalf("new = %d", code)
	}
	if code := c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: secret}, nil); code != http.StatusConflict {
		t.Fatalf("human guess in maker mode = %d", code)
	}

	// zeroRand makes the AI guess all red: solved on the first turn.
	var turn aiTurnRes
	if code := c.do(http.MethodPost, "/game/ai-turn", aiTurnReq{GameID: ng.GameID}, &turn); code != http.StatusOK {
		t.Fatalf("ai-turn = %d", code)
	}
	if turn.State != game.StateWon || turn.Guesses != 1 {
		t.Fatalf("turn = %+v", turn)
	}
	if code := c.do(http.MethodPost, "/game/ai-turn", aiTurnReq{GameID: ng.GameID}, nil); code != http.StatusConflict {
		t.Fatalf("ai-turn after finish = %d", code)
	}

	var view gameView
	if code := c.do(http.MethodGet, "/game/"+ng.GameID, nil, &view); code != http.StatusOK {
		t.Fatalf("get = %d", code)
	}
	if len(view.Turns) != 1 || view.Mode != "maker" || len(view.Secret) != 4 {
		t.Fatalf("view = %+v", view)
	}
}

func TestMakerRoundUsesMemory(t *testing.T) {
	c := newClient(t, newTestServer(t, false))
	// First AI guess is all red: exact at positions 0 and 3 must be kept.
	var ng newGameRes
	c.do(http.MethodPost, "/game/new", newGameReq{Mode: "maker", Secret: []string{"red", "blue", "green", "red"}, MaxGuesses: 4}, &ng)

	var first, second aiTurnRes
	c.do(http.MethodPost, "/game/ai-turn", aiTurnReq{GameID: ng.GameID}, &first)
	want := []game.Marker{game.MarkerExact, game.MarkerNone, game.MarkerNone, game.MarkerExact}
	for i := range want {
		if first.Feedback[i] != want[i] {
			t.Fatalf("first feedback = %v, want %v", first.Feedback, want)
		}
	}
	c.do(http.MethodPost, "/game/ai-turn", aiTurnReq{GameID: ng.GameID}, &second)
	if second.Guess[0] != "red" || second.Guess[3] != "red" {
		t.Fatalf("confirmed positions dropped: %v", second.Guess)
	}
}

func TestBreakerHistoryHidesSecret(t *testing.T) {
	c := newClient(t, newTestServer(t, false))
	var ng newGameRes
	c.do(http.MethodPost, "/game/new", nil, &ng)
	c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"blue", "blue", "red", "blue"}}, nil)

	var view gameView
	c.do(http.MethodGet, "/game/"+ng.GameID, nil, &view)
	if view.Secret != nil {
		t.Fatalf("secret leaked: %v", view.Secret)
	}
	if len(view.Turns) != 1 || view.Turns[0].Feedback[0] != game.MarkerExact {
		t.Fatalf("turns = %+v", view.Turns)
	}
}

func TestDailyWithoutDatabase(t *testing.T) {
	s := newTestServer(t, false)
	c := newClient(t, s)

	var nr newRes
	if code := c.do(http.MethodPost, "/daily/new", nil, &nr); code != http.StatusOK || nr.GameID == "" {
		t.Fatalf("daily new = %d %+v", code, nr)
	}
	var again newRes
	c.do(http.MethodPost, "/daily/new", nil, &again)
	if again.GameID != nr.GameID {
		t.Fatalf("session not reused: %s vs %s", again.GameID, nr.GameID)
	}

	secret := daily.SecretFor(time.Now(), testConfig().DailySalt)
	var res guessRes
	if code := c.do(http.MethodPost, "/daily/guess", dailyGuessReq{GameID: nr.GameID, Guess: secret.Strings()}, &res); code != http.StatusOK {
		t.Fatalf("daily guess = %d", code)
	}
	if res.State != game.StateWon {
		t.Fatalf("state = %s", res.State)
	}

	other := newClient(t, s)
	if code := other.do(http.MethodPost, "/daily/guess", dailyGuessReq{GameID: nr.GameID, Guess: secret.Strings()}, nil); code != http.StatusNotFound {
		t.Fatalf("foreign session guess = %d", code)
	}

	var lb lbRes
	if code := c.do(http.MethodGet, "/daily/leaderboard", nil, &lb); code != http.StatusOK || len(lb.Top) != 0 {
		t.Fatalf("leaderboard = %d %+v", code, lb)
	}
	if code := c.do(http.MethodGet, "/daily/leaderboard?date=yesterday", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad date = %d", code)
	}
}

func TestAuthFlowAndStats(t *testing.T) {
	s := newTestServer(t, true)
	c := newClient(t, s)

	// Anonymous game first; it is claimed on signup.
	var ng newGameRes
	c.do(http.MethodPost, "/game/new", nil, &ng)
	c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "red"}}, nil)

	if code := c.do(http.MethodPost, "/auth/signup", credentials{Username: "ada", Password: "password1"}, nil); code != http.StatusOK {
		t.Fatalf("signup = %d", code)
	}
	if code := c.do(http.MethodPost, "/auth/signup", credentials{Username: "ada", Password: "password1"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", code)
	}

	var me map[string]string
	if code := c.do(http.MethodGet, "/auth/me", nil, &me); code != http.StatusOK || me["username"] != "ada" {
		t.Fatalf("me = %d %v", code, me)
	}

	var games []records.GameRow
	c.do(http.MethodGet, "/games/mine", nil, &games)
	if len(games) != 1 || games[0].Status != "won" || games[0].Guesses != 1 {
		t.Fatalf("games = %+v", games)
	}

	// Signed-in win bumps stats.
	c.do(http.MethodPost, "/game/new", nil, &ng)
	c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "red"}}, nil)
	var stats map[string]any
	c.do(http.MethodGet, "/stats/me", nil, &stats)
	if stats["wins"] != float64(1) || stats["gamesPlayed"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}

	c.do(http.MethodPost, "/auth/logout", nil, nil)
	if code := c.do(http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", code)
	}
	if code := c.do(http.MethodPost, "/auth/login", credentials{Username: "ada", Password: "wrong-pass"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", code)
	}
	if code := c.do(http.MethodPost, "/auth/login", credentials{Username: "ADA", Password: "password1"}, nil); code != http.StatusOK {
		t.Fatalf("login = %d", code)
	}
}

func TestDailyLeaderboardWithDatabase(t *testing.T) {
	s := newTestServer(t, true)
	c := newClient(t, s)

	var nr newRes
	c.do(http.MethodPost, "/daily/new", nil, &nr)
	secret := daily.SecretFor(time.Now(), testConfig().DailySalt)
	c.do(http.MethodPost, "/daily/guess", dailyGuessReq{GameID: nr.GameID, Guess: secret.Strings()}, nil)

	var lb lbRes
	c.do(http.MethodGet, "/daily/leaderboard", nil, &lb)
	if len(lb.Top) != 1 || lb.Top[0].Guesses != 1 {
		t.Fatalf("leaderboard = %+v", lb)
	}

	var again newRes
	c.do(http.MethodPost, "/daily/new", nil, &again)
	if !again.Played || again.GameID != "" {
		t.Fatalf("second daily new = %+v", again)
	}
}

// otherThan returns a code that differs from c in the first peg.
func otherThan(c game.Code) game.Code {
	for _, col := range game.DefaultPalette {
		if col != c[0] {
			c[0] = col
			break
		}
	}
	return c
}

func TestGamesBelongToTheirPlayer(t *testing.T) {
	s := newTestServer(t, false)
	owner, stranger := newClient(t, s), newClient(t, s)
	allRed := []string{"red", "red", "red", "red"}

	var breaker, maker newGameRes
	owner.do(http.MethodPost, "/game/new", nil, &breaker)
	owner.do(http.MethodPost, "/game/new", newGameReq{Mode: "maker", Secret: allRed}, &maker)

	if code := stranger.do(http.MethodPost, "/game/guess", guessReq{GameID: breaker.GameID, Guess: allRed}, nil); code != http.StatusNotFound {
		t.Fatalf("stranger guess = %d", code)
	}
	if code := stranger.do(http.MethodPost, "/game/ai-turn", aiTurnReq{GameID: maker.GameID}, nil); code != http.StatusNotFound {
		t.Fatalf("stranger ai-turn = %d", code)
	}
	if code := stranger.do(http.MethodGet, "/game/"+breaker.GameID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("stranger get = %d", code)
	}

	var view gameView
	if code := owner.do(http.MethodGet, "/game/"+breaker.GameID, nil, &view); code != http.StatusOK || len(view.Turns) != 0 {
		t.Fatalf("owner view = %d %+v", code, view)
	}
}

func TestSignupKeepsRoundsInPlay(t *testing.T) {
	s := newTestServer(t, true)
	c := newClient(t, s)
	secret := daily.SecretFor(time.Now(), testConfig().DailySalt)

	var nr newRes
	c.do(http.MethodPost, "/daily/new", nil, &nr)
	if code := c.do(http.MethodPost, "/daily/guess", dailyGuessReq{GameID: nr.GameID, Guess: otherThan(secret).Strings()}, nil); code != http.StatusOK {
		t.Fatalf("daily guess as guest = %d", code)
	}
	var ng newGameRes
	c.do(http.MethodPost, "/game/new", nil, &ng)
	if code := c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"blue", "blue", "blue", "blue"}}, nil); code != http.StatusOK {
		t.Fatalf("guess as guest = %d", code)
	}

	if code := c.do(http.MethodPost, "/auth/signup", credentials{Username: "grace", Password: "password1"}, nil); code != http.StatusOK {
		t.Fatalf("signup = %d", code)
	}

	var dres guessRes
	if code := c.do(http.MethodPost, "/daily/guess", dailyGuessReq{GameID: nr.GameID, Guess: secret.Strings()}, &dres); code != http.StatusOK {
		t.Fatalf("daily guess after signup = %d", code)
	}
	if dres.State != game.StateWon || dres.Guesses != 2 {
		t.Fatalf("daily res = %+v", dres)
	}
	var again newRes
	c.do(http.MethodPost, "/daily/new", nil, &again)
	if !again.Played {
		t.Fatalf("daily win not recorded for the account: %+v", again)
	}

	var res guessRes
	if code := c.do(http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: []string{"red", "red", "red", "red"}}, &res); code != http.StatusOK || res.State != game.StateWon {
		t.Fatalf("guess after signup = %d %+v", code, res)
	}

	var games []records.GameRow
	c.do(http.MethodGet, "/games/mine", nil, &games)
	if len(games) != 1 || games[0].Guesses != 2 || games[0].Status != "won" {
		t.Fatalf("games = %+v", games)
	}
	var stats map[string]any
	c.do(http.MethodGet, "/stats/me", nil, &stats)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}
}

func TestSweepEvictsIdleGames(t *testing.T) {
	s := newTestServer(t, false)
	c := newClient(t, s)
	ctx := context.Background()

	var ng newGameRes
	c.do(http.MethodPost, "/game/new", nil, &ng)
	var nr newRes
	c.do(http.MethodPost, "/daily/new", nil, &nr)

	s.sweep(ctx, time.Now())
	if code := c.do(http.MethodGet, "/game/"+ng.GameID, nil, nil); code != http.StatusOK {
		t.Fatalf("fresh game swept: %d", code)
	}

	s.sweep(ctx, time.Now().Add(s.cfg.GameTTL+time.Minute))
	if code := c.do(http.MethodGet, "/game/"+ng.GameID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("idle game kept: %d", code)
	}
	s.dailyRoutes.mu.Lock()
	left := len(s.dailyRoutes.sessions)
	s.dailyRoutes.mu.Unlock()
	if left != 0 {
		t.Fatalf("sessions left = %d", left)
	}
}

func TestSweepDropsOldDailySessions(t *testing.T) {
	s := newTestServer(t, false)
	c := newClient(t, s)
	ctx := context.Background()

	var nr newRes
	c.do(http.MethodPost, "/daily/new", nil, &nr)
	s.dailyRoutes.mu.Lock()
	s.dailyRoutes.sessions["someone|2000-01-01"] = nr.GameID
	s.dailyRoutes.mu.Unlock()

	s.sweep(ctx, time.Now())
	if _, err := s.store.Get(ctx, nr.GameID); err == nil {
		t.Fatal("round of an old daily session kept")
	}
	s.dailyRoutes.mu.Lock()
	defer s.dailyRoutes.mu.Unlock()
	if _, ok := s.dailyRoutes.sessions["someone|2000-01-01"]; ok {
		t.Fatal("old session kept")
	}
}

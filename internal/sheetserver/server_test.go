package sheetserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tflegends/legends/internal/game"
)

func testServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := OpenAndMigrate(":memory:", []game.Card{
		{ID: "c1", Name: "Valiant", Attack: 10, Health: 20, Defense: 5},
		{ID: "c2", Name: "Warden", Attack: 7, Health: 25, Defense: 3, Rarity: "MTM"},
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return New(db).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func TestListUnknownTable(t *testing.T) {
	router := testServer(t)
	w := doJSON(t, router, http.MethodGet, "/api/scores", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListCards_Seeded(t *testing.T) {
	router := testServer(t)
	w := doJSON(t, router, http.MethodGet, "/api/cards", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var cards []game.Card
	decodeData(t, w, &cards)
	if len(cards) != 2 {
		t.Fatalf("expected 2 seeded cards, got %d", len(cards))
	}
}

func TestCreateAndPatchUser(t *testing.T) {
	router := testServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", []game.User{
		{Username: "alice", Password: "pw", Cards: "c1,c2", Online: "TRUE"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created []game.User
	decodeData(t, w, &created)
	if created[0].ID == "" {
		t.Fatalf("store must assign an id when missing")
	}

	// Partial patch: only the named fields change.
	w = doJSON(t, router, http.MethodPut, "/api/users", []map[string]interface{}{
		{"id": created[0].ID, "coins": 40, "online": "FALSE"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/users", nil)
	var users []game.User
	decodeData(t, w, &users)
	if users[0].Coins != 40 || users[0].Online != "FALSE" {
		t.Fatalf("patched fields not applied: %+v", users[0])
	}
	if users[0].Username != "alice" || users[0].Cards != "c1,c2" {
		t.Fatalf("patch clobbered unrelated fields: %+v", users[0])
	}
}

func TestPatchMissingID(t *testing.T) {
	router := testServer(t)
	w := doJSON(t, router, http.MethodPut, "/api/users", []map[string]interface{}{
		{"coins": 40},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPatchUnknownRecord(t *testing.T) {
	router := testServer(t)
	w := doJSON(t, router, http.MethodPut, "/api/users", []map[string]interface{}{
		{"id": "missing", "coins": 40},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestBattleRevisionCheck(t *testing.T) {
	router := testServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/battles", []game.Battle{
		{Player1: "u1", Player2: "u2", P1Health: 100, P2Health: 100, Turn: "u1", Status: game.StatusActive},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created []game.Battle
	decodeData(t, w, &created)
	id := created[0].ID
	if created[0].Revision != 0 {
		t.Fatalf("new battles start at revision 0, got %d", created[0].Revision)
	}

	// First writer wins and advances the revision.
	w = doJSON(t, router, http.MethodPut, "/api/battles", []map[string]interface{}{
		{"id": id, "turn": "u2", "revision": 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// A second patch computed against revision 0 is stale.
	w = doJSON(t, router, http.MethodPut, "/api/battles", []map[string]interface{}{
		{"id": id, "turn": "u1", "revision": 0},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a stale revision, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/battles", nil)
	var battles []game.Battle
	decodeData(t, w, &battles)
	if battles[0].Turn != "u2" {
		t.Fatalf("stale patch must not apply, got turn %s", battles[0].Turn)
	}
	if battles[0].Revision != 1 {
		t.Fatalf("expected revision 1 after one patch, got %d", battles[0].Revision)
	}
}

func TestBattlePatch_FieldLevelMerge(t *testing.T) {
	router := testServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/battles", []game.Battle{
		{
			Player1: "u1", Player2: "u2",
			P1Remaining: "c1,c2,c3,c4", P2Remaining: "c1,c2,c3,c4",
			P1Health: 100, P2Health: 100,
			Turn: "u1", Status: game.StatusActive,
		},
	})
	var created []game.Battle
	decodeData(t, w, &created)
	id := created[0].ID

	// One side patches only its own columns.
	w = doJSON(t, router, http.MethodPut, "/api/battles", []map[string]interface{}{
		{"id": id, "p1_remaining": "c2,c3,c4", "p1_field": "c1", "log": "u1 plays c1", "revision": 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/battles", nil)
	var battles []game.Battle
	decodeData(t, w, &battles)
	b := battles[0]
	if b.P1Field != "c1" || b.P1Remaining != "c2,c3,c4" {
		t.Fatalf("patched side not applied: %+v", b)
	}
	if b.P2Remaining != "c1,c2,c3,c4" || b.Turn != "u1" || b.P1Health != 100 {
		t.Fatalf("patch clobbered concurrent fields: %+v", b)
	}
}

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"trail_miniapp/internal/config"
	httpserver "trail_miniapp/internal/http"
	"trail_miniapp/internal/service"
	"trail_miniapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TestE2E_AuthClaimAndEvents drives the real router: authenticate in dev
// mode, open the event socket, claim, and expect an account_update frame.
func TestE2E_AuthClaimAndEvents(t *testing.T) {
	db := connectDB(t)

	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DEV_MODE", "true")
	defer os.Unsetenv("DEV_MODE")
	service.InitJWT()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{
		BotToken:        "test-token",
		BotUsername:     "TrailCrypto_Bot",
		WebAppShortName: "app",
		APIRateLimit:    1000,
		AuthRateLimit:   1000,
	}
	httpserver.RegisterRoutes(r, db, cfg, "test")

	srv := httptest.NewServer(r)
	defer srv.Close()

	// authenticate
	userJSON := fmt.Sprintf(`{"id":%d,"username":"e2e","first_name":"EndToEnd"}`, time.Now().UnixNano())
	initData := url.Values{"user": {userJSON}}.Encode()
	body, _ := json.Marshal(map[string]string{"init_data": initData})
	resp, err := http.Post(srv.URL+"/api/v1/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("auth request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auth status = %d", resp.StatusCode)
	}

	var authResp struct {
		Token      string `json:"token"`
		DailyBonus bool   `json:"daily_bonus"`
		Account    struct {
			ID      int64 `json:"id"`
			Balance int64 `json:"balance"`
		} `json:"account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("decode auth: %v", err)
	}
	if authResp.Token == "" {
		t.Fatalf("empty token")
	}
	if !authResp.DailyBonus {
		t.Fatalf("fresh account got no daily bonus")
	}

	// open the event socket
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + authResp.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	// claim over HTTP
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/mining/claim", nil)
	req.Header.Set("Authorization", "Bearer "+authResp.Token)
	claimResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("claim request: %v", err)
	}
	defer claimResp.Body.Close()
	if claimResp.StatusCode != http.StatusOK {
		t.Fatalf("claim status = %d", claimResp.StatusCode)
	}

	// the settlement should push an account_update event
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read ws: %v", err)
		}
		var ev ws.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Type == ws.EventAccountUpdate {
			break
		}
	}
}

package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// signInitData assembles an init_data query string signed the way Telegram
// signs WebApp launch payloads.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(parts, "\n")))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hex.EncodeToString(mac.Sum(nil)))
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	botToken := "test-bot-token"
	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F","last_name":"L"}`,
	})

	vals, ok := ValidateTelegramInitData(initData, botToken)
	if !ok {
		t.Fatal("expected valid init data")
	}
	if vals.Get("user") == "" {
		t.Fatal("expected user field in values")
	}
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	botToken := "test-bot-token"
	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	})

	if _, ok := ValidateTelegramInitData(initData+"&x=1", botToken); ok {
		t.Fatal("expected tampered init data to be invalid")
	}
}

func TestValidateTelegramInitData_WrongToken(t *testing.T) {
	initData := signInitData(t, "token-a", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1}`,
	})

	if _, ok := ValidateTelegramInitData(initData, "token-b"); ok {
		t.Fatal("expected init data signed with another token to be invalid")
	}
}

func TestValidateTelegramInitData_Stale(t *testing.T) {
	botToken := "test-bot-token"
	stale := time.Now().Add(-2 * time.Hour).Unix()
	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(stale, 10),
		"user":      `{"id":1}`,
	})

	if _, ok := ValidateTelegramInitData(initData, botToken); ok {
		t.Fatal("expected stale init data to be invalid")
	}
}

func TestValidateTelegramInitData_MissingHash(t *testing.T) {
	if _, ok := ValidateTelegramInitData("auth_date=1&user=%7B%22id%22%3A1%7D", "tok"); ok {
		t.Fatal("expected init data without hash to be invalid")
	}
}

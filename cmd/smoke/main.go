package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase    string
	token      string
	devAuth    bool
	client     = &http.Client{Timeout: 30 * time.Second}
	testDate   string
	createdIDs = make(map[string]string) // созданные ресурсы для удаления в конце
)

func main() {
	fmt.Println("=== Physique Hub E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")
	devAuth = getEnv("SMOKE_DEV_AUTH", "0") == "1"

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Printf("Dev auth: %t\n", devAuth)
	fmt.Println()

	// Дата сервера может отличаться (LOG_TIMEZONE), поэтому берём её из ответа /v1/log
	testDate = time.Now().Format("2006-01-02")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Dev Auth", testDevAuth},
		{"Get Profile", testGetProfile},
		{"Generate Plan", testGeneratePlan},
		{"List Foods", testListFoods},
		{"Log Food", testLogFood},
		{"Log Cardio", testLogCardio},
		{"Get Summary", testGetSummary},
		{"Get Streak", testGetStreak},
		{"Get Dashboard", testGetDashboard},
		{"Log Weight", testLogWeight},
		{"Get Stats", testGetStats},
		{"Create Report (CSV)", testCreateReportCSV},
		{"List Reports", testListReports},
		{"Download Report", testDownloadReport},
		{"Delete Report", testDeleteReport},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	return call("GET", "/healthz", nil, http.StatusOK, nil)
}

func testDevAuth() error {
	if !devAuth || token != "" {
		return nil
	}

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	}
	if err := call("POST", "/v1/auth/dev", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if result.AccessToken == "" {
		return fmt.Errorf("empty access_token")
	}
	token = result.AccessToken
	return nil
}

func testGetProfile() error {
	var result struct {
		UserID string `json:"user_id"`
	}
	if err := call("GET", "/v1/profile", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if result.UserID == "" {
		return fmt.Errorf("empty user_id")
	}
	return nil
}

func testListFoods() error {
	var result struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := call("GET", "/v1/foods?q=egg", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if len(result.Items) == 0 {
		return fmt.Errorf("seeded food \"Egg\" not found")
	}
	return nil
}

func testGeneratePlan() error {
	payload := map[string]interface{}{
		"meal_count":         3,
		"daily_calorie_goal": 2400,
		"daily_protein_goal": 150,
	}

	var result struct {
		PlanVersion int `json:"plan_version"`
		Targets     []struct {
			SlotNumber     int `json:"slot_number"`
			TargetCalories int `json:"target_calories"`
		} `json:"targets"`
	}
	if err := call("POST", "/v1/plan/generate", payload, http.StatusOK, &result); err != nil {
		return err
	}

	if len(result.Targets) != 3 {
		return fmt.Errorf("expected 3 targets, got %d", len(result.Targets))
	}
	sum := 0
	for _, t := range result.Targets {
		sum += t.TargetCalories
	}
	if sum != 2400 {
		return fmt.Errorf("targets sum to %d, expected 2400", sum)
	}
	return nil
}

func testLogFood() error {
	payload := map[string]interface{}{
		"slot_number": 1,
		"descriptor":  "Egg",
		"quantity":    2,
	}

	var result struct {
		ID       string `json:"id"`
		LogDate  string `json:"log_date"`
		Calories int    `json:"calories"`
	}
	if err := call("POST", "/v1/log", payload, http.StatusCreated, &result); err != nil {
		return err
	}
	if result.Calories <= 0 {
		return fmt.Errorf("expected positive calories, got %d", result.Calories)
	}
	if result.LogDate != "" {
		testDate = result.LogDate
	}
	return nil
}

func testLogCardio() error {
	payload := map[string]interface{}{
		"kind":           "cardio",
		"cardio_minutes": 30,
		"quantity":       1,
	}
	return call("POST", "/v1/log", payload, http.StatusCreated, nil)
}

func testGetSummary() error {
	var result struct {
		Date                string `json:"date"`
		ActualCaloriesTotal int    `json:"actual_calories_total"`
		CardioMinutesTotal  int    `json:"cardio_minutes_total"`
		PerSlot             []struct {
			SlotNumber int    `json:"slot_number"`
			Status     string `json:"status"`
		} `json:"per_slot"`
	}
	if err := call("GET", "/v1/summary?date="+testDate, nil, http.StatusOK, &result); err != nil {
		return err
	}

	if result.ActualCaloriesTotal <= 0 {
		return fmt.Errorf("expected consumed calories, got %d", result.ActualCaloriesTotal)
	}
	if result.CardioMinutesTotal < 30 {
		return fmt.Errorf("expected cardio minutes >= 30, got %d", result.CardioMinutesTotal)
	}
	if len(result.PerSlot) != 3 {
		return fmt.Errorf("expected 3 slots, got %d", len(result.PerSlot))
	}
	return nil
}

func testGetStreak() error {
	var result struct {
		Length int `json:"length"`
	}
	if err := call("GET", "/v1/streak?as_of="+testDate, nil, http.StatusOK, &result); err != nil {
		return err
	}
	if result.Length < 1 {
		return fmt.Errorf("expected streak >= 1 after logging, got %d", result.Length)
	}
	return nil
}

func testGetDashboard() error {
	var result struct {
		Date        string `json:"date"`
		PlanVersion int    `json:"plan_version"`
		Plan        []struct {
			SlotNumber int `json:"slot_number"`
		} `json:"plan"`
	}
	if err := call("GET", "/v1/dashboard", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if result.PlanVersion < 1 || len(result.Plan) != 3 {
		return fmt.Errorf("unexpected plan in dashboard: version=%d slots=%d", result.PlanVersion, len(result.Plan))
	}
	return nil
}

func testLogWeight() error {
	payload := map[string]interface{}{"weight_kg": 80.5}
	var result struct {
		Date     string  `json:"date"`
		WeightKg float64 `json:"weight_kg"`
	}
	if err := call("POST", "/v1/weight", payload, http.StatusCreated, &result); err != nil {
		return err
	}
	if result.WeightKg != 80.5 || result.Date == "" {
		return fmt.Errorf("unexpected weight entry: %+v", result)
	}
	return nil
}

func testGetStats() error {
	var result struct {
		Days     int `json:"days"`
		Activity []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"activity"`
		Weights []struct {
			WeightKg float64 `json:"weight_kg"`
		} `json:"weights"`
	}
	if err := call("GET", "/v1/stats?days=7", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if len(result.Activity) != 7 {
		return fmt.Errorf("expected 7 activity days, got %d", len(result.Activity))
	}
	if len(result.Weights) == 0 {
		return fmt.Errorf("expected the logged weight in stats")
	}
	return nil
}

func testCreateReportCSV() error {
	to, err := time.Parse("2006-01-02", testDate)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"format": "csv",
		"from":   to.AddDate(0, 0, -7).Format("2006-01-02"),
		"to":     testDate,
	}

	var result struct {
		ID        string `json:"id"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := call("POST", "/v1/reports", payload, http.StatusCreated, &result); err != nil {
		return err
	}

	if result.SizeBytes < 10 {
		return fmt.Errorf("report size is %d bytes (too small)", result.SizeBytes)
	}

	createdIDs["report"] = result.ID
	return nil
}

func testListReports() error {
	var result struct {
		Reports []struct {
			ID string `json:"id"`
		} `json:"reports"`
	}
	if err := call("GET", "/v1/reports", nil, http.StatusOK, &result); err != nil {
		return err
	}

	for _, r := range result.Reports {
		if r.ID == createdIDs["report"] {
			return nil
		}
	}
	return fmt.Errorf("created report %s not listed", createdIDs["report"])
}

func testDownloadReport() error {
	reportID := createdIDs["report"]
	if reportID == "" {
		return fmt.Errorf("no report ID to download")
	}

	req, err := newRequest("GET", "/v1/reports/"+reportID+"/download", nil)
	if err != nil {
		return err
	}

	// Редирект проверяем вручную: в S3 режиме ссылка ведёт в бакет без Authorization
	originalCheckRedirect := client.CheckRedirect
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	defer func() { client.CheckRedirect = originalCheckRedirect }()

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return checkReportBody(resp.Body)

	case http.StatusFound:
		location := resp.Header.Get("Location")
		if location == "" {
			return fmt.Errorf("redirect without Location header")
		}

		getResp, err := client.Get(location)
		if err != nil {
			return fmt.Errorf("failed to follow redirect: %w", err)
		}
		defer getResp.Body.Close()

		if getResp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(getResp.Body, 4096))
			return fmt.Errorf("redirect failed: status=%d body=%s", getResp.StatusCode, string(body))
		}
		return checkReportBody(getResp.Body)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("unexpected status=%d body=%s", resp.StatusCode, string(body))
}

func testDeleteReport() error {
	reportID := createdIDs["report"]
	if reportID == "" {
		return fmt.Errorf("no report ID to delete")
	}
	return call("DELETE", "/v1/reports/"+reportID, nil, http.StatusNoContent, nil)
}

// Helper functions

func checkReportBody(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) < 10 {
		return fmt.Errorf("report too small: %d bytes", len(data))
	}
	if !bytes.HasPrefix(data, []byte("date,")) {
		return fmt.Errorf("unexpected CSV header: %q", firstLine(data))
	}
	return nil
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

func newRequest(method, path string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// call выполняет запрос, проверяет статус и декодирует ответ в out (если не nil).
func call(method, path string, payload interface{}, wantStatus int, out interface{}) error {
	req, err := newRequest(method, path, payload)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

//go:build smoke

package smoke

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/proclubs/internal/testutil"
)

type smokeServer struct {
	baseURL string
	client  *http.Client
}

func TestServerStartup(t *testing.T) {
	srv := startServer(t)

	var competition struct {
		ID int64 `json:"id"`
	}
	srv.postJSON(t, "/api/v1/competitions", map[string]any{
		"name":           "Smoke League",
		"numberOfTeams":  4,
		"matchesPerTeam": 3,
	}, http.StatusCreated, &competition)

	for _, name := range []string{"Ajax", "Benfica", "Celtic", "Dinamo"} {
		var team struct {
			ID int64 `json:"id"`
		}
		srv.postJSON(t, "/api/v1/teams", map[string]any{"name": name}, http.StatusCreated, &team)
		srv.postJSON(t, fmt.Sprintf("/api/v1/competitions/%d/teams", competition.ID),
			map[string]any{"teamId": team.ID}, http.StatusCreated, nil)
	}

	var result struct {
		Success bool              `json:"success"`
		Matches []json.RawMessage `json:"matches"`
	}
	srv.postJSON(t, fmt.Sprintf("/api/v1/competitions/%d/draw", competition.ID), nil, http.StatusOK, &result)
	if !result.Success || len(result.Matches) != 6 {
		t.Fatalf("unexpected draw result: %+v", result)
	}

	var saved struct {
		Rounds []struct {
			ID int64 `json:"id"`
		} `json:"rounds"`
	}
	srv.postJSON(t, fmt.Sprintf("/api/v1/competitions/%d/draw/save", competition.ID),
		map[string]any{"matches": result.Matches}, http.StatusCreated, &saved)
	if len(saved.Rounds) != 3 {
		t.Fatalf("saved rounds = %d, want 3", len(saved.Rounds))
	}
}

func startServer(t *testing.T) *smokeServer {
	t.Helper()
	repoRoot := findRepoRoot(t)
	tempDir := t.TempDir()

	binPath := filepath.Join(tempDir, "proclubs-server")
	buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	buildCmd.Dir = repoRoot
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build server: %v\n%s", err, buildOutput)
	}

	port := reservePort(t)
	configPath := filepath.Join(tempDir, "config.yaml")
	configBody := fmt.Sprintf(`app:
  name: "proclubs"
  environment: "development"
  port: %d

database:
  driver: "sqlite"
  filename: "%s"

draw:
  strategy: "backtracking"
  log_events: false

scheduler:
  draw_requests_cron: "*/1 * * * *"

rate_limit:
  draw_cooldown: "1ms"

features:
  enable_scheduler: true
  enable_debug: true
`, port, filepath.ToSlash(filepath.Join(tempDir, "db", "smoke.db")))

	if err := os.WriteFile(configPath, []byte(configBody), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := exec.Command(binPath, "-config", configPath)
	cmd.Dir = tempDir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	waitDone := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(waitDone)
	}()

	t.Cleanup(func() {
		if cmd.Process == nil {
			return
		}
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-waitDone:
			return
		case <-time.After(5 * time.Second):
		}
		_ = cmd.Process.Kill()
		select {
		case <-waitDone:
		case <-time.After(5 * time.Second):
			t.Logf("server process did not exit after kill")
		}
	})

	srv := &smokeServer{
		baseURL: fmt.Sprintf("http://localhost:%d", port),
		client:  &http.Client{Timeout: 2 * time.Second},
	}
	deadline := time.Now().Add(10 * time.Second)

	for {
		select {
		case <-waitDone:
			t.Fatalf("server exited before health check: %v\nstdout:\n%s\nstderr:\n%s", waitErr, stdout.String(), stderr.String())
		default:
		}

		resp, err := srv.client.Get(srv.baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return srv
			}
		}

		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for health check\nstdout:\n%s\nstderr:\n%s", stdout.String(), stderr.String())
		}

		time.Sleep(100 * time.Millisecond)
	}
}

func (s *smokeServer) postJSON(t *testing.T, path string, payload any, wantStatus int, dst any) {
	t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode %s payload: %v", path, err)
		}
		body = bytes.NewReader(encoded)
	}
	resp, err := s.client.Post(s.baseURL+path, "application/json", body)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s response: %v", path, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s status = %d, want %d: %s", path, resp.StatusCode, wantStatus, raw)
	}
	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
}

func reservePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatal("failed to locate repo root with go.mod")
	return ""
}

func TestMigrationsApplied(t *testing.T) {
	db := testutil.NewTestDB(t)

	expectedTables := []string{
		"competitions",
		"teams",
		"competition_teams",
		"draw_exclusions",
		"rounds",
		"matches",
		"draw_requests",
		"draw_audit_log",
	}

	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
			table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			t.Fatalf("missing expected table %q after migrations", table)
		}
		if err != nil {
			t.Fatalf("query table %q existence: %v", table, err)
		}
	}
}

func TestForeignKeyIntegrity(t *testing.T) {
	db := testutil.NewTestDB(t)

	var foreignKeysEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeysEnabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Fatalf("expected foreign_keys pragma enabled, got %d", foreignKeysEnabled)
	}

	_, err := db.Exec(
		`INSERT INTO rounds (competition_id, round_number, status)
		 VALUES (9999, 1, 'pending')`,
	)
	if err == nil {
		t.Fatal("expected foreign key constraint failure for invalid competition_id")
	}
}

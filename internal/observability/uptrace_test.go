package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "player-scout",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitUptrace_EmptyDSNIsNoop(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, ServiceName: "player-scout", AppEnv: config.EnvDev}

	shutdown, err := InitUptrace(cfg, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	if srv != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := StopPprofServer(srv, nil, 0); err != nil {
		t.Fatalf("stop pprof: %v", err)
	}
}

func TestStartPprofServer_ServesIndex(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	defer func() {
		if err := StopPprofServer(srv, logging.NewNop(), time.Second); err != nil {
			t.Fatalf("stop pprof: %v", err)
		}
	}()

	resp, err := http.Get("http://" + srv.Addr + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "goroutine") {
		t.Fatalf("unexpected pprof index: status=%d", resp.StatusCode)
	}
}

func TestStartPprofServer_BindError(t *testing.T) {
	if _, err := StartPprofServer(config.Config{PprofEnabled: true, PprofAddr: "256.0.0.1:bad"}, logging.NewNop()); err == nil {
		t.Fatalf("expected bind error")
	}
}

func TestPyroscopeConfig(t *testing.T) {
	got := pyroscopeConfig(config.Config{
		AppEnv:                 config.EnvDev,
		ServiceName:            "player-scout",
		ServiceVersion:         "1.2.3",
		PyroscopeAppName:       "scout",
		PyroscopeServerAddress: "http://pyroscope:4040",
		PyroscopeUploadRate:    15 * time.Second,
	})
	if got.ApplicationName != "scout" || got.ServerAddress != "http://pyroscope:4040" || got.UploadRate != 15*time.Second {
		t.Fatalf("unexpected pyroscope config: %+v", got)
	}
	if got.Tags["env"] != config.EnvDev || got.Tags["service"] != "player-scout" || got.Tags["version"] != "1.2.3" {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}
	if len(got.ProfileTypes) != len(profileTypes) {
		t.Fatalf("unexpected profile types: %v", got.ProfileTypes)
	}
}

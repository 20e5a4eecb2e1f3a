package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/achtool/achtool/internal/config"
)

func TestRunProgress_InvalidAppID(t *testing.T) {
	installFakeSession(t, cmdTestClient(), cmdTestSchema(), nil)

	for _, arg := range []string{"abc", "0", "-3", "4.2", ""} {
		var out bytes.Buffer
		err := runProgress(&out, config.Defaults(), arg)
		if !errors.Is(err, errReported) {
			t.Errorf("arg %q: expected reported error, got %v", arg, err)
		}
		if got := strings.TrimSpace(out.String()); got != "ERR invalid_appid" {
			t.Errorf("arg %q: expected ERR invalid_appid, got %q", arg, got)
		}
	}
}

func TestRunProgress_Success(t *testing.T) {
	installFakeSession(t, cmdTestClient(), cmdTestSchema(), nil)

	var out bytes.Buffer
	if err := runProgress(&out, config.Defaults(), "440"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "1 3" {
		t.Errorf("expected \"1 3\", got %q", got)
	}
}

func TestRunProgress_OpenFailure(t *testing.T) {
	installFakeSession(t, nil, nil, errDriverRefused)

	var out bytes.Buffer
	err := runProgress(&out, config.Defaults(), "440")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported error, got %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "ERR scan_failed" {
		t.Errorf("expected ERR scan_failed, got %q", got)
	}
}

func TestRunProgress_SchemaMissing(t *testing.T) {
	installFakeSession(t, cmdTestClient(), nil, nil)

	var out bytes.Buffer
	err := runProgress(&out, config.Defaults(), "440")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported error, got %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "ERR scan_failed" {
		t.Errorf("expected ERR scan_failed, got %q", got)
	}
}

func TestRunProgress_RecordsLedger(t *testing.T) {
	ledgerPath := installFakeSession(t, cmdTestClient(), cmdTestSchema(), nil)

	var out bytes.Buffer
	if err := runProgress(&out, config.Defaults(), "440"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("expected ledger to be written: %v", err)
	}

	if !strings.Contains(string(data), "\"app_id\": 440") {
		t.Errorf("expected ledger entry for app 440, got:\n%s", data)
	}
}

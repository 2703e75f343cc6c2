package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"frontoffice/internal/config"
	"frontoffice/internal/domain"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short"}); err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef"}); err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestQuoteCommandPrintsBill(t *testing.T) {
	t.Setenv("BRANCHES_FILE", "")

	cmd := quoteCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--branch", "anna-salai", "--charge", "7500", "--charge", "750", "--charge", "2500", "--extra-nights", "1", "--rate", "2500", "--paid", "5000"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("quote: %v", err)
	}

	var resp domain.QuoteResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode quote output: %v", err)
	}
	if resp.Billing.Total.String() != "15635" || resp.Billing.BalanceDue.String() != "10635" {
		t.Fatalf("unexpected quote %+v", resp.Billing)
	}
}

func TestQuoteCommandRejectsBadAmounts(t *testing.T) {
	cmd := quoteCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--charge", "ten"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected invalid charge to fail")
	}
}

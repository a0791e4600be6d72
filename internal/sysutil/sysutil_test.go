package sysutil

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestConfigureLogger_JSONAndPretty(t *testing.T) {
	origLevel, origLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
	})

	var buf bytes.Buffer
	ConfigureLogger(&buf, "info", false)
	log.Debug().Msg("hidden")
	log.Info().Str("k", "v").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"k":"v"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("expected JSON line, got %s", out)
	}

	buf.Reset()
	ConfigureLogger(&buf, "debug", true)
	log.Debug().Msg("console")
	if out := buf.String(); strings.HasPrefix(out, "{") || !strings.Contains(out, "console") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestParseBoolAndIsTruthy(t *testing.T) {
	trues := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	falses := []string{"0", "false", "no", "off", "n"}
	unknown := []string{"", "  ", "random"}

	for _, v := range trues {
		if b, ok := ParseBool(v); !b || !ok {
			t.Fatalf("ParseBool(%q) = %v,%v; want true,true", v, b, ok)
		}
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false", v)
		}
	}
	for _, v := range falses {
		if b, ok := ParseBool(v); b || !ok {
			t.Fatalf("ParseBool(%q) = %v,%v; want false,true", v, b, ok)
		}
	}
	for _, v := range unknown {
		if _, ok := ParseBool(v); ok {
			t.Fatalf("ParseBool(%q) should not be recognized", v)
		}
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
}

func TestInstanceName(t *testing.T) {
	orig := hostname
	t.Cleanup(func() { hostname = orig })

	if got := InstanceName("explicit"); got != "explicit" {
		t.Fatalf("explicit name ignored: %q", got)
	}

	t.Setenv("HOSTNAME", "")
	hostname = func() (string, error) { return "box-1", nil }
	if got := InstanceName(""); got != "box-1" {
		t.Fatalf("got %q; want box-1", got)
	}

	hostname = func() (string, error) { return "", errors.New("no host") }
	if got := InstanceName(""); got != "game-catalog" {
		t.Fatalf("got %q; want fallback", got)
	}
}

package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewParsesLevel(t *testing.T) {
	l := New("debug", "json")
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", l.Formatter)
	}
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	l := New("loud", "text")
	if l.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %s", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("expected text formatter, got %T", l.Formatter)
	}
}

func TestDiscard(t *testing.T) {
	entry := Discard().WithField("k", "v")
	if entry == nil {
		t.Fatalf("expected non-nil entry")
	}
}

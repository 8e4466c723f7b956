package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDouyinError(t *testing.T) {
	err := NewDouyinError(40018, "bad code")
	if err.Error() != "douyin error: [40018] bad code" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	withLog := newDouyinErrorWithLog(40018, "bad code", "L1")
	if withLog.Error() != "douyin error: [40018] bad code (log_id=L1)" {
		t.Fatalf("unexpected error message: %s", withLog.Error())
	}
}

func TestIsTokenError(t *testing.T) {
	if !IsTokenError(NewDouyinError(ErrCodeInvalidToken, "invalid token")) {
		t.Fatal("expected invalid token error")
	}
	if !IsTokenError(fmt.Errorf("wrapped: %w", NewDouyinError(ErrCodeExpiredToken, "expired token"))) {
		t.Fatal("expected wrapped expired token error")
	}
	if IsTokenError(NewDouyinError(ErrCodeBadAppID, "bad appid")) {
		t.Fatal("unexpected token error")
	}
	if IsTokenError(errors.New("plain")) {
		t.Fatal("unexpected token error for plain error")
	}
}

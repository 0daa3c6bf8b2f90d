package txn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func deadlock() error {
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

// recordingSleep captures requested delays instead of waiting.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetryBoundAndBackoffSchedule(t *testing.T) {
	var delays []time.Duration
	attempts := 0

	err := retrySerializable(context.Background(), func() error {
		attempts++
		return deadlock()
	}, recordingSleep(&delays))

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want exactly 3", attempts)
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %s, want %s", i, delays[i], want[i])
		}
	}
}

func TestSucceedsAfterConflict(t *testing.T) {
	var delays []time.Duration
	attempts := 0

	err := retrySerializable(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return deadlock()
		}
		return nil
	}, recordingSleep(&delays))

	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

// Domain errors must pass through on the first attempt: the retry
// loop only reacts to storage serialization failures.
func TestDomainErrorsAreNotRetried(t *testing.T) {
	sentinel := errors.New("reservation overlap")
	var delays []time.Duration
	attempts := 0

	err := retrySerializable(context.Background(), func() error {
		attempts++
		return sentinel
	}, recordingSleep(&delays))

	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel passthrough", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
	if len(delays) != 0 {
		t.Fatalf("delays = %v, want none", delays)
	}
}

func TestUniquenessViolationIsNotRetried(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	attempts := 0

	err := retrySerializable(context.Background(), func() error {
		attempts++
		return dup
	}, recordingSleep(&[]time.Duration{}))

	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		t.Fatalf("err = %v, want the 1062 error back", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestIsSerializationFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205}, true},
		{"duplicate key", &mysql.MySQLError{Number: 1062}, false},
		{"wrapped deadlock", errors.Join(errors.New("ctx"), &mysql.MySQLError{Number: 1213}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range cases {
		if got := IsSerializationFailure(tt.err); got != tt.want {
			t.Errorf("%s: IsSerializationFailure=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retrySerializable(ctx, func() error { return deadlock() }, sleepCtx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

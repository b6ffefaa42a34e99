package lightschema_test

import (
	"testing"

	"github.com/dcdncp/lightschema"
)

func TestResult_SuccessAndFailure(t *testing.T) {
	ok := lightschema.Success[int, string](7)
	if !ok.IsSuccess() || ok.IsFailure() {
		t.Fatalf("success tag mismatch")
	}
	if v, isOK := ok.Get(); !isOK || v != 7 {
		t.Fatalf("Get: %v %v", v, isOK)
	}
	if got := ok.SuccessOr(0); got != 7 {
		t.Fatalf("SuccessOr: %d", got)
	}
	if got := ok.FailureOr("none"); got != "none" {
		t.Fatalf("FailureOr on success: %q", got)
	}

	bad := lightschema.Failure[int, string]("boom")
	if bad.IsSuccess() || !bad.IsFailure() {
		t.Fatalf("failure tag mismatch")
	}
	if got := bad.ExpectFailure(); got != "boom" {
		t.Fatalf("ExpectFailure: %q", got)
	}
	if got := bad.SuccessOr(-1); got != -1 {
		t.Fatalf("SuccessOr on failure: %d", got)
	}
}

func TestResult_ZeroValueIsFailure(t *testing.T) {
	var r lightschema.Result[string, error]
	if r.IsSuccess() {
		t.Fatalf("zero Result must not be a success")
	}
}

func TestResult_ExpectPanics(t *testing.T) {
	cases := []struct {
		name string
		fn   func()
		want string
	}{
		{"success on failure", func() { lightschema.Failure[int, string]("x").ExpectSuccess() }, "Expected success, but got failure."},
		{"failure on success", func() { lightschema.Success[int, string](1).ExpectFailure() }, "Expected failure, but got success."},
		{"custom message", func() { lightschema.Failure[int, string]("x").ExpectSuccess("need a user") }, "need a user"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r != tc.want {
					t.Fatalf("panic: got %v want %q", r, tc.want)
				}
			}()
			tc.fn()
		})
	}
}

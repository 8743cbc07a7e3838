package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Phase: PhaseRuntime, Kind: KindRuntimeUnavailable},
			want: "[runtime] RuntimeUnavailable",
		},
		{
			name: "method and detail",
			err:  UnknownMethod("get_thing"),
			want: `[dispatch] UnknownMethod method=get_thing: no handler registered for "get_thing"`,
		},
		{
			name: "handle",
			err:  HandleNotFound(42),
			want: "[registry] HandleNotFound handle=42: handle 42 is not registered",
		},
		{
			name: "cause",
			err:  Internal(PhaseEngine, "handler fault", stderrors.New("boom")),
			want: "[engine] InternalError: handler fault (caused by: boom)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := HandleNotFound(7)

	if !stderrors.Is(err, &Error{Kind: KindHandleNotFound}) {
		t.Error("expected kind-only match")
	}
	if stderrors.Is(err, &Error{Kind: KindUnknownMethod}) {
		t.Error("unexpected match across kinds")
	}
	if !stderrors.Is(err, &Error{Phase: PhaseRegistry, Kind: KindHandleNotFound}) {
		t.Error("expected phase+kind match")
	}
	if stderrors.Is(err, &Error{Phase: PhaseDecode, Kind: KindHandleNotFound}) {
		t.Error("unexpected match with wrong phase")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Internal(PhaseEngine, "send failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected unwrap to reach cause")
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(UnknownMethod("x")); k != KindUnknownMethod {
		t.Errorf("KindOf = %q, want UnknownMethod", k)
	}
	if k := KindOf(stderrors.New("plain")); k != KindInternalError {
		t.Errorf("KindOf(plain) = %q, want InternalError", k)
	}
}

func TestMessage(t *testing.T) {
	if got := RuntimeUnavailable("executor not started").Message(); got != "executor not started" {
		t.Errorf("Message = %q", got)
	}

	err := Internal(PhaseEngine, "handler fault", stderrors.New("boom"))
	if got := err.Message(); got != "handler fault: boom" {
		t.Errorf("Message = %q", got)
	}

	bare := &Error{Phase: PhaseRuntime, Kind: KindCancelled}
	if got := bare.Message(); got != "Cancelled" {
		t.Errorf("Message = %q", got)
	}
}

func TestPassthrough(t *testing.T) {
	domain := &Error{Phase: PhaseEngine, Kind: Kind("InsufficientFunds"), Detail: "balance too low"}
	out := Passthrough(PhaseDispatch, domain)
	if out.Kind != Kind("InsufficientFunds") {
		t.Errorf("passthrough lost kind: %q", out.Kind)
	}
	if out.Phase != PhaseDispatch {
		t.Errorf("passthrough kept old phase: %q", out.Phase)
	}

	plain := Passthrough(PhaseEngine, stderrors.New("tcp reset"))
	if plain.Kind != KindInternalError {
		t.Errorf("plain error kind = %q, want InternalError", plain.Kind)
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseDecode, KindInvalidArgument).
		Method("send_message").
		Detail("field %q: %s", "amount", "not a decimal string").
		Build()

	if err.Method != "send_message" {
		t.Errorf("Method = %q", err.Method)
	}
	if !strings.Contains(err.Detail, `"amount"`) {
		t.Errorf("Detail = %q", err.Detail)
	}
}

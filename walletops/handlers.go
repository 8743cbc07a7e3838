package walletops

import (
	"context"
	"time"

	"github.com/wippyai/wallet-bridge/dispatch"
	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/errors"
	"github.com/wippyai/wallet-bridge/registry"
	"github.com/wippyai/wallet-bridge/wallet"
)

// Method names exposed across the boundary.
const (
	MethodCreateGqlTransport = "create_gql_transport"
	MethodOpenWallet         = "open_wallet"
	MethodGetAccountState    = "get_account_state"
	MethodGetBalance         = "get_balance"
	MethodSendMessage        = "send_message"
	MethodWait               = "wait"
	MethodSubscribeToWallet  = "subscribe_to_wallet"
)

// HandleResult carries a freshly minted handle back across the boundary.
// Handles are 64-bit and use the decimal-string codec like every other
// wide integer.
type HandleResult struct {
	Handle envelope.Uint64 `json:"handle"`
}

// Register installs the wallet engine's operations into a dispatch table.
// The registry is where handlers park the native objects they create.
func Register(table *dispatch.Table, eng wallet.Engine, reg *registry.Registry) error {
	type entry struct {
		method  string
		handler dispatch.Handler
	}
	entries := []entry{
		{MethodCreateGqlTransport, createTransport(eng, reg)},
		{MethodOpenWallet, openWallet(eng, reg)},
		{MethodGetAccountState, getAccountState()},
		{MethodGetBalance, getBalance()},
		{MethodSendMessage, sendMessage()},
		{MethodWait, wait()},
	}
	for _, e := range entries {
		if err := table.Register(e.method, e.handler); err != nil {
			return err
		}
	}
	return table.RegisterStream(MethodSubscribeToWallet, subscribeToWallet(eng))
}

type transportArgs struct {
	URL string `json:"url"`
}

func createTransport(eng wallet.Engine, reg *registry.Registry) dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		var args transportArgs
		if err := envelope.DecodeArgs(req.Method, req.Payload, &args); err != nil {
			return nil, err
		}
		if args.URL == "" {
			return nil, errors.InvalidArgument(req.Method, "url is required", nil)
		}

		t, err := eng.Connect(ctx, args.URL)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}
		return HandleResult{Handle: envelope.Uint64(reg.Register(registry.KindTransport, t))}, nil
	}
}

type keyArgs struct {
	PublicKey    string              `json:"public_key"`
	ContractType wallet.ContractType `json:"contract_type"`
}

func (a keyArgs) parse(method string) (wallet.PublicKey, error) {
	key, err := wallet.ParsePublicKey(a.PublicKey)
	if err != nil {
		return key, errors.InvalidArgument(method, "public_key", err)
	}
	if !a.ContractType.Valid() {
		return key, errors.New(errors.PhaseDecode, errors.KindInvalidArgument).
			Method(method).
			Detail("unknown contract_type %q", a.ContractType).
			Build()
	}
	return key, nil
}

type openWalletResult struct {
	Handle  envelope.Uint64 `json:"handle"`
	Address string          `json:"address"`
}

func openWallet(eng wallet.Engine, reg *registry.Registry) dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		var args keyArgs
		if err := envelope.DecodeArgs(req.Method, req.Payload, &args); err != nil {
			return nil, err
		}
		key, err := args.parse(req.Method)
		if err != nil {
			return nil, err
		}

		t, err := dispatch.Expect[wallet.Transport](req, registry.KindTransport)
		if err != nil {
			return nil, err
		}

		w, err := eng.Open(ctx, t, key, args.ContractType)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}
		return openWalletResult{
			Handle:  envelope.Uint64(reg.Register(registry.KindWallet, w)),
			Address: w.Address(),
		}, nil
	}
}

func getAccountState() dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		w, err := dispatch.Expect[wallet.Wallet](req, registry.KindWallet)
		if err != nil {
			return nil, err
		}
		st, err := w.State(ctx)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}
		return st, nil
	}
}

type balanceResult struct {
	Balance *envelope.BigInt `json:"balance"`
}

func getBalance() dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		w, err := dispatch.Expect[wallet.Wallet](req, registry.KindWallet)
		if err != nil {
			return nil, err
		}
		st, err := w.State(ctx)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}
		return balanceResult{Balance: st.Balance}, nil
	}
}

type sendArgs struct {
	Dest   string           `json:"dest"`
	Amount *envelope.BigInt `json:"amount"`
}

func sendMessage() dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		var args sendArgs
		if err := envelope.DecodeArgs(req.Method, req.Payload, &args); err != nil {
			return nil, err
		}
		if args.Dest == "" {
			return nil, errors.InvalidArgument(req.Method, "dest is required", nil)
		}
		if args.Amount == nil || args.Amount.Sign() <= 0 {
			return nil, errors.InvalidArgument(req.Method, "amount must be a positive decimal string", nil)
		}

		w, err := dispatch.Expect[wallet.Wallet](req, registry.KindWallet)
		if err != nil {
			return nil, err
		}
		pending, err := w.Send(ctx, args.Dest, args.Amount)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}
		return pending, nil
	}
}

type waitArgs struct {
	Milliseconds int64 `json:"milliseconds"`
}

// wait is the liveness probe: it resolves after the requested delay,
// proving the executor and the delivery channel are alive end to end.
func wait() dispatch.Handler {
	return func(ctx context.Context, req dispatch.Request) (any, error) {
		var args waitArgs
		if err := envelope.DecodeArgs(req.Method, req.Payload, &args); err != nil {
			return nil, err
		}
		if args.Milliseconds < 0 {
			return nil, errors.InvalidArgument(req.Method, "milliseconds must be >= 0", nil)
		}

		select {
		case <-time.After(time.Duration(args.Milliseconds) * time.Millisecond):
			return struct{}{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func subscribeToWallet(eng wallet.Engine) dispatch.StreamHandler {
	return func(ctx context.Context, req dispatch.Request) (dispatch.Pump, error) {
		var args keyArgs
		if err := envelope.DecodeArgs(req.Method, req.Payload, &args); err != nil {
			return nil, err
		}
		key, err := args.parse(req.Method)
		if err != nil {
			return nil, err
		}

		t, err := dispatch.Expect[wallet.Transport](req, registry.KindTransport)
		if err != nil {
			return nil, err
		}

		sub, err := eng.Subscribe(ctx, t, key, args.ContractType)
		if err != nil {
			return nil, errors.Passthrough(errors.PhaseEngine, err)
		}

		return func(ctx context.Context, emit func(any)) error {
			defer sub.Cancel()
			for {
				select {
				case ev, ok := <-sub.Events():
					if !ok {
						return sub.Err()
					}
					emit(ev)
				case <-ctx.Done():
					return nil
				}
			}
		}, nil
	}
}

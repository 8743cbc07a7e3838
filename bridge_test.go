package walletbridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/gateway"
	"github.com/wippyai/wallet-bridge/port"
	"github.com/wippyai/wallet-bridge/registry"
	"github.com/wippyai/wallet-bridge/wallet"
	"github.com/wippyai/wallet-bridge/wallet/wallettest"
)

const keyHex = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"

func roundTrip(t *testing.T, g *gateway.Gateway, method, payload string, h registry.Handle) envelope.Response {
	t.Helper()
	p := port.NewChanPort(4)
	if st := g.Dispatch(method, []byte(payload), h, p); st != gateway.StatusOK {
		t.Fatalf("Dispatch(%s) = %v", method, st)
	}
	select {
	case raw := <-p.C():
		var resp envelope.Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("malformed envelope: %v", err)
		}
		return resp
	case <-time.After(3 * time.Second):
		t.Fatalf("%s never completed", method)
	}
	return envelope.Response{}
}

func TestEndToEnd(t *testing.T) {
	eng := wallettest.NewEngine()
	g, err := New(gateway.Config{Workers: 2, ShutdownGrace: time.Second}, eng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	resp := roundTrip(t, g, "create_gql_transport", `{"url":"https://node.example"}`, 0)
	if resp.Outcome != envelope.OutcomeOK {
		t.Fatalf("create_gql_transport: %+v", resp.Error)
	}
	var minted struct {
		Handle envelope.Uint64 `json:"handle"`
	}
	if err := json.Unmarshal(resp.Payload, &minted); err != nil {
		t.Fatalf("decode handle: %v", err)
	}
	transport := registry.Handle(minted.Handle)

	resp = roundTrip(t, g, "open_wallet",
		`{"public_key":"`+keyHex+`","contract_type":"wallet_v3"}`, transport)
	if resp.Outcome != envelope.OutcomeOK {
		t.Fatalf("open_wallet: %+v", resp.Error)
	}
	var opened struct {
		Handle  envelope.Uint64 `json:"handle"`
		Address string          `json:"address"`
	}
	if err := json.Unmarshal(resp.Payload, &opened); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}

	balance, err := envelope.ParseBigInt("340282366920938463463374607431768211455")
	if err != nil {
		t.Fatal(err)
	}
	eng.SetState(opened.Address, &wallet.AccountState{Balance: balance, IsDeployed: true})

	resp = roundTrip(t, g, "get_balance", `{}`, registry.Handle(opened.Handle))
	if resp.Outcome != envelope.OutcomeOK {
		t.Fatalf("get_balance: %+v", resp.Error)
	}
	var got struct {
		Balance *envelope.BigInt `json:"balance"`
	}
	if err := json.Unmarshal(resp.Payload, &got); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if got.Balance.String() != balance.String() {
		t.Fatalf("balance = %s, want %s (u128 width must survive the boundary)",
			got.Balance.String(), balance.String())
	}

	if st := g.ReleaseHandle(registry.Handle(opened.Handle)); st != gateway.StatusOK {
		t.Fatalf("ReleaseHandle = %v", st)
	}
	resp = roundTrip(t, g, "get_balance", `{}`, registry.Handle(opened.Handle))
	if resp.Outcome != envelope.OutcomeErr {
		t.Fatal("released wallet handle still resolves")
	}
}
